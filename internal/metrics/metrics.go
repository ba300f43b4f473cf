// Package metrics observes a particle collection over a run.
package metrics

import (
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/physics"
)

// Standard returns the metric set recorded by headless runs.
func Standard(field *physics.CentralMass) []dynamo.Metric {
	return []dynamo.Metric{
		NewMeanRadius(),
		NewRadiusSpread(),
		NewEnergy(field),
		NewEnergyDrift(field),
		NewAngularMomentum(),
	}
}
