package metrics

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/physics"
)

// Energy tracks the total mechanical energy of the collection in the
// softened central field. Value reports the last observation.
type Energy struct {
	name    string
	field   *physics.CentralMass
	samples int
	current float64
}

func NewEnergy(field *physics.CentralMass) *Energy {
	return &Energy{name: "energy", field: field}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(p dynamo.Particles, t float64) {
	e.current = TotalEnergy(e.field, p)
	e.samples++
}

func (e *Energy) Value() float64 { return e.current }

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// TotalEnergy sums kinetic and potential energy over p.
func TotalEnergy(field *physics.CentralMass, p dynamo.Particles) float64 {
	return field.Energy(p)
}

// EnergyDrift is the largest relative deviation from the first observed
// energy.
type EnergyDrift struct {
	name          string
	field         *physics.CentralMass
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(field *physics.CentralMass) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", field: field}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(p dynamo.Particles, t float64) {
	energy := TotalEnergy(e.field, p)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
