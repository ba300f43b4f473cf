package metrics

import (
	"github.com/san-kum/galaxysim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// Radii returns the planar radius of every particle.
func Radii(p dynamo.Particles) []float64 {
	r := make([]float64, len(p))
	for i := range p {
		r[i] = p[i].PlanarRadius()
	}
	return r
}

// MeanPlanarRadius is the average distance from the disk axis, 0 for an
// empty collection.
func MeanPlanarRadius(p dynamo.Particles) float64 {
	if len(p) == 0 {
		return 0
	}
	return stat.Mean(Radii(p), nil)
}

// MeanRadius reports the mean planar radius at the last observation.
type MeanRadius struct {
	current float64
}

func NewMeanRadius() *MeanRadius { return &MeanRadius{} }

func (m *MeanRadius) Name() string { return "mean_radius" }

func (m *MeanRadius) Observe(p dynamo.Particles, t float64) {
	m.current = MeanPlanarRadius(p)
}

func (m *MeanRadius) Value() float64 { return m.current }
func (m *MeanRadius) Reset()         { m.current = 0 }

// RadiusSpread reports the standard deviation of the planar radius.
type RadiusSpread struct {
	current float64
}

func NewRadiusSpread() *RadiusSpread { return &RadiusSpread{} }

func (m *RadiusSpread) Name() string { return "radius_spread" }

func (m *RadiusSpread) Observe(p dynamo.Particles, t float64) {
	if len(p) < 2 {
		m.current = 0
		return
	}
	_, m.current = stat.MeanStdDev(Radii(p), nil)
}

func (m *RadiusSpread) Value() float64 { return m.current }
func (m *RadiusSpread) Reset()         { m.current = 0 }
