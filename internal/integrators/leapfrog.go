package integrators

import (
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/physics"
)

// Leapfrog is the kick-drift-kick scheme for the same central field. It
// costs two force evaluations per particle but drifts less in energy.
type Leapfrog struct {
	Field   *physics.CentralMass
	Damping float64
	Workers int
}

func NewLeapfrog(field *physics.CentralMass) *Leapfrog {
	return &Leapfrog{Field: field, Workers: 1}
}

func (l *Leapfrog) Step(p dynamo.Particles, dt float32) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	if dt == 0 {
		return nil
	}

	halfDt := dt * 0.5
	keep := dampFactor(l.Damping, dt)
	dynamo.ParallelFor(len(p), workers(l.Workers), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			q := &p[i]
			q.Velocity = q.Velocity.Add(l.Field.Acceleration(q.Position).Mul(halfDt))
			q.Position = q.Position.Add(q.Velocity.Mul(dt))
			q.Velocity = q.Velocity.Add(l.Field.Acceleration(q.Position).Mul(halfDt)).Mul(keep)
		}
	})
	return nil
}

func (l *Leapfrog) Energy(p dynamo.Particles) float64 { return l.Field.Energy(p) }
