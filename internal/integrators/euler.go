package integrators

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/physics"
)

// minChunk is the smallest slice of particles handed to one worker.
const minChunk = 1024

// Euler advances particles through the central field: velocity first, then
// position with the updated velocity. It does not clamp dt.
type Euler struct {
	Field   *physics.CentralMass
	Damping float64 // fraction of velocity removed per second, 0 disables
	Workers int     // <= 1 runs serially
}

func NewEuler(field *physics.CentralMass) *Euler {
	return &Euler{Field: field, Workers: 1}
}

func (e *Euler) Step(p dynamo.Particles, dt float32) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	if dt == 0 {
		return nil
	}

	keep := dampFactor(e.Damping, dt)
	dynamo.ParallelFor(len(p), workers(e.Workers), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			q := &p[i]
			a := e.Field.Acceleration(q.Position)
			q.Velocity = q.Velocity.Add(a.Mul(dt)).Mul(keep)
			q.Position = q.Position.Add(q.Velocity.Mul(dt))
		}
	})
	return nil
}

func checkDt(dt float32) error {
	if dt < 0 || math.IsNaN(float64(dt)) {
		return dynamo.ErrNegativeDt
	}
	return nil
}

func dampFactor(damping float64, dt float32) float32 {
	return float32(1 - damping*float64(dt))
}

func workers(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (e *Euler) Energy(p dynamo.Particles) float64 { return e.Field.Energy(p) }
