package metrics

import "github.com/san-kum/galaxysim/internal/dynamo"

// AngularMomentum reports the z component of the total angular momentum.
// A central force conserves it exactly; the Euler step does not.
type AngularMomentum struct {
	current float64
}

func NewAngularMomentum() *AngularMomentum { return &AngularMomentum{} }

func (a *AngularMomentum) Name() string { return "angular_momentum" }

func (a *AngularMomentum) Observe(p dynamo.Particles, t float64) {
	a.current = AngularMomentumZ(p)
}

func (a *AngularMomentum) Value() float64 { return a.current }
func (a *AngularMomentum) Reset()         { a.current = 0 }

func AngularMomentumZ(p dynamo.Particles) float64 {
	var lz float64
	for i := range p {
		pos, vel := p[i].Position, p[i].Velocity
		lz += float64(p[i].Mass) * (float64(pos.X())*float64(vel.Y()) - float64(pos.Y())*float64(vel.X()))
	}
	return lz
}
