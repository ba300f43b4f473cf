package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/galaxysim/internal/dynamo"
)

// CentralMass is a fixed point mass at the origin. Particles feel it but
// never each other.
type CentralMass struct {
	Mu   float64 // G * M of the central mass
	Eps2 float64 // softening squared, added to r² before the power
}

func NewCentralMass() *CentralMass {
	return &CentralMass{Mu: 25.0, Eps2: 0.04}
}

func (c *CentralMass) Validate() error {
	if math.IsNaN(c.Mu) || math.IsInf(c.Mu, 0) || c.Mu < 0 {
		return dynamo.BoundsError("mu", c.Mu, ">= 0")
	}
	if !(c.Eps2 > 0) || math.IsInf(c.Eps2, 0) {
		return dynamo.BoundsError("eps2", c.Eps2, "> 0")
	}
	return nil
}

// Acceleration at p, always pointing at the origin:
// a = -mu * p / (|p|² + eps2)^1.5
func (c *CentralMass) Acceleration(p mgl32.Vec3) mgl32.Vec3 {
	r2 := float64(p.Dot(p)) + c.Eps2
	r3 := math.Pow(r2, 1.5)
	return p.Mul(float32(-c.Mu / r3))
}

// Potential per unit mass at p, softened the same way as the force.
func (c *CentralMass) Potential(p mgl32.Vec3) float64 {
	return -c.Mu / math.Sqrt(float64(p.Dot(p))+c.Eps2)
}

// CircularSpeed is the speed of a circular orbit at planar radius r in the
// softened field.
func (c *CentralMass) CircularSpeed(r float64) float64 {
	return math.Sqrt(c.Mu*r*r) / math.Pow(r*r+c.Eps2, 0.75)
}

// Energy is the total kinetic plus potential energy of p in this field.
func (c *CentralMass) Energy(p dynamo.Particles) float64 {
	var total float64
	for i := range p {
		m := float64(p[i].Mass)
		v2 := float64(p[i].Velocity.Dot(p[i].Velocity))
		total += 0.5*m*v2 + m*c.Potential(p[i].Position)
	}
	return total
}
