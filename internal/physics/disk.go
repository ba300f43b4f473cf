package physics

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/dynamo"
)

// Source supplies the random draws consumed by the generator. *rand.Rand
// from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// NewSource returns a seeded PCG source. The same seed always yields the
// same sequence of draws.
func NewSource(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// DiskGalaxy samples a thin exponential disk with tangential orbital
// velocities and a radial color gradient.
type DiskGalaxy struct {
	Radius         float64 // Rmax, hard clamp on the sampled radius
	Thickness      float64 // standard deviation of the Z offset
	VelocityScale  float64
	SpeedSoftening float64 // added to r inside the speed's square root
	Epsilon        float64 // lower guard on u before ln(1-u)
	Mass           float64
	Inner          colorful.Color
	Outer          colorful.Color
}

// NewDiskGalaxy returns a disk with radius 8, thickness 0.2, velocity scale
// 2, magenta-ish inner stars and golden outer stars.
func NewDiskGalaxy() *DiskGalaxy {
	return &DiskGalaxy{
		Radius:         8.0,
		Thickness:      0.2,
		VelocityScale:  2.0,
		SpeedSoftening: 0.2,
		Epsilon:        1e-4,
		Mass:           1.0,
		Inner:          colorful.Color{R: 0.8, G: 0.6, B: 1.0},
		Outer:          colorful.Color{R: 1.0, G: 0.8, B: 0.2},
	}
}

func (d *DiskGalaxy) Validate() error {
	switch {
	case !(d.Radius > 0):
		return dynamo.BoundsError("radius", d.Radius, "> 0")
	case !(d.Thickness >= 0):
		return dynamo.BoundsError("thickness", d.Thickness, ">= 0")
	case !(d.SpeedSoftening > 0):
		return dynamo.BoundsError("speed_softening", d.SpeedSoftening, "> 0")
	case !(d.Epsilon > 0 && d.Epsilon < 1):
		return dynamo.BoundsError("epsilon", d.Epsilon, "in (0, 1)")
	case math.IsNaN(d.VelocityScale) || math.IsInf(d.VelocityScale, 0):
		return dynamo.BoundsError("velocity_scale", d.VelocityScale, "finite")
	case math.IsNaN(d.Mass) || math.IsInf(d.Mass, 0):
		return dynamo.BoundsError("mass", d.Mass, "finite")
	}
	for _, c := range []colorful.Color{d.Inner, d.Outer} {
		if !c.IsValid() {
			return dynamo.BoundsError("color", c.R, "components in [0, 1]")
		}
	}
	return nil
}

// RadiusAt maps a uniform draw to a radius with an exponential profile,
// clamped to Radius.
func (d *DiskGalaxy) RadiusAt(u float64) float64 {
	return math.Min(-d.Radius*math.Log(1-math.Max(u, d.Epsilon)), d.Radius)
}

// OrbitalSpeed falls off as 1/sqrt(r), softened near the center.
func (d *DiskGalaxy) OrbitalSpeed(r float64) float64 {
	return d.VelocityScale / math.Sqrt(r+d.SpeedSoftening)
}

// ColorAt blends linearly from Inner at the center to Outer at Radius.
func (d *DiskGalaxy) ColorAt(r float64) mgl32.Vec3 {
	t := clamp(r/d.Radius, 0, 1)
	c := d.Inner.BlendRgb(d.Outer, t)
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}

// Generate draws count particles from src. Each particle consumes, in
// order, a uniform radius draw, a uniform angle draw and a normal Z draw.
func (d *DiskGalaxy) Generate(count int, src Source) (dynamo.Particles, error) {
	if count < 0 {
		return nil, dynamo.ErrNegativeCount
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	particles := make(dynamo.Particles, count)
	for i := range particles {
		particles[i] = d.sample(src)
	}
	return particles, nil
}

func (d *DiskGalaxy) sample(src Source) dynamo.Particle {
	r := d.RadiusAt(src.Float64())
	a := src.Float64() * 2 * math.Pi
	z := src.NormFloat64() * d.Thickness

	x := r * math.Cos(a)
	y := r * math.Sin(a)

	var tx, ty float64
	if rxy := math.Hypot(x, y); rxy > 0 {
		tx, ty = -y/rxy, x/rxy
	}
	v := d.OrbitalSpeed(r)

	return dynamo.Particle{
		Position: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Color:    d.ColorAt(r),
		Velocity: mgl32.Vec3{float32(v * tx), float32(v * ty), 0},
		Mass:     float32(d.Mass),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
