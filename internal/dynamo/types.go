package dynamo

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one star of the disk. Position and Color must stay the first
// two fields: the renderer slices the collection's backing array by
// PositionOffset and ColorOffset.
type Particle struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Velocity mgl32.Vec3
	Mass     float32
}

const (
	// Stride is the size in bytes of one Particle in a packed collection.
	Stride = int(unsafe.Sizeof(Particle{}))
	// PositionOffset is the byte offset of Particle.Position.
	PositionOffset = int(unsafe.Offsetof(Particle{}.Position))
	// ColorOffset is the byte offset of Particle.Color.
	ColorOffset = int(unsafe.Offsetof(Particle{}.Color))
)

func (p Particle) IsValid() bool {
	for i := 0; i < 3; i++ {
		if !finite(p.Position[i]) || !finite(p.Velocity[i]) {
			return false
		}
	}
	return finite(p.Mass)
}

// PlanarRadius is the distance from the disk axis, ignoring Z.
func (p Particle) PlanarRadius() float64 {
	return math.Hypot(float64(p.Position[0]), float64(p.Position[1]))
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Particles is the simulation's particle collection. Its length is fixed
// for the lifetime of a run; index order only maps particles to GPU slots.
type Particles []Particle

func (p Particles) Clone() Particles {
	c := make(Particles, len(p))
	copy(c, p)
	return c
}

func (p Particles) IsValid() bool {
	for i := range p {
		if !p[i].IsValid() {
			return false
		}
	}
	return true
}

// Bytes returns the collection's backing array as raw bytes without copying.
// The slice aliases p and is only valid while p is neither resized nor
// collected.
func (p Particles) Bytes() []byte {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p)*Stride)
}

// Integrator advances every particle by dt in place.
type Integrator interface {
	Step(p Particles, dt float32) error
}

// Mirror receives the authoritative CPU state once per frame. It never
// feeds data back into the simulation.
type Mirror interface {
	Upload(p Particles) error
}

type Metric interface {
	Name() string
	Observe(p Particles, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(p Particles, t float64)
}
