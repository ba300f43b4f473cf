package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed draws, cycling when exhausted.
type scriptedSource struct {
	uniform []float64
	normal  []float64
	ui, ni  int
}

func (s *scriptedSource) Float64() float64 {
	v := s.uniform[s.ui%len(s.uniform)]
	s.ui++
	return v
}

func (s *scriptedSource) NormFloat64() float64 {
	v := s.normal[s.ni%len(s.normal)]
	s.ni++
	return v
}

func TestRadialTransform_Median(t *testing.T) {
	disk := NewDiskGalaxy()
	src := &scriptedSource{uniform: []float64{0.5, 0.25}, normal: []float64{0}}

	p, err := disk.Generate(1, src)
	require.NoError(t, err)
	require.Len(t, p, 1)

	want := -8 * math.Log(0.5)
	assert.InDelta(t, 5.545, want, 1e-3)
	assert.InDelta(t, want, p[0].PlanarRadius(), 1e-4)

	// angle draw 0.25 puts the particle on +Y
	assert.InDelta(t, 0, p[0].Position.X(), 1e-4)
	assert.InDelta(t, want, p[0].Position.Y(), 1e-4)
	assert.Equal(t, float32(0), p[0].Position.Z())
}

func TestRadialTransform_Guards(t *testing.T) {
	disk := NewDiskGalaxy()

	// u below epsilon is lifted to epsilon
	assert.Equal(t, disk.RadiusAt(disk.Epsilon), disk.RadiusAt(0))
	assert.Greater(t, disk.RadiusAt(0), 0.0)

	// large u is clamped to the disk radius
	assert.Equal(t, disk.Radius, disk.RadiusAt(0.999999))
}

func TestGenerate_Properties(t *testing.T) {
	disk := NewDiskGalaxy()
	particles, err := disk.Generate(5000, NewSource(7))
	require.NoError(t, err)
	require.Len(t, particles, 5000)

	for i, p := range particles {
		r := p.PlanarRadius()
		require.GreaterOrEqual(t, r, 0.0, "particle %d", i)
		require.LessOrEqual(t, r, disk.Radius+1e-5, "particle %d", i)

		// color is the linear blend at t = r/Rmax
		tt := math.Min(r/disk.Radius, 1)
		for c, pair := range [][2]float64{
			{disk.Inner.R, disk.Outer.R},
			{disk.Inner.G, disk.Outer.G},
			{disk.Inner.B, disk.Outer.B},
		} {
			want := pair[0] + (pair[1]-pair[0])*tt
			require.InDelta(t, want, float64(p.Color[c]), 1e-4, "particle %d channel %d", i, c)
			require.GreaterOrEqual(t, p.Color[c], float32(0))
			require.LessOrEqual(t, p.Color[c], float32(1))
		}

		// velocity is tangential and in-plane
		if r > 1e-3 {
			radial := mgl32.Vec3{p.Position.X(), p.Position.Y(), 0}.Normalize()
			require.InDelta(t, 0, float64(p.Velocity.Dot(radial)), 1e-4, "particle %d", i)
			require.InDelta(t, disk.OrbitalSpeed(r), float64(p.Velocity.Len()), 1e-3, "particle %d", i)
		}
		require.Equal(t, float32(0), p.Velocity.Z())
		require.Equal(t, float32(1), p.Mass)
	}
}

func TestGenerate_RadialConcentration(t *testing.T) {
	disk := NewDiskGalaxy()
	particles, err := disk.Generate(4000, NewSource(3))
	require.NoError(t, err)

	inner, outer := 0, 0
	for _, p := range particles {
		if p.PlanarRadius() < disk.Radius/4 {
			inner++
		} else if p.PlanarRadius() > 3*disk.Radius/4 {
			outer++
		}
	}
	assert.Greater(t, inner, outer)
}

func TestGenerate_Deterministic(t *testing.T) {
	disk := NewDiskGalaxy()

	a, err := disk.Generate(256, NewSource(99))
	require.NoError(t, err)
	b, err := disk.Generate(256, NewSource(99))
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())

	c, err := disk.Generate(256, NewSource(100))
	require.NoError(t, err)
	assert.NotEqual(t, a.Bytes(), c.Bytes())
}

func TestGenerate_DrawOrder(t *testing.T) {
	disk := NewDiskGalaxy()
	src := &scriptedSource{uniform: []float64{0.1, 0.2, 0.3, 0.4}, normal: []float64{1, -1}}

	p, err := disk.Generate(2, src)
	require.NoError(t, err)
	assert.Equal(t, 4, src.ui)
	assert.Equal(t, 2, src.ni)

	assert.InDelta(t, disk.RadiusAt(0.1), p[0].PlanarRadius(), 1e-5)
	assert.InDelta(t, disk.RadiusAt(0.3), p[1].PlanarRadius(), 1e-5)
	assert.InDelta(t, 0.2, p[0].Position.Z(), 1e-6)
	assert.InDelta(t, -0.2, p[1].Position.Z(), 1e-6)
}

func TestGenerate_Zero(t *testing.T) {
	p, err := NewDiskGalaxy().Generate(0, NewSource(1))
	require.NoError(t, err)
	assert.Len(t, p, 0)
}

func TestGenerate_NegativeCount(t *testing.T) {
	_, err := NewDiskGalaxy().Generate(-1, NewSource(1))
	assert.ErrorIs(t, err, dynamo.ErrNegativeCount)
}

func TestDiskGalaxy_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *DiskGalaxy)
	}{
		{"zero radius", func(d *DiskGalaxy) { d.Radius = 0 }},
		{"nan radius", func(d *DiskGalaxy) { d.Radius = math.NaN() }},
		{"negative thickness", func(d *DiskGalaxy) { d.Thickness = -0.1 }},
		{"zero softening", func(d *DiskGalaxy) { d.SpeedSoftening = 0 }},
		{"epsilon one", func(d *DiskGalaxy) { d.Epsilon = 1 }},
		{"inf velocity", func(d *DiskGalaxy) { d.VelocityScale = math.Inf(1) }},
		{"bad color", func(d *DiskGalaxy) { d.Inner = colorful.Color{R: 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDiskGalaxy()
			tt.mutate(d)
			_, err := d.Generate(10, NewSource(1))
			assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
		})
	}

	assert.NoError(t, NewDiskGalaxy().Validate())
}

func TestCentralMass_Acceleration(t *testing.T) {
	c := NewCentralMass()

	a := c.Acceleration(mgl32.Vec3{1, 0, 0})
	want := -25.0 / math.Pow(1.04, 1.5)
	assert.InDelta(t, want, float64(a.X()), 1e-5)
	assert.Equal(t, float32(0), a.Y())

	// finite at the origin thanks to softening
	zero := c.Acceleration(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, zero)

	// points toward the origin everywhere
	p := mgl32.Vec3{-3, 2, 0.5}
	assert.Less(t, c.Acceleration(p).Dot(p), float32(0))
}

func TestCentralMass_Potential(t *testing.T) {
	c := NewCentralMass()
	assert.InDelta(t, -25/math.Sqrt(0.04), c.Potential(mgl32.Vec3{}), 1e-9)
	assert.Less(t, c.Potential(mgl32.Vec3{1, 0, 0}), c.Potential(mgl32.Vec3{2, 0, 0}))
}

func TestCentralMass_Validate(t *testing.T) {
	assert.NoError(t, NewCentralMass().Validate())
	assert.ErrorIs(t, (&CentralMass{Mu: 25, Eps2: 0}).Validate(), dynamo.ErrParameterBounds)
	assert.ErrorIs(t, (&CentralMass{Mu: -1, Eps2: 0.04}).Validate(), dynamo.ErrParameterBounds)
}

func BenchmarkGenerate(b *testing.B) {
	disk := NewDiskGalaxy()
	src := NewSource(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = disk.Generate(3000, src)
	}
}
