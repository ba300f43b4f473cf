package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSpeed   = 0.005
	zoomStep     = 0.1
	maxElevation = 1.4
	minDistance  = 2.0
)

// Camera orbits a target on a sphere. Azimuth is measured in the XZ plane
// from +X, elevation from the XZ plane toward +Y.
type Camera struct {
	Target    mgl32.Vec3
	Distance  float64
	Azimuth   float64
	Elevation float64

	Fov    float32 // degrees
	Near   float32
	Far    float32
	Aspect float32
}

// NewCamera places the camera at eye looking at the origin.
func NewCamera(eye mgl32.Vec3, fov, near, far float32, width, height int) *Camera {
	c := &Camera{Fov: fov, Near: near, Far: far}
	c.SetViewport(width, height)
	c.LookFrom(eye)
	return c
}

// LookFrom moves the camera to eye, keeping the target.
func (c *Camera) LookFrom(eye mgl32.Vec3) {
	d := eye.Sub(c.Target)
	c.Distance = float64(d.Len())
	if c.Distance == 0 {
		c.Distance = minDistance
		return
	}
	c.Elevation = clamp(math.Asin(float64(d.Y())/c.Distance), -maxElevation, maxElevation)
	c.Azimuth = math.Atan2(float64(d.Z()), float64(d.X()))
}

func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Position is the eye in world space.
func (c *Camera) Position() mgl32.Vec3 {
	cosEl := math.Cos(c.Elevation)
	return c.Target.Add(mgl32.Vec3{
		float32(c.Distance * math.Cos(c.Azimuth) * cosEl),
		float32(c.Distance * math.Sin(c.Elevation)),
		float32(c.Distance * math.Sin(c.Azimuth) * cosEl),
	})
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// MVP is projection * view; the model matrix is the identity.
func (c *Camera) MVP() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Orbit rotates by a cursor delta in pixels.
func (c *Camera) Orbit(dx, dy float64) {
	c.Azimuth -= dx * orbitSpeed
	c.Elevation = clamp(c.Elevation-dy*orbitSpeed, -maxElevation, maxElevation)
}

// Zoom moves toward the target for positive steps, never closer than
// minDistance nor beyond the far plane.
func (c *Camera) Zoom(steps float64) {
	c.Distance *= math.Pow(1-zoomStep, steps)
	c.Distance = clamp(c.Distance, minDistance, 0.9*float64(c.Far))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
