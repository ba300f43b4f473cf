package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projector maps world points onto canvas sub-pixels with a tilted,
// spinning perspective view of the disk plane.
type Projector struct {
	Tilt     float64 // rotation about X, 0 looks straight down the disk axis
	Spin     float64 // rotation about Z
	Zoom     float64
	Extent   float64 // world half-width that fits the shorter canvas side at zoom 1
	Distance float64 // eye distance along the view axis
}

func NewProjector(extent float64) *Projector {
	return &Projector{Zoom: 1, Extent: extent, Distance: 4 * extent}
}

func (p *Projector) TiltBy(a float64) {
	p.Tilt = math.Max(-math.Pi/2, math.Min(p.Tilt+a, math.Pi/2))
}

func (p *Projector) SpinBy(a float64) { p.Spin += a }
func (p *Projector) ZoomIn()          { p.Zoom = math.Min(10, p.Zoom*1.2) }
func (p *Projector) ZoomOut()         { p.Zoom = math.Max(0.1, p.Zoom/1.2) }

func (p *Projector) rotation() mgl32.Mat3 {
	return mgl32.Rotate3DX(float32(-p.Tilt)).Mul3(mgl32.Rotate3DZ(float32(p.Spin)))
}

// Project returns the sub-pixel for pos on a sw x sh canvas and whether it
// is visible.
func (p *Projector) Project(pos mgl32.Vec3, sw, sh int) (int, int, bool) {
	return p.project(p.rotation(), pos, sw, sh)
}

func (p *Projector) project(rot mgl32.Mat3, pos mgl32.Vec3, sw, sh int) (int, int, bool) {
	r := rot.Mul3x1(pos)
	depth := p.Distance - float64(r.Z())
	if depth <= 0 {
		return 0, 0, false
	}
	persp := p.Distance / depth

	minDim := float64(min(sw, sh))
	scale := minDim / (2 * p.Extent) * p.Zoom * persp
	x := int(math.Floor(float64(r.X())*scale)) + sw/2
	y := int(math.Floor(-float64(r.Y())*scale)) + sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}
