package sim

// FrameClock measures the wall time between frames from a monotonic
// seconds source such as glfw.GetTime.
type FrameClock struct {
	now  func() float64
	last float64
	fps  float64
}

func NewFrameClock(now func() float64) *FrameClock {
	return &FrameClock{now: now, last: now()}
}

// Tick returns the seconds since the previous tick, never negative.
func (c *FrameClock) Tick() float64 {
	t := c.now()
	elapsed := t - c.last
	c.last = t
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 0 {
		inst := 1 / elapsed
		if c.fps == 0 {
			c.fps = inst
		} else {
			c.fps += 0.05 * (inst - c.fps)
		}
	}
	return elapsed
}

// FPS is a smoothed frame rate.
func (c *FrameClock) FPS() float64 { return c.fps }
