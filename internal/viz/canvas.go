package viz

import (
	"math/bits"
	"strings"
)

const brailleBase = 0x2800

// dotBits maps a sub-pixel (row, col) inside a cell to its braille dot.
// Dots 1-3 and 4-6 run down the two columns, dots 7 and 8 sit below them.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille plot of Width x Height terminal cells, each cell
// holding 2x4 dots. Hits counts how many points landed in each cell so the
// view can report how crowded the core is.
type Canvas struct {
	Width, Height int

	dots []uint8
	hits []uint16
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		dots:   make([]uint8, w*h),
		hits:   make([]uint16, w*h),
	}
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= c.SubWidth() || y >= c.SubHeight() {
		return 0, false
	}
	return (y/4)*c.Width + x/2, true
}

// Set lights the dot at (x, y) and counts it as a point for MaxHits;
// points off the canvas are dropped.
func (c *Canvas) Set(x, y int) {
	if i, ok := c.light(x, y); ok && c.hits[i] < ^uint16(0) {
		c.hits[i]++
	}
}

func (c *Canvas) light(x, y int) (int, bool) {
	i, ok := c.cell(x, y)
	if ok {
		c.dots[i] |= dotBits[y%4][x%2]
	}
	return i, ok
}

// Cell returns the braille rune at cell (col, row).
func (c *Canvas) Cell(col, row int) rune {
	return rune(brailleBase + int(c.dots[row*c.Width+col]))
}

// Lit counts the lit dots.
func (c *Canvas) Lit() int {
	n := 0
	for _, d := range c.dots {
		n += bits.OnesCount8(d)
	}
	return n
}

// MaxHits is the largest number of points that fell into one cell.
func (c *Canvas) MaxHits() int {
	m := uint16(0)
	for _, h := range c.hits {
		m = max(m, h)
	}
	return int(m)
}

func (c *Canvas) Clear() {
	clear(c.dots)
	clear(c.hits)
}

// DrawLine draws a line using Bresenham's algorithm. Line dots are
// decoration and do not count toward MaxHits.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, sx := absInt(x1-x0), sign(x1-x0)
	dy, sy := -absInt(y1-y0), sign(y1-y0)
	err := dx + dy

	for {
		c.light(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (c.Width*3 + 1))
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(c.Cell(col, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
