package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"golang.org/x/image/draw"
)

// ImageOptions controls ParticlesToImage.
type ImageOptions struct {
	Size       int     // output edge in pixels
	Extent     float64 // world half-width shown
	Downscale  int     // splat grid is Size/Downscale, then upscaled
	Gain       float64 // brightness added per particle
	Background colorful.Color
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{Size: 1024, Extent: 10, Downscale: 2, Gain: 0.35}
}

// ParticlesToImage splats particles additively onto a small grid, maps the
// accumulated light through 1-exp(-x) and upscales the grid bilinearly.
func ParticlesToImage(p dynamo.Particles, opts ImageOptions) (*image.RGBA, error) {
	if opts.Size <= 0 || opts.Extent <= 0 {
		return nil, dynamo.BoundsError("size/extent", float64(opts.Size), "> 0")
	}
	down := max(opts.Downscale, 1)
	low := max(opts.Size/down, 1)

	acc := make([][3]float64, low*low)
	scale := float64(low) / (2 * opts.Extent)
	for i := range p {
		x, y := float64(p[i].Position.X()), float64(p[i].Position.Y())
		px := int(math.Floor((x + opts.Extent) * scale))
		py := int(math.Floor((opts.Extent - y) * scale))
		if px < 0 || py < 0 || px >= low || py >= low {
			continue
		}
		cell := &acc[py*low+px]
		for c := 0; c < 3; c++ {
			cell[c] += float64(p[i].Color[c]) * opts.Gain
		}
	}

	bg := [3]float64{opts.Background.R, opts.Background.G, opts.Background.B}
	small := image.NewRGBA(image.Rect(0, 0, low, low))
	for i, cell := range acc {
		var px [3]uint8
		for c := 0; c < 3; c++ {
			v := bg[c] + (1-bg[c])*(1-math.Exp(-cell[c]))
			px[c] = uint8(math.Round(math.Max(0, math.Min(v, 1)) * 255))
		}
		small.SetRGBA(i%low, i/low, color.RGBA{R: px[0], G: px[1], B: px[2], A: 255})
	}

	if low == opts.Size {
		return small, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out, nil
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
