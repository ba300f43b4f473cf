package gpu

import (
	"image"
	"image/color"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/render"
)

// Renderer draws a ParticleBuffer as additive point sprites.
type Renderer struct {
	program    *Program
	buffer     *ParticleBuffer
	PointSize  float32
	Background colorful.Color
}

func NewRenderer(src render.ShaderSources, buffer *ParticleBuffer, pointSize float32, bg colorful.Color) (*Renderer, error) {
	program, err := NewProgram(src.Vertex, src.Fragment)
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	gl.ClearColor(float32(bg.R), float32(bg.G), float32(bg.B), 1)

	return &Renderer{program: program, buffer: buffer, PointSize: pointSize, Background: bg}, nil
}

func (r *Renderer) Draw(cam *render.Camera) {
	gl.Clear(gl.COLOR_BUFFER_BIT)

	mvp := cam.MVP()
	eye := cam.Position()

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uMVP"), 1, false, &mvp[0])
	gl.Uniform3fv(r.program.Uniform("uCamPos"), 1, &eye[0])
	gl.Uniform1f(r.program.Uniform("uPointSize"), r.PointSize)

	gl.BindVertexArray(r.buffer.VAO)
	gl.DrawArrays(gl.POINTS, 0, int32(r.buffer.Count()))
	gl.BindVertexArray(0)
}

// Viewport resizes the GL viewport to the framebuffer.
func (r *Renderer) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ReadPixels grabs the back buffer. Rows come back bottom-up from GL and
// are flipped into image order.
func (r *Renderer) ReadPixels(width, height int) *image.RGBA {
	raw := make([]uint8, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(raw))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := raw[(height-1-y)*width*4 : (height-y)*width*4]
		copy(img.Pix[y*img.Stride:], src)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = color.Opaque.A
	}
	return img
}

func (r *Renderer) Delete() {
	r.program.Delete()
}
