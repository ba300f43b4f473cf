package gpu

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/san-kum/galaxysim/internal/dynamo"
)

// Attribute describes one float vec3 vertex input read from the packed
// particle array.
type Attribute struct {
	Index  uint32
	Size   int32
	Offset int
}

// ParticleAttributes binds location 0 to Position and location 1 to Color.
// Velocity and mass ride along in the buffer but are never read.
var ParticleAttributes = []Attribute{
	{Index: 0, Size: 3, Offset: dynamo.PositionOffset},
	{Index: 1, Size: 3, Offset: dynamo.ColorOffset},
}

// ParticleBuffer is the GPU mirror of a fixed-length collection.
type ParticleBuffer struct {
	VAO   uint32
	VBO   uint32
	count int
}

// NewParticleBuffer allocates a DYNAMIC_DRAW buffer sized for p and fills
// it with the initial state.
func NewParticleBuffer(p dynamo.Particles) *ParticleBuffer {
	b := &ParticleBuffer{count: len(p)}

	gl.GenVertexArrays(1, &b.VAO)
	gl.GenBuffers(1, &b.VBO)

	gl.BindVertexArray(b.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)

	data := p.Bytes()
	ptr := gl.Ptr(nil)
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data), ptr, gl.DYNAMIC_DRAW)

	for _, a := range ParticleAttributes {
		gl.VertexAttribPointerWithOffset(a.Index, a.Size, gl.FLOAT, false, int32(dynamo.Stride), uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Index)
	}

	gl.BindVertexArray(0)
	return b
}

func (b *ParticleBuffer) Count() int { return b.count }

// Upload overwrites the whole buffer with p. The length must match the one
// the buffer was created with.
func (b *ParticleBuffer) Upload(p dynamo.Particles) error {
	if len(p) != b.count {
		return dynamo.ErrLengthChanged
	}
	if b.count == 0 {
		return nil
	}
	data := p.Bytes()
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data), gl.Ptr(data))
	return nil
}

func (b *ParticleBuffer) Delete() {
	if b.VBO != 0 {
		gl.DeleteBuffers(1, &b.VBO)
		b.VBO = 0
	}
	if b.VAO != 0 {
		gl.DeleteVertexArrays(1, &b.VAO)
		b.VAO = 0
	}
}
