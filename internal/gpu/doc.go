// Package gpu owns the OpenGL objects that mirror the particle collection:
// the vertex buffer, the point-sprite program and the draw call. Every
// function here needs a current GL 3.3 core context on the calling thread.
package gpu
