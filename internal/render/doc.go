// Package render holds the GPU-independent half of the point-sprite view:
// the orbit camera and the shader sources.
package render
