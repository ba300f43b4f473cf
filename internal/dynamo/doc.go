// Package dynamo provides the core types shared by the galaxy simulation.
//
// The package defines the particle representation and the contracts the
// rest of the simulation is built around:
//
//   - [Particle]: packed per-star record, laid out for direct GPU upload
//   - [Particles]: fixed-length collection, mutated in place every step
//   - [Integrator]: advances a collection by a time delta
//   - [Mirror]: write-only GPU copy refreshed once per frame
//   - [Metric]: scalar diagnostic observed after each step
//
// # Memory Layout
//
// The vertex shader reads position and color straight out of the
// collection's backing array:
//
//	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, dynamo.Stride, gl.PtrOffset(dynamo.PositionOffset))
//	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, dynamo.Stride, gl.PtrOffset(dynamo.ColorOffset))
//
// Reordering the fields of [Particle] breaks that contract.
//
// # Thread Safety
//
// A collection is owned by a single frame loop. [ParallelFor] may split
// per-particle work across goroutines because no particle reads another
// particle's state during a step.
package dynamo
