// Package physics provides the disk-galaxy model.
//
// Two pieces make up the model:
//
//   - [DiskGalaxy]: samples the initial particle distribution
//   - [CentralMass]: the softened point-mass field particles orbit in
//
// The generator is reproducible: the same [Source] seed produces
// bit-identical particles.
//
//	disk := physics.NewDiskGalaxy()
//	particles, err := disk.Generate(3000, physics.NewSource(42))
//
// Only the central mass attracts particles; there is no pairwise gravity.
package physics
