package sim

import "github.com/san-kum/galaxysim/internal/dynamo"

// EnergyComputer is implemented by integrators that know their force field.
type EnergyComputer interface {
	Energy(p dynamo.Particles) float64
}

// Config drives a headless Run.
type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int // record the series every n steps, 0 means every step
	ValidateState bool
}

// Result holds the sampled series of a headless run. Times, MeanRadius and
// Energy always have the same length.
type Result struct {
	Times      []float64
	MeanRadius []float64
	Energy     []float64
	Metrics    map[string]float64
	StepsTaken int
}
