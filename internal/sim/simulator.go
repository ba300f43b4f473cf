package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/metrics"
)

// Simulator owns the particle collection for one run. It steps the
// collection with its integrator and pushes the result to an optional
// mirror after every step.
type Simulator struct {
	particles  dynamo.Particles
	integrator dynamo.Integrator
	mirror     dynamo.Mirror
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	pool       *SnapshotPool

	maxDt float64
	time  float64
	steps int
}

func New(particles dynamo.Particles, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		particles:  particles,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		pool:       NewSnapshotPool(len(particles)),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetMirror attaches the write-only copy that receives the state after
// every step.
func (s *Simulator) SetMirror(m dynamo.Mirror) { s.mirror = m }

// SetMaxDt caps the step Advance takes. Zero or less disables the cap.
func (s *Simulator) SetMaxDt(maxDt float64) { s.maxDt = maxDt }

func (s *Simulator) Particles() dynamo.Particles { return s.particles }
func (s *Simulator) Time() float64               { return s.time }
func (s *Simulator) Steps() int                  { return s.steps }

// Reset swaps in a new collection and rewinds the clock. Metrics are reset
// as well.
func (s *Simulator) Reset(particles dynamo.Particles) {
	s.particles = particles
	s.time = 0
	s.steps = 0
	if s.pool.Size() != len(particles) {
		s.pool = NewSnapshotPool(len(particles))
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Advance runs one frame: the elapsed wall time is clamped to the max dt,
// the collection is stepped and then uploaded. It returns the dt used.
func (s *Simulator) Advance(elapsed float64) (float64, error) {
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 0, &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: dynamo.ErrNegativeDt}
	}
	dt := elapsed
	if s.maxDt > 0 && dt > s.maxDt {
		dt = s.maxDt
	}
	if err := s.step(dt); err != nil {
		return 0, err
	}
	return dt, nil
}

func (s *Simulator) step(dt float64) error {
	if err := s.integrator.Step(s.particles, float32(dt)); err != nil {
		return &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
	}
	s.time += dt
	s.steps++

	for _, m := range s.metrics {
		m.Observe(s.particles, s.time)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.particles, s.time)
	}

	if s.mirror != nil {
		if err := s.mirror.Upload(s.particles); err != nil {
			return &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
		}
	}
	return nil
}

// Run steps the collection cfg.Steps times with a fixed dt, sampling the
// mean radius and energy along the way. Cancellation is checked between
// steps; a cancelled run returns the partial result with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	samples := cfg.Steps/every + 2
	result := &Result{
		Times:      make([]float64, 0, samples),
		MeanRadius: make([]float64, 0, samples),
		Energy:     make([]float64, 0, samples),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.particles, s.time)
	}
	s.sample(result)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.step(cfg.Dt); err != nil {
			s.collect(result)
			return result, err
		}
		result.StepsTaken++

		if cfg.ValidateState && !s.particles.IsValid() {
			s.collect(result)
			return result, &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: dynamo.ErrInvalidState}
		}

		if (i+1)%every == 0 || i == cfg.Steps-1 {
			s.sample(result)
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", cfg.Steps)
	}
	return nil
}

func (s *Simulator) sample(r *Result) {
	r.Times = append(r.Times, s.time)
	r.MeanRadius = append(r.MeanRadius, metrics.MeanPlanarRadius(s.particles))
	r.Energy = append(r.Energy, s.computeEnergy())
}

func (s *Simulator) collect(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) computeEnergy() float64 {
	if ec, ok := s.integrator.(EnergyComputer); ok {
		return ec.Energy(s.particles)
	}
	return 0
}

// Snapshot copies the current collection into a pooled buffer. Hand it back
// with Release once done.
func (s *Simulator) Snapshot() dynamo.Particles {
	return s.pool.GetAndCopy(s.particles)
}

func (s *Simulator) Release(p dynamo.Particles) {
	s.pool.Put(p)
}
