package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/physics"
)

// driftIntegrator moves every particle along +X at unit speed.
type driftIntegrator struct {
	dts []float32
	err error
}

func (d *driftIntegrator) Step(p dynamo.Particles, dt float32) error {
	if d.err != nil {
		return d.err
	}
	d.dts = append(d.dts, dt)
	for i := range p {
		p[i].Position[0] += dt
	}
	return nil
}

type recordingMirror struct {
	uploads int
	lastX   float32
	err     error
}

func (m *recordingMirror) Upload(p dynamo.Particles) error {
	m.uploads++
	if len(p) > 0 {
		m.lastX = p[0].Position[0]
	}
	return m.err
}

type countingObserver struct{ calls int }

func (c *countingObserver) OnStep(p dynamo.Particles, t float64) { c.calls++ }

func testParticles(n int) dynamo.Particles {
	p := make(dynamo.Particles, n)
	for i := range p {
		p[i] = dynamo.Particle{Position: mgl32.Vec3{1, 0, 0}, Mass: 1}
	}
	return p
}

func TestAdvance_ClampsAndUploads(t *testing.T) {
	integ := &driftIntegrator{}
	mirror := &recordingMirror{}

	sim := New(testParticles(4), integ)
	sim.SetMirror(mirror)
	sim.SetMaxDt(0.033)

	dt, err := sim.Advance(0.5)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if dt != 0.033 {
		t.Errorf("expected clamped dt 0.033, got %f", dt)
	}

	dt, err = sim.Advance(0.01)
	if err != nil {
		t.Fatal(err)
	}
	if dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", dt)
	}

	if mirror.uploads != 2 {
		t.Errorf("expected 2 uploads, got %d", mirror.uploads)
	}
	// the mirror sees the post-step state
	if mirror.lastX != sim.Particles()[0].Position[0] {
		t.Errorf("mirror saw %f, collection has %f", mirror.lastX, sim.Particles()[0].Position[0])
	}
	if math.Abs(sim.Time()-0.043) > 1e-12 || sim.Steps() != 2 {
		t.Errorf("unexpected clock: t=%f steps=%d", sim.Time(), sim.Steps())
	}
}

func TestAdvance_NoClamp(t *testing.T) {
	integ := &driftIntegrator{}
	sim := New(testParticles(1), integ)

	dt, err := sim.Advance(0.25)
	if err != nil {
		t.Fatal(err)
	}
	if dt != 0.25 {
		t.Errorf("expected unclamped dt, got %f", dt)
	}
}

func TestAdvance_Errors(t *testing.T) {
	sim := New(testParticles(1), &driftIntegrator{})
	if _, err := sim.Advance(-1); !errors.Is(err, dynamo.ErrNegativeDt) {
		t.Errorf("expected ErrNegativeDt, got %v", err)
	}

	boom := errors.New("boom")
	sim = New(testParticles(1), &driftIntegrator{err: boom})
	_, err := sim.Advance(0.01)
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped integrator error, got %v", err)
	}

	mirror := &recordingMirror{err: dynamo.ErrLengthChanged}
	sim = New(testParticles(1), &driftIntegrator{})
	sim.SetMirror(mirror)
	if _, err := sim.Advance(0.01); !errors.Is(err, dynamo.ErrLengthChanged) {
		t.Errorf("expected mirror error, got %v", err)
	}
}

func TestSimulatorRun(t *testing.T) {
	field := physics.NewCentralMass()
	particles, err := physics.NewDiskGalaxy().Generate(500, physics.NewSource(42))
	if err != nil {
		t.Fatal(err)
	}

	sim := New(particles, integrators.NewEuler(field))
	obs := &countingObserver{}
	sim.AddObserver(obs)
	for _, m := range metrics.Standard(field) {
		sim.AddMetric(m)
	}

	cfg := Config{Dt: 0.01, Steps: 100, SampleEvery: 10, ValidateState: true}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 11 || len(result.MeanRadius) != 11 || len(result.Energy) != 11 {
		t.Errorf("expected 11 samples, got %d/%d/%d", len(result.Times), len(result.MeanRadius), len(result.Energy))
	}
	if math.Abs(result.Times[10]-1.0) > 1e-9 {
		t.Errorf("expected final time 1.0, got %f", result.Times[10])
	}
	if obs.calls != 100 {
		t.Errorf("expected 100 observer calls, got %d", obs.calls)
	}
	if result.Energy[0] >= 0 {
		t.Errorf("expected bound disk, got energy %f", result.Energy[0])
	}
	for _, name := range []string{"mean_radius", "energy", "energy_drift", "angular_momentum", "radius_spread"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s not found in result", name)
		}
	}
	if r := result.Metrics["mean_radius"]; r <= 0 || r > 8 {
		t.Errorf("mean radius out of range: %f", r)
	}
}

func TestSimulatorRun_LastSampleAlwaysRecorded(t *testing.T) {
	sim := New(testParticles(2), &driftIntegrator{})
	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Steps: 7, SampleEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	// t=0, step 5, step 7
	if len(result.Times) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(result.Times))
	}
	if math.Abs(result.Times[2]-0.7) > 1e-9 {
		t.Errorf("expected last sample at 0.7, got %f", result.Times[2])
	}
	// no energy without a field
	if result.Energy[2] != 0 {
		t.Errorf("expected zero energy, got %f", result.Energy[2])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(testParticles(1), &driftIntegrator{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10}},
		{"negative dt", Config{Dt: -0.1, Steps: 10}},
		{"nan dt", Config{Dt: math.NaN(), Steps: 10}},
		{"negative steps", Config{Dt: 0.1, Steps: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorRun_Cancelled(t *testing.T) {
	sim := New(testParticles(1), &driftIntegrator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 0.1, Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestSimulatorRun_InvalidState(t *testing.T) {
	p := testParticles(1)
	p[0].Velocity[1] = float32(math.Inf(1))

	sim := New(p, integrators.NewEuler(physics.NewCentralMass()))
	_, err := sim.Run(context.Background(), Config{Dt: 0.01, Steps: 10, ValidateState: true})

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) || simErr.Step != 1 {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSimulatorReset(t *testing.T) {
	m := metrics.NewMeanRadius()
	sim := New(testParticles(3), &driftIntegrator{})
	sim.AddMetric(m)

	if _, err := sim.Advance(0.1); err != nil {
		t.Fatal(err)
	}
	sim.Reset(testParticles(5))

	if sim.Time() != 0 || sim.Steps() != 0 || len(sim.Particles()) != 5 {
		t.Errorf("reset incomplete: t=%f steps=%d n=%d", sim.Time(), sim.Steps(), len(sim.Particles()))
	}
	if m.Value() != 0 {
		t.Error("metric not reset")
	}
	if len(sim.Snapshot()) != 5 {
		t.Error("snapshot pool not resized")
	}
}

func TestSnapshot(t *testing.T) {
	sim := New(testParticles(3), &driftIntegrator{})
	snap := sim.Snapshot()

	if _, err := sim.Advance(1); err != nil {
		t.Fatal(err)
	}
	if snap[0].Position[0] != 1 {
		t.Errorf("snapshot aliased the collection: %f", snap[0].Position[0])
	}
	sim.Release(snap)
}
