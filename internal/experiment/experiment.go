package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/logging"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/physics"
	"github.com/san-kum/galaxysim/internal/sim"
)

// Experiment turns a validated configuration into ready-to-run simulators.
type Experiment struct {
	cfg       *config.Config
	seed      int64
	disk      *physics.DiskGalaxy
	field     *physics.CentralMass
	simulator *sim.Simulator
	logger    *log.Logger
}

func New(cfg *config.Config, logger *log.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	disk, err := cfg.BuildDisk()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Experiment{
		cfg:    cfg,
		seed:   cfg.ResolveSeed(),
		disk:   disk,
		field:  cfg.BuildField(),
		logger: logger,
	}, nil
}

func (e *Experiment) Config() *config.Config      { return e.cfg }
func (e *Experiment) Seed() int64                 { return e.seed }
func (e *Experiment) Field() *physics.CentralMass { return e.field }
func (e *Experiment) Disk() *physics.DiskGalaxy   { return e.disk }
func (e *Experiment) Simulator() *sim.Simulator   { return e.simulator }

// Generate draws a fresh disk for the experiment's seed.
func (e *Experiment) Generate() (dynamo.Particles, error) {
	return e.disk.Generate(e.cfg.Particles, physics.NewSource(e.seed))
}

// Build returns an independent simulator seeded with seed, carrying the
// standard metric set. It satisfies sim.Factory.
func (e *Experiment) Build(seed int64) (*sim.Simulator, error) {
	particles, err := e.disk.Generate(e.cfg.Particles, physics.NewSource(seed))
	if err != nil {
		return nil, err
	}
	integ, err := e.cfg.BuildIntegrator()
	if err != nil {
		return nil, err
	}
	s := sim.New(particles, integ)
	s.SetMaxDt(e.cfg.MaxDt)
	for _, m := range metrics.Standard(e.field) {
		s.AddMetric(m)
	}
	return s, nil
}

func (e *Experiment) Setup() error {
	s, err := e.Build(e.seed)
	if err != nil {
		return err
	}
	e.simulator = s
	e.logger.Debug("experiment ready",
		"particles", e.cfg.Particles,
		"seed", e.seed,
		"integrator", e.cfg.Integrator,
	)
	return nil
}

func (e *Experiment) Run(ctx context.Context, simCfg sim.Config) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, simCfg)
}

// Ensemble runs n copies over consecutive seeds starting at the
// experiment's own seed.
func (e *Experiment) Ensemble(ctx context.Context, n int, simCfg sim.Config) ([]*sim.Result, error) {
	return sim.NewEnsemble(e.Build, n, e.seed).Run(ctx, simCfg)
}
