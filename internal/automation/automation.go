package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/logging"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of headless runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is a single run in a scenario. Preset and Config are
// layered like the command line flags; Params are applied last.
type ScenarioStep struct {
	Name        string             `yaml:"name"`
	Preset      string             `yaml:"preset"`
	Config      string             `yaml:"config"`
	Seed        int64              `yaml:"seed"`
	Particles   int                `yaml:"particles"`
	Integrator  string             `yaml:"integrator"`
	Params      map[string]float64 `yaml:"params"`
	Dt          float64            `yaml:"dt"`
	Steps       int                `yaml:"steps"`
	SampleEvery int                `yaml:"sample_every"`
	Save        bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file. Config paths inside it
// are relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	for i, step := range scenario.Steps {
		if !(step.Dt > 0) || step.Steps <= 0 {
			return nil, fmt.Errorf("%s: step %d needs positive dt and steps", path, i+1)
		}
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

// BuildConfig resolves the step's configuration relative to dir.
func (s ScenarioStep) BuildConfig(dir string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		path := s.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := config.LoadInto(cfg, path); err != nil {
			return nil, err
		}
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Particles != 0 {
		cfg.Particles = s.Particles
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	for k, v := range s.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// StepResult is the outcome of one scenario step. RunID is empty unless
// the step was saved.
type StepResult struct {
	Name   string
	Seed   int64
	RunID  string
	Result *sim.Result
}

// RunScenario executes all steps in order, saving the ones marked save to
// st. It stops at the first failing step.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("scenario step", "n", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.BuildConfig(scenario.dir)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx, sim.Config{Dt: step.Dt, Steps: step.Steps, SampleEvery: step.SampleEvery, ValidateState: true})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Seed: exp.Seed(), Result: result}
		if step.Save && st != nil {
			sr.RunID, err = st.Save(storage.RunMetadata{
				Seed:       exp.Seed(),
				Integrator: cfg.Integrator,
				Dt:         step.Dt,
				Config:     cfg,
			}, result, exp.Simulator().Particles())
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs the same disk across a range of one parameter
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Dt        float64
	Steps     int
}

// SweepResult holds the end-of-run metrics for one parameter value
type SweepResult struct {
	ParamValue      float64
	MeanRadius      float64
	RadiusSpread    float64
	EnergyDrift     float64
	AngularMomentum float64
}

// RunSweep executes a parameter sweep. Every run uses the base seed so
// only the parameter differs between them.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value")
	}

	base := sweep.Base.Clone()
	base.Seed = base.ResolveSeed()

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		if err := cfg.Set(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		if err := exp.Setup(); err != nil {
			return results, err
		}

		result, err := exp.Run(ctx, sim.Config{Dt: sweep.Dt, Steps: sweep.Steps, SampleEvery: sweep.Steps})
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue:      paramVal,
			MeanRadius:      result.Metrics["mean_radius"],
			RadiusSpread:    result.Metrics["radius_spread"],
			EnergyDrift:     result.Metrics["energy_drift"],
			AngularMomentum: result.Metrics["angular_momentum"],
		})

		logger.Debug("sweep", "n", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}
	return results, nil
}
