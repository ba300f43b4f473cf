package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particles != 3000 {
		t.Errorf("expected 3000 particles, got %d", cfg.Particles)
	}
	if cfg.MaxDt != 0.033 {
		t.Errorf("expected max dt 0.033, got %f", cfg.MaxDt)
	}
	if cfg.Gravity.Damping != 0 {
		t.Error("damping should default to zero")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestBuildDisk_DefaultColors(t *testing.T) {
	disk, err := DefaultConfig().BuildDisk()
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"inner r", disk.Inner.R, 0.8},
		{"inner g", disk.Inner.G, 0.6},
		{"inner b", disk.Inner.B, 1.0},
		{"outer r", disk.Outer.R, 1.0},
		{"outer g", disk.Outer.G, 0.8},
		{"outer b", disk.Outer.B, 0.2},
	}
	for _, c := range checks {
		if d := c.got - c.want; d > 1e-9 || d < -1e-9 {
			t.Errorf("%s: got %f, want %f", c.name, c.got, c.want)
		}
	}
	if disk.Radius != DefaultRadius || disk.Thickness != DefaultThickness {
		t.Errorf("unexpected disk shape: %+v", disk)
	}
}

func TestBuildIntegrator(t *testing.T) {
	cfg := DefaultConfig()
	integ, err := cfg.BuildIntegrator()
	if err != nil {
		t.Fatal(err)
	}
	euler, ok := integ.(*integrators.Euler)
	if !ok {
		t.Fatalf("expected *integrators.Euler, got %T", integ)
	}
	if euler.Field.Mu != DefaultMu || euler.Field.Eps2 != DefaultEps2 {
		t.Errorf("field not wired: %+v", euler.Field)
	}

	cfg.Integrator = "leapfrog"
	integ, err = cfg.BuildIntegrator()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := integ.(*integrators.Leapfrog); !ok {
		t.Errorf("expected *integrators.Leapfrog, got %T", integ)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		target error
	}{
		{"negative particles", func(c *Config) { c.Particles = -5 }, dynamo.ErrNegativeCount},
		{"zero max dt", func(c *Config) { c.MaxDt = 0 }, dynamo.ErrParameterBounds},
		{"zero radius", func(c *Config) { c.Disk.Radius = 0 }, dynamo.ErrParameterBounds},
		{"zero eps2", func(c *Config) { c.Gravity.Eps2 = 0 }, dynamo.ErrParameterBounds},
		{"negative damping", func(c *Config) { c.Gravity.Damping = -1 }, dynamo.ErrParameterBounds},
		{"negative workers", func(c *Config) { c.Workers = -2 }, dynamo.ErrParameterBounds},
		{"bad color", func(c *Config) { c.Disk.InnerColor = "purple" }, nil},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk4" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galaxy.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Particles = 512
	cfg.Disk.OuterColor = "#ff0000"
	cfg.Integrator = "leapfrog"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "particles: 100\ngravity:\n  mu: 10\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 100 || cfg.Gravity.Mu != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Gravity.Eps2 != DefaultEps2 || cfg.Disk.Radius != DefaultRadius {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected bounds error, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 77
	if cfg.ResolveSeed() != 77 {
		t.Error("explicit seed not honored")
	}
	cfg.Seed = 0
	if cfg.ResolveSeed() == 0 {
		t.Error("expected clock seed")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("leapfrog")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Integrator != "leapfrog" {
		t.Errorf("expected leapfrog, got %s", cfg.Integrator)
	}

	cfg.Particles = 1
	if GetPreset("leapfrog").Particles == 1 {
		t.Error("preset mutation leaked")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Error("presets not sorted")
		}
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range Params() {
		if err := cfg.Set(name, 0.5); err != nil {
			t.Fatalf("Set(%q): %v", name, err)
		}
	}
	if cfg.Gravity.Eps2 != 0.5 || cfg.Disk.Thickness != 0.5 || cfg.MaxDt != 0.5 {
		t.Errorf("Set did not assign: %+v", cfg)
	}
	if err := cfg.Set("nope", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestLoadInto_KeepsPresetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("particles: 77\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetPreset("wide")
	if err := LoadInto(cfg, path); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if cfg.Particles != 77 {
		t.Errorf("expected 77 particles from the file, got %d", cfg.Particles)
	}
	if cfg.Disk.Radius != 14.0 || cfg.Gravity.Mu != 40.0 {
		t.Errorf("preset values lost: radius=%v mu=%v", cfg.Disk.Radius, cfg.Gravity.Mu)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadInto(GetPreset("wide"), bad); err == nil {
		t.Error("expected validation error")
	}
}
