package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/san-kum/galaxysim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles      = 3000
	DefaultRadius         = 8.0
	DefaultThickness      = 0.2
	DefaultVelocityScale  = 2.0
	DefaultSpeedSoftening = 0.2
	DefaultEpsilon        = 1e-4
	DefaultMass           = 1.0
	DefaultInnerColor     = "#cc99ff"
	DefaultOuterColor     = "#ffcc33"
	DefaultMu             = 25.0
	DefaultEps2           = 0.04
	DefaultDamping        = 0.0
	DefaultIntegrator     = "euler"
	DefaultWorkers        = 1
	DefaultMaxDt          = 0.033
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultTitle          = "N-Body Baseline"
	DefaultPointSize      = 6.0
	DefaultFov            = 45.0
	DefaultNear           = 0.1
	DefaultFar            = 100.0
	DefaultCameraZ        = 18.0
	DefaultBackground     = "#000000"
	DefaultShaderDir      = "shaders"
)

type Config struct {
	Seed       int64         `yaml:"seed"`
	Particles  int           `yaml:"particles"`
	Disk       DiskConfig    `yaml:"disk"`
	Gravity    GravityConfig `yaml:"gravity"`
	Integrator string        `yaml:"integrator"`
	Workers    int           `yaml:"workers"`
	MaxDt      float64       `yaml:"max_dt"`
	Window     WindowConfig  `yaml:"window"`
	Render     RenderConfig  `yaml:"render"`
}

type DiskConfig struct {
	Radius         float64 `yaml:"radius"`
	Thickness      float64 `yaml:"thickness"`
	VelocityScale  float64 `yaml:"velocity_scale"`
	SpeedSoftening float64 `yaml:"speed_softening"`
	Epsilon        float64 `yaml:"epsilon"`
	Mass           float64 `yaml:"mass"`
	InnerColor     string  `yaml:"inner_color"`
	OuterColor     string  `yaml:"outer_color"`
}

type GravityConfig struct {
	Mu      float64 `yaml:"mu"`
	Eps2    float64 `yaml:"eps2"`
	Damping float64 `yaml:"damping"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type RenderConfig struct {
	PointSize  float64    `yaml:"point_size"`
	Fov        float64    `yaml:"fov"`
	Near       float64    `yaml:"near"`
	Far        float64    `yaml:"far"`
	Camera     [3]float64 `yaml:"camera,flow"`
	Background string     `yaml:"background"`
	ShaderDir  string     `yaml:"shader_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles: DefaultParticles,
		Disk: DiskConfig{
			Radius:         DefaultRadius,
			Thickness:      DefaultThickness,
			VelocityScale:  DefaultVelocityScale,
			SpeedSoftening: DefaultSpeedSoftening,
			Epsilon:        DefaultEpsilon,
			Mass:           DefaultMass,
			InnerColor:     DefaultInnerColor,
			OuterColor:     DefaultOuterColor,
		},
		Gravity: GravityConfig{
			Mu:      DefaultMu,
			Eps2:    DefaultEps2,
			Damping: DefaultDamping,
		},
		Integrator: DefaultIntegrator,
		Workers:    DefaultWorkers,
		MaxDt:      DefaultMaxDt,
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  DefaultTitle,
			VSync:  true,
		},
		Render: RenderConfig{
			PointSize:  DefaultPointSize,
			Fov:        DefaultFov,
			Near:       DefaultNear,
			Far:        DefaultFar,
			Camera:     [3]float64{0, 0, DefaultCameraZ},
			Background: DefaultBackground,
			ShaderDir:  DefaultShaderDir,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the YAML file at path onto base, so keys missing from
// the file keep base's values, then validates the result.
func LoadInto(base *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := base.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; presets hand out clones so callers can mutate.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	var errs []error
	if c.Particles < 0 {
		errs = append(errs, dynamo.ErrNegativeCount)
	}
	if !(c.MaxDt > 0) {
		errs = append(errs, dynamo.BoundsError("max_dt", c.MaxDt, "> 0"))
	}
	if c.Workers < 0 {
		errs = append(errs, dynamo.BoundsError("workers", float64(c.Workers), ">= 0"))
	}
	if _, err := c.BuildDisk(); err != nil {
		errs = append(errs, err)
	}
	if err := c.BuildField().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := integrators.New(c.Integrator, c.BuildField(), integrators.Options{}); err != nil {
		errs = append(errs, err)
	}
	if c.Gravity.Damping < 0 {
		errs = append(errs, dynamo.BoundsError("damping", c.Gravity.Damping, ">= 0"))
	}
	if _, err := colorful.Hex(c.Render.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, dynamo.BoundsError("window", float64(c.Window.Width), "positive width and height"))
	}
	return errors.Join(errs...)
}

// BuildDisk returns the generator described by the disk section.
func (c *Config) BuildDisk() (*physics.DiskGalaxy, error) {
	inner, err := colorful.Hex(c.Disk.InnerColor)
	if err != nil {
		return nil, fmt.Errorf("inner_color: %w", err)
	}
	outer, err := colorful.Hex(c.Disk.OuterColor)
	if err != nil {
		return nil, fmt.Errorf("outer_color: %w", err)
	}
	d := &physics.DiskGalaxy{
		Radius:         c.Disk.Radius,
		Thickness:      c.Disk.Thickness,
		VelocityScale:  c.Disk.VelocityScale,
		SpeedSoftening: c.Disk.SpeedSoftening,
		Epsilon:        c.Disk.Epsilon,
		Mass:           c.Disk.Mass,
		Inner:          inner,
		Outer:          outer,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Config) BuildField() *physics.CentralMass {
	return &physics.CentralMass{Mu: c.Gravity.Mu, Eps2: c.Gravity.Eps2}
}

func (c *Config) BuildIntegrator() (dynamo.Integrator, error) {
	field := c.BuildField()
	if err := field.Validate(); err != nil {
		return nil, err
	}
	return integrators.New(c.Integrator, field, integrators.Options{
		Damping: c.Gravity.Damping,
		Workers: c.Workers,
	})
}

// ResolveSeed returns the configured seed, or a clock-derived one when the
// seed is zero.
func (c *Config) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func (c *Config) CameraPosition() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.Render.Camera[0]), float32(c.Render.Camera[1]), float32(c.Render.Camera[2])}
}

func (c *Config) BackgroundColor() colorful.Color {
	bg, err := colorful.Hex(c.Render.Background)
	if err != nil {
		return colorful.Color{}
	}
	return bg
}

// Params lists the names accepted by Set.
func Params() []string {
	return []string{"damping", "eps2", "max_dt", "mass", "mu", "radius", "speed_softening", "thickness", "velocity_scale"}
}

// Set assigns a numeric parameter by name, as used by sweeps and scenario
// overrides.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "damping":
		c.Gravity.Damping = v
	case "eps2":
		c.Gravity.Eps2 = v
	case "max_dt":
		c.MaxDt = v
	case "mass":
		c.Disk.Mass = v
	case "mu":
		c.Gravity.Mu = v
	case "radius":
		c.Disk.Radius = v
	case "speed_softening":
		c.Disk.SpeedSoftening = v
	case "thickness":
		c.Disk.Thickness = v
	case "velocity_scale":
		c.Disk.VelocityScale = v
	default:
		return fmt.Errorf("unknown parameter: %s (available: %v)", name, Params())
	}
	return nil
}
