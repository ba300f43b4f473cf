package config

import "sort"

var Presets = map[string]func() *Config{
	"baseline": DefaultConfig,
	"dense": func() *Config {
		c := DefaultConfig()
		c.Particles = 20000
		c.Workers = 4
		c.Render.PointSize = 3.0
		return c
	},
	"wide": func() *Config {
		c := DefaultConfig()
		c.Disk.Radius = 14.0
		c.Disk.VelocityScale = 3.0
		c.Gravity.Mu = 40.0
		c.Render.Camera = [3]float64{0, 0, 30}
		return c
	},
	"thick": func() *Config {
		c := DefaultConfig()
		c.Disk.Thickness = 1.0
		c.Render.Camera = [3]float64{0, -12, 14}
		return c
	},
	"damped": func() *Config {
		c := DefaultConfig()
		c.Gravity.Damping = 0.001
		return c
	},
	"leapfrog": func() *Config {
		c := DefaultConfig()
		c.Integrator = "leapfrog"
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
