package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/physics"
)

// Options configure any integrator built through New.
type Options struct {
	Damping float64
	Workers int
}

var registry = map[string]func(*physics.CentralMass, Options) dynamo.Integrator{
	"euler": func(f *physics.CentralMass, o Options) dynamo.Integrator {
		return &Euler{Field: f, Damping: o.Damping, Workers: o.Workers}
	},
	"leapfrog": func(f *physics.CentralMass, o Options) dynamo.Integrator {
		return &Leapfrog{Field: f, Damping: o.Damping, Workers: o.Workers}
	},
}

// New returns the integrator registered under name.
func New(name string, field *physics.CentralMass, opts Options) (dynamo.Integrator, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return ctor(field, opts), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
