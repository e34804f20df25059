package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/integrators"
	"github.com/san-kum/shipsim/internal/metrics"
	"github.com/san-kum/shipsim/internal/route"
)

// Registry resolves the names used in config files.
type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	// nomoto is the vessel's own sequential update, no ODE scheme.
	r.integrators["nomoto"] = func() dynamo.Integrator { return nil }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) GetRoute(name string) (dynamo.Path, error) {
	return route.Shape(name)
}

func (r *Registry) ListRoutes() []string {
	return route.ShapeNames()
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Default()
}
