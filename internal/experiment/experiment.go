// Package experiment assembles a runnable simulation from a config.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/guidance"
	"github.com/san-kum/shipsim/internal/models"
	"github.com/san-kum/shipsim/internal/route"
	"github.com/san-kum/shipsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	path      dynamo.Path
	simulator *sim.Simulator
}

// New builds the route, vessel, tracker and simulator described by cfg and
// attaches the default metrics. cfg is cloned.
func New(cfg *config.Config) (*Experiment, error) {
	return NewWithRegistry(cfg, NewRegistry())
}

func NewWithRegistry(cfg *config.Config, reg *Registry) (*Experiment, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path, err := BuildRoute(cfg.Route, reg)
	if err != nil {
		return nil, err
	}

	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	vessel, err := models.NewVessel(cfg.VesselParams(), cfg.InitialState(path))
	if err != nil {
		return nil, err
	}
	if integ != nil {
		vessel.WithIntegrator(integ)
	}

	params, err := cfg.GuidanceParams()
	if err != nil {
		return nil, err
	}
	tracker, err := guidance.NewTracker(params)
	if err != nil {
		return nil, err
	}

	s, err := sim.New(path, vessel, tracker, cfg.SimConfig())
	if err != nil {
		return nil, err
	}
	for _, m := range reg.DefaultMetrics() {
		s.AddMetric(m)
	}

	return &Experiment{cfg: cfg, path: path, simulator: s}, nil
}

// BuildRoute resolves waypoints, then file, then shape, and resamples the
// result at rc.Spacing when it is positive.
func BuildRoute(rc config.RouteConfig, reg *Registry) (dynamo.Path, error) {
	var (
		path dynamo.Path
		err  error
	)
	switch {
	case len(rc.Waypoints) > 0:
		path = append(dynamo.Path(nil), rc.Waypoints...)
	case rc.File != "":
		opts := route.DefaultCSVOptions()
		if rc.XColumn != "" {
			opts.XColumn = rc.XColumn
		}
		if rc.YColumn != "" {
			opts.YColumn = rc.YColumn
		}
		if rc.Sampling > 0 {
			opts.Sampling = rc.Sampling
		}
		path, err = route.LoadCSVFile(rc.File, opts)
	default:
		path, err = reg.GetRoute(rc.Shape)
	}
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	if rc.Spacing > 0 {
		return route.Resample(path, rc.Spacing)
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

func (e *Experiment) SetLogger(l *slog.Logger) {
	e.simulator.SetLogger(l.With("run", e.cfg.Name))
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Path() dynamo.Path { return e.path }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
