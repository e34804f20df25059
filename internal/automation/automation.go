// Package automation runs batches of experiments: scripted fleets,
// parameter sweeps and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/experiment"
	"github.com/san-kum/shipsim/internal/sim"
)

// Scenario is a set of vessels simulated together.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"vessels"`
}

// ScenarioStep starts from a preset and overlays Config, which has the
// layout of a config file.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// StepResult pairs a vessel's effective config with its run.
type StepResult struct {
	Name   string
	Config *config.Config
	Path   dynamo.Path
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no vessels", path)
	}
	return &scenario, nil
}

// StepConfig resolves the config for one vessel.
func (s ScenarioStep) StepConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if s.Name != "" {
		cfg.Name = s.Name
	}
	return cfg, cfg.Validate()
}

// RunScenario builds every vessel and runs them concurrently.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log *slog.Logger) ([]StepResult, error) {
	cfgs := make([]*config.Config, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.StepConfig()
		if err != nil {
			return nil, fmt.Errorf("vessel %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}
	log.Info("running scenario", "name", scenario.Name, "vessels", len(cfgs))
	return runAll(ctx, cfgs, registry, log)
}

func runAll(ctx context.Context, cfgs []*config.Config, registry *experiment.Registry, log *slog.Logger) ([]StepResult, error) {
	sims := make([]*sim.Simulator, len(cfgs))
	out := make([]StepResult, len(cfgs))
	for i, cfg := range cfgs {
		exp, err := experiment.NewWithRegistry(cfg, registry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Name, err)
		}
		exp.SetLogger(log)
		sims[i] = exp.GetSimulator()
		out[i] = StepResult{Name: cfg.Name, Config: exp.Config(), Path: exp.Path()}
	}

	results, err := sim.RunFleet(ctx, sims)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		out[i].Result = r
	}
	return out, nil
}

// ParameterSweep varies one tunable gain or vessel coefficient over
// NumSteps evenly spaced values.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Completed  bool
	Steps      int
	Metrics    map[string]float64
}

func (sw *ParameterSweep) values() []float64 {
	if sw.NumSteps <= 1 {
		return []float64{sw.ParamMin}
	}
	step := (sw.ParamMax - sw.ParamMin) / float64(sw.NumSteps-1)
	vals := make([]float64, sw.NumSteps)
	for i := range vals {
		vals[i] = sw.ParamMin + float64(i)*step
	}
	return vals
}

// RunSweep applies each value through the tracker or vessel SetParam and
// runs the resulting experiments concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log *slog.Logger) ([]SweepResult, error) {
	vals := sweep.values()
	sims := make([]*sim.Simulator, len(vals))
	for i, v := range vals {
		exp, err := experiment.NewWithRegistry(sweep.Base, registry)
		if err != nil {
			return nil, err
		}
		s := exp.GetSimulator()
		if err := setParam(s, sweep.ParamName, v); err != nil {
			return nil, fmt.Errorf("%s=%v: %w", sweep.ParamName, v, err)
		}
		sims[i] = s
	}

	results, err := sim.RunFleet(ctx, sims)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(vals))
	for i, r := range results {
		out[i] = SweepResult{ParamValue: vals[i], Completed: r.Completed, Steps: r.Steps, Metrics: r.Metrics}
		log.Debug("sweep point", sweep.ParamName, vals[i], "completed", r.Completed, "steps", r.Steps)
	}
	return out, nil
}

// setParam tries the tracker first, then the vessel.
func setParam(s *sim.Simulator, name string, value float64) error {
	targets := []dynamo.Configurable{s.Tracker(), s.Vessel()}
	for _, t := range targets {
		if _, ok := t.GetParams()[name]; ok {
			return t.SetParam(name, value)
		}
	}
	return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
}

// MonteCarloConfig perturbs the start pose of Base uniformly within
// ±Offset metres and ±HeadingDeg degrees.
type MonteCarloConfig struct {
	Base       *config.Config
	Offset     float64
	HeadingDeg float64
	NumTrials  int
	Seed       int64
	// Tolerance is the largest cross-track error (m) a converged run may
	// show over its final TailSamples samples.
	Tolerance   float64
	TailSamples int
}

// MonteCarloResult reports the start offset from the first waypoint and
// the absolute start heading of one trial.
type MonteCarloResult struct {
	TrialID    int
	StartX     float64
	StartY     float64
	HeadingDeg float64
	Completed  bool
	Converged  bool
	Steps      int
	Metrics    map[string]float64
}

// RunMonteCarlo executes NumTrials perturbed runs. A zero Seed draws from
// the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, log *slog.Logger) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	perturb := func(span float64) float64 { return (rng.Float64() - 0.5) * 2 * span }

	// perturb around the heading the base run would actually start with
	path, err := experiment.BuildRoute(cfg.Base.Route, registry)
	if err != nil {
		return nil, err
	}
	heading := cfg.Base.StartHeadingDeg(path)

	cfgs := make([]*config.Config, cfg.NumTrials)
	for i := range cfgs {
		c := cfg.Base.Clone()
		c.Name = fmt.Sprintf("%s_mc%03d", cfg.Base.Name, i)
		c.Vessel.StartX += perturb(cfg.Offset)
		c.Vessel.StartY += perturb(cfg.Offset)
		h := heading + perturb(cfg.HeadingDeg)
		c.Vessel.HeadingDeg = &h
		cfgs[i] = c
	}

	runs, err := runAll(ctx, cfgs, registry, log)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, run := range runs {
		r := run.Result
		results[i] = MonteCarloResult{
			TrialID:    i,
			StartX:     run.Config.Vessel.StartX,
			StartY:     run.Config.Vessel.StartY,
			HeadingDeg: *run.Config.Vessel.HeadingDeg,
			Completed:  r.Completed,
			Converged:  r.Completed && converged(r.Samples, cfg.Tolerance, cfg.TailSamples),
			Steps:      r.Steps,
			Metrics:    r.Metrics,
		}
	}
	completed, convergedCount := MonteCarloStats(results)
	log.Info("monte carlo finished", "trials", len(results), "completed", completed, "converged", convergedCount)
	return results, nil
}

func converged(samples []dynamo.Sample, tolerance float64, tail int) bool {
	if tolerance <= 0 {
		return true
	}
	if tail <= 0 || tail > len(samples) {
		tail = len(samples)
	}
	for _, s := range samples[len(samples)-tail:] {
		if s.CrossTrack > tolerance || s.CrossTrack < -tolerance {
			return false
		}
	}
	return true
}

// MonteCarloStats counts completed and converged trials.
func MonteCarloStats(results []MonteCarloResult) (completed int, convergedCount int) {
	for _, r := range results {
		if r.Completed {
			completed++
		}
		if r.Converged {
			convergedCount++
		}
	}
	return
}
