package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/shipsim/internal/control"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/guidance"
	"github.com/san-kum/shipsim/internal/models"
)

// Simulator closes the loop between a Tracker and a Vessel along a path.
// It can be driven one Step at a time or to completion with Run.
type Simulator struct {
	path    dynamo.Path
	vessel  *models.Vessel
	tracker *guidance.Tracker
	cfg     Config

	initial   models.VesselState
	cursor    int
	steps     int
	mode      control.Mode
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *slog.Logger
}

func New(path dynamo.Path, vessel *models.Vessel, tracker *guidance.Tracker, cfg Config) (*Simulator, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if vessel == nil || tracker == nil {
		return nil, fmt.Errorf("%w: vessel and tracker are required", dynamo.ErrInvalidParameter)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		path:    path,
		vessel:  vessel,
		tracker: tracker,
		cfg:     cfg,
		initial: vessel.State,
		log:     slog.New(slog.DiscardHandler),
	}, nil
}

func (s *Simulator) SetLogger(l *slog.Logger) { s.log = l }

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Path() dynamo.Path          { return s.path }
func (s *Simulator) Vessel() *models.Vessel     { return s.vessel }
func (s *Simulator) Tracker() *guidance.Tracker { return s.tracker }
func (s *Simulator) Config() Config             { return s.cfg }
func (s *Simulator) Cursor() int                { return s.cursor }
func (s *Simulator) Time() float64              { return float64(s.steps) * s.cfg.Dt }

// Done reports whether the cursor has moved past the last usable waypoint.
func (s *Simulator) Done() bool { return s.cursor > s.path.LastUsable() }

// Reset restores the initial vessel state and clears controller memory.
func (s *Simulator) Reset() {
	s.vessel.State = s.initial
	s.tracker.Reset()
	s.cursor, s.steps, s.mode = 0, 0, control.ModeTracking
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Snapshot describes the current state without stepping. Rudder is zero.
func (s *Simulator) Snapshot() dynamo.Sample {
	st := s.vessel.State
	idx := min(s.cursor, s.path.LastUsable())
	a, b := s.path[idx], s.path[idx+1]
	pathAngle, _ := dynamo.Bearing(a, b)
	return dynamo.Sample{
		Time:           s.Time(),
		X:              st.X,
		Y:              st.Y,
		Heading:        st.Psi,
		YawRate:        st.R,
		DesiredHeading: st.Psi,
		CrossTrack:     guidance.CrossTrack(dynamo.Point{X: st.X, Y: st.Y}, a, pathAngle),
		Target:         idx,
	}
}

// Step runs one guidance, control and vessel update and advances the
// waypoint cursor. It returns dynamo.ErrPathExhausted once Done.
func (s *Simulator) Step() (dynamo.Sample, error) {
	if s.Done() {
		return dynamo.Sample{}, dynamo.ErrPathExhausted
	}

	dt := s.cfg.Dt
	pose := s.vessel.State.Pose()

	idx, err := s.tracker.FindTarget(s.cursor, s.path, pose)
	if err != nil {
		return dynamo.Sample{}, err
	}
	next := idx + 1

	cmd, err := s.tracker.ComputeControl(s.path[idx], s.path[next], pose, dt)
	if err != nil {
		return dynamo.Sample{}, err
	}
	if err := s.vessel.Update(cmd.Rudder, dt); err != nil {
		return dynamo.Sample{}, err
	}
	s.steps++

	if cmd.Mode != s.mode {
		s.log.Debug("mode change", "from", s.mode, "to", cmd.Mode, "t", s.Time(), "target", idx)
		s.mode = cmd.Mode
	}
	if cmd.Degenerate {
		s.log.Warn("degenerate path segment", "target", idx, "path_angle", cmd.PathAngle)
	}

	st := s.vessel.State
	if !(dynamo.State{st.X, st.Y, st.Psi, st.R}).IsValid() {
		return dynamo.Sample{}, dynamo.ErrInvalidState
	}

	sample := dynamo.Sample{
		Time:           s.Time(),
		X:              st.X,
		Y:              st.Y,
		Heading:        st.Psi,
		YawRate:        st.R,
		Rudder:         cmd.Rudder,
		DesiredHeading: cmd.DesiredHeading,
		CrossTrack:     cmd.CrossTrack,
		Target:         idx,
		Turning:        cmd.Mode == control.ModeTurning,
	}

	radius := s.cfg.TrackRadius
	if cmd.Mode == control.ModeTurning {
		radius = s.cfg.TurnRadius
	}
	after := st.Pose()
	s.cursor = idx
	if after.Point().Dist(s.path[idx]) < radius && s.tracker.IsPointForward(after, s.path[next]) {
		s.cursor = next
		s.log.Debug("waypoint reached", "index", idx, "t", sample.Time)
	}

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnStep(sample)
	}
	return sample, nil
}

// Run steps until the path is exhausted, the duration cap is hit or ctx is
// canceled. The first sample is the initial state with zero rudder.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	maxSteps := int(math.Round(s.cfg.Duration / s.cfg.Dt))
	result := &Result{
		Samples: make([]dynamo.Sample, 0, min(maxSteps, 1<<16)+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	result.Samples = append(result.Samples, s.Snapshot())

	for s.steps < maxSteps {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		sample, err := s.Step()
		if errors.Is(err, dynamo.ErrPathExhausted) {
			result.Completed = true
			break
		}
		if err != nil {
			s.collect(result)
			return result, &dynamo.SimulationError{Step: s.steps, Time: s.Time(), Wrapped: err}
		}
		result.Samples = append(result.Samples, sample)
	}
	if s.Done() {
		result.Completed = true
	}

	s.collect(result)
	s.log.Info("run finished",
		"steps", result.Steps,
		"completed", result.Completed,
		"t", s.Time(),
		"x", result.Final.X,
		"y", result.Final.Y,
	)
	return result, nil
}

func (s *Simulator) collect(r *Result) {
	r.Steps = s.steps
	r.Final = s.vessel.State
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
