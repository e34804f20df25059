package guidance

import (
	"fmt"
	"math"

	"github.com/san-kum/shipsim/internal/control"
	"github.com/san-kum/shipsim/internal/dynamo"
)

const (
	DefaultMaxYawRate     = 0.15
	DefaultLookAheadMin   = 15.0
	DefaultLookAheadMax   = 30.0
	DefaultForwardAngle   = math.Pi / 2
	DefaultTurnThreshold  = math.Pi / 4
	DefaultPreviewFactor  = 1.5
	DefaultCrossTrackGain = 0.5
	DefaultSearchWindow   = 20
)

// Params configures a Tracker. Angles are radians, distances metres.
type Params struct {
	// Gains is the tracking row of the schedule, including its rudder limit.
	Gains            control.Gains
	TurnScaling      control.TurnScaling
	TurningMaxRudder float64
	PID              control.HeadingPID

	// MaxYawRate bounds the change of desired heading per second.
	MaxYawRate float64
	// LookAheadMin is used on straight legs, LookAheadMax sizes the preview
	// distance in turns.
	LookAheadMin  float64
	LookAheadMax  float64
	PreviewFactor float64
	// CrossTrackGain scales the atan cross-track correction.
	CrossTrackGain float64
	ForwardAngle   float64
	TurnThreshold  float64
	SearchWindow   int
}

func DefaultParams() Params {
	s := control.DefaultSchedule()
	return Params{
		Gains:            s.Tracking,
		TurnScaling:      control.DefaultTurnScaling,
		TurningMaxRudder: s.Turning.MaxRudder,
		PID:              control.NewHeadingPID(),
		MaxYawRate:       DefaultMaxYawRate,
		LookAheadMin:     DefaultLookAheadMin,
		LookAheadMax:     DefaultLookAheadMax,
		PreviewFactor:    DefaultPreviewFactor,
		CrossTrackGain:   DefaultCrossTrackGain,
		ForwardAngle:     DefaultForwardAngle,
		TurnThreshold:    DefaultTurnThreshold,
		SearchWindow:     DefaultSearchWindow,
	}
}

func (p Params) Schedule() control.Schedule {
	return control.NewSchedule(p.Gains, p.TurnScaling, p.TurningMaxRudder)
}

func (p Params) Validate() error {
	if err := p.Schedule().Validate(); err != nil {
		return err
	}
	if err := p.PID.Validate(); err != nil {
		return err
	}

	positive := map[string]float64{
		"max_yaw_rate":   p.MaxYawRate,
		"look_ahead_min": p.LookAheadMin,
		"look_ahead_max": p.LookAheadMax,
		"preview_factor": p.PreviewFactor,
		"forward_angle":  p.ForwardAngle,
		"turn_threshold": p.TurnThreshold,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", dynamo.ErrInvalidParameter, name, v)
		}
	}
	if p.LookAheadMax < p.LookAheadMin {
		return fmt.Errorf("%w: look_ahead_max %v below look_ahead_min %v",
			dynamo.ErrInvalidParameter, p.LookAheadMax, p.LookAheadMin)
	}
	if p.ForwardAngle > math.Pi {
		return fmt.Errorf("%w: forward_angle %v exceeds pi", dynamo.ErrInvalidParameter, p.ForwardAngle)
	}
	if p.SearchWindow < 1 {
		return fmt.Errorf("%w: search_window %d", dynamo.ErrInvalidParameter, p.SearchWindow)
	}
	if math.IsNaN(p.CrossTrackGain) {
		return fmt.Errorf("%w: cross_track_gain is NaN", dynamo.ErrInvalidParameter)
	}
	return nil
}
