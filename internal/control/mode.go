package control

import (
	"fmt"
	"math"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// Mode selects a row of the gain schedule.
type Mode int

const (
	ModeTracking Mode = iota
	ModeTurning
)

func (m Mode) String() string {
	switch m {
	case ModeTracking:
		return "tracking"
	case ModeTurning:
		return "turning"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Gains is one row of the schedule. MaxRudder is the saturation limit in
// radians for that mode.
type Gains struct {
	Kp        float64 `json:"kp"`
	Ki        float64 `json:"ki"`
	Kd        float64 `json:"kd"`
	MaxRudder float64 `json:"max_rudder"`
}

// TurnScaling derives turning gains from the tracking row.
type TurnScaling struct {
	Kp float64
	Ki float64
	Kd float64
}

// DefaultTurnScaling softens the proportional term, drops the integral and
// stiffens damping through a turn.
var DefaultTurnScaling = TurnScaling{Kp: 0.7, Ki: 0, Kd: 1.2}

const (
	DefaultMaxRudderTracking = math.Pi / 12
	DefaultMaxRudderTurning  = math.Pi / 6
)

// Schedule is the two-state gain table.
type Schedule struct {
	Tracking Gains
	Turning  Gains
}

// NewSchedule builds the table from base gains, a turn scaling and the
// per-mode rudder limits.
func NewSchedule(base Gains, scale TurnScaling, turningMaxRudder float64) Schedule {
	return Schedule{
		Tracking: base,
		Turning: Gains{
			Kp:        base.Kp * scale.Kp,
			Ki:        base.Ki * scale.Ki,
			Kd:        base.Kd * scale.Kd,
			MaxRudder: turningMaxRudder,
		},
	}
}

// DefaultSchedule uses the reference gains Kp=2, Ki=0.005, Kd=4.
func DefaultSchedule() Schedule {
	return NewSchedule(
		Gains{Kp: 2.0, Ki: 0.005, Kd: 4.0, MaxRudder: DefaultMaxRudderTracking},
		DefaultTurnScaling,
		DefaultMaxRudderTurning,
	)
}

func (s Schedule) For(m Mode) Gains {
	if m == ModeTurning {
		return s.Turning
	}
	return s.Tracking
}

func (s Schedule) Validate() error {
	for _, m := range []Mode{ModeTracking, ModeTurning} {
		g := s.For(m)
		if !(g.MaxRudder > 0) || math.IsInf(g.MaxRudder, 0) {
			return fmt.Errorf("%w: %s max rudder %v", dynamo.ErrInvalidParameter, m, g.MaxRudder)
		}
		for _, v := range []float64{g.Kp, g.Ki, g.Kd} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s gains %+v", dynamo.ErrInvalidParameter, m, g)
			}
		}
	}
	return nil
}
