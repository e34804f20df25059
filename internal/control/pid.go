package control

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/shipsim/internal/dynamo"
)

const (
	DefaultMaxIntegral      = 0.1
	DefaultIntegralGate     = math.Pi / 6
	DefaultDerivativeWeight = 0.3
)

// PIDState is the memory of a heading PID between calls.
type PIDState struct {
	Integral  float64 `json:"integral"`
	PrevError float64 `json:"prev_error"`
}

// HeadingPID turns a heading error into a rudder angle. It holds only
// configuration; the running integral and previous error live in a
// PIDState owned by the caller.
type HeadingPID struct {
	MaxIntegral      float64
	IntegralGate     float64
	DerivativeWeight float64
}

func NewHeadingPID() HeadingPID {
	return HeadingPID{
		MaxIntegral:      DefaultMaxIntegral,
		IntegralGate:     DefaultIntegralGate,
		DerivativeWeight: DefaultDerivativeWeight,
	}
}

func (p HeadingPID) Validate() error {
	if p.MaxIntegral < 0 || math.IsNaN(p.MaxIntegral) {
		return fmt.Errorf("%w: max integral %v", dynamo.ErrInvalidParameter, p.MaxIntegral)
	}
	if p.IntegralGate < 0 || math.IsNaN(p.IntegralGate) {
		return fmt.Errorf("%w: integral gate %v", dynamo.ErrInvalidParameter, p.IntegralGate)
	}
	return nil
}

// Update computes the saturated rudder for heading error e (radians). The
// integral only accumulates while tracking with |e| under the gate and is
// zeroed otherwise. st is left untouched when dt is rejected.
func (p HeadingPID) Update(st *PIDState, e, dt float64, mode Mode, g Gains) (float64, error) {
	if err := dynamo.CheckTimestep(dt); err != nil {
		return 0, err
	}

	if mode == ModeTracking && math.Abs(e) < p.IntegralGate {
		st.Integral = lo.Clamp(st.Integral+e*dt, -p.MaxIntegral, p.MaxIntegral)
	} else {
		st.Integral = 0
	}

	derivative := p.DerivativeWeight * (e - st.PrevError) / dt
	st.PrevError = e

	u := g.Kp*e + g.Ki*st.Integral + g.Kd*derivative
	return Saturate(u, g.MaxRudder), nil
}

// Saturate clamps u to [-limit, limit].
func Saturate(u, limit float64) float64 {
	return lo.Clamp(u, -limit, limit)
}
