package models

import (
	"fmt"
	"math"

	"github.com/san-kum/shipsim/internal/dynamo"
)

const (
	DefaultTimeConstant = 2.0
	DefaultRudderGain   = 1.0
	DefaultSpeed        = 4.0
)

// VesselParams are the first-order Nomoto steering coefficients.
type VesselParams struct {
	T float64 // time constant, s
	K float64 // rudder to yaw-rate gain, 1/s
}

func DefaultVesselParams() VesselParams {
	return VesselParams{T: DefaultTimeConstant, K: DefaultRudderGain}
}

func (p VesselParams) Validate() error {
	if !(p.T > 0) || math.IsInf(p.T, 0) {
		return fmt.Errorf("%w: time constant T=%v", dynamo.ErrInvalidParameter, p.T)
	}
	if math.IsNaN(p.K) || math.IsInf(p.K, 0) {
		return fmt.Errorf("%w: rudder gain K=%v", dynamo.ErrInvalidParameter, p.K)
	}
	return nil
}

// VesselState is the kinematic state. Psi accumulates without wrapping.
type VesselState struct {
	X   float64
	Y   float64
	Psi float64
	R   float64
	U   float64
}

func (s VesselState) Pose() dynamo.Pose {
	return dynamo.Pose{X: s.X, Y: s.Y, Heading: s.Psi}
}

// Vessel integrates the Nomoto response to a rudder command. With no
// integrator set it applies the sequential update: yaw rate first, then
// heading from the new yaw rate, then position from the new heading.
type Vessel struct {
	Params VesselParams
	State  VesselState

	integ   dynamo.Integrator
	elapsed float64
}

func NewVessel(params VesselParams, initial VesselState) (*Vessel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Vessel{Params: params, State: initial}, nil
}

// WithIntegrator switches Update to a generic ODE scheme over Derive.
func (v *Vessel) WithIntegrator(integ dynamo.Integrator) *Vessel {
	v.integ = integ
	return v
}

// Update advances the vessel by dt under rudder angle delta (radians). The
// rudder is applied as given; saturation belongs to the controller.
func (v *Vessel) Update(delta, dt float64) error {
	if err := dynamo.CheckTimestep(dt); err != nil {
		return err
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: rudder %v", dynamo.ErrInvalidState, delta)
	}

	if v.integ != nil {
		next := v.integ.Step(v, v.vector(), dynamo.Control{delta}, v.elapsed, dt)
		v.State.X, v.State.Y, v.State.Psi, v.State.R = next[0], next[1], next[2], next[3]
		v.elapsed += dt
		return nil
	}

	s := &v.State
	rDot := (-s.R + v.Params.K*delta) / v.Params.T
	s.R += rDot * dt
	s.Psi += s.R * dt
	s.X += s.U * math.Cos(s.Psi) * dt
	s.Y += s.U * math.Sin(s.Psi) * dt
	v.elapsed += dt
	return nil
}

func (v *Vessel) vector() dynamo.State {
	return dynamo.State{v.State.X, v.State.Y, v.State.Psi, v.State.R}
}

func (v *Vessel) StateDim() int   { return 4 }
func (v *Vessel) ControlDim() int { return 1 }

// Derive returns d/dt of (x, y, psi, r) at constant forward speed.
func (v *Vessel) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	delta := 0.0
	if len(u) > 0 {
		delta = u[0]
	}
	psi, r := x[2], x[3]
	return dynamo.State{
		v.State.U * math.Cos(psi),
		v.State.U * math.Sin(psi),
		r,
		(-r + v.Params.K*delta) / v.Params.T,
	}
}

func (v *Vessel) GetParams() map[string]float64 {
	return map[string]float64{
		"T": v.Params.T,
		"K": v.Params.K,
		"U": v.State.U,
	}
}

func (v *Vessel) SetParam(name string, value float64) error {
	switch name {
	case "T":
		if !(value > 0) {
			return fmt.Errorf("%w: T=%v", dynamo.ErrInvalidParameter, value)
		}
		v.Params.T = value
	case "K":
		v.Params.K = value
	case "U":
		v.State.U = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return nil
}
