package dynamo

import (
	"fmt"
	"math"
)

// Point is a position in the local planar frame, metres.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Pose is a planar position plus heading (radians, not normalized).
type Pose struct {
	X, Y    float64
	Heading float64
}

func (p Pose) Point() Point { return Point{X: p.X, Y: p.Y} }

// Path is an ordered, read-only sequence of waypoints.
type Path []Point

// Validate reports ErrDegeneratePath for paths shorter than two points and
// ErrInvalidState for non-finite coordinates.
func (p Path) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("%w: got %d points", ErrDegeneratePath, len(p))
	}
	for i, pt := range p {
		if isInf(pt.X) || isInf(pt.Y) {
			return fmt.Errorf("%w: waypoint %d", ErrInvalidState, i)
		}
	}
	return nil
}

// LastUsable is the highest index that still has a successor.
func (p Path) LastUsable() int { return len(p) - 2 }

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// System is an ODE dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Sample is one recorded control step of a run.
type Sample struct {
	Time           float64 `json:"time"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Heading        float64 `json:"heading"`
	YawRate        float64 `json:"yaw_rate"`
	Rudder         float64 `json:"rudder"`
	DesiredHeading float64 `json:"desired_heading"`
	CrossTrack     float64 `json:"cross_track"`
	Target         int     `json:"target"`
	Turning        bool    `json:"turning"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// Configurable exposes named parameters for live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
