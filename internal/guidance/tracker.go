package guidance

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/shipsim/internal/control"
	"github.com/san-kum/shipsim/internal/dynamo"
)

// State is everything a Tracker remembers between steps.
type State struct {
	PID control.PIDState

	PrevDesired     float64
	HavePrevDesired bool

	// GlobalDirection is the heading seen on the first ComputeControl call.
	// It is latched once and kept until Reset.
	GlobalDirection     float64
	HaveGlobalDirection bool

	// LastPathAngle is the most recent well-defined segment bearing, used
	// when target and next coincide.
	LastPathAngle float64
	HavePathAngle bool

	Mode control.Mode
}

func (s State) Turning() bool { return s.Mode == control.ModeTurning }

// Command is the output of one guidance step.
type Command struct {
	Rudder         float64
	DesiredHeading float64
	HeadingError   float64
	CrossTrack     float64
	PathAngle      float64
	Mode           control.Mode
	// Degenerate is set when target and next coincide and PathAngle came
	// from a fallback.
	Degenerate bool
}

// Tracker selects look-ahead targets along a path and steers toward them.
// A Tracker serves one vessel; it is not safe for concurrent use.
type Tracker struct {
	Params Params
	State  State
}

func NewTracker(p Params) (*Tracker, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{Params: p}, nil
}

// Reset clears all controller memory, including the latched global direction.
func (t *Tracker) Reset() {
	t.State = State{}
}

// IsPointForward reports whether p lies within ForwardAngle of the vessel's
// heading. A point on top of the vessel counts as forward.
func (t *Tracker) IsPointForward(pose dynamo.Pose, p dynamo.Point) bool {
	b, ok := dynamo.Bearing(pose.Point(), p)
	if !ok {
		return true
	}
	return math.Abs(dynamo.AngleDiff(b, pose.Heading)) < t.Params.ForwardAngle
}

// FindTarget scans at most SearchWindow points from start and returns the
// forward point whose outgoing segment best matches the direction of the
// segment at start. Ties keep the earliest index; start is returned when no
// point qualifies. start must not exceed len(path)-2.
func (t *Tracker) FindTarget(start int, path dynamo.Path, pose dynamo.Pose) (int, error) {
	if len(path) < 2 {
		return 0, fmt.Errorf("%w: got %d points", dynamo.ErrDegeneratePath, len(path))
	}
	if start < 0 || start > path.LastUsable() {
		return 0, fmt.Errorf("%w: index %d of %d", dynamo.ErrPathExhausted, start, len(path))
	}

	ref, ok := referenceDirection(path, start)
	if !ok {
		return start, nil
	}

	best, bestDiff := start, math.Inf(1)
	for idx := start; idx < len(path)-1 && idx-start < t.Params.SearchWindow; idx++ {
		if !t.IsPointForward(pose, path[idx]) {
			continue
		}
		dir, ok := dynamo.Bearing(path[idx], path[idx+1])
		if !ok {
			continue
		}
		if d := math.Abs(dynamo.AngleDiff(dir, ref)); d < bestDiff {
			best, bestDiff = idx, d
		}
	}
	return best, nil
}

// referenceDirection is the bearing of the first non-zero segment at or
// after start.
func referenceDirection(path dynamo.Path, start int) (float64, bool) {
	for i := start; i < len(path)-1; i++ {
		if b, ok := dynamo.Bearing(path[i], path[i+1]); ok {
			return b, true
		}
	}
	return 0, false
}

// ComputeControl runs one guidance and control step toward target, with
// next defining the local path direction. On error the state is unchanged.
func (t *Tracker) ComputeControl(target, next dynamo.Point, pose dynamo.Pose, dt float64) (Command, error) {
	if err := dynamo.CheckTimestep(dt); err != nil {
		return Command{}, err
	}
	if !(dynamo.State{pose.X, pose.Y, pose.Heading, target.X, target.Y, next.X, next.Y}).IsValid() {
		return Command{}, fmt.Errorf("%w: pose %+v target %+v next %+v", dynamo.ErrInvalidState, pose, target, next)
	}

	p := t.Params
	st := &t.State
	pos := pose.Point()

	if !st.HaveGlobalDirection {
		st.GlobalDirection, st.HaveGlobalDirection = pose.Heading, true
	}

	pathAngle, ok := dynamo.Bearing(target, next)
	degenerate := !ok
	if ok {
		st.LastPathAngle, st.HavePathAngle = pathAngle, true
	} else {
		pathAngle = t.fallbackPathAngle(pos, target, pose.Heading)
	}

	// On top of the target the vessel is on the track line.
	currentAngle, ok := dynamo.Bearing(pos, target)
	if !ok {
		currentAngle = pathAngle
	}

	mode := control.ModeTracking
	if math.Abs(dynamo.AngleDiff(pathAngle, currentAngle)) > p.TurnThreshold {
		mode = control.ModeTurning
	}

	crossTrack := CrossTrack(pos, target, pathAngle)

	var desired float64
	if mode == control.ModeTurning {
		dist := p.PreviewFactor * p.LookAheadMax
		preview := dynamo.Point{
			X: target.X + dist*math.Cos(pathAngle),
			Y: target.Y + dist*math.Sin(pathAngle),
		}
		if desired, ok = dynamo.Bearing(pos, preview); !ok {
			desired = pathAngle
		}
	} else {
		// positive cross-track is left of the path; steer back toward it
		desired = pathAngle - p.CrossTrackGain*math.Atan2(crossTrack, p.LookAheadMin)
	}

	if st.HavePrevDesired {
		limit := p.MaxYawRate * dt
		change := lo.Clamp(dynamo.AngleDiff(desired, st.PrevDesired), -limit, limit)
		desired = dynamo.NormalizeAngle(st.PrevDesired + change)
	}
	st.PrevDesired, st.HavePrevDesired = desired, true

	headingErr := dynamo.AngleDiff(desired, pose.Heading)
	rudder, err := p.PID.Update(&st.PID, headingErr, dt, mode, p.Schedule().For(mode))
	if err != nil {
		return Command{}, err
	}
	st.Mode = mode

	return Command{
		Rudder:         rudder,
		DesiredHeading: desired,
		HeadingError:   headingErr,
		CrossTrack:     crossTrack,
		PathAngle:      pathAngle,
		Mode:           mode,
		Degenerate:     degenerate,
	}, nil
}

func (t *Tracker) fallbackPathAngle(pos, target dynamo.Point, heading float64) float64 {
	if t.State.HavePathAngle {
		return t.State.LastPathAngle
	}
	if b, ok := dynamo.Bearing(pos, target); ok {
		return b
	}
	return heading
}

// CrossTrack is the signed lateral offset of pos from the line through
// target with direction pathAngle. Positive is to the left of travel.
func CrossTrack(pos, target dynamo.Point, pathAngle float64) float64 {
	dx, dy := pos.X-target.X, pos.Y-target.Y
	return -math.Sin(pathAngle)*dx + math.Cos(pathAngle)*dy
}
