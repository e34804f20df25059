package guidance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/shipsim/internal/control"
	"github.com/san-kum/shipsim/internal/dynamo"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(DefaultParams())
	require.NoError(t, err)
	return tr
}

func straightPath(n int, spacing float64) dynamo.Path {
	p := make(dynamo.Path, n)
	for i := range p {
		p[i] = dynamo.Point{X: float64(i) * spacing}
	}
	return p
}

func TestIsPointForward(t *testing.T) {
	tr := newTracker(t)
	pose := dynamo.Pose{Heading: 0}

	tests := []struct {
		name string
		p    dynamo.Point
		want bool
	}{
		{"ahead", dynamo.Point{X: 10}, true},
		{"behind", dynamo.Point{X: -10}, false},
		{"abeam is not forward", dynamo.Point{Y: 10}, false},
		{"ahead and left", dynamo.Point{X: 10, Y: 9}, true},
		{"on top of vessel", dynamo.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.IsPointForward(pose, tt.p))
		})
	}
}

func TestFindTargetLastUsableIndex(t *testing.T) {
	tr := newTracker(t)
	path := straightPath(10, 5)

	idx, err := tr.FindTarget(path.LastUsable(), path, dynamo.Pose{X: 0, Heading: 0})
	require.NoError(t, err)
	assert.Equal(t, path.LastUsable(), idx)
}

func TestFindTargetSkipsPointsBehind(t *testing.T) {
	tr := newTracker(t)
	path := straightPath(30, 2)

	// vessel sits at x=11 heading east, points 0..5 are behind it
	idx, err := tr.FindTarget(0, path, dynamo.Pose{X: 11})
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
}

func TestFindTargetReturnsStartWhenNothingForward(t *testing.T) {
	tr := newTracker(t)
	path := straightPath(10, 2)

	idx, err := tr.FindTarget(2, path, dynamo.Pose{X: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestFindTargetWindow(t *testing.T) {
	// reference segment 0->1 runs east, the diagonal legs after it are 45
	// degrees off, and only segment 25 runs east again
	path := dynamo.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	for i := 2; i <= 25; i++ {
		path = append(path, dynamo.Point{X: float64(i), Y: float64(i)})
	}
	for i := 1; i <= 10; i++ {
		path = append(path, dynamo.Point{X: 25 + float64(i), Y: 25})
	}
	pose := dynamo.Pose{X: 0.5}

	tr := newTracker(t)
	idx, err := tr.FindTarget(0, path, pose)
	require.NoError(t, err)
	assert.Equal(t, 2, idx, "the east leg lies beyond the search window")

	tr.Params.SearchWindow = 30
	idx, err = tr.FindTarget(0, path, pose)
	require.NoError(t, err)
	assert.Equal(t, 25, idx)
}

func TestFindTargetPrefersMatchingDirection(t *testing.T) {
	tr := newTracker(t)
	path := dynamo.Path{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 10}, {X: 30, Y: 10}}

	// reference east; point 2 heads east again
	idx, err := tr.FindTarget(0, path, dynamo.Pose{X: -5, Y: 5, Heading: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, idx, "ties keep the earliest index")

	idx, err = tr.FindTarget(1, path, dynamo.Pose{X: 9, Y: -5, Heading: math.Pi / 2})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestFindTargetErrors(t *testing.T) {
	tr := newTracker(t)
	path := straightPath(5, 1)

	_, err := tr.FindTarget(4, path, dynamo.Pose{})
	assert.ErrorIs(t, err, dynamo.ErrPathExhausted)

	_, err = tr.FindTarget(0, path[:1], dynamo.Pose{})
	assert.ErrorIs(t, err, dynamo.ErrDegeneratePath)
}

func TestComputeControlLatchesGlobalDirection(t *testing.T) {
	tr := newTracker(t)

	_, err := tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{Heading: 0.3}, 0.1)
	require.NoError(t, err)
	_, err = tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{Heading: 1.1}, 0.1)
	require.NoError(t, err)

	assert.True(t, tr.State.HaveGlobalDirection)
	assert.Equal(t, 0.3, tr.State.GlobalDirection)

	tr.Reset()
	assert.False(t, tr.State.HaveGlobalDirection)
	assert.False(t, tr.State.HavePrevDesired)
}

func TestComputeControlOnTrack(t *testing.T) {
	tr := newTracker(t)

	cmd, err := tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 12}, dynamo.Pose{Heading: 0}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, control.ModeTracking, cmd.Mode)
	assert.Zero(t, cmd.CrossTrack)
	assert.Zero(t, cmd.Rudder)
	assert.False(t, tr.State.Turning())
}

func TestComputeControlSteersTowardLine(t *testing.T) {
	tr := newTracker(t)

	// vessel 5 m left of an eastbound line
	cmd, err := tr.ComputeControl(dynamo.Point{X: 20}, dynamo.Point{X: 22}, dynamo.Pose{X: 0, Y: 5}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 5, cmd.CrossTrack, 1e-12)
	assert.Less(t, cmd.DesiredHeading, 0.0, "desired heading turns right, back to the line")
	assert.Less(t, cmd.Rudder, 0.0)
}

func TestComputeControlTurningMode(t *testing.T) {
	tr := newTracker(t)

	// next leg runs north while the target bears east
	cmd, err := tr.ComputeControl(dynamo.Point{X: 100}, dynamo.Point{X: 100, Y: 2}, dynamo.Pose{X: 0}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, control.ModeTurning, cmd.Mode)
	assert.True(t, tr.State.Turning())
	assert.LessOrEqual(t, math.Abs(cmd.Rudder), math.Pi/6)
	assert.Greater(t, cmd.DesiredHeading, 0.0)
}

func TestComputeControlRateLimit(t *testing.T) {
	tr := newTracker(t)
	dt := 0.1
	limit := tr.Params.MaxYawRate * dt

	first, err := tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{}, dt)
	require.NoError(t, err)

	prev := first.DesiredHeading
	for i := 0; i < 50; i++ {
		// the line jumps 40 m to the left; desired heading may only creep
		cmd, err := tr.ComputeControl(dynamo.Point{X: 10, Y: 40}, dynamo.Point{X: 20, Y: 40}, dynamo.Pose{}, dt)
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(dynamo.AngleDiff(cmd.DesiredHeading, prev)), limit+1e-12)
		prev = cmd.DesiredHeading
	}
}

func TestComputeControlFirstCallNotRateLimited(t *testing.T) {
	tr := newTracker(t)

	cmd, err := tr.ComputeControl(dynamo.Point{X: 0, Y: 10}, dynamo.Point{X: 0, Y: 20}, dynamo.Pose{}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, cmd.DesiredHeading, 1e-9)
}

func TestComputeControlRudderBound(t *testing.T) {
	tr := newTracker(t)

	for i := 0; i < 200; i++ {
		a := float64(i) * 0.37
		target := dynamo.Point{X: 30 * math.Cos(a), Y: 30 * math.Sin(a)}
		next := dynamo.Point{X: target.X + 5*math.Cos(3*a), Y: target.Y + 5*math.Sin(3*a)}
		cmd, err := tr.ComputeControl(target, next, dynamo.Pose{Heading: 2 * a}, 0.1)
		require.NoError(t, err)

		limit := tr.Params.Schedule().For(cmd.Mode).MaxRudder
		require.LessOrEqual(t, math.Abs(cmd.Rudder), limit)
		require.LessOrEqual(t, math.Abs(tr.State.PID.Integral), tr.Params.PID.MaxIntegral)
	}
}

func TestComputeControlDegenerateSegment(t *testing.T) {
	tr := newTracker(t)
	same := dynamo.Point{X: 10, Y: 10}

	cmd, err := tr.ComputeControl(same, same, dynamo.Pose{}, 0.1)
	require.NoError(t, err)
	assert.True(t, cmd.Degenerate)
	assert.InDelta(t, math.Pi/4, cmd.PathAngle, 1e-12, "falls back to the bearing to target")
	assert.False(t, math.IsNaN(cmd.Rudder))

	_, err = tr.ComputeControl(dynamo.Point{}, dynamo.Point{X: 0, Y: 5}, dynamo.Pose{}, 0.1)
	require.NoError(t, err)
	cmd, err = tr.ComputeControl(same, same, dynamo.Pose{}, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, cmd.PathAngle, 1e-12, "reuses the last defined path angle")
}

func TestComputeControlVesselOnTarget(t *testing.T) {
	tr := newTracker(t)

	cmd, err := tr.ComputeControl(dynamo.Point{X: 3, Y: 3}, dynamo.Point{X: 3, Y: 9}, dynamo.Pose{X: 3, Y: 3, Heading: math.Pi / 2}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, control.ModeTracking, cmd.Mode)
	assert.Zero(t, cmd.Rudder)
}

func TestComputeControlRejectsTimestep(t *testing.T) {
	tr := newTracker(t)
	_, err := tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{}, 0.1)
	require.NoError(t, err)
	before := tr.State

	_, err = tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{Y: 3}, -0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidTimestep)
	assert.Equal(t, before, tr.State)
}

func TestComputeControlRejectsNaNPose(t *testing.T) {
	tr := newTracker(t)
	_, err := tr.ComputeControl(dynamo.Point{X: 10}, dynamo.Point{X: 20}, dynamo.Pose{X: math.NaN()}, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
	assert.Equal(t, State{}, tr.State)
}

func TestCrossTrackSign(t *testing.T) {
	assert.InDelta(t, 3, CrossTrack(dynamo.Point{X: 5, Y: 3}, dynamo.Point{}, 0), 1e-12)
	assert.InDelta(t, -3, CrossTrack(dynamo.Point{X: 5, Y: -3}, dynamo.Point{}, 0), 1e-12)
	// northbound line: east of it is right, negative
	assert.InDelta(t, -2, CrossTrack(dynamo.Point{X: 2, Y: 7}, dynamo.Point{}, math.Pi/2), 1e-12)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.LookAheadMax = 5
	assert.ErrorIs(t, p.Validate(), dynamo.ErrInvalidParameter)

	p = DefaultParams()
	p.SearchWindow = 0
	assert.ErrorIs(t, p.Validate(), dynamo.ErrInvalidParameter)

	_, err := NewTracker(Params{})
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}
