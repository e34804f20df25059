package metrics

import (
	"math"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// CrossTrackRMS is the root mean square cross-track error, metres.
type CrossTrackRMS struct {
	sumSq   float64
	samples int
}

func NewCrossTrackRMS() *CrossTrackRMS { return &CrossTrackRMS{} }

func (c *CrossTrackRMS) Name() string { return "cross_track_rms" }

func (c *CrossTrackRMS) Observe(s dynamo.Sample) {
	c.sumSq += s.CrossTrack * s.CrossTrack
	c.samples++
}

func (c *CrossTrackRMS) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return math.Sqrt(c.sumSq / float64(c.samples))
}

func (c *CrossTrackRMS) Reset() {
	c.sumSq = 0
	c.samples = 0
}

// MaxCrossTrack is the largest absolute cross-track error, metres.
type MaxCrossTrack struct {
	peak float64
}

func NewMaxCrossTrack() *MaxCrossTrack { return &MaxCrossTrack{} }

func (m *MaxCrossTrack) Name() string { return "max_cross_track" }

func (m *MaxCrossTrack) Observe(s dynamo.Sample) {
	m.peak = math.Max(m.peak, math.Abs(s.CrossTrack))
}

func (m *MaxCrossTrack) Value() float64 { return m.peak }
func (m *MaxCrossTrack) Reset()         { m.peak = 0 }

// Default returns a fresh set of the standard run metrics.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewCrossTrackRMS(),
		NewMaxCrossTrack(),
		NewOnTrack(5.0),
		NewControlEffort(),
		NewMaxRudder(),
		NewTurningFraction(),
	}
}
