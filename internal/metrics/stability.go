package metrics

import (
	"math"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// OnTrack is the fraction of samples whose cross-track error stays within
// threshold metres.
type OnTrack struct {
	threshold  float64
	violations int
	samples    int
}

func NewOnTrack(threshold float64) *OnTrack {
	return &OnTrack{threshold: threshold}
}

func (o *OnTrack) Name() string {
	return "on_track"
}

func (o *OnTrack) Observe(s dynamo.Sample) {
	o.samples++
	if math.Abs(s.CrossTrack) > o.threshold {
		o.violations++
	}
}

func (o *OnTrack) Value() float64 {
	if o.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(o.violations)/float64(o.samples)
}

func (o *OnTrack) Reset() {
	o.violations = 0
	o.samples = 0
}

// TurningFraction is the share of steps flagged as turning.
type TurningFraction struct {
	turning, samples int
}

func NewTurningFraction() *TurningFraction { return &TurningFraction{} }

func (f *TurningFraction) Name() string { return "turning_fraction" }

func (f *TurningFraction) Observe(s dynamo.Sample) {
	f.samples++
	if s.Turning {
		f.turning++
	}
}

func (f *TurningFraction) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.turning) / float64(f.samples)
}

func (f *TurningFraction) Reset() { f.turning, f.samples = 0, 0 }
