package metrics

import (
	"math"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// ControlEffort is the mean absolute rudder angle, radians.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(s dynamo.Sample) {
	c.sum += math.Abs(s.Rudder)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// MaxRudder is the peak absolute rudder angle, radians.
type MaxRudder struct {
	peak float64
}

func NewMaxRudder() *MaxRudder { return &MaxRudder{} }

func (m *MaxRudder) Name() string            { return "max_rudder" }
func (m *MaxRudder) Observe(s dynamo.Sample) { m.peak = math.Max(m.peak, math.Abs(s.Rudder)) }
func (m *MaxRudder) Value() float64          { return m.peak }
func (m *MaxRudder) Reset()                  { m.peak = 0 }
