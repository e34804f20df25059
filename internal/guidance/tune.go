package guidance

import (
	"fmt"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// GetParams exposes the live-tunable subset of Params.
func (t *Tracker) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":             t.Params.Gains.Kp,
		"ki":             t.Params.Gains.Ki,
		"kd":             t.Params.Gains.Kd,
		"max_yaw_rate":   t.Params.MaxYawRate,
		"look_ahead_min": t.Params.LookAheadMin,
		"look_ahead_max": t.Params.LookAheadMax,
	}
}

// SetParam updates one tunable value. The change is rejected if it would
// leave Params invalid.
func (t *Tracker) SetParam(name string, value float64) error {
	p := t.Params
	switch name {
	case "kp":
		p.Gains.Kp = value
	case "ki":
		p.Gains.Ki = value
	case "kd":
		p.Gains.Kd = value
	case "max_yaw_rate":
		p.MaxYawRate = value
	case "look_ahead_min":
		p.LookAheadMin = value
	case "look_ahead_max":
		p.LookAheadMax = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	t.Params = p
	return nil
}
