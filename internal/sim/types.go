package sim

import (
	"fmt"

	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/models"
)

const (
	DefaultDt          = 0.1
	DefaultDuration    = 600.0
	DefaultTurnRadius  = 8.0
	DefaultTrackRadius = 4.0
)

// Config drives a Simulator. Duration caps simulated time; a run that
// reaches it before the end of the path is reported as incomplete.
type Config struct {
	Dt       float64
	Duration float64
	// Waypoint acceptance radii while turning and while tracking.
	TurnRadius  float64
	TrackRadius float64
}

func DefaultConfig() Config {
	return Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		TurnRadius:  DefaultTurnRadius,
		TrackRadius: DefaultTrackRadius,
	}
}

func (c Config) validate() error {
	if err := dynamo.CheckTimestep(c.Dt); err != nil {
		return err
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidParameter, c.Duration)
	}
	if !(c.TurnRadius > 0) || !(c.TrackRadius > 0) {
		return fmt.Errorf("%w: acceptance radii %v/%v", dynamo.ErrInvalidParameter, c.TurnRadius, c.TrackRadius)
	}
	return nil
}

type Result struct {
	Samples   []dynamo.Sample
	Metrics   map[string]float64
	Steps     int
	Completed bool
	Final     models.VesselState
}

// Last returns the final recorded sample.
func (r *Result) Last() dynamo.Sample {
	if len(r.Samples) == 0 {
		return dynamo.Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
