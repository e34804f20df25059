package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/shipsim/internal/control"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/guidance"
	"github.com/san-kum/shipsim/internal/models"
	"github.com/san-kum/shipsim/internal/sim"
)

// EnvPrefix scopes environment overrides, e.g. SHIPSIM_SIM_DT=0.05.
const EnvPrefix = "SHIPSIM"

var integrators = map[string]bool{"nomoto": true, "euler": true, "rk4": true}

type Config struct {
	Name       string           `yaml:"name" mapstructure:"name"`
	Integrator string           `yaml:"integrator" mapstructure:"integrator"`
	Vessel     VesselConfig     `yaml:"vessel" mapstructure:"vessel"`
	Controller ControllerConfig `yaml:"controller" mapstructure:"controller"`
	Route      RouteConfig      `yaml:"route" mapstructure:"route"`
	Sim        SimConfig        `yaml:"sim" mapstructure:"sim"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type VesselConfig struct {
	TimeConstant float64 `yaml:"time_constant" mapstructure:"time_constant"`
	RudderGain   float64 `yaml:"rudder_gain" mapstructure:"rudder_gain"`
	Speed        float64 `yaml:"speed" mapstructure:"speed"`
	// StartX and StartY offset the start from the first path point.
	StartX float64 `yaml:"start_x" mapstructure:"start_x"`
	StartY float64 `yaml:"start_y" mapstructure:"start_y"`
	// HeadingDeg is absolute; nil starts along the first path segment.
	HeadingDeg *float64 `yaml:"heading_deg,omitempty" mapstructure:"heading_deg"`
}

type ControllerConfig struct {
	Kp                   float64 `yaml:"kp" mapstructure:"kp"`
	Ki                   float64 `yaml:"ki" mapstructure:"ki"`
	Kd                   float64 `yaml:"kd" mapstructure:"kd"`
	MaxIntegral          float64 `yaml:"max_integral" mapstructure:"max_integral"`
	MaxYawRate           float64 `yaml:"max_yaw_rate" mapstructure:"max_yaw_rate"`
	LookAheadMin         float64 `yaml:"look_ahead_min" mapstructure:"look_ahead_min"`
	LookAheadMax         float64 `yaml:"look_ahead_max" mapstructure:"look_ahead_max"`
	PreviewFactor        float64 `yaml:"preview_factor" mapstructure:"preview_factor"`
	CrossTrackGain       float64 `yaml:"cross_track_gain" mapstructure:"cross_track_gain"`
	DerivativeWeight     float64 `yaml:"derivative_weight" mapstructure:"derivative_weight"`
	SearchWindow         int     `yaml:"search_window" mapstructure:"search_window"`
	ForwardAngleDeg      float64 `yaml:"forward_angle_deg" mapstructure:"forward_angle_deg"`
	TurnThresholdDeg     float64 `yaml:"turn_threshold_deg" mapstructure:"turn_threshold_deg"`
	IntegralGateDeg      float64 `yaml:"integral_gate_deg" mapstructure:"integral_gate_deg"`
	MaxRudderTrackingDeg float64 `yaml:"max_rudder_tracking_deg" mapstructure:"max_rudder_tracking_deg"`
	MaxRudderTurningDeg  float64 `yaml:"max_rudder_turning_deg" mapstructure:"max_rudder_turning_deg"`
	TurnKpScale          float64 `yaml:"turn_kp_scale" mapstructure:"turn_kp_scale"`
	TurnKiScale          float64 `yaml:"turn_ki_scale" mapstructure:"turn_ki_scale"`
	TurnKdScale          float64 `yaml:"turn_kd_scale" mapstructure:"turn_kd_scale"`
}

// RouteConfig picks the path source: an explicit waypoint list, a CSV
// file, or a named shape, in that order of precedence.
type RouteConfig struct {
	Shape     string         `yaml:"shape" mapstructure:"shape"`
	File      string         `yaml:"file" mapstructure:"file"`
	XColumn   string         `yaml:"x_column" mapstructure:"x_column"`
	YColumn   string         `yaml:"y_column" mapstructure:"y_column"`
	Sampling  int            `yaml:"sampling" mapstructure:"sampling"`
	Spacing   float64        `yaml:"spacing" mapstructure:"spacing"`
	Waypoints []dynamo.Point `yaml:"waypoints,omitempty" mapstructure:"waypoints"`
}

type SimConfig struct {
	Dt          float64 `yaml:"dt" mapstructure:"dt"`
	Duration    float64 `yaml:"duration" mapstructure:"duration"`
	TurnRadius  float64 `yaml:"turn_radius" mapstructure:"turn_radius"`
	TrackRadius float64 `yaml:"track_radius" mapstructure:"track_radius"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Dir   string `yaml:"dir" mapstructure:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "corner",
		Integrator: "nomoto",
		Vessel: VesselConfig{
			TimeConstant: models.DefaultTimeConstant,
			RudderGain:   models.DefaultRudderGain,
			Speed:        models.DefaultSpeed,
		},
		Controller: ControllerConfig{
			Kp:                   2.0,
			Ki:                   0.005,
			Kd:                   4.0,
			MaxIntegral:          control.DefaultMaxIntegral,
			MaxYawRate:           guidance.DefaultMaxYawRate,
			LookAheadMin:         guidance.DefaultLookAheadMin,
			LookAheadMax:         guidance.DefaultLookAheadMax,
			PreviewFactor:        guidance.DefaultPreviewFactor,
			CrossTrackGain:       guidance.DefaultCrossTrackGain,
			DerivativeWeight:     control.DefaultDerivativeWeight,
			SearchWindow:         guidance.DefaultSearchWindow,
			ForwardAngleDeg:      90,
			TurnThresholdDeg:     45,
			IntegralGateDeg:      30,
			MaxRudderTrackingDeg: 15,
			MaxRudderTurningDeg:  30,
			TurnKpScale:          control.DefaultTurnScaling.Kp,
			TurnKiScale:          control.DefaultTurnScaling.Ki,
			TurnKdScale:          control.DefaultTurnScaling.Kd,
		},
		Route: RouteConfig{
			Shape:    "corner",
			XColumn:  "x",
			YColumn:  "y",
			Sampling: 2,
			Spacing:  2.0,
		},
		Sim: SimConfig{
			Dt:          sim.DefaultDt,
			Duration:    sim.DefaultDuration,
			TurnRadius:  sim.DefaultTurnRadius,
			TrackRadius: sim.DefaultTrackRadius,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (optional) over the defaults and applies SHIPSIM_*
// environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithBase(path, DefaultConfig())
}

// LoadWithBase is Load with caller-supplied defaults, used to layer a file
// over a preset.
func LoadWithBase(path string, base *Config) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, base); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// no default when unset, so AutomaticEnv would not see it
	if err := v.BindEnv("vessel.heading_deg"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Route.Waypoints) == 0 {
		cfg.Route.Waypoints = base.Route.Waypoints
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key of base so that AutomaticEnv can
// see it. The waypoint list is merged after decoding.
func setDefaults(v *viper.Viper, base *Config) error {
	data, err := yaml.Marshal(base)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]any); ok {
				walk(key, sub)
				continue
			}
			if _, isList := val.([]any); isList {
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if !(c.Vessel.TimeConstant > 0) {
		errs = append(errs, fmt.Errorf("vessel.time_constant must be positive"))
	}
	if !(c.Vessel.Speed > 0) {
		errs = append(errs, fmt.Errorf("vessel.speed must be positive"))
	}
	if !integrators[c.Integrator] {
		errs = append(errs, fmt.Errorf("unknown integrator %q", c.Integrator))
	}
	if !(c.Sim.Dt > 0) {
		errs = append(errs, fmt.Errorf("sim.dt must be positive"))
	}
	if !(c.Sim.Duration > 0) {
		errs = append(errs, fmt.Errorf("sim.duration must be positive"))
	}
	// legs longer than the acceptance radius let the cursor reach the end
	// of a sparse route before its last leg is sailed
	if !(c.Route.Spacing > 0) || c.Route.Spacing > c.Sim.TrackRadius {
		errs = append(errs, fmt.Errorf("route.spacing must be in (0, sim.track_radius=%v], got %v",
			c.Sim.TrackRadius, c.Route.Spacing))
	}
	if c.Route.Shape == "" && c.Route.File == "" && len(c.Route.Waypoints) == 0 {
		errs = append(errs, fmt.Errorf("route needs a shape, file or waypoints"))
	}
	if _, err := c.GuidanceParams(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidParameter, errors.Join(errs...))
	}
	return nil
}

// VesselParams converts the vessel section to model coefficients.
func (c *Config) VesselParams() models.VesselParams {
	return models.VesselParams{T: c.Vessel.TimeConstant, K: c.Vessel.RudderGain}
}

// InitialState seeds the vessel at the first path point shifted by the
// configured start offset.
func (c *Config) InitialState(path dynamo.Path) models.VesselState {
	var origin dynamo.Point
	if len(path) > 0 {
		origin = path[0]
	}
	return models.VesselState{
		X:   origin.X + c.Vessel.StartX,
		Y:   origin.Y + c.Vessel.StartY,
		Psi: dynamo.Radians(c.StartHeadingDeg(path)),
		U:   c.Vessel.Speed,
	}
}

// StartHeadingDeg is the configured heading, or the bearing of the first
// non-zero path segment when none is set.
func (c *Config) StartHeadingDeg(path dynamo.Path) float64 {
	if c.Vessel.HeadingDeg != nil {
		return *c.Vessel.HeadingDeg
	}
	for i := 0; i+1 < len(path); i++ {
		if b, ok := dynamo.Bearing(path[i], path[i+1]); ok {
			return dynamo.Degrees(b)
		}
	}
	return 0
}

// GuidanceParams converts the controller section, degrees to radians.
func (c *Config) GuidanceParams() (guidance.Params, error) {
	cc := c.Controller
	p := guidance.Params{
		Gains: control.Gains{
			Kp:        cc.Kp,
			Ki:        cc.Ki,
			Kd:        cc.Kd,
			MaxRudder: dynamo.Radians(cc.MaxRudderTrackingDeg),
		},
		TurnScaling:      control.TurnScaling{Kp: cc.TurnKpScale, Ki: cc.TurnKiScale, Kd: cc.TurnKdScale},
		TurningMaxRudder: dynamo.Radians(cc.MaxRudderTurningDeg),
		PID: control.HeadingPID{
			MaxIntegral:      cc.MaxIntegral,
			IntegralGate:     dynamo.Radians(cc.IntegralGateDeg),
			DerivativeWeight: cc.DerivativeWeight,
		},
		MaxYawRate:     cc.MaxYawRate,
		LookAheadMin:   cc.LookAheadMin,
		LookAheadMax:   cc.LookAheadMax,
		PreviewFactor:  cc.PreviewFactor,
		CrossTrackGain: cc.CrossTrackGain,
		ForwardAngle:   dynamo.Radians(cc.ForwardAngleDeg),
		TurnThreshold:  dynamo.Radians(cc.TurnThresholdDeg),
		SearchWindow:   cc.SearchWindow,
	}
	if err := p.Validate(); err != nil {
		return guidance.Params{}, err
	}
	return p, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Sim.Dt,
		Duration:    c.Sim.Duration,
		TurnRadius:  c.Sim.TurnRadius,
		TrackRadius: c.Sim.TrackRadius,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Route.Waypoints = append([]dynamo.Point(nil), c.Route.Waypoints...)
	if c.Vessel.HeadingDeg != nil {
		h := *c.Vessel.HeadingDeg
		cp.Vessel.HeadingDeg = &h
	}
	return &cp
}
