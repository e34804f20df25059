package config

import (
	"sort"

	"github.com/samber/lo"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// Presets are named scenarios layered over DefaultConfig.
var Presets = map[string]func(*Config){
	"corner": func(c *Config) {
		c.Route.Shape = "corner"
	},
	"straight-offset": func(c *Config) {
		c.Route.Shape = "straight"
		c.Vessel.StartY = 10
	},
	"zigzag": func(c *Config) {
		c.Route.Shape = "zigzag"
		c.Sim.Duration = 900
	},
	"lawnmower": func(c *Config) {
		c.Route.Shape = "lawnmower"
		c.Vessel.Speed = 3
		c.Sim.Duration = 1200
	},
	"square": func(c *Config) {
		c.Route.Shape = "square"
		c.Vessel.StartX, c.Vessel.StartY = -20, -15
		c.Sim.Duration = 900
	},
	"recorded": func(c *Config) {
		// recorded track, every second row, starting north
		c.Route.Shape = ""
		c.Route.File = "history4s.csv"
		c.Route.Sampling = 2
		c.Vessel.HeadingDeg = lo.ToPtr(90.0)
	},
	"harbour-approach": func(c *Config) {
		c.Route.Shape = ""
		c.Route.Waypoints = []dynamo.Point{
			{X: 0, Y: 0}, {X: 250, Y: 0}, {X: 400, Y: 120}, {X: 420, Y: 300}, {X: 380, Y: 360},
		}
		c.Vessel.Speed = 2.5
		c.Sim.Duration = 900
	},
}

// PresetInfo is a one-line description per preset.
var PresetInfo = map[string]string{
	"corner":           "100 m east then 100 m north",
	"straight-offset":  "1 km straight line, start 10 m to port",
	"zigzag":           "six 150 m legs alternating 60 m",
	"lawnmower":        "survey pattern, 300 m legs 80 m apart",
	"square":           "200 m square from an offset start",
	"recorded":         "track from history4s.csv, every second row",
	"harbour-approach": "slow approach with a closing dogleg",
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = name
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
