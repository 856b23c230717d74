package config

import "sort"

// Presets are named configurations layered over DefaultConfig.
var Presets = map[string]func(*Config){
	// a single meandering river that never reaches the delta onset
	"meander": func(c *Config) {
		c.Ticks = 1500
		c.Run.DeltaOnsetX = 1e9
		c.Run.LimitX = 20000
		c.Run.SeaX = 1e9
		c.Source.Amplitude = 150
		c.Channel.MigrationCoefficient = 1.4
	},
	"delta": func(c *Config) {},
	// aggressive bifurcation with wide openings
	"fan": func(c *Config) {
		c.Ticks = 500
		c.Run.DeltaOnsetX = 3500
		c.Run.MaxChannels = 128
		c.Branching.Base = 0.01
		c.Branching.Max = 0.08
		c.Geometry.SpreadMin = 0.8
		c.Geometry.SpreadMax = 1.4
	},
	// legacy constant-probability branching
	"fixed": func(c *Config) {
		c.Branching.Model = ModelFixed
		c.Branching.FixedProbability = 0.02
	},
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
