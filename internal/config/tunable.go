package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/deltasim/internal/channel"
)

type param struct {
	get func(*Config) float64
	set func(*Config, float64)
}

func floatParam(field func(*Config) *float64) param {
	return param{
		get: func(c *Config) float64 { return *field(c) },
		set: func(c *Config, v float64) { *field(c) = v },
	}
}

func intParam(field func(*Config) *int) param {
	return param{
		get: func(c *Config) float64 { return float64(*field(c)) },
		set: func(c *Config, v float64) { *field(c) = int(math.Round(v)) },
	}
}

// tunables are the numeric settings addressable by their yaml path.
var tunables = map[string]param{
	"seed":                            {get: func(c *Config) float64 { return float64(c.Seed) }, set: func(c *Config, v float64) { c.Seed = int64(v) }},
	"ticks":                           intParam(func(c *Config) *int { return &c.Ticks }),
	"channel.width":                   floatParam(func(c *Config) *float64 { return &c.Channel.Width }),
	"channel.dt":                      floatParam(func(c *Config) *float64 { return &c.Channel.Dt }),
	"channel.spacing":                 floatParam(func(c *Config) *float64 { return &c.Channel.Spacing }),
	"channel.migration_coefficient":   floatParam(func(c *Config) *float64 { return &c.Channel.MigrationCoefficient }),
	"channel.friction":                floatParam(func(c *Config) *float64 { return &c.Channel.Friction }),
	"source.amplitude":                floatParam(func(c *Config) *float64 { return &c.Source.Amplitude }),
	"source.wavelength":               floatParam(func(c *Config) *float64 { return &c.Source.Wavelength }),
	"source.jitter":                   floatParam(func(c *Config) *float64 { return &c.Source.Jitter }),
	"run.sea_x":                       floatParam(func(c *Config) *float64 { return &c.Run.SeaX }),
	"run.limit_x":                     floatParam(func(c *Config) *float64 { return &c.Run.LimitX }),
	"run.delta_onset_x":               floatParam(func(c *Config) *float64 { return &c.Run.DeltaOnsetX }),
	"run.max_channels":                intParam(func(c *Config) *int { return &c.Run.MaxChannels }),
	"run.grow_speed":                  floatParam(func(c *Config) *float64 { return &c.Run.GrowSpeed }),
	"run.min_branch_points":           intParam(func(c *Config) *int { return &c.Run.MinBranchPoints }),
	"branching.base":                  floatParam(func(c *Config) *float64 { return &c.Branching.Base }),
	"branching.curvature_sensitivity": floatParam(func(c *Config) *float64 { return &c.Branching.CurvatureSensitivity }),
	"branching.length_sensitivity":    floatParam(func(c *Config) *float64 { return &c.Branching.LengthSensitivity }),
	"branching.max":                   floatParam(func(c *Config) *float64 { return &c.Branching.Max }),
	"branching.fixed_probability":     floatParam(func(c *Config) *float64 { return &c.Branching.FixedProbability }),
	"decay.width_below":               floatParam(func(c *Config) *float64 { return &c.Decay.WidthBelow }),
	"decay.length_above":              floatParam(func(c *Config) *float64 { return &c.Decay.LengthAbove }),
	"decay.probability":               floatParam(func(c *Config) *float64 { return &c.Decay.Probability }),
	"geometry.spread_min":             floatParam(func(c *Config) *float64 { return &c.Geometry.SpreadMin }),
	"geometry.spread_max":             floatParam(func(c *Config) *float64 { return &c.Geometry.SpreadMax }),
	"geometry.ratio_min":              floatParam(func(c *Config) *float64 { return &c.Geometry.RatioMin }),
	"geometry.ratio_max":              floatParam(func(c *Config) *float64 { return &c.Geometry.RatioMax }),
}

// SetParam sets a numeric setting by its yaml path, e.g. "channel.friction".
// Integer settings are rounded.
func (c *Config) SetParam(key string, v float64) error {
	p, ok := tunables[key]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", channel.ErrInvalidConfig, key)
	}
	p.set(c, v)
	return nil
}

func (c *Config) GetParam(key string) (float64, error) {
	p, ok := tunables[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown parameter %q", channel.ErrInvalidConfig, key)
	}
	return p.get(c), nil
}

// ApplyParams sets every entry of params, stopping at the first unknown key.
func (c *Config) ApplyParams(params map[string]float64) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.SetParam(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(tunables))
	for k := range tunables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
