package config

import (
	"fmt"
	"os"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTicks   = 600
	DefaultSeed    = 1
	DefaultPoints  = 90
	DefaultLength  = 3000.0
	DefaultAmp     = 80.0
	DefaultWave    = 1200.0
	DefaultSeaX    = 6000.0
	DefaultLimitX  = 9000.0
	DefaultOnsetX  = 4500.0
	DefaultMaxChan = 64

	ModelWeighted = "weighted"
	ModelFixed    = "fixed"
)

type Config struct {
	Name      string          `yaml:"name"`
	Seed      int64           `yaml:"seed"`
	Ticks     int             `yaml:"ticks"`
	Channel   ChannelConfig   `yaml:"channel"`
	Source    SourceConfig    `yaml:"source"`
	Run       RunConfig       `yaml:"run"`
	Branching BranchingConfig `yaml:"branching"`
	Decay     DecayConfig     `yaml:"decay"`
	Geometry  GeometryConfig  `yaml:"geometry"`
}

type ChannelConfig struct {
	Width                float64 `yaml:"width"`
	Dt                   float64 `yaml:"dt"`
	Spacing              float64 `yaml:"spacing"`
	MigrationCoefficient float64 `yaml:"migration_coefficient"`
	Friction             float64 `yaml:"friction"`
}

// SourceConfig generates the root centerline.
type SourceConfig struct {
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	Length     float64 `yaml:"length"`
	Points     int     `yaml:"points"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
	Jitter     float64 `yaml:"jitter"`
}

type RunConfig struct {
	SeaX            float64 `yaml:"sea_x"`
	LimitX          float64 `yaml:"limit_x"`
	DeltaOnsetX     float64 `yaml:"delta_onset_x"`
	MaxChannels     int     `yaml:"max_channels"`
	GrowSpeed       float64 `yaml:"grow_speed"`
	MinBranchPoints int     `yaml:"min_branch_points"`
	Workers         int     `yaml:"workers"`
}

type BranchingConfig struct {
	Model                string  `yaml:"model"`
	Base                 float64 `yaml:"base"`
	CurvatureSensitivity float64 `yaml:"curvature_sensitivity"`
	LengthSensitivity    float64 `yaml:"length_sensitivity"`
	ReferenceLength      float64 `yaml:"reference_length"`
	Max                  float64 `yaml:"max"`
	Window               int     `yaml:"window"`
	FixedProbability     float64 `yaml:"fixed_probability"`
}

type DecayConfig struct {
	WidthBelow  float64 `yaml:"width_below"`
	LengthAbove float64 `yaml:"length_above"`
	Probability float64 `yaml:"probability"`
}

type GeometryConfig struct {
	SpreadMin         float64 `yaml:"spread_min"`
	SpreadMax         float64 `yaml:"spread_max"`
	TiltMin           float64 `yaml:"tilt_min"`
	TiltMax           float64 `yaml:"tilt_max"`
	RatioMin          float64 `yaml:"ratio_min"`
	RatioMax          float64 `yaml:"ratio_max"`
	CoefficientJitter float64 `yaml:"coefficient_jitter"`
}

func DefaultConfig() *Config {
	wb := network.DefaultWeightedBranching()
	dp := network.DefaultDecayPolicy()
	bg := channel.DefaultBranchGeometry()
	sc := network.DefaultStepperConfig()

	return &Config{
		Name:  "delta",
		Seed:  DefaultSeed,
		Ticks: DefaultTicks,
		Channel: ChannelConfig{
			Width:                channel.DefaultWidth,
			Dt:                   channel.DefaultDt,
			Spacing:              channel.DefaultSpacing,
			MigrationCoefficient: channel.DefaultMigrationCoefficient,
			Friction:             channel.DefaultFriction,
		},
		Source: SourceConfig{
			Length:     DefaultLength,
			Points:     DefaultPoints,
			Amplitude:  DefaultAmp,
			Wavelength: DefaultWave,
			Jitter:     2,
		},
		Run: RunConfig{
			SeaX:            DefaultSeaX,
			LimitX:          DefaultLimitX,
			DeltaOnsetX:     DefaultOnsetX,
			MaxChannels:     DefaultMaxChan,
			GrowSpeed:       sc.GrowSpeed,
			MinBranchPoints: sc.MinBranchPoints,
			Workers:         1,
		},
		Branching: BranchingConfig{
			Model:                ModelWeighted,
			Base:                 wb.Base,
			CurvatureSensitivity: wb.CurvatureSensitivity,
			LengthSensitivity:    wb.LengthSensitivity,
			ReferenceLength:      wb.ReferenceLength,
			Max:                  wb.Max,
			Window:               wb.Window,
			FixedProbability:     0.01,
		},
		Decay: DecayConfig{
			WidthBelow:  dp.WidthBelow,
			LengthAbove: dp.LengthAbove,
			Probability: dp.Probability,
		},
		Geometry: GeometryConfig{
			SpreadMin:         bg.SpreadMin,
			SpreadMax:         bg.SpreadMax,
			TiltMin:           bg.TiltMin,
			TiltMax:           bg.TiltMax,
			RatioMin:          bg.RatioMin,
			RatioMax:          bg.RatioMax,
			CoefficientJitter: bg.CoefficientJitter,
		},
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) ChannelParams() channel.Params {
	return channel.Params{
		Width:                c.Channel.Width,
		Dt:                   c.Channel.Dt,
		Spacing:              c.Channel.Spacing,
		MigrationCoefficient: c.Channel.MigrationCoefficient,
		Friction:             c.Channel.Friction,
		SeaBoundaryX:         c.Run.SeaX,
	}
}

func (c *Config) Waveform() geom.Waveform {
	return geom.Waveform{
		Origin:     geom.Point{X: c.Source.OriginX, Y: c.Source.OriginY},
		Length:     c.Source.Length,
		Points:     c.Source.Points,
		Amplitude:  c.Source.Amplitude,
		Wavelength: c.Source.Wavelength,
		Jitter:     c.Source.Jitter,
	}
}

func (c *Config) BranchGeometry() channel.BranchGeometry {
	return channel.BranchGeometry{
		SpreadMin:         c.Geometry.SpreadMin,
		SpreadMax:         c.Geometry.SpreadMax,
		TiltMin:           c.Geometry.TiltMin,
		TiltMax:           c.Geometry.TiltMax,
		RatioMin:          c.Geometry.RatioMin,
		RatioMax:          c.Geometry.RatioMax,
		CoefficientJitter: c.Geometry.CoefficientJitter,
	}
}

// BranchModel selects the bifurcation model. The curvature/length weighted
// model is the default; the fixed model must be asked for by name.
func (c *Config) BranchModel() (network.BranchModel, error) {
	switch c.Branching.Model {
	case "", ModelWeighted:
		return network.WeightedBranching{
			Base:                 c.Branching.Base,
			CurvatureSensitivity: c.Branching.CurvatureSensitivity,
			LengthSensitivity:    c.Branching.LengthSensitivity,
			ReferenceLength:      c.Branching.ReferenceLength,
			Max:                  c.Branching.Max,
			Window:               c.Branching.Window,
		}, nil
	case ModelFixed:
		return network.FixedBranching{P: c.Branching.FixedProbability}, nil
	default:
		return nil, fmt.Errorf("%w: unknown branching model %q", channel.ErrInvalidConfig, c.Branching.Model)
	}
}

func (c *Config) StepperConfig() (network.StepperConfig, error) {
	model, err := c.BranchModel()
	if err != nil {
		return network.StepperConfig{}, err
	}
	return network.StepperConfig{
		LimitX:          c.Run.LimitX,
		DeltaOnsetX:     c.Run.DeltaOnsetX,
		MaxChannels:     c.Run.MaxChannels,
		GrowSpeed:       c.Run.GrowSpeed,
		MinBranchPoints: c.Run.MinBranchPoints,
		Workers:         c.Run.Workers,
		Decay: network.DecayPolicy{
			WidthBelow:  c.Decay.WidthBelow,
			LengthAbove: c.Decay.LengthAbove,
			Probability: c.Decay.Probability,
		},
		Branching: model,
		Geometry:  c.BranchGeometry(),
	}, nil
}

// Validate checks the whole configuration before a run starts.
func (c *Config) Validate() error {
	if err := c.ChannelParams().Validate(); err != nil {
		return err
	}
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must be non-negative, got %d", channel.ErrInvalidConfig, c.Ticks)
	}
	if c.Source.Points < 2 || c.Source.Length <= 0 {
		return fmt.Errorf("%w: source needs at least 2 points and a positive length", channel.ErrInvalidConfig)
	}
	if c.Run.LimitX <= c.Source.OriginX+c.Source.Length {
		return fmt.Errorf("%w: limit_x %g lies inside the source centerline", channel.ErrInvalidConfig, c.Run.LimitX)
	}
	sc, err := c.StepperConfig()
	if err != nil {
		return err
	}
	return sc.Validate()
}
