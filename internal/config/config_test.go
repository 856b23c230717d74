package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/network"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Branching.Model != ModelWeighted {
		t.Errorf("expected model weighted, got %s", cfg.Branching.Model)
	}
	if cfg.Channel.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Ticks <= 0 {
		t.Error("ticks should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fan")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Name != "fan" {
		t.Errorf("expected name fan, got %s", cfg.Name)
	}
	if cfg.Run.MaxChannels != 128 {
		t.Errorf("expected 128 channels, got %d", cfg.Run.MaxChannels)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestBranchModel(t *testing.T) {
	tests := []struct {
		model   string
		name    string
		wantErr bool
	}{
		{"", "weighted", false},
		{"weighted", "weighted", false},
		{"fixed", "fixed", false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Branching.Model = tt.model
		m, err := cfg.BranchModel()
		if tt.wantErr {
			if !errors.Is(err, channel.ErrInvalidConfig) {
				t.Errorf("model %q: expected ErrInvalidConfig, got %v", tt.model, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("model %q: %v", tt.model, err)
		}
		if m.Name() != tt.name {
			t.Errorf("model %q: expected %s, got %s", tt.model, tt.name, m.Name())
		}
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Channel.Width = 0 }},
		{"negative ticks", func(c *Config) { c.Ticks = -1 }},
		{"one point source", func(c *Config) { c.Source.Points = 1 }},
		{"limit inside source", func(c *Config) { c.Run.LimitX = 100 }},
		{"no channels", func(c *Config) { c.Run.MaxChannels = 0 }},
		{"bad ratio", func(c *Config) { c.Geometry.RatioMax = 1.5 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, channel.ErrInvalidConfig) && !errors.Is(err, network.ErrInvalidConfig) {
			t.Errorf("%s: unexpected error kind %v", tt.name, err)
		}
	}
}

func TestConverters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.SeaX = 7000
	cfg.Run.Workers = 3

	p := cfg.ChannelParams()
	if p.SeaBoundaryX != 7000 {
		t.Errorf("expected sea 7000, got %f", p.SeaBoundaryX)
	}
	sc, err := cfg.StepperConfig()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", sc.Workers)
	}
	w := cfg.Waveform()
	if w.Points != cfg.Source.Points || w.Length != cfg.Source.Length {
		t.Errorf("waveform mismatch: %+v", w)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("seed: 42\nchannel:\n  width: 80\nbranching:\n  model: fixed\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Seed)
	}
	if cfg.Channel.Width != 80 {
		t.Errorf("expected width 80, got %f", cfg.Channel.Width)
	}
	if cfg.Channel.Spacing != channel.DefaultSpacing {
		t.Errorf("expected default spacing, got %f", cfg.Channel.Spacing)
	}
	if cfg.Branching.Model != ModelFixed {
		t.Errorf("expected fixed model, got %s", cfg.Branching.Model)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("meander")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ticks != cfg.Ticks || got.Run.DeltaOnsetX != cfg.Run.DeltaOnsetX {
		t.Errorf("round trip mismatch: %+v vs %+v", got.Run, cfg.Run)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key  string
		val  float64
		want float64
	}{
		{"channel.friction", 0.1, 0.1},
		{"run.max_channels", 12.6, 13},
		{"branching.base", 0.004, 0.004},
		{"seed", 99, 99},
	}
	for _, tt := range tests {
		if err := cfg.SetParam(tt.key, tt.val); err != nil {
			t.Fatalf("%s: %v", tt.key, err)
		}
		got, err := cfg.GetParam(tt.key)
		if err != nil {
			t.Fatalf("%s: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %f, got %f", tt.key, tt.want, got)
		}
	}
	if cfg.Run.MaxChannels != 13 || cfg.Seed != 99 {
		t.Errorf("fields not updated: %d %d", cfg.Run.MaxChannels, cfg.Seed)
	}
}

func TestSetParam_Unknown(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetParam("channel.color", 1); !errors.Is(err, channel.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if err := cfg.ApplyParams(map[string]float64{"channel.width": 70, "bogus": 1}); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestParamNamesResolve(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range ParamNames() {
		if _, err := cfg.GetParam(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
