package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/network"
)

func TestBranchFrequency_Fixed(t *testing.T) {
	cfg := DefaultFrequencyConfig()
	cfg.Trials = 400
	cfg.Ticks = 3
	cfg.Model = network.FixedBranching{P: 0.2}

	res, err := BranchFrequency(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if res.Evaluations < cfg.Trials {
		t.Fatalf("expected at least %d draws, got %d", cfg.Trials, res.Evaluations)
	}
	if math.Abs(res.Expected-0.2) > 1e-12 {
		t.Errorf("expected predicted rate 0.2, got %f", res.Expected)
	}
	if z := res.ZScore(); math.Abs(z) > 4 {
		t.Errorf("observed %f vs expected %f (z=%.2f)", res.Observed, res.Expected, z)
	}
}

func TestBranchFrequency_Weighted(t *testing.T) {
	cfg := DefaultFrequencyConfig()
	cfg.Trials = 300
	cfg.Model = network.WeightedBranching{
		Base: 0.05, CurvatureSensitivity: 5, LengthSensitivity: 0.05,
		ReferenceLength: 3000, Max: 0.3, Window: 30,
	}

	res, err := BranchFrequency(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if res.Expected <= 0.05 || res.Expected > 0.3 {
		t.Errorf("predicted rate %f outside model range", res.Expected)
	}
	if z := res.ZScore(); math.Abs(z) > 4 {
		t.Errorf("observed %f vs expected %f (z=%.2f)", res.Observed, res.Expected, z)
	}
}

func TestBranchFrequency_WorkerIndependent(t *testing.T) {
	cfg := DefaultFrequencyConfig()
	cfg.Trials = 50
	cfg.Model = network.FixedBranching{P: 0.3}

	cfg.Workers = 1
	a, err := BranchFrequency(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Workers = 8
	b, err := BranchFrequency(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("results depend on worker count: %+v vs %+v", a, b)
	}
}

func TestBranchFrequency_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FrequencyConfig)
		target error
	}{
		{"no trials", func(c *FrequencyConfig) { c.Trials = 0 }, channel.ErrInvalidConfig},
		{"no ticks", func(c *FrequencyConfig) { c.Ticks = 0 }, channel.ErrInvalidConfig},
		{"no model", func(c *FrequencyConfig) { c.Model = nil }, network.ErrInvalidConfig},
		{"bad width", func(c *FrequencyConfig) { c.Params.Width = 0 }, channel.ErrInvalidConfig},
	}

	for _, tt := range tests {
		cfg := DefaultFrequencyConfig()
		tt.mutate(&cfg)
		if _, err := BranchFrequency(context.Background(), cfg); !errors.Is(err, tt.target) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.target, err)
		}
	}
}

func TestBranchFrequency_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := BranchFrequency(ctx, DefaultFrequencyConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
