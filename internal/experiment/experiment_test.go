package experiment

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/deltasim/internal/config"
	"github.com/san-kum/deltasim/internal/network"
)

func newTestExperiment(t *testing.T, mutate func(*config.Config)) *Experiment {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return e
}

func TestRun(t *testing.T) {
	e := newTestExperiment(t, nil)
	for _, m := range NewRegistry().Metrics() {
		e.AddMetric(m)
	}

	result, err := e.Run(context.Background(), 15)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Reports) != 15 || len(result.Series) != 15 {
		t.Errorf("expected 15 reports, got %d/%d", len(result.Reports), len(result.Series))
	}
	if result.Series[14].Tick != 15 {
		t.Errorf("expected last tick 15, got %d", result.Series[14].Tick)
	}
	if result.Series[14].Time != 15 {
		t.Errorf("expected time 15, got %f", result.Series[14].Time)
	}
	for _, name := range NewRegistry().ListMetrics() {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if result.Metrics["live_channels"] < 1 {
		t.Errorf("expected at least one live channel, got %f", result.Metrics["live_channels"])
	}
	if len(result.Final.Channels) == 0 {
		t.Error("expected final snapshot")
	}
}

func TestRun_Deterministic(t *testing.T) {
	run := func() network.Snapshot {
		e := newTestExperiment(t, func(c *config.Config) { c.Seed = 7 })
		result, err := e.Run(context.Background(), 20)
		if err != nil {
			t.Fatal(err)
		}
		return result.Final
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different networks")
	}
}

func TestRun_Cancelled(t *testing.T) {
	e := newTestExperiment(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Run(ctx, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Reports) != 0 {
		t.Errorf("expected no ticks, got %d", len(result.Reports))
	}
	if len(result.Final.Channels) != 1 {
		t.Errorf("expected root only, got %d channels", len(result.Final.Channels))
	}
}

func TestRun_Exhausted(t *testing.T) {
	e := newTestExperiment(t, func(c *config.Config) { c.Run.LimitX = 3001 })

	result, err := e.Run(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Exhausted {
		t.Fatal("expected run to stop with no live channels")
	}
	if len(result.Reports) >= 10 {
		t.Errorf("expected early stop, got %d ticks", len(result.Reports))
	}
	if result.Final.Live() != 0 {
		t.Errorf("expected no live channels, got %d", result.Final.Live())
	}
}

func TestRun_NegativeTicks(t *testing.T) {
	e := newTestExperiment(t, nil)
	if _, err := e.Run(context.Background(), -1); err == nil {
		t.Error("expected error for negative ticks")
	}
}

func TestObserver(t *testing.T) {
	e := newTestExperiment(t, nil)
	calls := 0
	e.AddObserver(ObserverFunc(func(rep network.TickReport, snap network.Snapshot) {
		calls++
		if rep.Tick != calls {
			t.Errorf("expected tick %d, got %d", calls, rep.Tick)
		}
	}))

	if _, err := e.Run(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("expected 5 observer calls, got %d", calls)
	}
}

func TestReset(t *testing.T) {
	e := newTestExperiment(t, nil)
	before := e.Network().Snapshot()
	if _, err := e.Run(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if e.Tick() != 0 {
		t.Errorf("expected tick 0 after reset, got %d", e.Tick())
	}
	if !reflect.DeepEqual(before, e.Network().Snapshot()) {
		t.Error("reset did not restore the initial network")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channel.Width = -1
	if _, err := New(cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	m, err := r.GetMetric("mean_width")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "mean_width" {
		t.Errorf("expected mean_width, got %s", m.Name())
	}
	if _, err := r.GetMetric("energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
	for _, m := range r.Metrics() {
		if _, err := r.GetMetric(m.Name()); err != nil {
			t.Errorf("metric %s registered under a different name", m.Name())
		}
	}
}
