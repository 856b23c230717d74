package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/deltasim/internal/metrics"
)

// Registry maps metric names to constructors.
type Registry struct {
	metrics map[string]func() Metric
}

func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]func() Metric)}

	r.metrics["live_channels"] = func() Metric { return metrics.NewLiveChannels() }
	r.metrics["total_channels"] = func() Metric { return metrics.NewTotalChannels() }
	r.metrics["oxbow_lakes"] = func() Metric { return metrics.NewOxbowCount() }
	r.metrics["branch_events"] = func() Metric { return metrics.NewBranchEvents() }
	r.metrics["cutoff_rate"] = func() Metric { return metrics.NewCutoffRate() }
	r.metrics["mean_sinuosity"] = func() Metric { return metrics.NewMeanSinuosity() }
	r.metrics["mean_width"] = func() Metric { return metrics.NewMeanWidth() }
	r.metrics["delta_front"] = func() Metric { return metrics.NewDeltaFront() }

	return r
}

func (r *Registry) GetMetric(name string) (Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics returns fresh instances of every registered metric, sorted by name.
func (r *Registry) Metrics() []Metric {
	out := make([]Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
