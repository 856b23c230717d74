package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/deltasim/internal/config"
	"github.com/san-kum/deltasim/internal/experiment"
)

// GridSearch tries every combination of parameter values and keeps the
// one with the best final value of a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Search runs one experiment per grid point. Grid points whose
// configuration fails validation are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metric func() experiment.Metric,
) (Candidate, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Candidate{}, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if _, err := base.GetParam(name); err != nil {
			return Candidate{}, nil, err
		}
	}

	var all []Candidate
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metric, &all); err != nil {
		return Candidate{}, all, err
	}
	if len(all) == 0 {
		return Candidate{}, nil, fmt.Errorf("no valid grid point")
	}

	best := all[0]
	for _, c := range all[1:] {
		if g.better(c.Value, best.Value) {
			best = c
		}
	}
	return best, all, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	if g.Maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metric func() experiment.Metric,
	out *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		if err := cfg.ApplyParams(current); err != nil {
			return err
		}
		if cfg.Validate() != nil {
			return nil
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return err
		}
		m := metric()
		exp.AddMetric(m)

		result, err := exp.Run(ctx, cfg.Ticks)
		if err != nil {
			return err
		}

		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*out = append(*out, Candidate{Params: params, Value: result.Metrics[m.Name()]})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metric, out); err != nil {
			return err
		}
	}
	return nil
}
