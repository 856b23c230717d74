package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
	"golang.org/x/sync/errgroup"
)

type FrequencyConfig struct {
	Trials int
	// Ticks per trial; a trial ends early at its first bifurcation.
	Ticks     int
	SeedStart int64
	// Workers bounds concurrent trials; zero means GOMAXPROCS.
	Workers int
	Model   network.BranchModel
	Params  channel.Params
	// Points in the trial channel, which starts just past OnsetX.
	Points    int
	Amplitude float64
	OnsetX    float64
}

func DefaultFrequencyConfig() FrequencyConfig {
	params := channel.DefaultParams()
	params.SeaBoundaryX = math.Inf(1)
	return FrequencyConfig{
		Trials:    500,
		Ticks:     5,
		SeedStart: 1,
		Model:     network.DefaultWeightedBranching(),
		Params:    params,
		Points:    60,
		Amplitude: 120,
		OnsetX:    4500,
	}
}

type FrequencyResult struct {
	Trials int
	// Evaluations counts ticks in which a branch draw was made.
	Evaluations int
	Branches    int
	Observed    float64
	Expected    float64
	// StdErr is the binomial standard error of Observed under the model.
	StdErr float64
}

// ZScore is the distance of Observed from Expected in standard errors.
func (r FrequencyResult) ZScore() float64 {
	if r.StdErr == 0 {
		return 0
	}
	return (r.Observed - r.Expected) / r.StdErr
}

// recorder wraps a model and records the probability of every draw made
// against a channel long enough to branch.
type recorder struct {
	inner     network.BranchModel
	minPoints int
	probs     []float64
}

func (r *recorder) Name() string { return r.inner.Name() }

func (r *recorder) Probability(ch *channel.Channel) float64 {
	p := r.inner.Probability(ch)
	if ch.Len() > r.minPoints {
		r.probs = append(r.probs, math.Min(math.Max(p, 0), 1))
	}
	return p
}

type trial struct {
	probs    []float64
	branched bool
}

// BranchFrequency compares how often a long channel past the delta onset
// bifurcates with the mean probability the model assigned to those draws.
func BranchFrequency(ctx context.Context, cfg FrequencyConfig) (FrequencyResult, error) {
	if cfg.Trials <= 0 || cfg.Ticks <= 0 {
		return FrequencyResult{}, fmt.Errorf("%w: trials and ticks must be positive", channel.ErrInvalidConfig)
	}
	if cfg.Model == nil {
		return FrequencyResult{}, fmt.Errorf("%w: no branch model", network.ErrInvalidConfig)
	}
	if err := cfg.Params.Validate(); err != nil {
		return FrequencyResult{}, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trials := make([]trial, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trials {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := runTrial(cfg, cfg.SeedStart+int64(i))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			trials[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FrequencyResult{}, err
	}

	res := FrequencyResult{Trials: cfg.Trials}
	var sumP, sumVar float64
	for _, t := range trials {
		for _, p := range t.probs {
			sumP += p
			sumVar += p * (1 - p)
		}
		res.Evaluations += len(t.probs)
		if t.branched {
			res.Branches++
		}
	}
	if res.Evaluations == 0 {
		return res, nil
	}
	n := float64(res.Evaluations)
	res.Observed = float64(res.Branches) / n
	res.Expected = sumP / n
	res.StdErr = math.Sqrt(sumVar) / n
	return res, nil
}

func runTrial(cfg FrequencyConfig, seed int64) (trial, error) {
	rng := rand.New(rand.NewSource(seed))
	spacing := cfg.Params.Spacing
	pts := geom.SineCenterline(geom.Waveform{
		Origin:     geom.Point{X: cfg.OnsetX + spacing},
		Length:     float64(cfg.Points-1) * spacing,
		Points:     cfg.Points,
		Amplitude:  cfg.Amplitude,
		Wavelength: 20 * spacing,
		Jitter:     1,
	}, rng)

	ch, err := channel.New(pts, cfg.Params)
	if err != nil {
		return trial{}, err
	}

	minPoints := cfg.Points - 1
	rec := &recorder{inner: cfg.Model, minPoints: minPoints}
	sc := network.DefaultStepperConfig()
	sc.LimitX = math.Inf(1)
	sc.DeltaOnsetX = cfg.OnsetX
	sc.MinBranchPoints = minPoints
	sc.Decay = network.DecayPolicy{}
	sc.Branching = rec

	net := network.New()
	net.AddRoot(ch)
	stepper, err := network.NewStepper(net, sc, rng)
	if err != nil {
		return trial{}, err
	}

	for i := 0; i < cfg.Ticks; i++ {
		if stepper.Step().Branched > 0 {
			return trial{probs: rec.probs, branched: true}, nil
		}
	}
	return trial{probs: rec.probs}, nil
}
