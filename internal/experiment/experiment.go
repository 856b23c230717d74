package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/config"
	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
)

// Experiment owns one seeded network and drives it tick by tick.
type Experiment struct {
	cfg        *config.Config
	randSource *rand.Rand
	net        *network.Network
	stepper    *network.Stepper
	metrics    []Metric
	observers  []Observer
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset rebuilds the network from the configured seed. Registered metrics
// and observers are kept.
func (e *Experiment) Reset() error {
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	pts := geom.SineCenterline(e.cfg.Waveform(), rng)
	root, err := channel.New(pts, e.cfg.ChannelParams())
	if err != nil {
		return fmt.Errorf("root channel: %w", err)
	}

	sc, err := e.cfg.StepperConfig()
	if err != nil {
		return err
	}
	net := network.New()
	net.AddRoot(root)
	stepper, err := network.NewStepper(net, sc, rng)
	if err != nil {
		return err
	}

	e.randSource = rng
	e.net = net
	e.stepper = stepper
	for _, m := range e.metrics {
		m.Reset()
	}
	return nil
}

func (e *Experiment) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Network() *network.Network { return e.net }
func (e *Experiment) Tick() int                 { return e.stepper.Tick() }

// Step advances one tick and feeds metrics and observers.
func (e *Experiment) Step() (network.TickReport, network.Snapshot) {
	rep := e.stepper.Step()
	snap := e.net.Snapshot()
	for _, m := range e.metrics {
		m.Observe(snap, rep)
	}
	for _, obs := range e.observers {
		obs.OnTick(rep, snap)
	}
	return rep, snap
}

// Run advances up to ticks ticks, checking ctx between ticks. It stops
// early once no channel is active. On cancellation the partial result is
// returned along with ctx.Err().
func (e *Experiment) Run(ctx context.Context, ticks int) (*Result, error) {
	if ticks < 0 {
		return nil, fmt.Errorf("%w: ticks must be non-negative, got %d", channel.ErrInvalidConfig, ticks)
	}

	result := &Result{
		Reports: make([]network.TickReport, 0, ticks),
		Series:  make([]Sample, 0, ticks),
		Metrics: make(map[string]float64),
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			e.finish(result)
			return result, ctx.Err()
		default:
		}

		if e.net.LiveCount() == 0 {
			result.Exhausted = true
			slog.Info("no live channels, stopping", "tick", e.stepper.Tick())
			break
		}

		rep, snap := e.Step()
		result.Reports = append(result.Reports, rep)
		result.Series = append(result.Series, e.sample(rep, snap))
	}

	e.finish(result)
	return result, nil
}

func (e *Experiment) sample(rep network.TickReport, snap network.Snapshot) Sample {
	s := Sample{
		Tick:     rep.Tick,
		Time:     snap.Now(),
		Live:     rep.Live,
		Total:    rep.Total,
		Branched: rep.Branched,
		Cutoffs:  rep.Cutoffs,
		Oxbows:   snap.OxbowCount(),
	}
	if len(e.metrics) > 0 {
		s.Metrics = make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			s.Metrics[m.Name()] = m.Value()
		}
	}
	return s
}

func (e *Experiment) finish(result *Result) {
	result.Final = e.net.Snapshot()
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
