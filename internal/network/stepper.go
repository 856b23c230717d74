package network

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/deltasim/internal/channel"
)

// minBranchablePoints is the shortest centerline channel.Branch accepts.
const minBranchablePoints = 5

// StepperConfig holds the run-level parameters consumed each tick.
type StepperConfig struct {
	// LimitX is the downstream map limit; tips at or past it freeze.
	LimitX float64
	// DeltaOnsetX is the x beyond which tips may bifurcate.
	DeltaOnsetX     float64
	MaxChannels     int
	GrowSpeed       float64
	MinBranchPoints int
	// Workers > 1 advances channels concurrently.
	Workers   int
	Decay     DecayPolicy
	Branching BranchModel
	Geometry  channel.BranchGeometry
}

func DefaultStepperConfig() StepperConfig {
	return StepperConfig{
		LimitX:          9000,
		DeltaOnsetX:     4500,
		MaxChannels:     64,
		GrowSpeed:       20,
		MinBranchPoints: 40,
		Workers:         1,
		Decay:           DefaultDecayPolicy(),
		Branching:       DefaultWeightedBranching(),
		Geometry:        channel.DefaultBranchGeometry(),
	}
}

func (c StepperConfig) Validate() error {
	if c.Branching == nil {
		return fmt.Errorf("%w: no branch model", ErrInvalidConfig)
	}
	if c.MaxChannels < 1 {
		return fmt.Errorf("%w: max channels must be positive, got %d", ErrInvalidConfig, c.MaxChannels)
	}
	if c.MinBranchPoints < minBranchablePoints-1 {
		return fmt.Errorf("%w: min branch points must be at least %d, got %d", ErrInvalidConfig, minBranchablePoints-1, c.MinBranchPoints)
	}
	if c.GrowSpeed < 0 {
		return fmt.Errorf("%w: grow speed must be non-negative, got %g", ErrInvalidConfig, c.GrowSpeed)
	}
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	return nil
}

// TickReport summarises one Step.
type TickReport struct {
	Tick         int
	Advanced     int
	Decayed      int
	ReachedLimit int
	Branched     int
	Cutoffs      int
	Live         int
	Total        int
}

// Stepper advances a Network one tick at a time.
type Stepper struct {
	net  *Network
	cfg  StepperConfig
	rng  *rand.Rand
	tick int
}

func NewStepper(net *Network, cfg StepperConfig, rng *rand.Rand) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stepper{net: net, cfg: cfg, rng: rng}, nil
}

func (s *Stepper) Network() *Network     { return s.net }
func (s *Stepper) Config() StepperConfig { return s.cfg }
func (s *Stepper) Tick() int             { return s.tick }

type outcome struct {
	rng     *rand.Rand
	stopped bool
	decayed bool
	limited bool
	cutoffs int
}

// Step advances every channel that is active at the start of the tick.
func (s *Stepper) Step() TickReport {
	s.tick++
	ids := s.net.ActiveIDs()

	seeds := make([]int64, len(ids))
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}

	outcomes := make([]outcome, len(ids))
	ParallelFor(len(ids), s.cfg.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			outcomes[k] = s.advance(s.net.nodes[ids[k]].ch, seeds[k])
		}
	})

	report := TickReport{Tick: s.tick, Advanced: len(ids)}
	live := s.net.LiveCount()

	for k, id := range ids {
		o := outcomes[k]
		switch {
		case o.decayed:
			report.Decayed++
			slog.Debug("channel decayed", "tick", s.tick, "id", id)
		case o.limited:
			report.ReachedLimit++
			slog.Debug("channel reached map limit", "tick", s.tick, "id", id)
		}
		if o.stopped {
			continue
		}
		report.Cutoffs += o.cutoffs

		ch := s.net.nodes[id].ch
		if !s.shouldBranch(ch, o.rng, live) {
			continue
		}
		a, b, err := ch.Branch(s.cfg.Geometry, o.rng)
		if err != nil {
			slog.Warn("branch rejected", "tick", s.tick, "id", id, "err", err)
			continue
		}
		ia, ib := s.net.attach(id, a, b)
		live++
		report.Branched++
		slog.Debug("channel branched", "tick", s.tick, "id", id, "children", []ID{ia, ib})
	}

	report.Live = live
	report.Total = s.net.Len()
	return report
}

func (s *Stepper) advance(ch *channel.Channel, seed int64) outcome {
	rng := rand.New(rand.NewSource(seed))

	if s.cfg.Decay.draw(ch, rng) {
		ch.Decay()
		return outcome{stopped: true, decayed: true}
	}

	if ch.Tip().X >= s.cfg.LimitX {
		ch.MarkReachedLimit()
		return outcome{stopped: true, limited: true}
	}
	ch.Grow(s.cfg.GrowSpeed, rng)

	before := ch.OxbowCount()
	ch.Migrate()
	return outcome{rng: rng, cutoffs: ch.OxbowCount() - before}
}

func (s *Stepper) shouldBranch(ch *channel.Channel, rng *rand.Rand, live int) bool {
	if ch.Tip().X <= s.cfg.DeltaOnsetX || live >= s.cfg.MaxChannels {
		return false
	}
	p := s.cfg.Branching.Probability(ch)
	return rng.Float64() < p && ch.Len() > s.cfg.MinBranchPoints
}
