package network

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/deltasim/internal/channel"
	"github.com/san-kum/deltasim/internal/geom"
)

func straightChannel(n int, x0 float64, mutate func(*channel.Params)) *channel.Channel {
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Point{X: x0 + float64(i)*35}
	}
	p := channel.DefaultParams()
	p.SeaBoundaryX = 1e6
	if mutate != nil {
		mutate(&p)
	}
	ch, err := channel.New(pts, p)
	Expect(err).NotTo(HaveOccurred())
	return ch
}

func quietConfig() StepperConfig {
	cfg := DefaultStepperConfig()
	cfg.LimitX = 1e6
	cfg.DeltaOnsetX = 1e6
	cfg.Decay = DecayPolicy{}
	return cfg
}

func newStepper(net *Network, cfg StepperConfig, seed int64) *Stepper {
	s, err := NewStepper(net, cfg, rand.New(rand.NewSource(seed)))
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Network", func() {
	It("assigns sequential ids and tracks lineage", func() {
		net := New()
		root := net.AddRoot(straightChannel(12, 0, nil))
		Expect(root).To(Equal(ID(0)))

		ch, err := net.Get(root)
		Expect(err).NotTo(HaveOccurred())
		a, b, err := ch.Branch(channel.DefaultBranchGeometry(), rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())
		ia, ib := net.attach(root, a, b)

		Expect(net.Len()).To(Equal(3))
		Expect(net.Children(root)).To(Equal([]ID{ia, ib}))
		Expect(net.Parent(ia)).To(Equal(root))
		Expect(net.Parent(root)).To(Equal(NoParent))
		Expect(net.ActiveIDs()).To(Equal([]ID{ia, ib}))
		Expect(net.LiveCount()).To(Equal(2))
	})

	It("rejects unknown ids", func() {
		net := New()
		_, err := net.Get(3)
		Expect(err).To(MatchError(ErrUnknownChannel))
		_, err = net.Parent(-2)
		Expect(err).To(MatchError(ErrUnknownChannel))
	})

	It("returns snapshots that share no memory with the arena", func() {
		net := New()
		id := net.AddRoot(straightChannel(12, 0, nil))
		snap := net.Snapshot()
		snap.Channels[0].Points[0] = geom.Point{X: -500}

		ch, _ := net.Get(id)
		Expect(ch.Points()[0].X).To(Equal(0.0))
		Expect(snap.Live()).To(Equal(1))
	})
})

var _ = Describe("Stepper", func() {
	var net *Network

	BeforeEach(func() {
		net = New()
	})

	It("rejects an invalid configuration", func() {
		cfg := quietConfig()
		cfg.Branching = nil
		_, err := NewStepper(net, cfg, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(ErrInvalidConfig))

		cfg = quietConfig()
		cfg.MinBranchPoints = 2
		_, err = NewStepper(net, cfg, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(ErrInvalidConfig))

		cfg = quietConfig()
		cfg.Geometry.RatioMax = 1
		_, err = NewStepper(net, cfg, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(channel.ErrInvalidConfig))
	})

	It("grows active channels each tick", func() {
		id := net.AddRoot(straightChannel(12, 0, nil))
		s := newStepper(net, quietConfig(), 1)

		r := s.Step()
		ch, _ := net.Get(id)
		Expect(ch.Len()).To(Equal(13))
		Expect(r.Tick).To(Equal(1))
		Expect(r.Advanced).To(Equal(1))
		Expect(r.Live).To(Equal(1))
	})

	It("freezes channels at the map limit without growing them", func() {
		id := net.AddRoot(straightChannel(12, 0, nil))
		cfg := quietConfig()
		cfg.LimitX = 100
		s := newStepper(net, cfg, 1)

		r := s.Step()
		ch, _ := net.Get(id)
		Expect(r.ReachedLimit).To(Equal(1))
		Expect(ch.State()).To(Equal(channel.ReachedLimit))
		Expect(ch.Len()).To(Equal(12))

		r = s.Step()
		Expect(r.Advanced).To(Equal(0))
	})

	It("decays narrow long channels", func() {
		id := net.AddRoot(straightChannel(60, 0, func(p *channel.Params) { p.Width = 10 }))
		cfg := quietConfig()
		cfg.Decay = DecayPolicy{WidthBelow: 18, LengthAbove: 500, Probability: 1}
		s := newStepper(net, cfg, 1)

		r := s.Step()
		ch, _ := net.Get(id)
		Expect(r.Decayed).To(Equal(1))
		Expect(ch.State()).To(Equal(channel.Decayed))
		Expect(ch.Len()).To(Equal(60))
	})

	It("does not decay wide channels", func() {
		id := net.AddRoot(straightChannel(60, 0, nil))
		cfg := quietConfig()
		cfg.Decay = DecayPolicy{WidthBelow: 18, LengthAbove: 500, Probability: 1}
		s := newStepper(net, cfg, 1)

		s.Step()
		ch, _ := net.Get(id)
		Expect(ch.Active()).To(BeTrue())
	})

	It("defers children to the tick after they are born", func() {
		root := net.AddRoot(straightChannel(45, 0, nil))
		cfg := quietConfig()
		cfg.DeltaOnsetX = 0
		cfg.Branching = FixedBranching{P: 1}
		cfg.MinBranchPoints = 10
		s := newStepper(net, cfg, 1)

		r := s.Step()
		Expect(r.Branched).To(Equal(1))
		Expect(r.Live).To(Equal(2))
		Expect(r.Total).To(Equal(3))

		rootCh, _ := net.Get(root)
		Expect(rootCh.State()).To(Equal(channel.Branched))
		kids, _ := net.Children(root)
		Expect(kids).To(HaveLen(2))
		for _, id := range kids {
			ch, _ := net.Get(id)
			Expect(ch.Len()).To(Equal(2))
			Expect(ch.Points()[0]).To(Equal(rootCh.Tip()))
		}

		r = s.Step()
		Expect(r.Advanced).To(Equal(2))
		Expect(r.Branched).To(Equal(0))
		for _, id := range kids {
			ch, _ := net.Get(id)
			Expect(ch.Len()).To(Equal(3))
		}
	})

	It("never exceeds the channel cap", func() {
		net.AddRoot(straightChannel(45, 0, nil))
		cfg := quietConfig()
		cfg.DeltaOnsetX = 0
		cfg.Branching = FixedBranching{P: 1}
		cfg.MinBranchPoints = 5
		cfg.MaxChannels = 5
		s := newStepper(net, cfg, 3)

		for i := 0; i < 20; i++ {
			r := s.Step()
			Expect(r.Live).To(BeNumerically("<=", 5))
			Expect(net.LiveCount()).To(Equal(r.Live))
		}
		Expect(net.LiveCount()).To(Equal(5))
	})

	It("produces the same network for any worker count", func() {
		run := func(workers int) Snapshot {
			n := New()
			pts := geom.SineCenterline(geom.Waveform{Length: 3500, Points: 100, Amplitude: 80, Wavelength: 1100}, nil)
			p := channel.DefaultParams()
			p.SeaBoundaryX = 5000
			ch, err := channel.New(pts, p)
			Expect(err).NotTo(HaveOccurred())
			n.AddRoot(ch)

			cfg := DefaultStepperConfig()
			cfg.DeltaOnsetX = 3600
			cfg.LimitX = 6000
			cfg.Branching = FixedBranching{P: 0.1}
			cfg.Workers = workers
			s := newStepper(n, cfg, 42)
			for i := 0; i < 120; i++ {
				s.Step()
			}
			return n.Snapshot()
		}

		sequential := run(1)
		Expect(len(sequential.Channels)).To(BeNumerically(">", 1))
		Expect(run(4)).To(Equal(sequential))
	})

	It("branches at the rate the weighted model predicts", func() {
		model := WeightedBranching{
			Base:              0.1,
			LengthSensitivity: 0.2,
			ReferenceLength:   3000,
			Max:               0.5,
			Window:            30,
		}
		const trials = 2000
		branched, expected := 0, 0.0

		for seed := int64(1); seed <= trials; seed++ {
			n := New()
			root := n.AddRoot(straightChannel(45, 5000, nil))
			cfg := quietConfig()
			cfg.DeltaOnsetX = 4000
			cfg.Branching = model
			s := newStepper(n, cfg, seed)

			r := s.Step()
			branched += r.Branched
			ch, _ := n.Get(root)
			expected += model.Probability(ch)
		}

		p := expected / trials
		observed := float64(branched) / trials
		stderr := math.Sqrt(p * (1 - p) / trials)
		Expect(observed).To(BeNumerically("~", p, 4*stderr))
	})

	It("never branches before the delta onset", func() {
		net.AddRoot(straightChannel(45, 0, nil))
		cfg := quietConfig()
		cfg.DeltaOnsetX = 1e5
		cfg.Branching = FixedBranching{P: 1}
		s := newStepper(net, cfg, 9)

		for i := 0; i < 10; i++ {
			Expect(s.Step().Branched).To(Equal(0))
		}
	})
})

var _ = Describe("Branch models", func() {
	It("clamps the weighted probability", func() {
		ch := straightChannel(45, 0, nil)
		w := WeightedBranching{Base: 0.9, LengthSensitivity: 1, ReferenceLength: 100, Max: 0.2}
		Expect(w.Probability(ch)).To(Equal(0.2))
	})

	It("caps the length term at one", func() {
		ch := straightChannel(45, 0, nil)
		w := WeightedBranching{LengthSensitivity: 0.1, ReferenceLength: 10, Max: 1}
		Expect(w.Probability(ch)).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("reports the fixed probability", func() {
		Expect(FixedBranching{P: 0.3}.Probability(nil)).To(Equal(0.3))
		Expect(FixedBranching{P: 2}.Probability(nil)).To(Equal(1.0))
	})
})

var _ = Describe("ParallelFor", func() {
	DescribeTable("covers every index exactly once",
		func(n, workers int) {
			seen := make([]int, n)
			ParallelFor(n, workers, func(start, end int) {
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for _, c := range seen {
				Expect(c).To(Equal(1))
			}
		},
		Entry("empty", 0, 4),
		Entry("sequential", 7, 1),
		Entry("more workers than items", 3, 8),
		Entry("uneven chunks", 10, 3),
	)
})
