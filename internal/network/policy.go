package network

import (
	"math"
	"math/rand"

	"github.com/san-kum/deltasim/internal/channel"
)

// BranchModel gives the per-tick bifurcation probability of a channel.
type BranchModel interface {
	Name() string
	Probability(ch *channel.Channel) float64
}

// WeightedBranching raises a base rate with the mean absolute curvature of
// the last Window points and with channel length relative to
// ReferenceLength (capped at 1). The total is clamped to Max.
type WeightedBranching struct {
	Base                 float64
	CurvatureSensitivity float64
	LengthSensitivity    float64
	ReferenceLength      float64
	Max                  float64
	Window               int
}

func DefaultWeightedBranching() WeightedBranching {
	return WeightedBranching{
		Base:                 0.002,
		CurvatureSensitivity: 2.0,
		LengthSensitivity:    0.01,
		ReferenceLength:      3000,
		Max:                  0.05,
		Window:               30,
	}
}

func (w WeightedBranching) Name() string { return "weighted" }

func (w WeightedBranching) Probability(ch *channel.Channel) float64 {
	p := w.Base + ch.MeanAbsCurvature(w.Window)*w.CurvatureSensitivity
	if w.ReferenceLength > 0 {
		p += math.Min(1, ch.Length()/w.ReferenceLength) * w.LengthSensitivity
	}
	return clamp(p, 0, w.Max)
}

// FixedBranching is the legacy constant-probability model.
type FixedBranching struct {
	P float64
}

func (f FixedBranching) Name() string { return "fixed" }

func (f FixedBranching) Probability(*channel.Channel) float64 { return clamp(f.P, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// DecayPolicy abandons narrow, long channels with a fixed per-tick
// probability.
type DecayPolicy struct {
	WidthBelow  float64
	LengthAbove float64
	Probability float64
}

func DefaultDecayPolicy() DecayPolicy {
	return DecayPolicy{WidthBelow: 18, LengthAbove: 1500, Probability: 0.01}
}

// Eligible reports whether ch is narrow and long enough to decay.
func (d DecayPolicy) Eligible(ch *channel.Channel) bool {
	return d.Probability > 0 && ch.Width() < d.WidthBelow && ch.Length() > d.LengthAbove
}

func (d DecayPolicy) draw(ch *channel.Channel, rng *rand.Rand) bool {
	if !d.Eligible(ch) {
		return false
	}
	return rng.Float64() < d.Probability
}
