package channel

import (
	"fmt"

	"github.com/san-kum/deltasim/internal/geom"
)

type State int

const (
	Active State = iota
	Branched
	Decayed
	ReachedLimit
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Branched:
		return "branched"
	case Decayed:
		return "decayed"
	case ReachedLimit:
		return "reached_limit"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Channel is a single evolving centerline.
type Channel struct {
	width    float64
	dt       float64
	spacing  float64
	coef     float64
	friction float64
	seaX     float64

	time      float64
	direction geom.Point
	state     State

	enteredSea    float64
	hasEnteredSea bool

	points []geom.Point
	oxbows []OxbowLake
}

// New validates p and creates an active channel on a copy of points.
func New(points []geom.Point, p Params) (*Channel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidConfig, len(points))
	}
	if !geom.AllFinite(points) {
		return nil, fmt.Errorf("%w: centerline contains non-finite coordinates", ErrInvalidConfig)
	}

	dir, ok := points[len(points)-1].Sub(points[0]).Normalize()
	if !ok {
		dir = geom.Point{X: 1}
	}

	return &Channel{
		width:     p.Width,
		dt:        p.Dt,
		spacing:   p.Spacing,
		coef:      p.MigrationCoefficient,
		friction:  p.Friction,
		seaX:      p.SeaBoundaryX,
		direction: dir,
		state:     Active,
		points:    geom.Clone(points),
	}, nil
}

func (c *Channel) Width() float64                { return c.width }
func (c *Channel) Dt() float64                   { return c.dt }
func (c *Channel) Spacing() float64              { return c.spacing }
func (c *Channel) MigrationCoefficient() float64 { return c.coef }
func (c *Channel) Friction() float64             { return c.friction }
func (c *Channel) SeaBoundaryX() float64         { return c.seaX }
func (c *Channel) Time() float64                 { return c.time }
func (c *Channel) Direction() geom.Point         { return c.direction }
func (c *Channel) State() State                  { return c.state }
func (c *Channel) Active() bool                  { return c.state == Active }
func (c *Channel) Len() int                      { return len(c.points) }

// Params reconstructs the parameters the channel currently runs with.
func (c *Channel) Params() Params {
	return Params{
		Width:                c.width,
		Dt:                   c.dt,
		Spacing:              c.spacing,
		MigrationCoefficient: c.coef,
		Friction:             c.friction,
		SeaBoundaryX:         c.seaX,
	}
}

// EnteredSea returns the time the tip first crossed the sea boundary.
func (c *Channel) EnteredSea() (float64, bool) { return c.enteredSea, c.hasEnteredSea }

// Points returns a copy of the centerline.
func (c *Channel) Points() []geom.Point { return geom.Clone(c.points) }

// Tip returns the downstream end of the centerline.
func (c *Channel) Tip() geom.Point {
	if len(c.points) == 0 {
		return geom.Point{}
	}
	return c.points[len(c.points)-1]
}

// Oxbows returns a copy of the abandoned loops in cut order.
func (c *Channel) Oxbows() []OxbowLake {
	out := make([]OxbowLake, len(c.oxbows))
	copy(out, c.oxbows)
	return out
}

// Length returns the centerline arc length.
func (c *Channel) Length() float64 { return geom.ArcLength(c.points) }

// MeanAbsCurvature averages |curvature| over the last window points.
func (c *Channel) MeanAbsCurvature(window int) float64 {
	return geom.MeanAbs(geom.Curvature(c.points), window)
}

// Decay abandons an active channel. It reports whether a transition happened.
func (c *Channel) Decay() bool { return c.terminate(Decayed) }

// MarkReachedLimit freezes an active channel at the map boundary.
func (c *Channel) MarkReachedLimit() bool { return c.terminate(ReachedLimit) }

func (c *Channel) terminate(s State) bool {
	if c.state != Active {
		return false
	}
	c.state = s
	return true
}

func (c *Channel) markSeaEntry() {
	if !c.hasEnteredSea {
		c.enteredSea = c.time
		c.hasEnteredSea = true
	}
}

// OxbowCount returns the number of loops cut so far.
func (c *Channel) OxbowCount() int { return len(c.oxbows) }
