package channel

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/deltasim/internal/geom"
)

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Branch deactivates c and returns two children rooted at its tip. Child
// widths split the cross-sectional area: w1² + w2² = w².
func (c *Channel) Branch(g BranchGeometry, rng *rand.Rand) (*Channel, *Channel, error) {
	if c.state != Active {
		return nil, nil, ErrInactive
	}
	n := len(c.points)
	if n < minBranchPoints {
		return nil, nil, ErrTooShort
	}

	c.state = Branched

	tip := c.points[n-1]
	tangent, ok := tip.Sub(c.points[n-minBranchPoints]).Normalize()
	if !ok {
		tangent = c.direction
	}

	spread := uniform(rng, g.SpreadMin, g.SpreadMax)
	tilt := uniform(rng, g.TiltMin, g.TiltMax)
	r := uniform(rng, g.RatioMin, g.RatioMax)

	a := c.spawn(tangent.Rotate(tilt+spread/2), c.width*math.Sqrt(r), tip, g, rng)
	b := c.spawn(tangent.Rotate(tilt-spread/2), c.width*math.Sqrt(1-r), tip, g, rng)

	slog.Debug("branch", "width", c.width, "ratio", r, "spread", spread, "tilt", tilt, "time", c.time)
	return a, b, nil
}

func (c *Channel) spawn(dir geom.Point, width float64, tip geom.Point, g BranchGeometry, rng *rand.Rand) *Channel {
	mult := uniform(rng, 1-g.CoefficientJitter, 1+g.CoefficientJitter)
	return &Channel{
		width:     width,
		dt:        c.dt,
		spacing:   c.spacing,
		coef:      c.coef * mult,
		friction:  c.friction,
		seaX:      c.seaX,
		time:      c.time,
		direction: dir,
		state:     Active,
		points:    []geom.Point{tip, tip.Add(dir.Scale(childLength * c.width))},
	}
}
