package channel

import (
	"math"
	"math/rand"

	"github.com/san-kum/deltasim/internal/geom"
)

// Grow appends one point at the tip. The step follows the local tangent,
// perturbed by angular noise and pulled toward the channel's persistent
// direction; wider channels hold a straighter course. Near or past the sea
// boundary the step never points back toward land.
func (c *Channel) Grow(speed float64, rng *rand.Rand) {
	if c.state != Active || len(c.points) == 0 {
		return
	}

	n := len(c.points)
	tip := c.points[n-1]
	back := n - 1 - lookback
	if back < 0 {
		back = 0
	}

	tangent, ok := tip.Sub(c.points[back]).Normalize()
	if !ok {
		tangent = c.direction
	}
	noisy := tangent.Rotate(rng.NormFloat64() * growthNoise)

	bias := math.Min(maxBias, c.width/biasWidthScale)
	dir, ok := noisy.Scale(1 - bias).Add(c.direction.Scale(bias)).Normalize()
	if !ok {
		dir = c.direction
	}

	if tip.X >= c.seaX-coastBand && dir.X < 0 {
		dir.X = 0
		if dir, ok = dir.Normalize(); !ok {
			dir = geom.Point{X: 1}
		}
	}

	step := math.Max(speed*c.width/100, minStep)
	next := tip.Add(dir.Scale(step))
	c.points = append(c.points, next)

	if next.X > c.seaX {
		c.markSeaEntry()
	}

	if d, ok := c.direction.Scale(1 - directionAlpha).Add(dir.Scale(directionAlpha)).Normalize(); ok {
		c.direction = d
	} else {
		c.direction = dir
	}
}
