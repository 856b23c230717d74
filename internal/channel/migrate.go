package channel

import (
	"log/slog"

	"github.com/san-kum/deltasim/internal/geom"
)

// Migrate displaces the centerline laterally in proportion to the
// upstream-weighted curvature, then resamples and resolves at most one
// cutoff. The upstream anchor and the freshly grown tail are held fixed.
//
// Once the tip has crossed the sea boundary the channel relaxes: migration
// is damped for seaRelaxWindow time units and then stops.
func (c *Channel) Migrate() {
	if c.state != Active || len(c.points) < minMigratePoints {
		return
	}

	coef := c.coef
	relaxing := false
	if c.Tip().X > c.seaX {
		c.markSeaEntry()
		if c.time-c.enteredSea > seaRelaxWindow {
			return
		}
		coef *= seaDamping
		relaxing = true
	}

	c.time += c.dt

	n := len(c.points)
	k := geom.Smooth(geom.Curvature(c.points), smoothWindow)
	w := geom.WeightedCurvature(k, c.friction)
	normals := geom.MigrationNormals(c.points)

	tailStart := n - int(tailFraction*float64(n))
	moved := geom.Clone(c.points)
	for i := anchorPoints; i < tailStart; i++ {
		rate := c.width * coef * w[i]
		if relaxing {
			rate *= relaxBoost
		}
		moved[i] = moved[i].Add(normals[i].Scale(rate * c.dt))
	}

	if !geom.AllFinite(moved) {
		slog.Warn("migration produced non-finite coordinates; step discarded", "points", n, "time", c.time)
		return
	}

	resampled, err := geom.Resample(moved, c.spacing)
	if err != nil {
		slog.Warn("resample failed; keeping migrated centerline", "err", err, "points", n, "time", c.time)
	}
	c.points = resampled

	c.CheckCutoffs()
}
