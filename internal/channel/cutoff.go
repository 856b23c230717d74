package channel

import (
	"log/slog"
	"math"

	"github.com/san-kum/deltasim/internal/geom"
)

// MinCutoffSeparation is the smallest index gap between two points that
// may be treated as a self-intersection.
func MinCutoffSeparation(width, spacing float64) int {
	return int(math.Floor(width/spacing))*2 + 5
}

// FindCutoff scans for the first neck cutoff. Candidate upstream indices
// start at 10 and advance by 2, so a neck adjacent to a skipped index can be
// missed until a later call; this keeps results reproducible with existing
// runs. For each candidate i the nearest downstream j at least the minimum
// separation away within 0.7·width is taken, and the pair qualifies when
// j-i exceeds 15.
func FindCutoff(pts []geom.Point, width, spacing float64) (i, j int, ok bool) {
	n := len(pts)
	if n < minCutoffPoints {
		return 0, 0, false
	}
	minSep := MinCutoffSeparation(width, spacing)
	radius := cutoffRadius * width

	for i = cutoffScanStart; i < n-minSep; i += cutoffScanStep {
		for j = i + minSep; j < n; j++ {
			if pts[i].Distance(pts[j]) >= radius {
				continue
			}
			if j-i > minLoopSpan {
				return i, j, true
			}
			break
		}
	}
	return 0, 0, false
}

// SpliceCutoff replaces points i..j-1 with the midpoint of pts[i] and
// pts[j], shortening the centerline by j-i-1 points.
func SpliceCutoff(pts []geom.Point, i, j int) []geom.Point {
	out := make([]geom.Point, 0, len(pts)-(j-i-1))
	out = append(out, pts[:i]...)
	out = append(out, geom.Midpoint(pts[i], pts[j]))
	out = append(out, pts[j:]...)
	return out
}

// CheckCutoffs resolves at most one neck cutoff, recording the abandoned
// loop as an oxbow lake. It reports whether a cutoff happened.
func (c *Channel) CheckCutoffs() bool {
	if c.state != Active {
		return false
	}
	i, j, ok := FindCutoff(c.points, c.width, c.spacing)
	if !ok {
		return false
	}

	c.oxbows = append(c.oxbows, newOxbowLake(c.points[i:j+1], c.time))
	spliced := SpliceCutoff(c.points, i, j)

	resampled, err := geom.Resample(spliced, c.spacing)
	if err != nil {
		slog.Warn("resample after cutoff failed; keeping spliced centerline", "err", err)
	}
	c.points = resampled

	slog.Debug("cutoff", "from", i, "to", j, "loop_points", j-i+1, "time", c.time)
	return true
}
