package channel

import "github.com/san-kum/deltasim/internal/geom"

// OxbowLake is an abandoned loop cut from a centerline. It is immutable.
type OxbowLake struct {
	points  []geom.Point
	cutTime float64
}

func newOxbowLake(points []geom.Point, cutTime float64) OxbowLake {
	return OxbowLake{points: geom.Clone(points), cutTime: cutTime}
}

// Points returns a copy of the captured loop.
func (o OxbowLake) Points() []geom.Point { return geom.Clone(o.points) }

// CutTime is the simulated time at which the loop was abandoned.
func (o OxbowLake) CutTime() float64 { return o.cutTime }

// Age returns the simulated time elapsed since the cutoff.
func (o OxbowLake) Age(now float64) float64 { return now - o.cutTime }

// Len returns the number of captured points.
func (o OxbowLake) Len() int { return len(o.points) }
