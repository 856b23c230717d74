package geom

import (
	"math"
	"math/rand"
)

// Waveform describes a generated initial centerline running along +x.
type Waveform struct {
	Origin     Point
	Length     float64
	Points     int
	Amplitude  float64
	Wavelength float64
	// Jitter is the standard deviation of lateral noise added per point.
	Jitter float64
}

// SineCenterline samples a sinusoidal valley path. rng may be nil when
// Jitter is zero.
func SineCenterline(w Waveform, rng *rand.Rand) []Point {
	n := w.Points
	if n < 2 {
		n = 2
	}
	pts := make([]Point, n)
	for i := range pts {
		x := w.Length * float64(i) / float64(n-1)
		y := 0.0
		if w.Wavelength > 0 {
			y = w.Amplitude * math.Sin(2*math.Pi*x/w.Wavelength)
		}
		if w.Jitter > 0 && rng != nil && i > 0 {
			y += rng.NormFloat64() * w.Jitter
		}
		pts[i] = Point{w.Origin.X + x, w.Origin.Y + y}
	}
	return pts
}
