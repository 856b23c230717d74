package geom

import "math"

// Eps guards divisions by near-zero norms and denominators.
const Eps = 1e-10

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point        { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point        { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point    { return Point{p.X * f, p.Y * f} }
func (p Point) Dot(q Point) float64      { return p.X*q.X + p.Y*q.Y }
func (p Point) Norm() float64            { return math.Hypot(p.X, p.Y) }
func (p Point) Distance(q Point) float64 { return p.Sub(q).Norm() }

// Normalize returns the unit vector along p and false when p is degenerate.
func (p Point) Normalize() (Point, bool) {
	n := p.Norm()
	if n < Eps {
		return Point{}, false
	}
	return Point{p.X / n, p.Y / n}, true
}

// Rotate rotates p counter-clockwise by angle radians.
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func Midpoint(a, b Point) Point {
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Clone returns a copy of pts.
func Clone(pts []Point) []Point {
	c := make([]Point, len(pts))
	copy(c, pts)
	return c
}

// AllFinite reports whether every coordinate in pts is finite.
func AllFinite(pts []Point) bool {
	for _, p := range pts {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}
