package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// gradient mirrors a second-order-interior, first-order-boundary difference
// along the index sequence.
func gradient(v []float64) []float64 {
	n := len(v)
	g := make([]float64, n)
	if n < 2 {
		return g
	}
	g[0] = v[1] - v[0]
	g[n-1] = v[n-1] - v[n-2]
	for i := 1; i < n-1; i++ {
		g[i] = (v[i+1] - v[i-1]) / 2
	}
	return g
}

func split(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// Curvature returns the signed curvature at every point. Counter-clockwise
// bends are positive. Fewer than three points yield all zeros.
func Curvature(pts []Point) []float64 {
	k := make([]float64, len(pts))
	if len(pts) < 3 {
		return k
	}
	xs, ys := split(pts)
	dx, dy := gradient(xs), gradient(ys)
	ddx, ddy := gradient(dx), gradient(dy)
	for i := range k {
		num := dx[i]*ddy[i] - dy[i]*ddx[i]
		den := math.Pow(dx[i]*dx[i]+dy[i]*dy[i], 1.5) + Eps
		k[i] = num / den
	}
	return k
}

// Smooth applies a centered moving average of the given window. Windows
// that run past either end average only the samples that exist.
func Smooth(v []float64, window int) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if window <= 1 || len(v) < window {
		return out
	}

	prefix := make([]float64, len(v)+1)
	floats.CumSum(prefix[1:], v)

	half := window / 2
	for i := range v {
		lo := i - half
		hi := lo + window
		if lo < 0 {
			lo = 0
		}
		if hi > len(v) {
			hi = len(v)
		}
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out
}

// WeightedCurvature integrates curvature from upstream with exponential
// decay: w_i = w_{i-1}·exp(-friction) + k_i. The pass is inherently
// sequential.
func WeightedCurvature(k []float64, friction float64) []float64 {
	out := make([]float64, len(k))
	decay := math.Exp(-friction)
	w := 0.0
	for i, v := range k {
		w = w*decay + v
		out[i] = w
	}
	return out
}

// MigrationNormals returns the unit normal at each point, obtained by
// rotating the tangent counter-clockwise. It points to the left bank, toward
// the center of a counter-clockwise (positive curvature) bend.
func MigrationNormals(pts []Point) []Point {
	normals := make([]Point, len(pts))
	if len(pts) < 2 {
		return normals
	}
	xs, ys := split(pts)
	tx, ty := gradient(xs), gradient(ys)
	for i := range normals {
		n := math.Hypot(tx[i], ty[i]) + Eps
		normals[i] = Point{-ty[i] / n, tx[i] / n}
	}
	return normals
}

// MeanAbs returns the mean absolute value over the last window samples.
func MeanAbs(v []float64, window int) float64 {
	if len(v) == 0 {
		return 0
	}
	start := len(v) - window
	if window <= 0 || start < 0 {
		start = 0
	}
	return floats.Norm(v[start:], 1) / float64(len(v)-start)
}
