package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// minSplinePoints is the smallest input for which a natural cubic spline is
// used; shorter centerlines are interpolated piecewise-linearly.
const minSplinePoints = 4

// CumulativeArcLength returns the arc length from pts[0] to each point.
func CumulativeArcLength(pts []Point) []float64 {
	s := make([]float64, len(pts))
	if len(pts) < 2 {
		return s
	}
	seg := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		seg[i] = pts[i].Distance(pts[i-1])
	}
	return floats.CumSum(s, seg)
}

// ArcLength returns the total polyline length of pts.
func ArcLength(pts []Point) float64 {
	s := CumulativeArcLength(pts)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// predictor is satisfied by the gonum interpolators used here.
type predictor interface {
	Fit(xs, ys []float64) error
	Predict(x float64) float64
}

// Resample rebuilds pts so consecutive points lie dx apart along the arc,
// keeping both endpoints and the total length. The final segment may be
// shorter than dx.
//
// Centerlines with fewer than two points, or shorter than dx, are returned
// as-is. When interpolation fails the input is returned unchanged together
// with an error wrapping ErrInterpolation; the returned slice is always
// safe to use.
func Resample(pts []Point, dx float64) ([]Point, error) {
	if len(pts) < 2 || dx <= 0 {
		return pts, nil
	}
	s := CumulativeArcLength(pts)
	total := s[len(s)-1]
	if total < dx {
		return pts, nil
	}

	// guard against a float-noise sliver as the final segment
	count := int(math.Ceil(total/dx-1e-9)) + 1
	if count < 2 {
		count = 2
	}

	out, err := interpolate(pts, s, total, dx, count)
	if err != nil {
		return pts, err
	}
	return out, nil
}

func interpolate(pts []Point, s []float64, total, dx float64, count int) (out []Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrInterpolation, r)
		}
	}()

	for i := 1; i < len(s); i++ {
		if !(s[i] > s[i-1]) {
			return nil, fmt.Errorf("%w: repeated point at index %d", ErrInterpolation, i)
		}
	}

	xs, ys := split(pts)
	var fx, fy predictor
	if len(pts) < minSplinePoints {
		fx, fy = &interp.PiecewiseLinear{}, &interp.PiecewiseLinear{}
	} else {
		fx, fy = &interp.NaturalCubic{}, &interp.NaturalCubic{}
	}
	if err := fx.Fit(s, xs); err != nil {
		return nil, fmt.Errorf("%w: x: %v", ErrInterpolation, err)
	}
	if err := fy.Fit(s, ys); err != nil {
		return nil, fmt.Errorf("%w: y: %v", ErrInterpolation, err)
	}

	out = make([]Point, count)
	for k := 0; k < count; k++ {
		at := math.Min(float64(k)*dx, total)
		out[k] = Point{fx.Predict(at), fy.Predict(at)}
	}
	out[0] = pts[0]
	out[count-1] = pts[len(pts)-1]

	if !AllFinite(out) {
		return nil, fmt.Errorf("%w: non-finite sample", ErrInterpolation)
	}
	return out, nil
}
