package geom

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func line(n int, spacing float64) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{float64(i) * spacing, 0}
	}
	return pts
}

func arc(n int, radius, dtheta float64) []Point {
	pts := make([]Point, n)
	for i := range pts {
		th := float64(i) * dtheta
		pts[i] = Point{radius * math.Cos(th), radius * math.Sin(th)}
	}
	return pts
}

func TestCurvature_Collinear(t *testing.T) {
	for _, k := range Curvature(line(20, 15)) {
		if math.Abs(k) > 1e-9 {
			t.Fatalf("expected zero curvature on a line, got %g", k)
		}
	}
}

func TestCurvature_Circle(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		dtheta float64
		sign   float64
	}{
		{"ccw r=200", 200, 0.05, 1},
		{"ccw r=50", 50, 0.1, 1},
		{"cw r=120", 120, -0.05, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Curvature(arc(40, tt.radius, tt.dtheta))
			want := tt.sign / tt.radius
			for i := 2; i < len(k)-2; i++ {
				if math.Abs(k[i]-want) > 1e-3/tt.radius {
					t.Errorf("index %d: expected %g, got %g", i, want, k[i])
				}
			}
		})
	}
}

func TestCurvature_TooFewPoints(t *testing.T) {
	k := Curvature([]Point{{0, 0}, {1, 1}})
	if len(k) != 2 || k[0] != 0 || k[1] != 0 {
		t.Errorf("expected two zeros, got %v", k)
	}
}

func TestSmooth(t *testing.T) {
	v := []float64{0, 0, 10, 0, 0}
	got := Smooth(v, 3)
	want := []float64{0, 10.0 / 3, 10.0 / 3, 10.0 / 3, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %g, got %g", i, want[i], got[i])
		}
	}

	short := []float64{1, 2}
	if got := Smooth(short, 5); got[0] != 1 || got[1] != 2 {
		t.Errorf("expected short input unchanged, got %v", got)
	}
}

func TestSmooth_TruncatedEnds(t *testing.T) {
	got := Smooth([]float64{3, 0, 0, 0, 9}, 3)
	if math.Abs(got[0]-1.5) > 1e-12 || math.Abs(got[4]-4.5) > 1e-12 {
		t.Errorf("expected ends 1.5 and 4.5, got %g and %g", got[0], got[4])
	}
	if math.Abs(got[2]) > 1e-12 {
		t.Errorf("expected interior 0, got %g", got[2])
	}
}

func TestSmooth_PreservesConstant(t *testing.T) {
	v := []float64{2, 2, 2, 2, 2, 2, 2}
	for i, x := range Smooth(v, 5) {
		if math.Abs(x-2) > 1e-12 {
			t.Errorf("index %d: expected 2, got %g", i, x)
		}
	}
}

func TestWeightedCurvature(t *testing.T) {
	k := []float64{1, 0, 0, 1}
	w := WeightedCurvature(k, 0.5)
	d := math.Exp(-0.5)
	want := []float64{1, d, d * d, d*d*d + 1}
	for i := range want {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %g, got %g", i, want[i], w[i])
		}
	}

	if got := WeightedCurvature(k, 0); got[3] != 2 {
		t.Errorf("zero friction should sum, got %g", got[3])
	}
}

func TestMigrationNormals(t *testing.T) {
	for i, n := range MigrationNormals(line(6, 10)) {
		if math.Abs(n.X) > 1e-9 || math.Abs(n.Y-1) > 1e-9 {
			t.Errorf("index %d: expected (0,1), got %v", i, n)
		}
	}

	n := MigrationNormals([]Point{{0, 0}, {10, 0}, {20, 0}})[1]
	if math.Abs(n.X) > 1e-9 || math.Abs(n.Y-1) > 1e-9 {
		t.Errorf("eastward tangent: expected (0,1), got %v", n)
	}
	n = MigrationNormals([]Point{{0, 0}, {0, 10}, {0, 20}})[1]
	if math.Abs(n.X+1) > 1e-9 || math.Abs(n.Y) > 1e-9 {
		t.Errorf("northward tangent: expected (-1,0), got %v", n)
	}

	degenerate := MigrationNormals([]Point{{1, 1}, {1, 1}, {1, 1}})
	for _, n := range degenerate {
		if !n.IsFinite() {
			t.Fatalf("expected finite normal for repeated points, got %v", n)
		}
	}
}

func TestResample_PreservesLengthAndSpacing(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		dx   float64
	}{
		{"line", line(7, 17), 30},
		{"gentle arc", arc(30, 800, 0.01), 35},
		{"sine", SineCenterline(Waveform{Length: 2000, Points: 80, Amplitude: 60, Wavelength: 800}, nil), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := ArcLength(tt.pts)
			out, err := Resample(tt.pts, tt.dx)
			if err != nil {
				t.Fatalf("resample failed: %v", err)
			}
			after := ArcLength(out)
			if math.Abs(after-before)/before > 0.01 {
				t.Errorf("expected length %.2f, got %.2f", before, after)
			}
			if out[0] != tt.pts[0] || out[len(out)-1] != tt.pts[len(tt.pts)-1] {
				t.Error("endpoints moved")
			}
			for i := 1; i < len(out)-1; i++ {
				d := out[i].Distance(out[i-1])
				if math.Abs(d-tt.dx) > 0.02*tt.dx {
					t.Errorf("segment %d: expected spacing %.2f, got %.2f", i, tt.dx, d)
				}
			}
			last := out[len(out)-1].Distance(out[len(out)-2])
			if last > tt.dx*1.02 {
				t.Errorf("final segment longer than spacing: %.2f", last)
			}
		})
	}
}

func TestResample_SampleCount(t *testing.T) {
	out, err := Resample(line(11, 10), 30) // length 100
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 points, got %d", len(out))
	}
	if math.Abs(out[3].X-90) > 1e-6 || out[4].X != 100 {
		t.Errorf("unexpected samples: %v", out)
	}
}

func TestResample_Idempotent(t *testing.T) {
	pts := SineCenterline(Waveform{Length: 3000, Points: 120, Amplitude: 40, Wavelength: 1200}, nil)
	once, err := Resample(pts, 30)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	twice, err := Resample(once, 30)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("expected %d points, got %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Distance(twice[i]) > 1.0 {
			t.Errorf("index %d moved by %.3f", i, once[i].Distance(twice[i]))
		}
	}
}

func TestResample_LinearFallback(t *testing.T) {
	pts := []Point{{0, 0}, {50, 0}, {50, 50}}
	out, err := Resample(pts, 20)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("expected 6 points, got %d", len(out))
	}
	if math.Abs(out[2].X-40) > 1e-9 || math.Abs(out[2].Y) > 1e-9 {
		t.Errorf("expected linear sample (40,0), got %v", out[2])
	}
	if math.Abs(out[3].X-50) > 1e-9 || math.Abs(out[3].Y-10) > 1e-9 {
		t.Errorf("expected linear sample (50,10), got %v", out[3])
	}
}

func TestResample_Unchanged(t *testing.T) {
	short := []Point{{0, 0}, {5, 0}}
	out, err := Resample(short, 30)
	if err != nil || len(out) != 2 {
		t.Errorf("expected short centerline unchanged, got %v (%v)", out, err)
	}

	single := []Point{{1, 2}}
	if out, _ := Resample(single, 30); len(out) != 1 {
		t.Errorf("expected single point unchanged, got %v", out)
	}
}

func TestResample_FailureReturnsInput(t *testing.T) {
	pts := []Point{{0, 0}, {40, 0}, {40, 0}, {80, 0}, {120, 0}}
	out, err := Resample(pts, 30)
	if !errors.Is(err, ErrInterpolation) {
		t.Fatalf("expected ErrInterpolation, got %v", err)
	}
	if len(out) != len(pts) {
		t.Fatalf("expected input returned, got %d points", len(out))
	}
	for i := range pts {
		if out[i] != pts[i] {
			t.Errorf("index %d changed", i)
		}
	}
}

func TestSineCenterline(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := SineCenterline(Waveform{Origin: Point{10, 5}, Length: 1000, Points: 51, Amplitude: 20, Wavelength: 500, Jitter: 1}, rng)
	if len(pts) != 51 {
		t.Fatalf("expected 51 points, got %d", len(pts))
	}
	if pts[0] != (Point{10, 5}) {
		t.Errorf("expected origin first, got %v", pts[0])
	}
	if math.Abs(pts[50].X-1010) > 1e-9 {
		t.Errorf("expected last x 1010, got %g", pts[50].X)
	}
}

func TestMeanAbs(t *testing.T) {
	v := []float64{100, -1, 1, -1}
	if got := MeanAbs(v, 3); got != 1 {
		t.Errorf("expected 1, got %g", got)
	}
	if got := MeanAbs(v, 30); math.Abs(got-25.75) > 1e-12 {
		t.Errorf("expected 25.75, got %g", got)
	}
	if got := MeanAbs(v, 0); math.Abs(got-25.75) > 1e-12 {
		t.Errorf("non-positive window should cover all samples, got %g", got)
	}
	if got := MeanAbs(nil, 3); got != 0 {
		t.Errorf("expected 0 for empty input, got %g", got)
	}
}
