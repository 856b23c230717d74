package metrics

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
	"gonum.org/v1/gonum/stat"
)

// MeanSinuosity is the mean ratio of along-channel length to straight-line
// distance between the endpoints, over active channels.
type MeanSinuosity struct {
	value float64
}

func NewMeanSinuosity() *MeanSinuosity { return &MeanSinuosity{} }

func (m *MeanSinuosity) Name() string { return "mean_sinuosity" }

func (m *MeanSinuosity) Observe(snap network.Snapshot, _ network.TickReport) {
	var vals []float64
	for _, c := range snap.Channels {
		if !c.Active() {
			continue
		}
		if s, ok := Sinuosity(c.Points); ok {
			vals = append(vals, s)
		}
	}
	if len(vals) == 0 {
		m.value = 0
		return
	}
	m.value = stat.Mean(vals, nil)
}

func (m *MeanSinuosity) Value() float64 { return m.value }
func (m *MeanSinuosity) Reset()         { m.value = 0 }

// Sinuosity returns false for degenerate centerlines whose endpoints coincide.
func Sinuosity(pts []geom.Point) (float64, bool) {
	if len(pts) < 2 {
		return 0, false
	}
	ls := LineString(pts)
	chord := planar.Distance(ls[0], ls[len(ls)-1])
	if chord < geom.Eps {
		return 0, false
	}
	return planar.Length(ls) / chord, true
}

// LineString converts a centerline to an orb geometry.
func LineString(pts []geom.Point) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

type MeanWidth struct {
	value float64
}

func NewMeanWidth() *MeanWidth { return &MeanWidth{} }

func (m *MeanWidth) Name() string { return "mean_width" }

func (m *MeanWidth) Observe(snap network.Snapshot, _ network.TickReport) {
	var widths []float64
	for _, c := range snap.Channels {
		if c.Active() {
			widths = append(widths, c.Width)
		}
	}
	if len(widths) == 0 {
		m.value = 0
		return
	}
	m.value = stat.Mean(widths, nil)
}

func (m *MeanWidth) Value() float64 { return m.value }
func (m *MeanWidth) Reset()         { m.value = 0 }

// DeltaFront tracks the furthest downstream tip of any channel.
type DeltaFront struct {
	x float64
}

func NewDeltaFront() *DeltaFront { return &DeltaFront{x: math.Inf(-1)} }

func (m *DeltaFront) Name() string { return "delta_front" }

func (m *DeltaFront) Observe(snap network.Snapshot, _ network.TickReport) {
	for _, c := range snap.Channels {
		if n := len(c.Points); n > 0 && c.Points[n-1].X > m.x {
			m.x = c.Points[n-1].X
		}
	}
}

func (m *DeltaFront) Value() float64 {
	if math.IsInf(m.x, -1) {
		return 0
	}
	return m.x
}

func (m *DeltaFront) Reset() { m.x = math.Inf(-1) }
