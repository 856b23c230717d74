package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
)

type SVGOptions struct {
	Width, Height int
	Background    string
	ActiveColor   string
	InactiveColor string
	OxbowColor    string
	// SeaX draws a dashed vertical line at the sea boundary when ShowSea is set.
	SeaX    float64
	ShowSea bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:         1200,
		Height:        600,
		Background:    "#0a0a0a",
		ActiveColor:   "#4fc3f7",
		InactiveColor: "#37474f",
		OxbowColor:    "#26a69a",
	}
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(pts []geom.Point) {
	for _, p := range pts {
		b.minX = math.Min(b.minX, p.X)
		b.maxX = math.Max(b.maxX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxY = math.Max(b.maxY, p.Y)
	}
}

func snapshotBounds(snap network.Snapshot) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, c := range snap.Channels {
		b.add(c.Points)
		for _, l := range c.Oxbows {
			b.add(l.Points)
		}
	}
	return b
}

// projection maps world coordinates onto the image, preserving aspect ratio.
type projection struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

func newProjection(b bounds, width, height int) projection {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)
	return projection{
		minX:   b.minX,
		minY:   b.minY,
		scale:  scale,
		offX:   (float64(width) - rangeX*scale) / 2,
		offY:   (float64(height) - rangeY*scale) / 2,
		height: float64(height),
	}
}

func (p projection) xy(pt geom.Point) (float64, float64) {
	x := p.offX + (pt.X-p.minX)*p.scale
	y := p.height - p.offY - (pt.Y-p.minY)*p.scale
	return x, y
}

func (p projection) path(sb *strings.Builder, pts []geom.Point) {
	for i, pt := range pts {
		x, y := p.xy(pt)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
}

// NetworkToSVG draws the planform of a snapshot. Stroke widths follow
// channel widths at the image scale.
func NetworkToSVG(snap network.Snapshot, opts SVGOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	b := snapshotBounds(snap)
	if math.IsInf(b.minX, 1) {
		sb.WriteString("</svg>")
		return sb.String()
	}
	proj := newProjection(b, opts.Width, opts.Height)

	if opts.ShowSea && opts.SeaX >= b.minX && opts.SeaX <= b.maxX {
		x, _ := proj.xy(geom.Point{X: opts.SeaX})
		fmt.Fprintf(&sb, `<line class="sea" x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#1565c0" stroke-dasharray="8 6"/>
`, x, x, opts.Height)
	}

	for _, c := range snap.Channels {
		for _, l := range c.Oxbows {
			if len(l.Points) < 2 {
				continue
			}
			fmt.Fprintf(&sb, `<path class="oxbow" fill="none" stroke="%s" stroke-width="%.2f" stroke-dasharray="4 3" d="`,
				opts.OxbowColor, math.Max(0.5, c.Width*proj.scale*0.5))
			proj.path(&sb, l.Points)
			sb.WriteString("\"/>\n")
		}
	}

	for _, c := range snap.Channels {
		if len(c.Points) < 2 {
			continue
		}
		color := opts.ActiveColor
		if !c.Active() {
			color = opts.InactiveColor
		}
		fmt.Fprintf(&sb, `<path class="channel" data-id="%d" fill="none" stroke="%s" stroke-width="%.2f" stroke-linejoin="round" d="`,
			c.ID, color, math.Max(0.5, c.Width*proj.scale))
		proj.path(&sb, c.Points)
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
