package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/deltasim/internal/experiment"
	"github.com/san-kum/deltasim/internal/geom"
	"github.com/san-kum/deltasim/internal/network"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxSpeed        = 50
	// oxbowFade is the lake age after which a lake is drawn dim; lakes
	// older than three times this are no longer drawn.
	oxbowFade = 150.0
)

// layers in increasing draw priority
const (
	layerSea = iota
	layerOldOxbow
	layerOxbow
	layerInactive
	layerActive
	layerCount
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// view is the world rectangle shown on the canvas. It only ever grows so
// the picture does not jump as channels move.
type view struct {
	minX, maxX, minY, maxY float64
}

func (v *view) include(pts []geom.Point) {
	for _, p := range pts {
		v.minX = math.Min(v.minX, p.X)
		v.maxX = math.Max(v.maxX, p.X)
		v.minY = math.Min(v.minY, p.Y)
		v.maxY = math.Max(v.maxY, p.Y)
	}
}

// Model steps an experiment and renders its planform. The network is
// advanced inside Update, so every frame shows a fully updated network.
type Model struct {
	exp           *experiment.Experiment
	name          string
	seaX          float64
	width, height int
	layers        [layerCount]*Canvas
	view          view
	running       bool
	speed         int
	snap          network.Snapshot
	last          network.TickReport
	liveHistory   []float64
	showHelp      bool
	theme         Theme
}

func NewModel(exp *experiment.Experiment) Model {
	cfg := exp.Config()
	m := Model{
		exp:         exp,
		name:        cfg.Name,
		seaX:        cfg.Run.SeaX,
		width:       width,
		height:      height,
		running:     true,
		speed:       1,
		liveHistory: make([]float64, 0, historyCapacity),
		theme:       Themes[0],
	}
	for i := range m.layers {
		m.layers[i] = NewCanvas(width, height)
	}
	m.resetView()
	return m
}

// resetView frames the source centerline and the map limit.
func (m *Model) resetView() {
	cfg := m.exp.Config()
	m.snap = m.exp.Network().Snapshot()
	spanX := cfg.Run.LimitX - cfg.Source.OriginX
	halfY := spanX * float64(m.height*4) / float64(m.width*2) / 2
	m.view = view{
		minX: cfg.Source.OriginX,
		maxX: cfg.Run.LimitX,
		minY: cfg.Source.OriginY - halfY,
		maxY: cfg.Source.OriginY + halfY,
	}
	for _, c := range m.snap.Channels {
		m.view.include(c.Points)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			m.theme = nextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs speed ticks and pauses once no channel is active.
func (m *Model) advance() {
	for i := 0; i < m.speed; i++ {
		if m.exp.Network().LiveCount() == 0 {
			m.running = false
			break
		}
		m.last, m.snap = m.exp.Step()
		m.liveHistory = append(m.liveHistory, float64(m.last.Live))
		if len(m.liveHistory) > historyCapacity {
			m.liveHistory = m.liveHistory[1:]
		}
	}
	for _, c := range m.snap.Channels {
		m.view.include(c.Points)
	}
}

func (m *Model) reset() {
	if err := m.exp.Reset(); err != nil {
		return
	}
	m.last = network.TickReport{}
	m.liveHistory = m.liveHistory[:0]
	m.running = true
	m.resetView()
}

// project maps world coordinates to canvas sub-pixels with a uniform scale,
// centred in the canvas. y grows upwards in the world.
func (m *Model) project(p geom.Point) (int, int) {
	cw, ch := float64(m.width*2), float64(m.height*4)
	spanX := math.Max(m.view.maxX-m.view.minX, geom.Eps)
	spanY := math.Max(m.view.maxY-m.view.minY, geom.Eps)
	scale := math.Min((cw-1)/spanX, (ch-1)/spanY)
	offX := (cw - 1 - spanX*scale) / 2
	offY := (ch - 1 - spanY*scale) / 2
	x := offX + (p.X-m.view.minX)*scale
	y := ch - 1 - offY - (p.Y-m.view.minY)*scale
	return int(math.Round(x)), int(math.Round(y))
}

func (m *Model) drawPoints(layer int, pts []geom.Point) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = m.project(p)
	}
	m.layers[layer].DrawPolyline(xs, ys)
}

func (m *Model) draw() {
	for _, l := range m.layers {
		l.Clear()
	}

	if m.seaX > m.view.minX && m.seaX < m.view.maxX {
		m.drawPoints(layerSea, []geom.Point{{X: m.seaX, Y: m.view.minY}, {X: m.seaX, Y: m.view.maxY}})
	}

	now := m.snap.Now()
	for _, c := range m.snap.Channels {
		for _, lake := range c.Oxbows {
			switch age := now - lake.CutTime; {
			case age <= oxbowFade:
				m.drawPoints(layerOxbow, lake.Points)
			case age <= 3*oxbowFade:
				m.drawPoints(layerOldOxbow, lake.Points)
			}
		}
	}
	for _, c := range m.snap.Channels {
		if c.Active() {
			m.drawPoints(layerActive, c.Points)
		} else {
			m.drawPoints(layerInactive, c.Points)
		}
	}
}

func (m *Model) layerColor(layer int) lipgloss.Color {
	switch layer {
	case layerActive:
		return m.theme.Active
	case layerInactive:
		return m.theme.Inactive
	case layerOxbow:
		return m.theme.Oxbow
	case layerOldOxbow:
		return m.theme.OldOxbow
	default:
		return m.theme.Sea
	}
}

// render merges the layers cell by cell. Dots from every layer are kept
// and the cell takes the colour of its highest-priority lit layer.
func (m *Model) render() string {
	var b strings.Builder
	for row := 0; row < m.height; row++ {
		var run strings.Builder
		runLayer := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLayer < 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(m.layerColor(runLayer)).Render(run.String()))
			}
			run.Reset()
		}

		for col := 0; col < m.width; col++ {
			cell := rune(brailleBlank)
			top := -1
			for layer, c := range m.layers {
				if c.Lit(row, col) {
					cell |= c.Grid[row][col]
					top = layer
				}
			}
			if top != runLayer {
				flush()
				runLayer = top
			}
			run.WriteRune(cell)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.exp.Network().LiveCount() == 0:
		return "SETTLED"
	case !m.running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.render())

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(m.theme.Accent).Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.liveHistory) > 1 {
		chart := asciigraph.Plot(m.liveHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("live channels"))
		s.WriteString(graphStyle.Foreground(m.theme.Active).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	cfg := m.exp.Config()
	row("Tick", fmt.Sprintf("%d", m.exp.Tick()))
	row("Time", fmt.Sprintf("%.1f", m.snap.Now()))
	row("Channels", fmt.Sprintf("%d live / %d total", m.snap.Live(), len(m.snap.Channels)))
	row("Oxbows", fmt.Sprintf("%d", m.snap.OxbowCount()))
	row("Branching", cfg.Branching.Model)
	row("Speed", fmt.Sprintf("%d ticks/frame", m.speed))
	row("Theme", m.theme.Name)

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset to the seed        ║
║  +        - Double ticks per frame   ║
║  -        - Halve ticks per frame    ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view in the alternate screen.
func Run(exp *experiment.Experiment) error {
	p := tea.NewProgram(NewModel(exp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
