package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/physics"
	"github.com/san-kum/galaxysim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

// Generator rebuilds the initial disk on reset.
type Generator func() (dynamo.Particles, error)

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	sim       *sim.Simulator
	generate  Generator
	dt        float64
	title     string
	canvas    *Canvas
	projector *Projector
	theme     Theme
	styles    styles

	radius  *metrics.MeanRadius
	energy  *metrics.Energy
	drift   *metrics.EnergyDrift
	angular *metrics.AngularMomentum

	radiusHistory []float64
	running       bool
	showHelp      bool
	err           error
}

// NewModel wraps s for the terminal. Each tick advances the simulation by
// dt; the metrics are attached to s here.
func NewModel(s *sim.Simulator, generate Generator, field *physics.CentralMass, dt, extent float64, title string) Model {
	m := Model{
		sim:           s,
		generate:      generate,
		dt:            dt,
		title:         title,
		canvas:        NewCanvas(width, height),
		projector:     NewProjector(extent),
		theme:         ThemeNebula,
		styles:        newStyles(ThemeNebula),
		radius:        metrics.NewMeanRadius(),
		energy:        metrics.NewEnergy(field),
		drift:         metrics.NewEnergyDrift(field),
		angular:       metrics.NewAngularMomentum(),
		radiusHistory: make([]float64, 0, historyCapacity),
		running:       true,
	}
	for _, metric := range []dynamo.Metric{m.radius, m.energy, m.drift, m.angular} {
		metric.Observe(s.Particles(), s.Time())
		s.AddMetric(metric)
	}
	m.radiusHistory = append(m.radiusHistory, m.radius.Value())
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Err is the simulation error that stopped the view, if any.
func (m Model) Err() error { return m.err }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case "+", "=":
			m.projector.ZoomIn()
		case "-", "_":
			m.projector.ZoomOut()
		case "x":
			m.projector.TiltBy(0.1)
		case "X":
			m.projector.TiltBy(-0.1)
		case "y":
			m.projector.SpinBy(0.1)
		case "Y":
			m.projector.SpinBy(-0.1)
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case TickMsg:
		if m.running {
			if err := m.step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		m.draw()
		return m, tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() error {
	if _, err := m.sim.Advance(m.dt); err != nil {
		return err
	}
	m.radiusHistory = append(m.radiusHistory, m.radius.Value())
	if len(m.radiusHistory) > historyCapacity {
		m.radiusHistory = m.radiusHistory[1:]
	}
	return nil
}

func (m *Model) reset() error {
	p, err := m.generate()
	if err != nil {
		return err
	}
	m.sim.Reset(p)
	for _, metric := range []dynamo.Metric{m.radius, m.energy, m.drift, m.angular} {
		metric.Observe(p, 0)
	}
	m.radiusHistory = append(m.radiusHistory[:0], m.radius.Value())
	return nil
}

// draw projects a pooled snapshot so the canvas never reads a collection
// that is being stepped.
func (m *Model) draw() {
	snap := m.sim.Snapshot()
	defer m.sim.Release(snap)

	m.canvas.Clear()
	sw, sh := m.canvas.SubWidth(), m.canvas.SubHeight()
	rot := m.projector.rotation()
	for i := range snap {
		if x, y, ok := m.projector.project(rot, snap[i].Position, sw, sh); ok {
			m.canvas.Set(x, y)
		}
	}

	// central mass marker
	cx, cy, _ := m.projector.project(rot, mgl32.Vec3{}, sw, sh)
	m.canvas.DrawLine(cx-2, cy, cx+2, cy)
	m.canvas.DrawLine(cx, cy-2, cx, cy+2)
}

func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(st.status.Render(status) + "\n\n")

	if len(m.radiusHistory) > 1 {
		chart := asciigraph.Plot(m.radiusHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Mean radius"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	rows := [][2]string{
		{"Time", fmt.Sprintf("%.2fs", m.sim.Time())},
		{"Particles", fmt.Sprintf("%d", len(m.sim.Particles()))},
		{"Mean r", fmt.Sprintf("%.3f", m.radius.Value())},
		{"Energy", fmt.Sprintf("%.2f", m.energy.Value())},
		{"Drift", fmt.Sprintf("%.2e", m.drift.Value())},
		{"Lz", fmt.Sprintf("%.2f", m.angular.Value())},
		{"Peak cell", fmt.Sprintf("%d", m.canvas.MaxHits())},
		{"Zoom", fmt.Sprintf("%.2fx", m.projector.Zoom)},
		{"Theme", m.theme.Name},
	}
	for _, row := range rows {
		s.WriteString(st.label.Render(row[0]) + st.value.Render(row[1]) + "\n")
	}

	s.WriteString(st.help.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Zoom x/y:Rotate ?:Help"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Regenerate the disk      ║
║  + / -    - Zoom in / out            ║
║  x / X    - Tilt the disk            ║
║  y / Y    - Spin the disk            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
