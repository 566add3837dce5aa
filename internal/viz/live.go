// Package viz renders a live terminal view of a follow or playback session.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	canvasW         = 64
	canvasH         = 20
	historyCapacity = 400
	// world units spanned by the canvas horizontally
	viewSpan = 12.0
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	bodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	trailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Sample is one tick's view of the session.
type Sample struct {
	T         float32
	BodyPos   mgl32.Vec3
	TargetPos mgl32.Vec3
	Accel     mgl32.Vec3
}

// Hooks connect the view to the running session.
type Hooks struct {
	// Step advances the whole session by one fixed tick.
	Step func()
	// Sample reads the current session state.
	Sample func() Sample
	// Recalibrate is invoked on the 'r' key; may be nil.
	Recalibrate func()
}

type tickMsg time.Time

// Model is the bubbletea model for the live session view.
type Model struct {
	hooks    Hooks
	dt       float32
	mode     string
	running  bool
	last     Sample
	trail    []mgl32.Vec3
	errHist  []float32
	ticks    int
}

// NewModel wires a live view around a session advanced by hooks.Step at the
// given fixed timestep.
func NewModel(hooks Hooks, dt float32, mode string) Model {
	return Model{
		hooks:   hooks,
		dt:      dt,
		mode:    mode,
		running: true,
		trail:   make([]mgl32.Vec3, 0, 128),
		errHist: make([]float32, 0, historyCapacity),
	}
}

// Run starts the bubbletea program and blocks until it exits.
func Run(hooks Hooks, dt float32, mode string) error {
	_, err := tea.NewProgram(NewModel(hooks, dt, mode), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(m.dt)*float64(time.Second)), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
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
			if m.hooks.Recalibrate != nil {
				m.hooks.Recalibrate()
			}
		}
		return m, nil

	case tickMsg:
		if m.running {
			m.hooks.Step()
			m.last = m.hooks.Sample()
			m.ticks++

			m.trail = append(m.trail, m.last.BodyPos)
			if len(m.trail) > 128 {
				m.trail = m.trail[1:]
			}
			m.errHist = append(m.errHist, m.last.BodyPos.Sub(m.last.TargetPos).Len())
			if len(m.errHist) > historyCapacity {
				m.errHist = m.errHist[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("retrace · "+m.mode) + "\n")
	b.WriteString(m.renderCanvas())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString(helpStyle.Render("space pause · r recalibrate · q quit"))
	return b.String()
}

// renderCanvas draws the XZ plane centered on the target with the body's
// trail behind it.
func (m Model) renderCanvas() string {
	grid := make([][]string, canvasH)
	for y := range grid {
		grid[y] = make([]string, canvasW)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	center := m.last.TargetPos
	plot := func(p mgl32.Vec3, glyph string) {
		x := int((float64(p[0]-center[0])/viewSpan + 0.5) * float64(canvasW))
		y := int((float64(p[2]-center[2])/viewSpan + 0.5) * float64(canvasH))
		if x >= 0 && x < canvasW && y >= 0 && y < canvasH {
			grid[y][x] = glyph
		}
	}

	for _, p := range m.trail {
		plot(p, trailStyle.Render("·"))
	}
	plot(m.last.TargetPos, targetStyle.Render("+"))
	plot(m.last.BodyPos, bodyStyle.Render("●"))

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStats() string {
	row := func(label string, format string, args ...any) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n"
	}

	var b strings.Builder
	b.WriteString(row("time", "%.2fs", m.last.T))
	b.WriteString(row("body", "%.2f %.2f %.2f", m.last.BodyPos[0], m.last.BodyPos[1], m.last.BodyPos[2]))
	b.WriteString(row("target", "%.2f %.2f %.2f", m.last.TargetPos[0], m.last.TargetPos[1], m.last.TargetPos[2]))
	b.WriteString(row("error", "%.3f", m.last.BodyPos.Sub(m.last.TargetPos).Len()))
	b.WriteString(row("accel", "%.2f", m.last.Accel.Len()))
	b.WriteString(row("err trend", "%s", sparkline(m.errHist, 32)))
	return b.String()
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func sparkline(vals []float32, width int) string {
	if len(vals) == 0 {
		return ""
	}
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}
	var max float32
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}
	var b strings.Builder
	for _, v := range vals {
		idx := int(v / max * float32(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
