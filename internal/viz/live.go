// Package viz renders a live terminal view of a running network
// simulation: an asciigraph trace of selected vertex components with
// a stats panel alongside.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/sim"
)

const (
	graphWidth      = 72
	graphHeight     = 16
	historyCapacity = 600
	stepsPerTick    = 4
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the simulation on ticks and renders the trajectory of
// one state component.
type Model struct {
	sys     sim.System
	stepper sim.Stepper
	name    string

	state    dyn.State
	t, dt    float64
	running  bool
	selected int
	history  []float64
	err      error
}

func NewModel(sys sim.System, stepper sim.Stepper, x0 dyn.State, dt float64, name string) Model {
	return Model{
		sys:     sys,
		stepper: stepper,
		name:    name,
		state:   x0.Clone(),
		dt:      dt,
		running: true,
		history: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab", "right", "l":
			m.selected = (m.selected + 1) % m.sys.Dim()
			m.history = m.history[:0]
		case "left", "h":
			m.selected = (m.selected + m.sys.Dim() - 1) % m.sys.Dim()
			m.history = m.history[:0]
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < stepsPerTick; i++ {
				next, err := m.stepper.Step(m.sys, m.state, m.t, m.dt)
				if err != nil {
					m.err = err
					break
				}
				m.state = next
				m.t += m.dt
			}
			m.history = append(m.history, m.state[m.selected])
			if len(m.history) > historyCapacity {
				m.history = m.history[len(m.history)-historyCapacity:]
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("netdyn live: %s", m.name)))
	b.WriteString("\n")

	if len(m.history) > 1 {
		plot := asciigraph.Plot(m.history,
			asciigraph.Width(graphWidth),
			asciigraph.Height(graphHeight),
			asciigraph.Caption(fmt.Sprintf("component %d", m.selected)),
		)
		b.WriteString(graphStyle.Render(plot))
		b.WriteString("\n")
	}

	stats := []struct{ label, value string }{
		{"t", fmt.Sprintf("%.3f", m.t)},
		{"dt", fmt.Sprintf("%.4f", m.dt)},
		{"dim", fmt.Sprintf("%d", m.sys.Dim())},
		{"norm", fmt.Sprintf("%.5f", m.state.Norm())},
	}
	for _, s := range stats {
		b.WriteString(labelStyle.Render(s.label))
		b.WriteString(valueStyle.Render(s.value))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(valueStyle.Render(fmt.Sprintf("stopped: %v", m.err)))
		b.WriteString("\n")
	}
	if !m.running {
		b.WriteString(valueStyle.Render("paused"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · tab/←/→ component · q quit"))
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(sys sim.System, stepper sim.Stepper, x0 dyn.State, dt float64, name string) error {
	p := tea.NewProgram(NewModel(sys, stepper, x0, dt, name))
	_, err := p.Run()
	return err
}
