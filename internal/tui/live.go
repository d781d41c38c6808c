// Package tui shows generation progress live: a counter, the latest
// per-trajectory fit efforts as a sparkline, and failures.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const maxHistory = 60

// TrajectoryMsg reports one completed fit.
type TrajectoryMsg struct {
	Done   int
	Total  int
	Effort float64
	Err    error
}

// DoneMsg ends the view when generation finishes.
type DoneMsg struct {
	RunID string
	Err   error
}

type Model struct {
	done    int
	total   int
	failed  int
	efforts []float64
	lastErr error
	runID   string
	err     error
	quit    bool
}

func NewModel(total int) *Model {
	return &Model{
		total:   total,
		efforts: make([]float64, 0, maxHistory),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
	case TrajectoryMsg:
		m.done = msg.Done
		m.total = msg.Total
		if msg.Err != nil {
			m.failed++
			m.lastErr = msg.Err
		} else {
			m.efforts = append(m.efforts, msg.Effort)
			if len(m.efforts) > maxHistory {
				m.efforts = m.efforts[1:]
			}
		}
	case DoneMsg:
		m.runID = msg.RunID
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("trajgen") + dim.Render("  generating expert trajectories") + "\n\n")

	bar := progressBar(m.done, m.total, 40)
	b.WriteString(fmt.Sprintf("  %s %s\n", bar,
		white.Render(fmt.Sprintf("%d/%d", m.done, m.total))))

	if m.failed > 0 {
		b.WriteString("  " + red.Render(fmt.Sprintf("%d failed", m.failed)))
		if m.lastErr != nil {
			b.WriteString(dim.Render("  " + m.lastErr.Error()))
		}
		b.WriteString("\n")
	}

	if len(m.efforts) > 1 {
		b.WriteString("\n" + dim.Render("  control effort per fit") + "\n")
		graph := asciigraph.Plot(m.efforts,
			asciigraph.Height(6),
			asciigraph.Width(50),
		)
		b.WriteString(indent(graph, 2) + "\n")
	}

	switch {
	case m.err != nil:
		b.WriteString("\n  " + red.Render("error: "+m.err.Error()) + "\n")
	case m.runID != "":
		b.WriteString("\n  " + green.Render("saved "+m.runID) + "\n")
	default:
		b.WriteString("\n  " + dim.Render("q to abort") + "\n")
	}

	return b.String()
}

// Aborted reports whether the user quit before generation finished.
func (m *Model) Aborted() bool { return m.quit }

func progressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return yellow.Render(strings.Repeat("█", filled)) +
		dim.Render(strings.Repeat("░", width-filled))
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
