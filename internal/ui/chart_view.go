package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromaps/internal/render"
	"github.com/litescript/ls-astromaps/internal/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

// ChartViewModel shows the chart table with a selectable row.
type ChartViewModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewChartViewModel creates a new chart view.
func NewChartViewModel() ChartViewModel {
	return ChartViewModel{}
}

// SetSize updates the viewport size.
func (m ChartViewModel) SetSize(width, height int) ChartViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m ChartViewModel) UpdateData(snapshot state.Snapshot) ChartViewModel {
	m.snapshot = snapshot
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m ChartViewModel) rowCount() int {
	if m.snapshot.Frame == nil {
		return 0
	}
	return len(m.snapshot.Frame.Order)
}

// Update handles messages.
func (m ChartViewModel) Update(msg tea.Msg) (ChartViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := m.rowCount()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// SelectedBody returns the name of the highlighted body, or "".
func (m ChartViewModel) SelectedBody() string {
	if m.snapshot.Frame == nil || m.cursor >= len(m.snapshot.Frame.Order) {
		return ""
	}
	return m.snapshot.Frame.Order[m.cursor]
}

// View renders the chart table and the latest events.
func (m ChartViewModel) View() string {
	var b strings.Builder

	if m.snapshot.LastError != nil {
		b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
		b.WriteString("\n\n")
	}
	if m.snapshot.Frame == nil {
		if m.snapshot.LastError == nil {
			b.WriteString("Waiting for chart...\n")
		}
		return b.String()
	}

	b.WriteString(render.ChartTable(m.snapshot.Frame, render.TableOptions{
		Motion:   m.snapshot.Motion,
		Selected: m.cursor,
	}))

	if sel := m.SelectedBody(); sel != "" {
		if rate, ok := m.snapshot.Motion[sel]; ok {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("\n  %s moves %.3f° per day", sel, rate)))
			b.WriteString("\n")
		}
	}

	if events := m.snapshot.Events; len(events) > 0 {
		b.WriteString("\n")
		b.WriteString(renderEvents(events, 5))
	}
	return b.String()
}

// renderEvents lists the newest events last, at most limit of them.
func renderEvents(events []state.Event, limit int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	if len(events) == 0 {
		b.WriteString(mutedStyle.Render("  No events yet. Step the chart with ←/→."))
		b.WriteString("\n")
		return b.String()
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s  %-11s %-10s", e.Timestamp.Format("2006-01-02 15:04"), e.Type, e.Body)
		switch e.Type {
		case state.EventIngress:
			line += fmt.Sprintf(" %s → %s", e.OldSign, e.NewSign)
		case state.EventRetrograde, state.EventDirect:
			line += " in " + e.NewSign
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
