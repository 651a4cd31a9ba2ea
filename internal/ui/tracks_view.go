package ui

import (
	"errors"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-astromaps/internal/history"
	"github.com/litescript/ls-astromaps/internal/render"
	"github.com/litescript/ls-astromaps/internal/state"
)

// TracksModel plots the longitudes seen so far while stepping.
type TracksModel struct {
	width  int
	height int
	akima  bool

	aligned *history.Aligned
	err     error
	hist    *history.History
}

// NewTracksModel creates a new tracks view.
func NewTracksModel() TracksModel {
	return TracksModel{}
}

// SetSize updates the viewport size.
func (m TracksModel) SetSize(width, height int) TracksModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData rebuilds the tracks from the manager's per-body history.
func (m TracksModel) UpdateData(mgr *state.Manager, snapshot state.Snapshot) TracksModel {
	if snapshot.Frame == nil {
		return m
	}
	h := history.New()
	for _, name := range snapshot.Frame.Order {
		bh := mgr.GetBodyHistory(name)
		if bh == nil {
			continue
		}
		for _, p := range bh.Longitude {
			// Overwrite policy: revisiting an instant replaces the sample.
			_ = h.AddPosition(name, p.Timestamp, p.Value)
		}
	}
	m.hist = h
	return m.realign()
}

func (m TracksModel) realign() TracksModel {
	if m.hist == nil {
		return m
	}
	if m.akima {
		m.hist.SetInterpolator(history.AkimaAngle{})
	} else {
		m.hist.SetInterpolator(history.LinearAngle{})
	}
	// Bodies that did not resolve over the whole window are left out.
	names := m.hist.Bodies()
	for {
		m.aligned, m.err = m.hist.Align(names...)
		var gap *history.GapError
		if len(names) <= 1 || !errors.As(m.err, &gap) {
			return m
		}
		names = slices.DeleteFunc(names, func(n string) bool { return n == gap.Body })
	}
}

// Update handles messages.
func (m TracksModel) Update(msg tea.Msg) (TracksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "a" {
		m.akima = !m.akima
		m = m.realign()
	}
	return m, nil
}

// View renders the plot.
func (m TracksModel) View() string {
	var b strings.Builder
	mode := "linear"
	if m.akima {
		mode = "akima"
	}
	b.WriteString(titleStyle.Render("Longitude tracks") + mutedStyle.Render("  gaps: "+mode))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("  " + m.err.Error()))
	case m.aligned == nil:
		b.WriteString("  Waiting for chart...")
	case len(m.aligned.Axis) < 2:
		b.WriteString(mutedStyle.Render("  Step the chart with ←/→ to build tracks."))
	default:
		b.WriteString(render.Tracks(m.aligned, render.PlotOptions{
			Width:  m.width,
			Height: max(m.height-4, 6),
			Color:  true,
		}))
	}
	return b.String()
}
