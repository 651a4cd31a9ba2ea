// Package ui provides the interactive chart viewer using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/state"
	"github.com/litescript/ls-astromaps/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewChart ViewMode = iota
	ViewWheel
	ViewTracks
	ViewEvents
)

const viewCount = 4

// Step bounds for the +/- keys.
const (
	minStep = time.Minute
	maxStep = 365 * 24 * time.Hour
)

// Msg types for Bubble Tea
type (
	// AnimTickMsg triggers spinner updates.
	AnimTickMsg time.Time

	// FrameMsg carries a newly computed chart.
	FrameMsg struct {
		Frame    *state.Frame
		Duration time.Duration
		Err      error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	env      *chart.Env
	location astro.GeoLocation

	// The instant currently displayed, and the one the viewer started at.
	instant time.Time
	origin  time.Time

	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	computing bool
	animTick  int

	chartView ChartViewModel
	wheel     WheelModel
	tracks    TracksModel

	snapshot state.Snapshot
}

// New creates a new root UI model starting at instant.
func New(stateMgr *state.Manager, env *chart.Env, location astro.GeoLocation, instant time.Time) Model {
	instant = instant.UTC()
	return Model{
		state:     stateMgr,
		env:       env,
		location:  location,
		instant:   instant,
		origin:    instant,
		viewMode:  ViewChart,
		chartView: NewChartViewModel(),
		wheel:     NewWheelModel(),
		tracks:    NewTracksModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.computeCmd(m.instant),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "c":
			m.viewMode = ViewChart
		case "2", "w":
			m.viewMode = ViewWheel
		case "3", "p":
			m.viewMode = ViewTracks
		case "4", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "right", "l", "]":
			cmds = append(cmds, m.stepBy(1))
		case "left", "h", "[":
			cmds = append(cmds, m.stepBy(-1))
		case "+", "=":
			m.state.SetStep(clampStep(m.state.Step() * 2))
		case "-", "_":
			m.state.SetStep(clampStep(m.state.Step() / 2))
		case "0", "home":
			if !m.instant.Equal(m.origin) {
				m.instant = m.origin
				cmds = append(cmds, m.recompute())
			}

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header 3 lines, footer 2 lines.
		contentHeight := msg.Height - 6
		m.chartView = m.chartView.SetSize(msg.Width, contentHeight)
		m.wheel = m.wheel.SetSize(msg.Width, contentHeight)
		m.tracks = m.tracks.SetSize(msg.Width, contentHeight)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case FrameMsg:
		m.computing = false
		m.state.Update(msg.Frame, msg.Duration, msg.Err)
		m.snapshot = m.state.Snapshot()
		m.chartView = m.chartView.UpdateData(m.snapshot)
		m.wheel = m.wheel.UpdateData(m.snapshot)
		m.tracks = m.tracks.UpdateData(m.state, m.snapshot)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) stepBy(dir int) tea.Cmd {
	m.instant = m.instant.Add(time.Duration(dir) * m.state.Step())
	return m.recompute()
}

func (m *Model) recompute() tea.Cmd {
	m.computing = true
	return m.computeCmd(m.instant)
}

// computeCmd places a chart off the UI goroutine.
func (m Model) computeCmd(instant time.Time) tea.Cmd {
	env, loc := m.env, m.location
	return func() tea.Msg {
		start := time.Now()
		c := chart.New(env, instant, loc)
		if _, err := c.Observer(); err != nil {
			return FrameMsg{Duration: time.Since(start), Err: err}
		}
		f := state.NewFrame(c)
		return FrameMsg{Frame: f, Duration: time.Since(start)}
	}
}

func clampStep(d time.Duration) time.Duration {
	if d < minStep {
		return minStep
	}
	if d > maxStep {
		return maxStep
	}
	return d
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewChart:
		m.chartView, cmd = m.chartView.Update(msg)
	case ViewWheel:
		m.wheel, cmd = m.wheel.Update(msg)
	case ViewTracks:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return cmd
}

// Instant returns the instant being displayed.
func (m Model) Instant() time.Time { return m.instant }

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewChart:
		content = m.chartView.View()
	case ViewWheel:
		content = m.wheel.View()
	case ViewTracks:
		content = m.tracks.View()
	case ViewEvents:
		content = renderEvents(m.snapshot.Events, m.height-6)
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(renderGradient("ls-astromaps"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s  %s  step %s", version.Version,
		m.instant.Format("2006-01-02 15:04 MST"), formatStep(m.state.Step()))))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

// renderGradient colors text along the blue to pink logo gradient.
func renderGradient(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1)))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Blue -> purple -> magenta -> pink, darker toward the bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	f := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*f), clampByte(g*f), clampByte(b*f))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Chart", "[2] Wheel", "[3] Tracks", "[4] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.computing || !m.state.HasData() && m.snapshot.LastError == nil:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing chart...")
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	default:
		status = accentStyle.Render("●") + dimStyle.Render(" computed in "+m.snapshot.ComputeDuration.Round(time.Microsecond).String())
	}

	var help string
	switch m.viewMode {
	case ViewChart:
		help = "←/→: step | +/-: step size | 0: reset | ↑↓: select | tab: switch view"
	case ViewWheel:
		help = "←/→: step | L: labels | r: rotate to ascendant"
	case ViewTracks:
		help = "←/→: step | +/-: step size | a: akima/linear"
	default:
		help = "←/→: step | tab: switch view"
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

func formatStep(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	default:
		return d.String()
	}
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
