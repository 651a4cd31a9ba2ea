package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/render"
	"github.com/litescript/ls-astromaps/internal/state"
)

// WheelModel draws the zodiac as a circle with each body at its longitude.
type WheelModel struct {
	width  int
	height int

	snapshot state.Snapshot

	// Place the ascendant on the left, as on a horoscope, instead of 0° Aries.
	ascendantLeft bool
	labels        bool
}

// NewWheelModel creates a new wheel view.
func NewWheelModel() WheelModel {
	return WheelModel{ascendantLeft: true, labels: true}
}

// SetSize updates the viewport size.
func (m WheelModel) SetSize(width, height int) WheelModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new snapshot.
func (m WheelModel) UpdateData(snapshot state.Snapshot) WheelModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m WheelModel) Update(msg tea.Msg) (WheelModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "r":
			m.ascendantLeft = !m.ascendantLeft
		case "L":
			m.labels = !m.labels
		}
	}
	return m, nil
}

// rotation returns the longitude drawn at the left edge of the wheel.
func (m WheelModel) rotation() float64 {
	if m.ascendantLeft && m.snapshot.Frame != nil {
		if asc, ok := m.snapshot.Frame.Positions[body.AscendantName]; ok {
			return asc.LonDeg
		}
	}
	return 0
}

// project maps a longitude to wheel coordinates. Longitude grows
// counter-clockwise from the left edge.
func project(lon, rot float64, cx, cy int, r float64) (int, int) {
	theta := (lon - rot + 180) * math.Pi / 180
	x := cx + int(math.Round(r*math.Cos(theta)))
	y := cy - int(math.Round(r*math.Sin(theta)*0.5)) // aspect ratio correction
	return x, y
}

// View renders the wheel.
func (m WheelModel) View() string {
	if m.width < 40 || m.height < 12 {
		return "Terminal too small for wheel view"
	}
	if m.snapshot.Frame == nil {
		return "Waiting for chart..."
	}

	h := m.height - 2
	w := m.width
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}

	cx, cy := w/2, h/2
	outer := math.Min(float64(cx)-2, float64(cy)*2-2)
	inner := outer * 0.7
	rot := m.rotation()

	drawCircle(grid, cx, cy, outer)
	drawCircle(grid, cx, cy, inner)

	// Sign cusps and abbreviations between the rings.
	for k := 0; k < 12; k++ {
		for _, r := range []float64{inner + 1, outer - 1} {
			if x, y := project(float64(k*30), rot, cx, cy, r); inBounds(grid, x, y) {
				grid[y][x] = '+'
			}
		}
		x, y := project(float64(k*30)+15, rot, cx, cy, (inner+outer)/2)
		writeAt(grid, x-1, y, chart.Signs[k][:3])
	}

	placeBodies(grid, m.snapshot.Frame, rot, cx, cy, inner-2, m.labels)

	glyphStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	var b strings.Builder
	for _, row := range grid {
		for _, r := range row {
			switch r {
			case '·', '+':
				b.WriteString(mutedStyle.Render(string(r)))
			case ' ':
				b.WriteRune(r)
			default:
				if _, isGlyph := glyphRunes[r]; isGlyph {
					b.WriteString(glyphStyle.Render(string(r)))
				} else {
					b.WriteRune(r)
				}
			}
		}
		b.WriteString("\n")
	}

	mode := "0° Aries on the left"
	if rot != 0 {
		mode = fmt.Sprintf("ascendant on the left (%s)", chart.Sign(rot))
	}
	b.WriteString(mutedStyle.Render("  " + mode))
	return b.String()
}

// placeBodies draws each body glyph at radius r, stepping inward one unit at
// a time while the cell already holds a glyph or label. Labels stop at the
// first taken cell.
func placeBodies(grid [][]rune, f *state.Frame, rot float64, cx, cy int, r float64, labels bool) {
	taken := make(map[[2]int]bool)
	for _, name := range f.Order {
		pos, ok := f.Positions[name]
		if !ok {
			continue
		}
		radius := r
		x, y := project(pos.LonDeg, rot, cx, cy, radius)
		for taken[[2]int{x, y}] && radius > 1 {
			radius--
			x, y = project(pos.LonDeg, rot, cx, cy, radius)
		}
		if !inBounds(grid, x, y) || taken[[2]int{x, y}] {
			continue
		}
		g, ok := render.Glyphs[name]
		if !ok {
			g = '*'
		}
		grid[y][x] = g
		taken[[2]int{x, y}] = true

		if !labels {
			continue
		}
		for i, c := range []rune(name) {
			lx := x + 2 + i
			if !inBounds(grid, lx, y) || taken[[2]int{lx, y}] {
				break
			}
			grid[y][lx] = c
			taken[[2]int{lx, y}] = true
		}
	}
}

var glyphRunes = func() map[rune]struct{} {
	out := map[rune]struct{}{'*': {}}
	for _, g := range render.Glyphs {
		out[g] = struct{}{}
	}
	return out
}()

func drawCircle(grid [][]rune, cx, cy int, r float64) {
	if r < 1 {
		return
	}
	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(r*math.Cos(theta))
		y := cy - int(r*math.Sin(theta)*0.5)
		if inBounds(grid, x, y) && grid[y][x] == ' ' {
			grid[y][x] = '·'
		}
	}
}

func inBounds(grid [][]rune, x, y int) bool {
	return y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y])
}

func writeAt(grid [][]rune, x, y int, s string) {
	for i, r := range []rune(s) {
		if inBounds(grid, x+i, y) {
			grid[y][x+i] = r
		}
	}
}
