package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/ephem"
	"github.com/litescript/ls-astromaps/internal/history"
)

const gutter = 9 // "330° Pis┤"

// PlotOptions sizes the track plot. Color false yields plain runes.
type PlotOptions struct {
	Width  int
	Height int
	Color  bool
}

// Tracks plots aligned longitude series against time. The vertical axis
// runs 0° at the bottom to 360° at the top with a gridline at every sign
// boundary; each body is drawn with its glyph.
func Tracks(a *history.Aligned, opts PlotOptions) string {
	width := opts.Width - gutter
	height := opts.Height
	if width < 10 || height < 6 {
		return "plot requires a larger area\n"
	}
	if a == nil || len(a.Axis) == 0 {
		return "no samples to plot\n"
	}

	canvas := make([][]rune, height)
	owner := make([][]int, height)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", width))
		owner[y] = make([]int, width)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}

	boundary := make(map[int]int) // row -> sign index starting there
	for k := 0; k < 12; k++ {
		y := rowFor(float64(k*30), height)
		boundary[y] = k
		for x := range canvas[y] {
			canvas[y][x] = '·'
		}
	}

	names := sortedSeries(a)
	for i, name := range names {
		g := glyph(name)
		for j, lon := range a.Series[name] {
			x := colFor(j, len(a.Axis), width)
			y := rowFor(lon, height)
			canvas[y][x] = g
			owner[y][x] = i
		}
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		if k, ok := boundary[y]; ok {
			label := fmt.Sprintf("%3d° %s┤", k*30, chart.Signs[k][:3])
			b.WriteString(styled(dimStyle, label, opts.Color))
		} else {
			b.WriteString(strings.Repeat(" ", gutter-1) + "│")
		}
		for x, r := range canvas[y] {
			switch {
			case owner[y][x] >= 0 && opts.Color:
				color := bodyColors[owner[y][x]%len(bodyColors)]
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
			case r == '·' && opts.Color:
				b.WriteString(dimStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", gutter-1) + "└" + strings.Repeat("─", width) + "\n")
	b.WriteString(timeAxis(a.Axis, width))
	b.WriteString(legend(names, opts.Color))
	return b.String()
}

// rowFor maps a longitude to a canvas row, 360° at the top.
func rowFor(lon float64, height int) int {
	y := int((360 - lon) / 360 * float64(height))
	if y < 0 {
		y = 0
	}
	if y >= height {
		y = height - 1
	}
	return y
}

func colFor(i, n, width int) int {
	if n <= 1 {
		return 0
	}
	return i * (width - 1) / (n - 1)
}

func timeAxis(axis []time.Time, width int) string {
	const layout = "2006-01-02 15:04"
	first := axis[0].UTC().Format(layout)
	last := axis[len(axis)-1].UTC().Format(layout)
	pad := width - len(first) - len(last)
	if pad < 1 || len(axis) == 1 {
		return strings.Repeat(" ", gutter) + first + "\n"
	}
	return strings.Repeat(" ", gutter) + first + strings.Repeat(" ", pad) + last + "\n"
}

func legend(names []string, color bool) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		item := fmt.Sprintf("%c %s", glyph(name), name)
		if color {
			item = lipgloss.NewStyle().Foreground(lipgloss.Color(bodyColors[i%len(bodyColors)])).Render(item)
		}
		parts = append(parts, item)
	}
	return strings.Repeat(" ", gutter) + strings.Join(parts, "  ") + "\n"
}

// sortedSeries returns series names with major bodies first in their usual
// order, then everything else alphabetically.
func sortedSeries(a *history.Aligned) []string {
	order := make([]string, 0, len(ephem.MajorBodies)+1)
	for _, info := range ephem.MajorBodies {
		order = append(order, info.Name)
	}
	order = append(order, body.AscendantName)

	var names []string
	seen := make(map[string]bool)
	for _, n := range order {
		if _, ok := a.Series[n]; ok {
			names = append(names, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range a.Series {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func styled(s lipgloss.Style, text string, color bool) string {
	if !color {
		return text
	}
	return s.Render(text)
}
