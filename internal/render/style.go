// Package render draws charts and longitude tracks for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)

	retroStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Glyphs maps body names to their plot glyph. Bodies not listed use '*'.
var Glyphs = map[string]rune{
	"sun":       '☉',
	"mercury":   '☿',
	"venus":     '♀',
	"earth":     '⊕',
	"mars":      '♂',
	"jupiter":   '♃',
	"saturn":    '♄',
	"uranus":    '♅',
	"neptune":   '♆',
	"pluto":     '♇',
	"ascendant": 'A',
}

// bodyColors cycles through distinct foreground colors for tracks.
var bodyColors = []string{"220", "250", "213", "39", "196", "208", "179", "51", "33", "141", "46", "244"}

func glyph(name string) rune {
	if g, ok := Glyphs[name]; ok {
		return g
	}
	return '*'
}
