package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/state"
)

// TableOptions tunes ChartTable.
type TableOptions struct {
	Motion   map[string]float64 // degrees per day; negative marks retrograde
	Selected int                // row to highlight, -1 for none
}

// ChartTable renders a frame as one row per body: sign, degree, latitude and distance.
func ChartTable(f *state.Frame, opts TableOptions) string {
	var b strings.Builder

	loc := f.Location.Name
	if loc == "" {
		loc = fmt.Sprintf("%.4f, %.4f", f.Location.LatDeg, f.Location.LonDeg)
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Chart for %s at %s", loc, f.Instant.UTC().Format(time.RFC3339))))
	b.WriteString("\n")

	header := fmt.Sprintf("%-12s %-16s %9s %8s %11s %s", "Body", "Position", "Longitude", "Lat", "Dist (AU)", "Motion")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, name := range f.Order {
		var row string
		if pos, ok := f.Positions[name]; ok {
			dist := "-"
			if pos.DistAU > 0 {
				dist = fmt.Sprintf("%.5f", pos.DistAU)
			}
			row = fmt.Sprintf("%-12s %-16s %9.4f %+8.3f %11s %s",
				truncate(name, 12),
				chart.Sign(pos.LonDeg).String(),
				pos.LonDeg,
				pos.LatDeg,
				dist,
				motion(opts.Motion, name),
			)
		} else {
			reason := "unknown"
			if err, ok := f.Failures[name]; ok {
				reason = err.Error()
			}
			row = fmt.Sprintf("%-12s %s", truncate(name, 12), errorStyle.Render(truncate(reason, 60)))
		}

		if i == opts.Selected {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	// Failures for names never registered, such as the catalog itself.
	var extra []string
	for name := range f.Failures {
		if !contains(f.Order, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %s: %v", name, f.Failures[name])))
		b.WriteString("\n")
	}

	return b.String()
}

func motion(rates map[string]float64, name string) string {
	rate, ok := rates[name]
	if !ok {
		return ""
	}
	s := fmt.Sprintf("%+.3f°/d", rate)
	if rate < 0 {
		return retroStyle.Render(s + " R")
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
