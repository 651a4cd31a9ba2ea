package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/history"
	"github.com/litescript/ls-astromaps/internal/state"
)

var t0 = time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

func testFrame() *state.Frame {
	return &state.Frame{
		Instant:  t0,
		Location: astro.Paris,
		Order:    []string{"sun", "mars", "ascendant", "pluto"},
		Positions: map[string]body.Position{
			"sun":       {LonDeg: 273.9, DistAU: 0.9836},
			"mars":      {LonDeg: 127.2, LatDeg: 3.1, DistAU: 0.66},
			"ascendant": {LonDeg: 184.627},
		},
		Failures: map[string]error{
			"pluto":   body.ErrEphemerisUnavailable,
			"catalog": errors.New("open MPCORB.DAT: no such file"),
		},
	}
}

func TestChartTable(t *testing.T) {
	out := ChartTable(testFrame(), TableOptions{
		Motion:   map[string]float64{"mars": -0.31, "sun": 1.019},
		Selected: -1,
	})

	for _, want := range []string{
		"Chart for Paris at 2024-12-25T00:00:00Z",
		"Capricorn",
		"Leo",
		"Libra  4°37'",
		"-0.310°/d R",
		"+1.019°/d",
		"ephemeris unavailable",
		"catalog: open MPCORB.DAT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	// The ascendant has no distance.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "ascendant") && !strings.Contains(line, " - ") {
			t.Errorf("ascendant row should show no distance: %q", line)
		}
	}
}

func TestChartTable_UnnamedLocation(t *testing.T) {
	f := testFrame()
	f.Location = astro.GeoLocation{LatDeg: -33.8688, LonDeg: 151.2093}
	out := ChartTable(f, TableOptions{Selected: 0})
	if !strings.Contains(out, "-33.8688, 151.2093") {
		t.Errorf("expected coordinates in title:\n%s", out)
	}
}

func alignedTracks(t *testing.T) *history.Aligned {
	t.Helper()
	h := history.New()
	for i := 0; i < 10; i++ {
		ts := t0.Add(time.Duration(i) * 24 * time.Hour)
		mustAdd(t, h, "sun", ts, 270+float64(i))
		mustAdd(t, h, "mars", ts, 127-float64(i)*0.3)
		mustAdd(t, h, "ceres", ts, 10)
	}
	a, err := h.Align()
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	return a
}

func mustAdd(t *testing.T, h *history.History, name string, ts time.Time, lon float64) {
	t.Helper()
	if err := h.AddPosition(name, ts, lon); err != nil {
		t.Fatal(err)
	}
}

func TestTracks(t *testing.T) {
	out := Tracks(alignedTracks(t), PlotOptions{Width: 60, Height: 24})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// 24 plot rows, the x axis, the time labels and the legend.
	if len(lines) != 27 {
		t.Fatalf("got %d lines, want 27:\n%s", len(lines), out)
	}
	for _, want := range []string{"  0° Ari┤", "270° Cap┤", "330° Pis┤", "☉ sun", "♂ mars", "* ceres",
		"2024-12-25 00:00", "2025-01-03 00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("plot missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "☉ sun") > strings.Index(out, "* ceres") {
		t.Error("legend should list major bodies before minor ones")
	}

	// Sun longitudes 270-279 sit on the rows just above the 270° gridline.
	row270 := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "270°") {
			row270 = i
		}
	}
	found := false
	for _, line := range lines[row270-1 : row270+1] {
		if strings.ContainsRune(line, '☉') {
			found = true
		}
	}
	if !found {
		t.Errorf("sun track not near the 270° gridline:\n%s", out)
	}
}

func TestTracks_Degenerate(t *testing.T) {
	if out := Tracks(alignedTracks(t), PlotOptions{Width: 12, Height: 20}); !strings.Contains(out, "larger area") {
		t.Errorf("narrow plot = %q", out)
	}
	if out := Tracks(&history.Aligned{}, PlotOptions{Width: 60, Height: 20}); !strings.Contains(out, "no samples") {
		t.Errorf("empty plot = %q", out)
	}
}

func TestRowFor(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{0, 35},
		{359.99, 0},
		{180, 18},
		{90, 27},
	}
	for _, tt := range tests {
		if got := rowFor(tt.lon, 36); got != tt.want {
			t.Errorf("rowFor(%v) = %d, want %d", tt.lon, got, tt.want)
		}
	}
}
