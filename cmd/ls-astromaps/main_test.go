package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-astromaps/internal/ephem"
	"github.com/litescript/ls-astromaps/internal/history"
)

var now = time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		date, clock string
		want        time.Time
		wantErr     bool
	}{
		{"2024-12-25", "00:00:00", now, false},
		{"2024-03-20", "03:06", time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC), false},
		{"2024-13-01", "00:00:00", time.Time{}, true},
		{"25/12/2024", "00:00", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseInstant(tt.date, tt.clock)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseInstant(%q, %q) expected error", tt.date, tt.clock)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("parseInstant(%q, %q) = %s, %v; want %s", tt.date, tt.clock, got, err, tt.want)
		}
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := parseArgs(nil, now, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !opts.instant.Equal(now) {
		t.Errorf("instant = %s, want now", opts.instant)
	}
	if loc := opts.cfg.GeoLocation(); loc.Name != "Paris" {
		t.Errorf("location = %+v, want Paris", loc)
	}
	if opts.cfg.Output.Path != "celestial_positions.json" {
		t.Errorf("output = %q", opts.cfg.Output.Path)
	}
	if opts.tui {
		t.Error("tui should be off by default")
	}
}

func TestParseArgs_FlagsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "astromaps.yaml")
	yaml := "location:\n  name: Quito\n  latitude: -0.18\n  longitude: -78.47\nsampling:\n  interval: 2h\n  span: 24h\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := parseArgs([]string{
		"-config", cfgPath,
		"-date", "2024-06-21", "-time", "12:00",
		"-delta", "-6h",
		"-lat", "51.5",
		"-interval", "30m",
		"-ephemeris", "vsop87:/data/vsop87",
		"-minor",
		"-plot",
	}, now, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}

	cfg := opts.cfg
	if want := time.Date(2024, 6, 21, 6, 0, 0, 0, time.UTC); !opts.instant.Equal(want) {
		t.Errorf("instant = %s, want %s", opts.instant, want)
	}
	if cfg.Location.Latitude != 51.5 || cfg.Location.Longitude != -78.47 || cfg.Location.Name != "" {
		t.Errorf("location = %+v", cfg.Location)
	}
	if cfg.Sampling.Interval != 30*time.Minute || cfg.Sampling.Span != 24*time.Hour {
		t.Errorf("sampling = %s/%s", cfg.Sampling.Interval, cfg.Sampling.Span)
	}
	if ec := cfg.EphemerisConfig(); ec.Mode != ephem.ModeVSOP87 || ec.Path != "/data/vsop87" {
		t.Errorf("ephemeris = %+v", ec)
	}
	if !cfg.Catalog.Enabled || !cfg.Output.Plot {
		t.Error("-minor and -plot should be set")
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad latitude", []string{"-lat", "91"}},
		{"bad date", []string{"-date", "yesterday"}},
		{"jpl without file", []string{"-ephemeris", "jpl"}},
		{"zero interval", []string{"-interval", "0s"}},
		{"stray argument", []string{"extra"}},
		{"unknown flag", []string{"-moon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, now, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_SingleChart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.json")
	opts, err := parseArgs([]string{"-date", "2024-12-25", "-time", "00:00:00", "-output", out, "-log-level", "error"}, now, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "Capricorn") {
		t.Errorf("stdout missing chart table:\n%s", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Bodies map[string]struct {
			Longitude float64 `json:"longitude"`
		} `json:"bodies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("chart JSON: %v", err)
	}
	if len(doc.Bodies) != 11 {
		t.Errorf("exported %d bodies, want 11", len(doc.Bodies))
	}
}

func TestRun_Sampling(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tracks.json")
	metricsFile := filepath.Join(dir, "astromaps.prom")

	opts, err := parseArgs([]string{
		"-date", "2024-12-25", "-time", "00:00",
		"-interval", "12h", "-span", "72h",
		"-output", out, "-plot", "-metrics-file", metricsFile,
		"-log-level", "error",
	}, now, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "Sampled 7 instants: 77 positions recorded, 0 failures") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "☉ sun") {
		t.Errorf("plot missing from stdout:\n%s", stdout.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	hist, err := history.ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got := hist.Len("sun"); got != 7 {
		t.Errorf("sun samples = %d, want 7", got)
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prom), "astromaps_charts_total 7") {
		t.Errorf("metrics textfile:\n%s", prom)
	}
}

func TestRun_TUIRequiresTerminal(t *testing.T) {
	opts, err := parseArgs([]string{"-tui"}, now, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), opts, &stdout, io.Discard); err == nil {
		t.Error("expected an error without a terminal")
	}
}
