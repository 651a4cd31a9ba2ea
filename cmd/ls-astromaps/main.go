// Command ls-astromaps computes chart positions of the planets, minor planets
// and ascendant for a place and instant, and samples them over time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-astromaps/internal/catalog"
	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/config"
	"github.com/litescript/ls-astromaps/internal/ephem"
	"github.com/litescript/ls-astromaps/internal/history"
	"github.com/litescript/ls-astromaps/internal/logging"
	"github.com/litescript/ls-astromaps/internal/metrics"
	"github.com/litescript/ls-astromaps/internal/render"
	"github.com/litescript/ls-astromaps/internal/sampler"
	"github.com/litescript/ls-astromaps/internal/state"
	"github.com/litescript/ls-astromaps/internal/ui"
)

// options is the resolved command line.
type options struct {
	cfg     *config.Config
	instant time.Time
	tui     bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	opts, err := parseArgs(os.Args[1:], time.Now(), os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads flags over the configuration file (when given) and the defaults.
func parseArgs(args []string, now time.Time, stderr io.Writer) (*options, error) {
	now = now.UTC()
	fs := flag.NewFlagSet("ls-astromaps", flag.ContinueOnError)
	fs.SetOutput(stderr)

	date := fs.String("date", now.Format("2006-01-02"), "Date in YYYY-MM-DD format (UTC)")
	clock := fs.String("time", now.Format("15:04:05"), "Time in HH:MM:SS format (UTC)")
	delta := fs.Duration("delta", 0, "Offset added to date and time (e.g. 36h, -90m)")
	lat := fs.Float64("lat", 0, "Latitude in degrees, north positive")
	lon := fs.Float64("lon", 0, "Longitude in degrees, east positive")
	elevation := fs.Float64("elevation", 0, "Elevation in meters")
	output := fs.String("output", "", "Output JSON file (- for stdout)")
	minor := fs.Bool("minor", false, "Include minor planets from the MPCORB catalog")
	interval := fs.Duration("interval", 0, "Sampling interval (e.g. 6h)")
	span := fs.Duration("span", 0, "Sampling span; a positive span samples instead of charting once")
	cfgPath := fs.String("config", "", "YAML configuration file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	ephemeris := fs.String("ephemeris", "", "Ephemeris: analytic, vsop87:DIR, jpl:FILE or horizons")
	plot := fs.Bool("plot", false, "Print the longitude track plot after sampling")
	tui := fs.Bool("tui", false, "Open the interactive chart viewer")
	metricsFile := fs.String("metrics-file", "", "Write sampling metrics in Prometheus textfile format")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["lat"] || set["lon"] {
		// A bare coordinate pair no longer names the configured city.
		cfg.Location.Name = ""
	}
	if set["lat"] {
		cfg.Location.Latitude = *lat
	}
	if set["lon"] {
		cfg.Location.Longitude = *lon
	}
	if set["elevation"] {
		cfg.Location.ElevationM = *elevation
	}
	if set["output"] {
		cfg.Output.Path = *output
	}
	if set["minor"] {
		cfg.Catalog.Enabled = *minor
	}
	if set["interval"] {
		cfg.Sampling.Interval = *interval
	}
	if set["span"] {
		cfg.Sampling.Span = *span
	}
	if set["log-level"] {
		cfg.Log.Level = strings.ToLower(*logLevel)
	}
	if set["ephemeris"] {
		mode, path, _ := strings.Cut(*ephemeris, ":")
		cfg.Ephemeris.Mode = strings.ToLower(mode)
		cfg.Ephemeris.Path = path
	}
	if set["plot"] {
		cfg.Output.Plot = *plot
	}
	if set["metrics-file"] {
		cfg.Output.MetricsFile = *metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	instant, err := parseInstant(*date, *clock)
	if err != nil {
		return nil, err
	}

	return &options{cfg: cfg, instant: instant.Add(*delta), tui: *tui}, nil
}

// parseInstant combines a UTC date and time of day. Seconds are optional.
func parseInstant(date, clock string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q %q: want YYYY-MM-DD and HH:MM[:SS]", date, clock)
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg := opts.cfg
	logger := cfg.NewLogger()
	logger.SetOutput(stderr)

	env := newEnv(cfg, logger)
	defer env.Ephemeris.Close()

	switch {
	case opts.tui:
		return runTUI(env, cfg, opts.instant, stdout)
	case cfg.Sampling.Span > 0:
		return runSampling(ctx, env, cfg, opts.instant, stdout)
	default:
		return runChart(env, cfg, opts.instant, stdout)
	}
}

func newEnv(cfg *config.Config, logger *logging.Logger) *chart.Env {
	env := &chart.Env{
		Ephemeris: ephem.NewSource(cfg.EphemerisConfig()),
		Ascendant: cfg.AscendantMethod(),
		Log:       logger,
	}
	if cfg.Catalog.Enabled {
		env.Catalog = catalog.NewSource(cfg.Catalog.Path)
		env.Minor = cfg.Catalog.Designations
		env.MinorLimit = cfg.Catalog.Limit
	}
	return env
}

// runChart prints the chart for one instant and writes its JSON export.
func runChart(env *chart.Env, cfg *config.Config, instant time.Time, stdout io.Writer) error {
	c := chart.New(env, instant, cfg.GeoLocation())
	if _, err := c.Observer(); err != nil {
		return err
	}

	f := state.NewFrame(c)
	fmt.Fprint(stdout, render.ChartTable(f, render.TableOptions{Selected: -1}))

	if err := writeOutput(cfg.Output.Path, stdout, c.WriteJSON); err != nil {
		return err
	}
	if len(f.Failures) > 0 {
		env.Logger().Warn("%d bodies could not be placed", len(f.Failures))
	}
	return nil
}

// runSampling samples the window, then writes the history snapshot, the
// optional plot and the optional metrics textfile.
func runSampling(ctx context.Context, env *chart.Env, cfg *config.Config, instant time.Time, stdout io.Writer) error {
	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return err
	}

	hist, report, runErr := sampler.Run(ctx, env, sampler.Params{
		Start:    instant,
		Interval: cfg.Sampling.Interval,
		Span:     cfg.Sampling.Span,
		Location: cfg.GeoLocation(),
		Bodies:   cfg.Sampling.Bodies,
		Policy:   cfg.FailurePolicy(),
		Workers:  cfg.Sampling.Workers,
		History:  history.New(cfg.HistoryOptions()...),
		Metrics:  collector,
	})
	if report == nil {
		return runErr
	}

	fmt.Fprintf(stdout, "Sampled %d instants: %d positions recorded, %d failures in %s\n",
		report.Instants, report.Recorded, len(report.Failures), report.Elapsed.Round(time.Millisecond))

	if err := writeOutput(cfg.Output.Path, stdout, hist.WriteJSON); err != nil {
		return err
	}

	if cfg.Output.Plot {
		aligned, err := hist.Align()
		if err != nil {
			env.Logger().Warn("plot skipped: %v", err)
		} else {
			fmt.Fprint(stdout, render.Tracks(aligned, render.PlotOptions{
				Width:  cfg.Output.PlotWidth,
				Height: cfg.Output.PlotHeight,
				Color:  isTerminal(stdout),
			}))
		}
	}

	if cfg.Output.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
	}
	return runErr
}

func runTUI(env *chart.Env, cfg *config.Config, instant time.Time, stdout io.Writer) error {
	if !isTerminal(stdout) {
		return errors.New("the chart viewer needs a terminal; drop -tui for plain output")
	}

	stateCfg := state.DefaultConfig()
	stateCfg.Step = cfg.Sampling.Interval
	model := ui.New(state.NewManager(stateCfg), env, cfg.GeoLocation(), instant)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// writeOutput sends write to path, or to stdout when path is "-".
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
