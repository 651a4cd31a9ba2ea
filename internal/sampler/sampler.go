// Package sampler builds per-body longitude tracks by placing a chart at
// regular instants across a time span.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/chart"
	"github.com/litescript/ls-astromaps/internal/history"
	"github.com/litescript/ls-astromaps/internal/metrics"
)

// ErrInvalidParams is returned when the sampling window cannot be walked.
var ErrInvalidParams = errors.New("invalid sampling parameters")

// FailurePolicy decides what a failed sample does to the run.
type FailurePolicy int

const (
	SkipAndContinue FailurePolicy = iota // record the failure, keep sampling
	Abort                                // stop at the first failure and return it
)

func (p FailurePolicy) String() string {
	switch p {
	case SkipAndContinue:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy parses "skip" or "abort". Anything else means skip.
func ParseFailurePolicy(s string) FailurePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "abort") {
		return Abort
	}
	return SkipAndContinue
}

// Params describes one sampling run.
type Params struct {
	Start    time.Time
	Interval time.Duration
	Span     time.Duration
	Location astro.GeoLocation
	Bodies   []string // empty samples every body the chart resolves
	Policy   FailurePolicy
	Workers  int // values below 2 sample sequentially

	History *history.History // nil creates a fresh history
	Metrics *metrics.Collector
}

// SampleError is one body that could not be sampled at one instant.
type SampleError struct {
	Body string
	Time time.Time
	Err  error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %s at %s: %v", e.Body, e.Time.Format(time.RFC3339), e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// Report summarizes a run.
type Report struct {
	Instants int
	Recorded int
	Failures []*SampleError // ordered by time, then body
	Elapsed  time.Duration
}

// Instants lists start + k*interval for every k with the instant not past start + span.
func Instants(start time.Time, interval, span time.Duration) ([]time.Time, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval %s must be positive", ErrInvalidParams, interval)
	}
	if span < 0 {
		return nil, fmt.Errorf("%w: span %s must not be negative", ErrInvalidParams, span)
	}
	start = start.UTC()
	n := int(span/interval) + 1
	out := make([]time.Time, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, start.Add(time.Duration(k)*interval))
	}
	return out, nil
}

// Run samples the configured bodies at every instant of the window and
// records their longitudes. The history is returned even when the run is
// aborted or cancelled, holding whatever was recorded before it stopped.
func Run(ctx context.Context, env *chart.Env, p Params) (*history.History, *Report, error) {
	instants, err := Instants(p.Start, p.Interval, p.Span)
	if err != nil {
		return nil, nil, err
	}

	hist := p.History
	if hist == nil {
		hist = history.New()
	}
	log := env.Logger()
	p.Metrics.SetInstants(len(instants))

	r := &run{env: env, params: p, hist: hist}
	started := time.Now()
	log.Info("sampling %d instants from %s every %s (policy %s, workers %d)",
		len(instants), instants[0].Format(time.RFC3339), p.Interval, p.Policy, max(p.Workers, 1))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if p.Workers < 2 {
		for _, t := range instants {
			if runCtx.Err() != nil {
				break
			}
			if r.sample(t) && p.Policy == Abort {
				break
			}
		}
	} else {
		sem := make(chan struct{}, p.Workers)
		var wg sync.WaitGroup
		for _, t := range instants {
			wg.Add(1)
			go func(t time.Time) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-runCtx.Done():
					return
				}
				if runCtx.Err() != nil {
					return
				}
				if r.sample(t) && p.Policy == Abort {
					cancel()
				}
			}(t)
		}
		wg.Wait()
	}

	report := r.report(len(instants), time.Since(started))
	log.Info("sampling done: %d recorded, %d failed in %s", report.Recorded, len(report.Failures), report.Elapsed.Round(time.Millisecond))

	if p.Policy == Abort && len(report.Failures) > 0 {
		return hist, report, report.Failures[0]
	}
	if err := ctx.Err(); err != nil {
		return hist, report, err
	}
	return hist, report, nil
}

type run struct {
	env    *chart.Env
	params Params
	hist   *history.History

	mu       sync.Mutex
	recorded int
	failures []*SampleError
}

// sample places one chart and records it. It reports whether anything failed.
func (r *run) sample(t time.Time) bool {
	p := r.params
	var opts []chart.Option
	if len(p.Bodies) > 0 {
		opts = append(opts, chart.WithBodies(p.Bodies...))
	}
	c := chart.New(r.env, t, p.Location, opts...)

	began := time.Now()
	positions, failed := r.place(c)
	p.Metrics.ObserveChart(time.Since(began))

	recorded := 0
	for name, pos := range positions {
		if err := r.hist.AddPosition(name, c.Instant(), pos.LonDeg); err != nil {
			failed = append(failed, &SampleError{Body: name, Time: c.Instant(), Err: err})
			continue
		}
		p.Metrics.IncRecorded(name)
		recorded++
	}

	log := r.env.Logger()
	for _, f := range failed {
		p.Metrics.IncFailure(f.Body)
		log.Warn("%v", f)
	}

	r.mu.Lock()
	r.recorded += recorded
	r.failures = append(r.failures, failed...)
	r.mu.Unlock()
	return len(failed) > 0
}

func (r *run) place(c *chart.Chart) (map[string]body.Position, []*SampleError) {
	if len(r.params.Bodies) > 0 {
		var failed []*SampleError
		out := make(map[string]body.Position, len(r.params.Bodies))
		for _, name := range r.params.Bodies {
			pos, err := c.ComputePosition(name)
			if err != nil {
				failed = append(failed, &SampleError{Body: name, Time: c.Instant(), Err: err})
				continue
			}
			out[name] = pos
		}
		return out, failed
	}

	positions, err := c.ComputeAllPositions()
	if err != nil {
		var batch *chart.BatchError
		if !errors.As(err, &batch) {
			return positions, []*SampleError{{Body: "*", Time: c.Instant(), Err: err}}
		}
		failed := make([]*SampleError, 0, len(batch.Failures))
		for _, name := range batch.Names() {
			failed = append(failed, &SampleError{Body: name, Time: c.Instant(), Err: batch.Failures[name]})
		}
		return positions, failed
	}
	return positions, nil
}

func (r *run) report(instants int, elapsed time.Duration) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	failures := append([]*SampleError(nil), r.failures...)
	sort.SliceStable(failures, func(i, j int) bool {
		if !failures[i].Time.Equal(failures[j].Time) {
			return failures[i].Time.Before(failures[j].Time)
		}
		return failures[i].Body < failures[j].Body
	})
	return &Report{
		Instants: instants,
		Recorded: r.recorded,
		Failures: failures,
		Elapsed:  elapsed,
	}
}
