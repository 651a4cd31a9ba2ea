// Package history stores per-body longitude time series and aligns them
// onto a shared time axis.
package history

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// Sample is one recorded longitude.
type Sample struct {
	Time   time.Time
	LonDeg float64
}

// CollisionPolicy decides what happens when a body is recorded twice at one instant.
type CollisionPolicy int

const (
	CollisionOverwrite CollisionPolicy = iota // last write wins (default)
	CollisionReject                           // ErrDuplicateSample
)

// String returns the policy name.
func (p CollisionPolicy) String() string {
	switch p {
	case CollisionOverwrite:
		return "overwrite"
	case CollisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseCollisionPolicy parses "overwrite" or "reject", defaulting to overwrite.
func ParseCollisionPolicy(s string) CollisionPolicy {
	if s == "reject" {
		return CollisionReject
	}
	return CollisionOverwrite
}

type series struct {
	mu      sync.RWMutex
	samples []Sample
}

func (s *series) snapshot() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// History is a set of per-body longitude series. Writes to one body are
// serialized; different bodies do not contend.
type History struct {
	mu     sync.RWMutex
	series map[string]*series
	policy CollisionPolicy
	interp Interpolator
}

// Option configures a History.
type Option func(*History)

// WithCollisionPolicy sets the policy for repeated instants.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(h *History) { h.policy = p }
}

// WithInterpolator sets the gap-filling strategy.
func WithInterpolator(i Interpolator) Option {
	return func(h *History) { h.interp = i }
}

// New creates an empty history with linear angular interpolation.
func New(opts ...Option) *History {
	h := &History{
		series: make(map[string]*series),
		interp: LinearAngle{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetInterpolator replaces the gap-filling strategy.
func (h *History) SetInterpolator(i Interpolator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interp = i
}

func (h *History) interpolator() Interpolator {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.interp
}

func (h *History) get(body string) (*series, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.series[body]
	return s, ok
}

func (h *History) getOrCreate(body string) *series {
	if s, ok := h.get(body); ok {
		return s
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[body]
	if !ok {
		s = &series{}
		h.series[body] = s
	}
	return s
}

// AddPosition records a longitude for body at t. The longitude is reduced
// into [0, 360) and t to UTC; out-of-order instants are inserted in place.
func (h *History) AddPosition(body string, t time.Time, lonDeg float64) error {
	if math.IsNaN(lonDeg) || math.IsInf(lonDeg, 0) {
		return fmt.Errorf("%s: %w: longitude %v", body, ErrInvalidSample, lonDeg)
	}
	sample := Sample{Time: t.UTC(), LonDeg: astro.NormalizeDeg(lonDeg)}

	s := h.getOrCreate(body)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.samples)
	i := sort.Search(n, func(i int) bool { return !s.samples[i].Time.Before(sample.Time) })
	if i < n && s.samples[i].Time.Equal(sample.Time) {
		if h.policy == CollisionReject {
			return fmt.Errorf("%s at %s: %w", body, sample.Time.Format(time.RFC3339Nano), ErrDuplicateSample)
		}
		s.samples[i] = sample
		return nil
	}

	s.samples = append(s.samples, Sample{})
	copy(s.samples[i+1:], s.samples[i:])
	s.samples[i] = sample
	return nil
}

// Bodies returns the recorded body names, sorted.
func (h *History) Bodies() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.series))
	for name := range h.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of samples recorded for body.
func (h *History) Len(body string) int {
	s, ok := h.get(body)
	if !ok {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Range returns the first and last recorded instants for body.
func (h *History) Range(body string) (first, last time.Time, ok bool) {
	s, found := h.get(body)
	if !found {
		return time.Time{}, time.Time{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.samples[0].Time, s.samples[len(s.samples)-1].Time, true
}

// Samples returns a copy of body's series in time order.
func (h *History) Samples(body string) ([]Sample, error) {
	s, ok := h.get(body)
	if !ok {
		return nil, fmt.Errorf("%q: %w", body, ErrMissingSeries)
	}
	return s.snapshot(), nil
}

// Interpolate evaluates body's series at t with the configured strategy.
func (h *History) Interpolate(body string, t time.Time) (float64, error) {
	samples, err := h.Samples(body)
	if err != nil {
		return 0, err
	}
	curve, err := h.interpolator().Fit(samples)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", body, err)
	}
	t = t.UTC()
	lon, ok := curve.At(t)
	if !ok {
		return 0, &GapError{Body: body, Time: t}
	}
	return lon, nil
}

// Aligned holds several series resampled onto one time axis.
// Every slice in Series has len(Axis) entries.
type Aligned struct {
	Axis   []time.Time
	Series map[string][]float64
}

// Align resamples the named bodies (all bodies when none are named) onto
// the sorted union of their instants, filling gaps with the interpolator.
func (h *History) Align(bodies ...string) (*Aligned, error) {
	if len(bodies) == 0 {
		bodies = h.Bodies()
	}

	data := make(map[string][]Sample, len(bodies))
	for _, b := range bodies {
		samples, err := h.Samples(b)
		if err != nil {
			return nil, err
		}
		data[b] = samples
	}

	axis := unionAxis(data)
	out := &Aligned{Axis: axis, Series: make(map[string][]float64, len(bodies))}
	interp := h.interpolator()

	for _, b := range bodies {
		samples := data[b]
		curve, err := interp.Fit(samples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b, err)
		}

		vals := make([]float64, len(axis))
		j := 0
		for i, t := range axis {
			for j < len(samples) && samples[j].Time.Before(t) {
				j++
			}
			if j < len(samples) && samples[j].Time.Equal(t) {
				vals[i] = samples[j].LonDeg
				continue
			}
			lon, ok := curve.At(t)
			if !ok {
				return nil, &GapError{Body: b, Time: t}
			}
			vals[i] = lon
		}
		out.Series[b] = vals
	}
	return out, nil
}

func unionAxis(data map[string][]Sample) []time.Time {
	seen := make(map[int64]bool)
	var axis []time.Time
	for _, samples := range data {
		for _, s := range samples {
			k := s.Time.UnixNano()
			if !seen[k] {
				seen[k] = true
				axis = append(axis, s.Time)
			}
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}
