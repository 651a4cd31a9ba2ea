// Package state keeps the chart viewer's shared state with thread-safe access.
package state

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/chart"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventIngress    EventType = "INGRESS"
	EventRetrograde EventType = "RETROGRADE"
	EventDirect     EventType = "DIRECT"
	EventLost       EventType = "LOST"
	EventResumed    EventType = "RESUMED"
)

// Event is a change noticed between two consecutive frames.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"` // chart instant of the newer frame
	Body      string    `json:"body"`
	OldSign   string    `json:"old_sign,omitempty"`
	NewSign   string    `json:"new_sign,omitempty"`
}

// Frame is one computed chart.
type Frame struct {
	Instant   time.Time
	Location  astro.GeoLocation
	Order     []string
	Positions map[string]body.Position
	Failures  map[string]error
}

// NewFrame places every body of c.
func NewFrame(c *chart.Chart) *Frame {
	positions, err := c.ComputeAllPositions()
	f := &Frame{
		Instant:   c.Instant(),
		Location:  c.Location(),
		Order:     c.Names(),
		Positions: positions,
	}
	var batch *chart.BatchError
	if errors.As(err, &batch) {
		f.Failures = batch.Failures
	}
	return f
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// BodyHistory tracks recent longitudes of one body.
type BodyHistory struct {
	Body      string
	Longitude []TimeSeries
}

// Manager handles all shared viewer state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current         *Frame
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration

	// Signed motion per body from the last two frames, degrees per day.
	motion map[string]float64

	frames       []*Frame
	maxFrames    int
	bodyHistory  map[string]*BodyHistory
	maxBodyHist  int
	events       []Event
	maxEvents    int
	eventWriteAt int

	step time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxFrames   int
	MaxBodyHist int
	MaxEvents   int
	Step        time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxFrames:   60,
		MaxBodyHist: 120,
		MaxEvents:   50,
		Step:        24 * time.Hour,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxFrames:   cfg.MaxFrames,
		maxBodyHist: cfg.MaxBodyHist,
		maxEvents:   maxEvents,
		events:      make([]Event, 0, maxEvents),
		step:        cfg.Step,
		bodyHistory: make(map[string]*BodyHistory),
		motion:      make(map[string]float64),
	}
}

// Update records a newly computed frame. A nil frame only records err.
func (m *Manager) Update(f *Frame, computeDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCompute = time.Now()
	m.lastError = err
	m.computeDuration = computeDuration

	if f == nil {
		return
	}

	if m.current != nil {
		m.detectEvents(m.current, f)
	}
	m.current = f

	m.frames = append(m.frames, f)
	if len(m.frames) > m.maxFrames {
		m.frames = m.frames[1:]
	}
	m.updateBodyHistory(f)
}

// detectEvents compares two frames and records sign ingresses, stations
// and bodies that stopped or resumed resolving.
func (m *Manager) detectEvents(prev, next *Frame) {
	days := next.Instant.Sub(prev.Instant).Hours() / 24

	for _, name := range next.Order {
		newPos, ok := next.Positions[name]
		oldPos, hadOld := prev.Positions[name]

		switch {
		case !ok && hadOld:
			m.addEvent(Event{Type: EventLost, Timestamp: next.Instant, Body: name})
			delete(m.motion, name)
			continue
		case ok && !hadOld:
			if _, failedBefore := prev.Failures[name]; failedBefore {
				m.addEvent(Event{Type: EventResumed, Timestamp: next.Instant, Body: name})
			}
			continue
		case !ok:
			continue
		}

		oldSign, newSign := chart.Sign(oldPos.LonDeg), chart.Sign(newPos.LonDeg)
		if oldSign.SignIndex != newSign.SignIndex {
			m.addEvent(Event{
				Type:      EventIngress,
				Timestamp: next.Instant,
				Body:      name,
				OldSign:   oldSign.Sign,
				NewSign:   newSign.Sign,
			})
		}

		if days == 0 || name == body.AscendantName {
			continue
		}
		rate := arcDelta(oldPos.LonDeg, newPos.LonDeg) / days
		if last, seen := m.motion[name]; seen && last != 0 && rate != 0 && (last < 0) != (rate < 0) {
			typ := EventDirect
			if rate < 0 {
				typ = EventRetrograde
			}
			m.addEvent(Event{Type: typ, Timestamp: next.Instant, Body: name, NewSign: newSign.Sign})
		}
		m.motion[name] = rate
	}
}

// arcDelta returns b-a along the shorter arc, in (-180,180].
func arcDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

func (m *Manager) updateBodyHistory(f *Frame) {
	for _, name := range f.Order {
		pos, ok := f.Positions[name]
		if !ok {
			continue
		}
		hist, ok := m.bodyHistory[name]
		if !ok {
			hist = &BodyHistory{Body: name, Longitude: make([]TimeSeries, 0, m.maxBodyHist)}
			m.bodyHistory[name] = hist
		}
		hist.Longitude = append(hist.Longitude, TimeSeries{Timestamp: f.Instant, Value: pos.LonDeg})
		if len(hist.Longitude) > m.maxBodyHist {
			hist.Longitude = hist.Longitude[1:]
		}
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame           *Frame
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	Motion          map[string]float64
	Events          []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	motion := make(map[string]float64, len(m.motion))
	for k, v := range m.motion {
		motion[k] = v
	}

	return Snapshot{
		Frame:           m.current,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		Motion:          motion,
		Events:          m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// GetBodyHistory returns a copy of the recent longitudes of a body.
func (m *Manager) GetBodyHistory(name string) *BodyHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.bodyHistory[name]
	if !ok {
		return nil
	}
	out := &BodyHistory{Body: hist.Body, Longitude: make([]TimeSeries, len(hist.Longitude))}
	copy(out.Longitude, hist.Longitude)
	return out
}

// EstimateMotion returns the apparent motion of a body in degrees per day
// from its last two recorded longitudes. Negative means retrograde.
func (m *Manager) EstimateMotion(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.bodyHistory[name]
	if !ok || len(hist.Longitude) < 2 {
		return 0
	}
	n := len(hist.Longitude)
	p1, p2 := hist.Longitude[n-2], hist.Longitude[n-1]
	days := p2.Timestamp.Sub(p1.Timestamp).Hours() / 24
	if days == 0 {
		return 0
	}
	return arcDelta(p1.Value, p2.Value) / days
}

// Step returns the instant step used by the viewer.
func (m *Manager) Step() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.step
}

// SetStep updates the instant step.
func (m *Manager) SetStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
}

// HasData returns true once a frame has been recorded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
