// Package chart places a set of bodies for one instant and location.
package chart

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/catalog"
	"github.com/litescript/ls-astromaps/internal/ephem"
	"github.com/litescript/ls-astromaps/internal/logging"
)

// CatalogKey is the failure key used when the minor-body catalog cannot be loaded.
const CatalogKey = "catalog"

// Env holds the state shared by every chart of a run.
type Env struct {
	Ephemeris  *ephem.Source
	Catalog    *catalog.Source // nil disables minor bodies
	Minor      []string        // designations to include; empty means the first MinorLimit rows
	MinorLimit int
	Ascendant  body.AscendantMethod
	Log        *logging.Logger
}

// Logger returns the run logger, or a discarding one when none is set.
func (e *Env) Logger() *logging.Logger {
	if e.Log == nil {
		return logging.Discard()
	}
	return e.Log
}

// Option customizes a chart.
type Option func(*Chart)

// WithBodies restricts the chart to the named bodies.
func WithBodies(names ...string) Option {
	return func(c *Chart) {
		c.only = make(map[string]bool, len(names))
		for _, n := range names {
			c.only[n] = true
		}
	}
}

// WithAscendantMethod overrides the environment's ascendant derivation.
func WithAscendantMethod(m body.AscendantMethod) Option {
	return func(c *Chart) {
		c.ascendant = m
	}
}

// Chart is the set of bodies placed for one instant and location.
// Bodies are resolved once, on the first query.
type Chart struct {
	env       *Env
	instant   time.Time
	location  astro.GeoLocation
	ascendant body.AscendantMethod
	only      map[string]bool

	once     sync.Once
	mu       sync.RWMutex
	observer ephem.Observer
	obsErr   error
	bodies   map[string]body.Body
	failed   map[string]error
	order    []string
}

// New creates a chart. Nothing is computed until the first query.
func New(env *Env, instant time.Time, location astro.GeoLocation, opts ...Option) *Chart {
	c := &Chart{
		env:       env,
		instant:   instant.UTC(),
		location:  location,
		ascendant: env.Ascendant,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Instant returns the chart instant in UTC.
func (c *Chart) Instant() time.Time { return c.instant }

// Location returns the chart location.
func (c *Chart) Location() astro.GeoLocation { return c.location }

func (c *Chart) wanted(name string) bool {
	return c.only == nil || c.only[name]
}

func (c *Chart) resolve() {
	c.once.Do(func() {
		log := c.env.Logger()
		c.bodies = make(map[string]body.Body)
		c.failed = make(map[string]error)
		c.observer = ephem.Observer{Location: c.location, Time: c.instant}

		provider, err := c.env.Ephemeris.Provider()
		if err == nil {
			c.observer, err = ephem.NewObserver(provider, c.location, c.instant)
		}
		if err != nil {
			c.obsErr = err
			log.Warn("chart %s: observer unavailable: %v", c.instant.Format(time.RFC3339), err)
		}

		for _, info := range ephem.MajorBodies {
			if !c.wanted(info.Name) {
				continue
			}
			if c.obsErr != nil {
				c.fail(info.Name, c.obsErr)
				continue
			}
			m, err := body.NewMajor(provider, info.Name)
			if err != nil {
				c.fail(info.Name, err)
				continue
			}
			c.register(m)
		}

		if c.wanted(body.AscendantName) {
			c.register(body.NewAscendant(c.ascendant))
		}

		c.resolveMinor(provider, log)
		log.Debug("chart %s: %d bodies, %d failed", c.instant.Format(time.RFC3339), len(c.bodies), len(c.failed))
	})
}

func (c *Chart) resolveMinor(provider ephem.Provider, log *logging.Logger) {
	if c.env.Catalog == nil {
		return
	}
	cat, err := c.env.Catalog.Catalog()
	if err != nil {
		c.fail(CatalogKey, err)
		return
	}

	entries, missing := cat.Select(c.env.Minor, c.env.MinorLimit)
	for _, name := range missing {
		if c.wanted(name) {
			c.fail(name, fmt.Errorf("%q: %w", name, body.ErrUnknownBody))
		}
	}
	for _, e := range entries {
		name := e.Name()
		if !c.wanted(name) {
			continue
		}
		if c.obsErr != nil {
			c.fail(name, c.obsErr)
			continue
		}
		m, err := body.NewMinor(provider, name, e.Elements)
		if err != nil {
			c.fail(name, err)
			continue
		}
		if err := c.register(m); err != nil {
			log.Warn("chart: %v", err)
		}
	}
}

// register adds b; callers hold the resolution or mu.
func (c *Chart) register(b body.Body) error {
	name := b.Name()
	if _, ok := c.bodies[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicateBody)
	}
	if _, ok := c.failed[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicateBody)
	}
	c.bodies[name] = b
	c.order = append(c.order, name)
	return nil
}

func (c *Chart) fail(name string, err error) {
	if _, ok := c.failed[name]; ok {
		return
	}
	if _, ok := c.bodies[name]; ok {
		return
	}
	c.failed[name] = err
	c.order = append(c.order, name)
}

// AddBody registers an extra body on the chart.
func (c *Chart) AddBody(b body.Body) error {
	c.resolve()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(b)
}

// Names returns every body name in registration order, including failed ones.
func (c *Chart) Names() []string {
	c.resolve()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Observer returns the observer shared by all bodies of the chart.
func (c *Chart) Observer() (ephem.Observer, error) {
	c.resolve()
	return c.observer, c.obsErr
}

// ComputePosition places one body by name.
func (c *Chart) ComputePosition(name string) (body.Position, error) {
	c.resolve()

	c.mu.RLock()
	b, ok := c.bodies[name]
	ferr, failed := c.failed[name]
	c.mu.RUnlock()

	switch {
	case ok:
		return b.ComputePosition(c.observer, c.instant)
	case failed:
		return body.Position{}, ferr
	default:
		return body.Position{}, fmt.Errorf("%q: %w", name, body.ErrUnknownBody)
	}
}

// ComputeAllPositions places every registered body. Failed bodies are
// absent from the map and listed in the returned *BatchError.
func (c *Chart) ComputeAllPositions() (map[string]body.Position, error) {
	names := c.Names()
	positions := make(map[string]body.Position, len(names))
	failures := make(map[string]error)

	for _, name := range names {
		pos, err := c.ComputePosition(name)
		if err != nil {
			failures[name] = err
			continue
		}
		positions[name] = pos
	}

	if len(failures) > 0 {
		return positions, &BatchError{Failures: failures}
	}
	return positions, nil
}
