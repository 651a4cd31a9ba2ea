// Package body models the bodies that can be placed on a chart.
package body

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/ephem"
)

var (
	// ErrUnknownBody is returned when a name does not match any major body.
	ErrUnknownBody = ephem.ErrUnknownBody

	// ErrEphemerisUnavailable is returned when the provider cannot place a body.
	ErrEphemerisUnavailable = ephem.ErrEphemerisUnavailable

	// ErrNoRisingEvent is returned when no ecliptic point rises at the location and instant.
	ErrNoRisingEvent = errors.New("no rising event")
)

// Position is an apparent position on the ecliptic of date.
type Position struct {
	LatDeg float64 // ecliptic latitude
	LonDeg float64 // ecliptic longitude in [0, 360)
	DistAU float64 // distance from the observer; 0 for derived points
}

// Body is anything with an ecliptic position for an observer and instant.
type Body interface {
	Name() string
	ComputePosition(observer ephem.Observer, t time.Time) (Position, error)
}

// Major is a planet, the Sun or Pluto, resolved against a provider once.
type Major struct {
	name     string
	id       ephem.BodyID
	handle   ephem.Handle
	provider ephem.Provider
}

// NewMajor resolves a major body by name.
func NewMajor(p ephem.Provider, name string) (*Major, error) {
	info, ok := ephem.LookupName(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBody)
	}
	h, err := p.Resolve(info.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	return &Major{name: info.Name, id: info.ID, handle: h, provider: p}, nil
}

// Name implements Body.
func (m *Major) Name() string { return m.name }

// ID returns the barycenter identifier.
func (m *Major) ID() ephem.BodyID { return m.id }

// ComputePosition implements Body.
func (m *Major) ComputePosition(observer ephem.Observer, t time.Time) (Position, error) {
	return apparent(m.provider, m.handle, m.name, observer, t)
}

// Minor is a catalog object on a two-body orbit.
type Minor struct {
	designation string
	orbit       *ephem.Orbit
	handle      ephem.Handle
	provider    ephem.Provider
}

// NewMinor builds a minor body from its orbital elements.
func NewMinor(p ephem.Provider, designation string, el ephem.Elements) (*Minor, error) {
	h, err := ephem.NewOrbitHandle(designation, el)
	if err != nil {
		return nil, err
	}
	return &Minor{designation: designation, orbit: h.Orbit(), handle: h, provider: p}, nil
}

// Name implements Body.
func (m *Minor) Name() string { return m.designation }

// Orbit returns the precomputed orbit.
func (m *Minor) Orbit() *ephem.Orbit { return m.orbit }

// ComputePosition implements Body.
func (m *Minor) ComputePosition(observer ephem.Observer, t time.Time) (Position, error) {
	return apparent(m.provider, m.handle, m.designation, observer, t)
}

// apparent observes h from the observer, corrected once for light time,
// and refers the longitude to the equinox of date.
func apparent(p ephem.Provider, h ephem.Handle, name string, observer ephem.Observer, t time.Time) (Position, error) {
	t = t.UTC()

	rel, err := relative(p, h, observer, t)
	if err != nil {
		return Position{}, fmt.Errorf("%s at %s: %w", name, t.Format(time.RFC3339), err)
	}
	if tau := rel.Norm() * astro.LightTimeDaysPerAU; tau > 0 {
		emitted := t.Add(-time.Duration(tau * 86400 * float64(time.Second)))
		if rel, err = relative(p, h, observer, emitted); err != nil {
			return Position{}, fmt.Errorf("%s at %s: %w", name, t.Format(time.RFC3339), err)
		}
	}

	return Position{
		LatDeg: astro.EclipticLatitude(rel),
		LonDeg: astro.PrecessLongitude(astro.EclipticLongitude(rel), t),
		DistAU: rel.Norm(),
	}, nil
}

func relative(p ephem.Provider, h ephem.Handle, observer ephem.Observer, t time.Time) (astro.Vec3, error) {
	v, err := p.Observe(h, t)
	if err != nil {
		if errors.Is(err, ErrEphemerisUnavailable) || errors.Is(err, ErrUnknownBody) {
			return astro.Vec3{}, err
		}
		return astro.Vec3{}, fmt.Errorf("%w: %w", ErrEphemerisUnavailable, err)
	}
	return v.Sub(observer.Helio), nil
}
