// Package ephem provides heliocentric positions of solar-system bodies.
package ephem

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
)

var (
	// ErrUnknownBody is returned when a body identifier cannot be resolved.
	ErrUnknownBody = errors.New("unknown body")

	// ErrEphemerisUnavailable is returned when a provider cannot answer for a body/instant.
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")
)

// Handle is a body resolved against a provider.
// Element-defined (minor) bodies carry their own orbit and are observable by any provider.
type Handle struct {
	ID    BodyID
	Name  string
	orbit *Orbit
}

// Orbit returns the two-body orbit of an element-defined handle, or nil.
func (h Handle) Orbit() *Orbit {
	return h.orbit
}

// NewOrbitHandle builds a handle for a body defined by its osculating elements.
func NewOrbitHandle(name string, el Elements) (Handle, error) {
	orbit, err := NewOrbit(el)
	if err != nil {
		return Handle{}, fmt.Errorf("%s: %w", name, err)
	}
	return Handle{Name: name, orbit: orbit}, nil
}

// Provider defines the interface for ephemeris data sources.
// Positions are heliocentric, ecliptic and mean equinox J2000, in AU.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Resolve looks up a major body. Returns ErrUnknownBody if the id is not supported.
	Resolve(id BodyID) (Handle, error)

	// Observe returns the position of a resolved body at t.
	Observe(h Handle, t time.Time) (astro.Vec3, error)

	// Available returns true if this provider can supply data for the body.
	Available(id BodyID) bool
}

// observeOrbit serves element-defined handles for every provider.
func observeOrbit(h Handle, t time.Time) (astro.Vec3, bool) {
	if h.orbit == nil {
		return astro.Vec3{}, false
	}
	return h.orbit.Position(astro.JulianEphemerisDate(t)), true
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeAnalytic Mode = iota // Mean Keplerian elements, no data files (default)
	ModeVSOP87               // VSOP87B series files
	ModeJPL                  // JPL DE binary kernel
	ModeHorizons             // JPL Horizons API
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAnalytic:
		return "analytic"
	case ModeVSOP87:
		return "vsop87"
	case ModeJPL:
		return "jpl"
	case ModeHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "analytic":
		return ModeAnalytic
	case "vsop87":
		return ModeVSOP87
	case "jpl":
		return ModeJPL
	case "horizons":
		return ModeHorizons
	default:
		return ModeAnalytic
	}
}
