package ephem

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/mshafiee/jpleph"

	"github.com/litescript/ls-astromaps/internal/astro"
)

var jplPlanet = map[BodyID]jpleph.Planet{
	Mercury: jpleph.Mercury,
	Venus:   jpleph.Venus,
	Earth:   jpleph.Earth,
	Mars:    jpleph.Mars,
	Jupiter: jpleph.Jupiter,
	Saturn:  jpleph.Saturn,
	Uranus:  jpleph.Uranus,
	Neptune: jpleph.Neptune,
	Pluto:   jpleph.Pluto,
}

// JPLProvider reads a JPL DE binary ephemeris (de405.bin, de440.bin, ...).
type JPLProvider struct {
	path string

	// The reader keeps a record buffer between calls.
	mu  sync.Mutex
	eph *jpleph.Ephemeris
}

// NewJPLProvider opens the DE file at path.
func NewJPLProvider(path string) (*JPLProvider, error) {
	eph, err := jpleph.NewEphemeris(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: jpl %s: %v", ErrEphemerisUnavailable, path, err)
	}
	return &JPLProvider{path: path, eph: eph}, nil
}

// Name implements Provider.
func (p *JPLProvider) Name() string {
	return "JPL " + filepath.Base(p.path)
}

// Resolve implements Provider.
func (p *JPLProvider) Resolve(id BodyID) (Handle, error) {
	return resolveKnown(id)
}

// Available implements Provider.
func (p *JPLProvider) Available(id BodyID) bool {
	_, ok := BodiesByID[id]
	return ok
}

// Observe implements Provider.
func (p *JPLProvider) Observe(h Handle, t time.Time) (astro.Vec3, error) {
	if v, ok := observeOrbit(h, t); ok {
		return v, nil
	}
	if h.ID == Sun {
		return astro.Vec3{}, nil
	}
	planet, ok := jplPlanet[h.ID]
	if !ok {
		return astro.Vec3{}, ErrUnknownBody
	}

	et := astro.JulianEphemerisDate(t)
	p.mu.Lock()
	pos, _, err := p.eph.CalculatePV(et, planet, jpleph.CenterSun, false)
	p.mu.Unlock()
	if err != nil {
		if errors.Is(err, jpleph.ErrOutsideRange) {
			return astro.Vec3{}, fmt.Errorf("%w: %s outside %s", ErrEphemerisUnavailable, t.UTC().Format(time.RFC3339), p.path)
		}
		return astro.Vec3{}, fmt.Errorf("%w: %v", ErrEphemerisUnavailable, err)
	}

	// DE kernels are equatorial (ICRF).
	eq := astro.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
	return astro.EquatorialToEcliptic(eq, astro.ObliquityJ2000), nil
}

// Close releases the ephemeris file.
func (p *JPLProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eph.Close()
}
