package ephem

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"

	"github.com/litescript/ls-astromaps/internal/astro"
)

var vsop87Index = map[BodyID]int{
	Mercury: planetposition.Mercury,
	Venus:   planetposition.Venus,
	Earth:   planetposition.Earth,
	Mars:    planetposition.Mars,
	Jupiter: planetposition.Jupiter,
	Saturn:  planetposition.Saturn,
	Uranus:  planetposition.Uranus,
	Neptune: planetposition.Neptune,
}

// VSOP87Provider evaluates the VSOP87B series loaded from a data directory.
// Pluto falls back to the Meeus Pluto theory.
type VSOP87Provider struct {
	dir     string
	planets map[BodyID]*planetposition.V87Planet
}

// NewVSOP87Provider loads every planet file from dir.
func NewVSOP87Provider(dir string) (*VSOP87Provider, error) {
	p := &VSOP87Provider{
		dir:     dir,
		planets: make(map[BodyID]*planetposition.V87Planet, len(vsop87Index)),
	}
	for id, i := range vsop87Index {
		v, err := planetposition.LoadPlanetPath(i, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: vsop87 %s: %v", ErrEphemerisUnavailable, id, err)
		}
		p.planets[id] = v
	}
	return p, nil
}

// Name implements Provider.
func (p *VSOP87Provider) Name() string {
	return "VSOP87"
}

// Resolve implements Provider.
func (p *VSOP87Provider) Resolve(id BodyID) (Handle, error) {
	return resolveKnown(id)
}

// Available implements Provider.
func (p *VSOP87Provider) Available(id BodyID) bool {
	if id == Sun || id == Pluto {
		return true
	}
	_, ok := p.planets[id]
	return ok
}

// Observe implements Provider.
func (p *VSOP87Provider) Observe(h Handle, t time.Time) (astro.Vec3, error) {
	if v, ok := observeOrbit(h, t); ok {
		return v, nil
	}
	jde := astro.JulianEphemerisDate(t)

	switch h.ID {
	case Sun:
		return astro.Vec3{}, nil
	case Pluto:
		l, b, r := pluto.Heliocentric(jde)
		return astro.Spherical(l.Deg(), b.Deg(), r), nil
	}

	v, ok := p.planets[h.ID]
	if !ok {
		return astro.Vec3{}, ErrUnknownBody
	}
	l, b, r := v.Position2000(jde)
	return astro.Spherical(l.Deg(), b.Deg(), r), nil
}
