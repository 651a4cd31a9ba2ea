package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// Observer is a terrestrial location resolved at one instant.
type Observer struct {
	Location astro.GeoLocation
	Time     time.Time
	Helio    astro.Vec3 // heliocentric ecliptic J2000, AU
}

// NewObserver places loc in the heliocentric frame at t: Earth's position
// plus the topocentric offset of the site.
func NewObserver(p Provider, loc astro.GeoLocation, t time.Time) (Observer, error) {
	t = t.UTC()
	h, err := p.Resolve(Earth)
	if err != nil {
		return Observer{}, fmt.Errorf("observer: %w", err)
	}
	earth, err := p.Observe(h, t)
	if err != nil {
		return Observer{}, fmt.Errorf("observer at %s: %w", t.Format(time.RFC3339), err)
	}

	return Observer{
		Location: loc,
		Time:     t,
		Helio:    earth.Add(TopocentricOffset(loc, t)),
	}, nil
}

// TopocentricOffset returns the geocentric position of the site in ecliptic coordinates, AU.
func TopocentricOffset(loc astro.GeoLocation, t time.Time) astro.Vec3 {
	rhoSin, rhoCos := globe.Earth76.ParallaxConstants(unit.AngleFromDeg(loc.LatDeg), loc.ElevationM)
	scale := globe.Earth76.Er / astro.AU // Earth radii to AU

	lst := astro.LocalSiderealTime(t, loc.LonDeg) * math.Pi / 180
	sθ, cθ := math.Sincos(lst)
	eq := astro.Vec3{
		X: rhoCos * cθ * scale,
		Y: rhoCos * sθ * scale,
		Z: rhoSin * scale,
	}
	return astro.EquatorialToEcliptic(eq, astro.MeanObliquity(t))
}
