package body

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/ephem"
)

// AscendantName is the chart key of the ascendant.
const AscendantName = "ascendant"

// AscendantMethod selects how the ascendant is derived.
type AscendantMethod int

const (
	AscendantClosedForm AscendantMethod = iota // spherical trigonometry (default)
	AscendantSearch                            // equinox rising search over ±12h
)

// String returns the method name.
func (m AscendantMethod) String() string {
	switch m {
	case AscendantClosedForm:
		return "closed-form"
	case AscendantSearch:
		return "search"
	default:
		return "unknown"
	}
}

// ParseAscendantMethod parses a method name, defaulting to closed form.
func ParseAscendantMethod(s string) AscendantMethod {
	if s == "search" {
		return AscendantSearch
	}
	return AscendantClosedForm
}

const (
	searchWindow = 12 * time.Hour // each side of the instant
	eventStep    = 10 * time.Minute
	eventTol     = 10 * time.Millisecond
	scanStepDeg  = 1.0
	bisectIters  = 40
	riseStep     = time.Minute
	minAltChange = 1e-9 // degrees over riseStep

	// siderealRate is the mean sidereal rotation in degrees per solar day.
	siderealRate = 360.98564736629
)

// Ascendant is the ecliptic point rising on the eastern horizon.
type Ascendant struct {
	method AscendantMethod
}

// NewAscendant returns the ascendant derived with method.
func NewAscendant(method AscendantMethod) *Ascendant {
	return &Ascendant{method: method}
}

// Name implements Body.
func (a *Ascendant) Name() string { return AscendantName }

// Method returns the derivation in use.
func (a *Ascendant) Method() AscendantMethod { return a.method }

// ComputePosition implements Body. Latitude and distance are always zero.
func (a *Ascendant) ComputePosition(observer ephem.Observer, t time.Time) (Position, error) {
	t = t.UTC()
	loc := observer.Location

	var (
		lon float64
		err error
	)
	switch a.method {
	case AscendantSearch:
		lon, err = ascendantSearch(loc, t)
	default:
		lon, err = ascendantClosedForm(loc, t)
	}
	if err != nil {
		return Position{}, fmt.Errorf("%s at %s (lat %.4f): %w", AscendantName, t.Format(time.RFC3339), loc.LatDeg, err)
	}
	return Position{LonDeg: lon}, nil
}

// ascendantClosedForm evaluates λ = atan2(cos θ, −(sin θ cos ε + tan φ sin ε)).
// Above the polar circles the formula can land on the descendant, so the
// result is checked for rising and flipped when it is setting.
func ascendantClosedForm(loc astro.GeoLocation, t time.Time) (float64, error) {
	if math.Abs(loc.LatDeg) >= 90 {
		return 0, ErrNoRisingEvent
	}
	ramc := astro.LocalSiderealTime(t, loc.LonDeg)
	eps := astro.MeanObliquity(t)
	phi := loc.LatDeg * math.Pi / 180

	sθ, cθ := math.Sincos(ramc * math.Pi / 180)
	lam := astro.NormalizeDeg(math.Atan2(cθ, -(sθ*math.Cos(eps)+math.Tan(phi)*math.Sin(eps))) * 180 / math.Pi)

	switch d := riseRate(lam, eps, ramc, loc.LatDeg); {
	case d > minAltChange:
		return lam, nil
	case d < -minAltChange:
		return astro.NormalizeDeg(lam + 180), nil
	default:
		return 0, ErrNoRisingEvent
	}
}

// horizonAltitude returns the altitude in degrees of the ecliptic point at
// lonDeg when the meridian sits at right ascension ramc.
func horizonAltitude(lonDeg, eps, ramc, latDeg float64) float64 {
	eq := astro.EclipticToSky(lonDeg, 0, eps)
	dec := eq.DecDeg * math.Pi / 180
	ha := (ramc - eq.RAdeg) * math.Pi / 180
	phi := latDeg * math.Pi / 180
	sinAlt := math.Sin(dec)*math.Sin(phi) + math.Cos(dec)*math.Cos(phi)*math.Cos(ha)
	return math.Asin(math.Max(-1, math.Min(1, sinAlt))) * 180 / math.Pi
}

// riseRate is the altitude change of an ecliptic point over riseStep.
// Positive means rising.
func riseRate(lonDeg, eps, ramc, latDeg float64) float64 {
	turn := siderealRate * riseStep.Hours() / 24
	return horizonAltitude(lonDeg, eps, ramc+turn, latDeg) - horizonAltitude(lonDeg, eps, ramc, latDeg)
}

// ascendantSearch finds the rising of the equinox (RA 0, Dec 0) nearest to t
// within ±12h. At that event the equinox sits on the eastern cardinal, so the
// meridian is at 270° of right ascension; the sidereal turn since then gives
// the meridian at t. The ecliptic is then scanned for the crossing of that
// horizon which is rising.
func ascendantSearch(loc astro.GeoLocation, t time.Time) (float64, error) {
	if math.Abs(loc.LatDeg) >= 90 {
		return 0, ErrNoRisingEvent
	}
	rise, ok := nearestEquinoxRising(loc, t)
	if !ok {
		return 0, ErrNoRisingEvent
	}
	ramc := astro.NormalizeDeg(270 + siderealRate*t.Sub(rise).Hours()/24)
	eps := astro.MeanObliquity(t)

	prevLon := 0.0
	prevAlt := horizonAltitude(prevLon, eps, ramc, loc.LatDeg)
	for lon := scanStepDeg; lon <= 360; lon += scanStepDeg {
		alt := horizonAltitude(lon, eps, ramc, loc.LatDeg)
		if (prevAlt < 0) != (alt < 0) {
			cross := bisectCrossing(prevLon, lon, prevAlt, func(l float64) float64 {
				return horizonAltitude(l, eps, ramc, loc.LatDeg)
			})
			if riseRate(cross, eps, ramc, loc.LatDeg) > minAltChange {
				return astro.NormalizeDeg(cross), nil
			}
		}
		prevLon, prevAlt = lon, alt
	}
	return 0, ErrNoRisingEvent
}

func equinoxAltitude(loc astro.GeoLocation, t time.Time) float64 {
	return astro.EquatorialToHorizontal(astro.SkyCoord{}, loc, t).ElDeg
}

// nearestEquinoxRising steps through [t-12h, t+12h] and returns the rising
// crossing closest to t. Crossings from above to below the horizon are settings
// and are skipped.
func nearestEquinoxRising(loc astro.GeoLocation, t time.Time) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	end := t.Add(searchWindow)
	prevT := t.Add(-searchWindow)
	prevAlt := equinoxAltitude(loc, prevT)
	for at := prevT.Add(eventStep); !at.After(end); at = at.Add(eventStep) {
		alt := equinoxAltitude(loc, at)
		if prevAlt < 0 && alt >= 0 {
			rise := bisectEvent(loc, prevT, at)
			if !found || absDuration(rise.Sub(t)) < absDuration(best.Sub(t)) {
				best, found = rise, true
			}
		}
		prevT, prevAlt = at, alt
	}
	return best, found
}

// bisectEvent narrows a rising between lo (below) and hi (above the horizon).
func bisectEvent(loc astro.GeoLocation, lo, hi time.Time) time.Time {
	for hi.Sub(lo) > eventTol {
		mid := lo.Add(hi.Sub(lo) / 2)
		if equinoxAltitude(loc, mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// bisectCrossing narrows a sign change of alt between lo and hi.
func bisectCrossing(lo, hi, loAlt float64, alt func(float64) float64) float64 {
	for i := 0; i < bisectIters; i++ {
		mid := (lo + hi) / 2
		midAlt := alt(mid)
		if (midAlt < 0) == (loAlt < 0) {
			lo, loAlt = mid, midAlt
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
