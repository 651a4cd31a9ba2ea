package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// J2000 is the Julian Date of the J2000.0 epoch.
const J2000 = 2451545.0

// JulianDate returns the Julian Date (UT) for t.
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JulianEphemerisDate returns the Julian Ephemeris Date (TT) for t.
func JulianEphemerisDate(t time.Time) float64 {
	return JulianDate(t) + DeltaT(t)/86400
}

// DeltaT returns TT-UT in seconds.
// Espenak & Meeus polynomials for 2005-2050 with the long-term parabola elsewhere.
func DeltaT(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year()) + (float64(t.YearDay())-0.5)/365.25
	if y >= 2005 && y < 2050 {
		u := y - 2000
		return 62.92 + 0.32217*u + 0.005589*u*u
	}
	u := (y - 1820) / 100
	return -20 + 32*u*u
}

// CenturiesSinceJ2000 returns Julian centuries of TT elapsed since J2000.0.
func CenturiesSinceJ2000(t time.Time) float64 {
	return (JulianEphemerisDate(t) - J2000) / 36525
}

// GreenwichSiderealTime returns the Greenwich mean sidereal time in degrees.
func GreenwichSiderealTime(t time.Time) float64 {
	st := sidereal.Mean(JulianDate(t))
	return NormalizeDeg(radToDeg(st.Rad()))
}

// LocalSiderealTime returns the local mean sidereal time in degrees for a
// UTC time and an east-positive longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return NormalizeDeg(GreenwichSiderealTime(t) + lonDeg)
}
