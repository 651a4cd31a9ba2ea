package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// LightTimeDaysPerAU is the one-way light time for 1 AU, in days.
const LightTimeDaysPerAU = 0.0057755183

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Spherical builds a vector from longitude/latitude in degrees and a radius.
func Spherical(lonDeg, latDeg, r float64) Vec3 {
	sl, cl := math.Sincos(degToRad(lonDeg))
	sb, cb := math.Sincos(degToRad(latDeg))
	return Vec3{X: r * cb * cl, Y: r * cb * sl, Z: r * sb}
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return radToDeg(math.Asin(clamp(v.Z/r, -1, 1)))
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector.
func EclipticLongitude(v Vec3) float64 {
	return NormalizeDeg(radToDeg(math.Atan2(v.Y, v.X)))
}

// ObliquityJ2000 is the Earth's axial tilt at the J2000 epoch, in radians.
const ObliquityJ2000 = 23.4392911 * math.Pi / 180

// MeanObliquity returns the mean obliquity of the ecliptic of date in radians.
func MeanObliquity(t time.Time) float64 {
	return nutation.MeanObliquity(JulianEphemerisDate(t)).Rad()
}

// EquatorialToEcliptic rotates equatorial XYZ into ecliptic XYZ for obliquity eps (radians).
// Input is in any units (km, AU, etc); output is in the same units.
func EquatorialToEcliptic(eq Vec3, eps float64) Vec3 {
	sinE, cosE := math.Sincos(eps)
	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial rotates ecliptic XYZ into equatorial XYZ for obliquity eps (radians).
func EclipticToEquatorial(ecl Vec3, eps float64) Vec3 {
	sinE, cosE := math.Sincos(eps)
	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// EclipticToSky converts an ecliptic longitude/latitude into RA/Dec for obliquity eps (radians).
func EclipticToSky(lonDeg, latDeg, eps float64) SkyCoord {
	eq := EclipticToEquatorial(Spherical(lonDeg, latDeg, 1), eps)
	return SkyCoord{
		RAdeg:  NormalizeDeg(radToDeg(math.Atan2(eq.Y, eq.X))),
		DecDeg: radToDeg(math.Asin(clamp(eq.Z, -1, 1))),
	}
}

// generalPrecession is the IAU 1976 rate of general precession in longitude,
// degrees per Julian century.
const generalPrecession = 5029.0966 / 3600

// PrecessLongitude moves a J2000 ecliptic longitude to the mean equinox of date.
func PrecessLongitude(lonDeg float64, t time.Time) float64 {
	T := CenturiesSinceJ2000(t)
	return NormalizeDeg(lonDeg + generalPrecession*T + 1.11113/3600*T*T)
}
