// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"
	"time"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (of date)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// GeoLocation is a point on the Earth's surface.
type GeoLocation struct {
	LatDeg     float64 `json:"latitude"`    // Latitude in degrees (north positive)
	LonDeg     float64 `json:"longitude"`   // Longitude in degrees (east positive)
	ElevationM float64 `json:"elevation_m"` // Height above the ellipsoid in meters
	Name       string  `json:"name,omitempty"`
}

// Paris is the default chart location.
var Paris = GeoLocation{LatDeg: 48.8566, LonDeg: 2.3522, Name: "Paris"}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given location and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, loc GeoLocation, t time.Time) SkyCoord {
	lat := degToRad(loc.LatDeg)
	dec := degToRad(eq.DecDeg)

	// Hour Angle = LST - RA
	ha := degToRad(LocalSiderealTime(t, loc.LonDeg) - eq.RAdeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clamp(sinAlt, -1, 1))

	cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / (math.Cos(alt) * math.Cos(lat))
	az := math.Acos(clamp(cosAz, -1, 1))

	// Positive hour angle means the object is west of the meridian
	if math.Sin(ha) > 0 {
		az = 2*math.Pi - az
	}

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  radToDeg(az),
		ElDeg:  radToDeg(alt),
	}
}

// NormalizeDeg wraps an angle into [0, 360).
func NormalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360
	if a >= 360 {
		a -= 360
	}
	return a
}

// WrapDeg180 wraps an angle into (-180, 180].
func WrapDeg180(a float64) float64 {
	a = NormalizeDeg(a)
	if a > 180 {
		a -= 360
	}
	return a
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
