package chart

import (
	"fmt"
	"math"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// Signs lists the zodiac signs in order from 0° ecliptic longitude.
var Signs = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Placement is a longitude expressed as sign and degree within the sign.
type Placement struct {
	SignIndex    int
	Sign         string
	DegreeInSign float64 // [0, 30)
}

// Sign reduces an ecliptic longitude to its zodiac placement. A non-finite
// longitude has no sign and yields the zero Placement, whose Sign is empty.
func Sign(lonDeg float64) Placement {
	if math.IsNaN(lonDeg) || math.IsInf(lonDeg, 0) {
		return Placement{}
	}
	lon := astro.NormalizeDeg(lonDeg)
	idx := int(math.Floor(lon/30)) % 12
	deg := lon - float64(idx)*30
	if deg < 0 {
		deg = 0
	}
	return Placement{SignIndex: idx, Sign: Signs[idx], DegreeInSign: deg}
}

// String formats the placement as e.g. "Libra 4°37'".
func (p Placement) String() string {
	d := math.Floor(p.DegreeInSign)
	m := math.Floor((p.DegreeInSign - d) * 60)
	return fmt.Sprintf("%s %2.0f°%02.0f'", p.Sign, d, m)
}
