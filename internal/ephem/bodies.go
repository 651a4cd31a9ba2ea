package ephem

import "strings"

// BodyID is the barycenter identifier of a major body.
type BodyID int

// Barycenter identifiers, matching the DE kernel numbering.
const (
	Mercury BodyID = 1
	Venus   BodyID = 2
	Earth   BodyID = 3
	Mars    BodyID = 4
	Jupiter BodyID = 5
	Saturn  BodyID = 6
	Uranus  BodyID = 7
	Neptune BodyID = 8
	Pluto   BodyID = 9
	Sun     BodyID = 10
)

// BodyInfo describes a major body.
type BodyInfo struct {
	Name   string
	ID     BodyID
	NAIFID int // Horizons command for the body itself
}

// MajorBodies lists the ten supported major bodies in chart order.
var MajorBodies = []BodyInfo{
	{Name: "sun", ID: Sun, NAIFID: 10},
	{Name: "mercury", ID: Mercury, NAIFID: 199},
	{Name: "venus", ID: Venus, NAIFID: 299},
	{Name: "earth", ID: Earth, NAIFID: 399},
	{Name: "mars", ID: Mars, NAIFID: 4},
	{Name: "jupiter", ID: Jupiter, NAIFID: 5},
	{Name: "saturn", ID: Saturn, NAIFID: 6},
	{Name: "uranus", ID: Uranus, NAIFID: 7},
	{Name: "neptune", ID: Neptune, NAIFID: 8},
	{Name: "pluto", ID: Pluto, NAIFID: 9},
}

// BodiesByID maps identifiers to body info for quick lookup.
var BodiesByID = func() map[BodyID]BodyInfo {
	m := make(map[BodyID]BodyInfo, len(MajorBodies))
	for _, b := range MajorBodies {
		m[b.ID] = b
	}
	return m
}()

// BodiesByName maps lowercase names to body info.
var BodiesByName = func() map[string]BodyInfo {
	m := make(map[string]BodyInfo, len(MajorBodies))
	for _, b := range MajorBodies {
		m[b.Name] = b
	}
	return m
}()

// LookupName returns body info for a name (case-insensitive).
func LookupName(name string) (BodyInfo, bool) {
	b, ok := BodiesByName[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// String returns the body name.
func (id BodyID) String() string {
	if b, ok := BodiesByID[id]; ok {
		return b.Name
	}
	return "unknown"
}

func resolveKnown(id BodyID) (Handle, error) {
	b, ok := BodiesByID[id]
	if !ok {
		return Handle{}, ErrUnknownBody
	}
	return Handle{ID: b.ID, Name: b.Name}, nil
}
