package body

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/ephem"
)

func ascendantAt(t *testing.T, method AscendantMethod, loc astro.GeoLocation, at time.Time) (Position, error) {
	t.Helper()
	obs := ephem.Observer{Location: loc, Time: at}
	return NewAscendant(method).ComputePosition(obs, at)
}

func TestAscendant_ClosedFormParis(t *testing.T) {
	pos, err := ascendantAt(t, AscendantClosedForm, astro.Paris, chartTime)
	if err != nil {
		t.Fatalf("ComputePosition: %v", err)
	}
	if math.Abs(pos.LonDeg-184.627) > 0.05 {
		t.Errorf("ascendant = %.4f, want ~184.627", pos.LonDeg)
	}
	if pos.LatDeg != 0 || pos.DistAU != 0 {
		t.Errorf("LatDeg/DistAU = %v/%v, want 0/0", pos.LatDeg, pos.DistAU)
	}
}

func TestAscendant_MethodsAgree(t *testing.T) {
	locations := []astro.GeoLocation{
		astro.Paris,
		{LatDeg: 0, LonDeg: 0, Name: "Null Island"},
		{LatDeg: -33.87, LonDeg: 151.21, Name: "Sydney"},
		{LatDeg: 64.13, LonDeg: -21.90, Name: "Reykjavik"},
		{LatDeg: 40.71, LonDeg: -74.01, Name: "New York"},
		{LatDeg: 70, LonDeg: 0, Name: "70N"},
		{LatDeg: -70, LonDeg: 0, Name: "70S"},
	}
	times := []time.Time{
		chartTime,
		chartTime.Add(6 * time.Hour),
		time.Date(2025, 1, 24, 14, 24, 0, 0, time.UTC),
		time.Date(1990, 7, 4, 3, 0, 0, 0, time.UTC),
	}

	for _, loc := range locations {
		for _, at := range times {
			t.Run(loc.Name+"/"+at.Format("2006-01-02T15"), func(t *testing.T) {
				closed, err := ascendantAt(t, AscendantClosedForm, loc, at)
				if err != nil {
					t.Fatalf("closed form: %v", err)
				}
				search, err := ascendantAt(t, AscendantSearch, loc, at)
				if err != nil {
					t.Fatalf("search: %v", err)
				}
				if diff := math.Abs(astro.WrapDeg180(closed.LonDeg - search.LonDeg)); diff > 0.1 {
					t.Errorf("closed %.4f vs search %.4f (diff %.4f)", closed.LonDeg, search.LonDeg, diff)
				}
				if search.LonDeg < 0 || search.LonDeg >= 360 {
					t.Errorf("search LonDeg = %v", search.LonDeg)
				}
			})
		}
	}
}

// isRising reports whether the ecliptic point at lonDeg gains altitude over a minute.
func isRising(loc astro.GeoLocation, lonDeg float64, at time.Time) bool {
	eq := astro.EclipticToSky(lonDeg, 0, astro.MeanObliquity(at))
	now := astro.EquatorialToHorizontal(eq, loc, at).ElDeg
	later := astro.EquatorialToHorizontal(eq, loc, at.Add(time.Minute)).ElDeg
	return later > now
}

func TestAscendant_PolarCircles(t *testing.T) {
	lats := []float64{67, 70, 75, 80, -70}
	for _, lat := range lats {
		loc := astro.GeoLocation{LatDeg: lat}
		t.Run(fmt.Sprintf("lat%+.0f", lat), func(t *testing.T) {
			for i := 0; i < 96; i++ {
				at := chartTime.Add(time.Duration(i) * 15 * time.Minute)
				closed, cerr := ascendantAt(t, AscendantClosedForm, loc, at)
				search, serr := ascendantAt(t, AscendantSearch, loc, at)
				if cerr != nil || serr != nil {
					if !errors.Is(cerr, ErrNoRisingEvent) || !errors.Is(serr, ErrNoRisingEvent) {
						t.Fatalf("%s: closed err %v, search err %v", at.Format("15:04"), cerr, serr)
					}
					continue
				}
				if diff := math.Abs(astro.WrapDeg180(closed.LonDeg - search.LonDeg)); diff > 0.1 {
					t.Errorf("%s: closed %.4f vs search %.4f", at.Format("15:04"), closed.LonDeg, search.LonDeg)
				}
				if !isRising(loc, closed.LonDeg, at) {
					t.Errorf("%s: closed form %.4f is setting", at.Format("15:04"), closed.LonDeg)
				}
			}
		})
	}
}

func TestNearestEquinoxRising(t *testing.T) {
	for _, loc := range []astro.GeoLocation{astro.Paris, {LatDeg: -70, LonDeg: 120}} {
		t.Run(loc.Name, func(t *testing.T) {
			rise, ok := nearestEquinoxRising(loc, chartTime)
			if !ok {
				t.Fatal("no rising found")
			}
			if d := absDuration(rise.Sub(chartTime)); d > searchWindow {
				t.Errorf("rise %s outside the window", rise)
			}
			if alt := equinoxAltitude(loc, rise); math.Abs(alt) > 1e-3 {
				t.Errorf("altitude at rise = %.6f, want ~0", alt)
			}
			if equinoxAltitude(loc, rise.Add(time.Minute)) <= 0 {
				t.Error("equinox not above the horizon after rising")
			}
			if lst := astro.LocalSiderealTime(rise, loc.LonDeg); math.Abs(astro.WrapDeg180(lst-270)) > 1e-3 {
				t.Errorf("LST at rise = %.5f, want 270", lst)
			}
		})
	}
}

func TestAscendant_Pole(t *testing.T) {
	pole := astro.GeoLocation{LatDeg: 90, Name: "North Pole"}
	for _, m := range []AscendantMethod{AscendantClosedForm, AscendantSearch} {
		t.Run(m.String(), func(t *testing.T) {
			_, err := ascendantAt(t, m, pole, chartTime)
			if !errors.Is(err, ErrNoRisingEvent) {
				t.Errorf("error = %v, want ErrNoRisingEvent", err)
			}
		})
	}
}

func TestParseAscendantMethod(t *testing.T) {
	tests := []struct {
		in   string
		want AscendantMethod
	}{
		{"search", AscendantSearch},
		{"closed-form", AscendantClosedForm},
		{"", AscendantClosedForm},
	}
	for _, tc := range tests {
		if got := ParseAscendantMethod(tc.in); got != tc.want {
			t.Errorf("ParseAscendantMethod(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if AscendantMethod(9).String() != "unknown" {
		t.Error("unexpected name for unknown method")
	}
}
