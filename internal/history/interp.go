package history

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// Interpolator builds a curve through one body's time-sorted samples.
type Interpolator interface {
	Fit(samples []Sample) (Curve, error)
}

// Curve evaluates a fitted series. ok is false outside the span it can fill.
type Curve interface {
	At(t time.Time) (lonDeg float64, ok bool)
}

// InterpolatorFunc adapts a plain function to Interpolator.
type InterpolatorFunc func(samples []Sample, t time.Time) (float64, bool)

// Fit implements Interpolator.
func (f InterpolatorFunc) Fit(samples []Sample) (Curve, error) {
	return funcCurve{f: f, samples: samples}, nil
}

type funcCurve struct {
	f       InterpolatorFunc
	samples []Sample
}

func (c funcCurve) At(t time.Time) (float64, bool) {
	return c.f(c.samples, t)
}

// unwrap returns the longitudes made continuous across the 0/360 seam.
func unwrap(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if i == 0 {
			out[i] = s.LonDeg
			continue
		}
		out[i] = out[i-1] + astro.WrapDeg180(s.LonDeg-samples[i-1].LonDeg)
	}
	return out
}

// LinearAngle interpolates linearly in time along the shorter arc between
// neighbouring samples. It never extrapolates.
type LinearAngle struct{}

// Fit implements Interpolator.
func (LinearAngle) Fit(samples []Sample) (Curve, error) {
	return &linearCurve{samples: samples, lon: unwrap(samples)}, nil
}

type linearCurve struct {
	samples []Sample
	lon     []float64
}

func (c *linearCurve) At(t time.Time) (float64, bool) {
	n := len(c.samples)
	if n == 0 {
		return 0, false
	}
	i := sort.Search(n, func(i int) bool { return !c.samples[i].Time.Before(t) })
	if i == n {
		return 0, false
	}
	if c.samples[i].Time.Equal(t) {
		return c.samples[i].LonDeg, true
	}
	if i == 0 {
		return 0, false
	}

	t0, t1 := c.samples[i-1].Time, c.samples[i].Time
	frac := float64(t.Sub(t0)) / float64(t1.Sub(t0))
	return astro.NormalizeDeg(c.lon[i-1] + frac*(c.lon[i]-c.lon[i-1])), true
}

// AkimaAngle fits an Akima spline through the unwrapped longitudes.
// Series with fewer than three samples fall back to LinearAngle.
type AkimaAngle struct{}

// Fit implements Interpolator.
func (AkimaAngle) Fit(samples []Sample) (Curve, error) {
	if len(samples) < 3 {
		return LinearAngle{}.Fit(samples)
	}

	origin := samples[0].Time
	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Time.Sub(origin).Seconds()
	}

	var spline interp.AkimaSpline
	if err := spline.Fit(xs, unwrap(samples)); err != nil {
		return nil, err
	}
	return &akimaCurve{
		origin: origin,
		first:  samples[0].Time,
		last:   samples[len(samples)-1].Time,
		spline: &spline,
	}, nil
}

type akimaCurve struct {
	origin      time.Time
	first, last time.Time
	spline      *interp.AkimaSpline
}

func (c *akimaCurve) At(t time.Time) (float64, bool) {
	if t.Before(c.first) || t.After(c.last) {
		return 0, false
	}
	return astro.NormalizeDeg(c.spline.Predict(t.Sub(c.origin).Seconds())), true
}

// ParseInterpolator returns the strategy named "linear" or "akima".
// Unknown names give LinearAngle.
func ParseInterpolator(name string) Interpolator {
	if name == "akima" {
		return AkimaAngle{}
	}
	return LinearAngle{}
}
