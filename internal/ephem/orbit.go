package ephem

import (
	"errors"
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromaps/internal/astro"
)

// GaussK is the Gaussian gravitational constant (radians/day).
const GaussK = 0.01720209895

// ErrInvalidElements is returned for orbits that are not closed ellipses.
var ErrInvalidElements = errors.New("invalid orbital elements")

// Elements are osculating heliocentric elements referred to the ecliptic and equinox J2000.
type Elements struct {
	Epoch       float64 // JDE of MeanAnomaly
	Axis        float64 // semi-major axis, AU
	Ecc         float64
	Inc         unit.Angle
	Node        unit.Angle // longitude of ascending node
	ArgPeri     unit.Angle // argument of perihelion
	MeanAnomaly unit.Angle
}

// Orbit is a two-body elliptic orbit with its orientation precomputed.
type Orbit struct {
	el         Elements
	n          float64 // mean motion, rad/day
	b          float64 // semi-minor axis, AU
	px, py, pz float64
	qx, qy, qz float64
}

// NewOrbit derives the mean motion and orientation vectors from el.
func NewOrbit(el Elements) (*Orbit, error) {
	if !(el.Axis > 0) || math.IsInf(el.Axis, 0) {
		return nil, ErrInvalidElements
	}
	if !(el.Ecc >= 0 && el.Ecc < 1) {
		return nil, ErrInvalidElements
	}

	sΩ, cΩ := math.Sincos(el.Node.Rad())
	sω, cω := math.Sincos(el.ArgPeri.Rad())
	si, ci := math.Sincos(el.Inc.Rad())

	return &Orbit{
		el: el,
		n:  GaussK / (el.Axis * math.Sqrt(el.Axis)),
		b:  el.Axis * math.Sqrt(1-el.Ecc*el.Ecc),
		px: cω*cΩ - sω*sΩ*ci,
		py: cω*sΩ + sω*cΩ*ci,
		pz: sω * si,
		qx: -sω*cΩ - cω*sΩ*ci,
		qy: -sω*sΩ + cω*cΩ*ci,
		qz: cω * si,
	}, nil
}

// Elements returns the elements the orbit was built from.
func (o *Orbit) Elements() Elements {
	return o.el
}

// MeanMotion returns the mean daily motion in radians.
func (o *Orbit) MeanMotion() float64 {
	return o.n
}

// Position returns the heliocentric ecliptic J2000 position at jde, in AU.
func (o *Orbit) Position(jde float64) astro.Vec3 {
	M := o.el.MeanAnomaly.Rad() + o.n*(jde-o.el.Epoch)
	E := kepler.Kepler3(o.el.Ecc, unit.Angle(M).Mod1()).Rad()

	sE, cE := math.Sincos(E)
	x := o.el.Axis * (cE - o.el.Ecc)
	y := o.b * sE

	return astro.Vec3{
		X: o.px*x + o.qx*y,
		Y: o.py*x + o.qy*y,
		Z: o.pz*x + o.qz*y,
	}
}
