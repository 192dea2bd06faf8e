// Package medium models homogeneous participating media with an isotropic
// phase function.
package medium

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// None is the medium index meaning vacuum
const None = -1

// Homogeneous is a medium with constant extinction and single-scattering albedo
type Homogeneous struct {
	SigmaT float64   // extinction coefficient per unit length
	Albedo core.Vec3 // probability of scattering given an interaction, per channel
}

// NewHomogeneous creates a homogeneous medium
func NewHomogeneous(sigmaT float64, albedo core.Vec3) Homogeneous {
	return Homogeneous{SigmaT: math.Max(0, sigmaT), Albedo: albedo.Clamp(0, 1)}
}

// SampleDistance draws a free-flight distance with density σt·exp(-σt·t).
// A non-absorbing medium returns +Inf.
func (m Homogeneous) SampleDistance(u float64) float64 {
	if m.SigmaT <= 0 {
		return math.Inf(1)
	}
	return -math.Log(1-u) / m.SigmaT
}

// Transmittance returns exp(-σt·d)
func (m Homogeneous) Transmittance(d float64) float64 {
	if math.IsInf(d, 1) {
		if m.SigmaT > 0 {
			return 0
		}
		return 1
	}
	return math.Exp(-m.SigmaT * d)
}

// SamplePhase draws a scattered direction from the isotropic phase function
func (m Homogeneous) SamplePhase(u core.Vec2) (core.Vec3, float64) {
	return core.SampleUniformSphere(u), core.Inv4Pi
}

// PhasePdf is the isotropic phase density 1/4π for any pair of directions
func (m Homogeneous) PhasePdf() float64 { return core.Inv4Pi }

// Interface records the media on either side of a closed surface
type Interface struct {
	Inside  int
	Outside int
}

// Vacuum is an interface with no medium on either side
var Vacuum = Interface{Inside: None, Outside: None}

// IsTransition reports whether crossing the surface changes the medium
func (mi Interface) IsTransition() bool { return mi.Inside != mi.Outside }

// Next returns the medium a ray enters when it leaves the surface in
// direction dir, given the outward normal n.
func (mi Interface) Next(dir, n core.Vec3) int {
	if dir.Dot(n) > 0 {
		return mi.Outside
	}
	return mi.Inside
}
