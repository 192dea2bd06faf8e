package bsdf

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// FrDielectric returns the unpolarized Fresnel reflectance for light arriving
// at |cosThetaI| from a medium with index etaI onto one with index etaT.
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = math.Min(1, math.Abs(cosThetaI))
	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// Refract bends wi through a surface with normal n (same side as wi) for the
// relative index eta = etaI/etaT. It returns false on total internal reflection.
func Refract(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	return wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT)), true
}
