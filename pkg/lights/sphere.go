package lights

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Below this sin²θmax (about 1.5°) 1-cosθmax is computed from a Taylor
// expansion to avoid cancellation.
const smallConeSin2 = 0.00068523

// cone describes the cone of directions subtended by the sphere from p
type cone struct {
	axis            core.Vec3 // unit vector toward the center
	dist            float64
	sin2ThetaMax    float64
	oneMinusCosMax  float64
	useTaylorSeries bool
}

func (l *Light) coneFrom(p core.Vec3) (cone, bool) {
	toCenter := l.Center.Subtract(p)
	dc2 := toCenter.LengthSquared()
	if dc2 <= l.Radius*l.Radius {
		return cone{}, false
	}
	dc := math.Sqrt(dc2)
	c := cone{
		axis:         toCenter.Multiply(1 / dc),
		dist:         dc,
		sin2ThetaMax: l.Radius * l.Radius / dc2,
	}
	if c.sin2ThetaMax < smallConeSin2 {
		c.oneMinusCosMax = c.sin2ThetaMax / 2
		c.useTaylorSeries = true
	} else {
		c.oneMinusCosMax = 1 - math.Sqrt(math.Max(0, 1-c.sin2ThetaMax))
	}
	return c, true
}

func (c cone) pdf() float64 {
	return 1 / (2 * math.Pi * c.oneMinusCosMax)
}

// sampleSphere samples the visible cone when p is outside the sphere and the
// full sphere of directions otherwise
func (l *Light) sampleSphere(p core.Vec3, u core.Vec2) LiSample {
	c, outside := l.coneFrom(p)
	if !outside {
		dir := core.SampleUniformSphere(u)
		return LiSample{
			Radiance:  l.Emission,
			Direction: dir,
			Distance:  l.exitDistance(p, dir),
			Pdf:       core.Inv4Pi,
		}
	}

	sinThetaMax := math.Sqrt(c.sin2ThetaMax)
	var cosTheta, sin2Theta float64
	if c.useTaylorSeries {
		sin2Theta = c.sin2ThetaMax * u.X
		cosTheta = math.Sqrt(1 - sin2Theta)
	} else {
		cosTheta = 1 - u.X*c.oneMinusCosMax
		sin2Theta = 1 - cosTheta*cosTheta
	}

	// angle from the sphere center to the sampled point, seen from the center
	cosAlpha := sin2Theta/sinThetaMax + cosTheta*math.Sqrt(math.Max(0, 1-sin2Theta/c.sin2ThetaMax))
	sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
	w := core.SphericalDirection(sinAlpha, cosAlpha, 2*math.Pi*u.Y)
	n := core.NewFrame(c.axis).FromLocal(w.Negate())
	point := l.Center.Add(n.Multiply(l.Radius))

	toLight := point.Subtract(p)
	dist := toLight.Length()
	return LiSample{
		Radiance:  l.Emission,
		Direction: toLight.Multiply(1 / dist),
		Distance:  dist,
		Pdf:       c.pdf(),
	}
}

func (l *Light) pdfSphere(p, dir core.Vec3) float64 {
	c, outside := l.coneFrom(p)
	if !outside {
		return core.Inv4Pi
	}
	d := dir.Normalize()
	if d.Dot(c.axis) <= 0 {
		return 0
	}
	// sin² via the cross product stays accurate for narrow cones
	if d.Cross(c.axis).LengthSquared() > c.sin2ThetaMax*(1+1e-6) {
		return 0
	}
	return c.pdf()
}

// exitDistance returns the distance from an interior point to the sphere along dir
func (l *Light) exitDistance(p, dir core.Vec3) float64 {
	oc := p.Subtract(l.Center)
	b := oc.Dot(dir)
	c := oc.LengthSquared() - l.Radius*l.Radius
	return -b + math.Sqrt(math.Max(0, b*b-c))
}
