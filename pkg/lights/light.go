// Package lights implements the emitters a path can connect to: planar area
// lights, sphere lights and a constant infinite environment.
package lights

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

// Kind tags the light variant
type Kind uint8

const (
	Area Kind = iota
	Sphere
	Infinite
)

func (k Kind) String() string {
	switch k {
	case Area:
		return "area"
	case Sphere:
		return "sphere"
	case Infinite:
		return "infinite"
	}
	return "unknown"
}

// NoGeometry marks a light with no surface in the scene
const NoGeometry = -1

// Light is an immutable emitter. Only the fields relevant to Kind are set.
type Light struct {
	Kind     Kind
	Emission core.Vec3 // constant emitted radiance

	// Geometry is the index of the scene geometry that carries this emitter
	Geometry int

	// Area: parallelogram corner + s*U + t*V, emitting on the Normal side
	Corner, U, V, Normal core.Vec3
	area                 float64

	// Sphere
	Center core.Vec3
	Radius float64
}

// LiSample is the result of sampling a light from a shading point
type LiSample struct {
	Radiance  core.Vec3
	Direction core.Vec3 // unit vector from the shading point toward the light
	Distance  float64   // +Inf for infinite lights
	Pdf       float64   // solid-angle density of Direction
}

// NewQuad creates a one-sided parallelogram light. The emitting side is u×v.
func NewQuad(corner, u, v, emission core.Vec3) Light {
	n := u.Cross(v)
	return Light{
		Kind:     Area,
		Emission: emission,
		Geometry: NoGeometry,
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   n.Normalize(),
		area:     n.Length(),
	}
}

// NewSphere creates a sphere light emitting from its whole surface
func NewSphere(center core.Vec3, radius float64, emission core.Vec3) Light {
	return Light{
		Kind:     Sphere,
		Emission: emission,
		Geometry: NoGeometry,
		Center:   center,
		Radius:   math.Abs(radius),
	}
}

// NewInfinite creates a constant environment light
func NewInfinite(emission core.Vec3) Light {
	return Light{Kind: Infinite, Emission: emission, Geometry: NoGeometry}
}

// SurfaceArea returns the emitting area, or +Inf for an infinite light
func (l *Light) SurfaceArea() float64 {
	switch l.Kind {
	case Area:
		return l.area
	case Sphere:
		return 4 * math.Pi * l.Radius * l.Radius
	}
	return math.Inf(1)
}

// SampleLi draws a direction toward the light from si.Point. A zero Pdf
// means the sample is unusable.
func (l *Light) SampleLi(s *sampler.Sampler, si *bsdf.SurfaceInteraction) LiSample {
	u := s.Next2D()
	switch l.Kind {
	case Area:
		return l.sampleQuad(si.Point, u)
	case Sphere:
		return l.sampleSphere(si.Point, u)
	case Infinite:
		return l.sampleInfinite(si, u)
	}
	return LiSample{}
}

// PdfLi returns the density with which SampleLi would produce dir from si.
// It is zero when dir does not reach the light.
func (l *Light) PdfLi(si *bsdf.SurfaceInteraction, dir core.Vec3) float64 {
	switch l.Kind {
	case Area:
		return l.pdfQuad(si.Point, dir)
	case Sphere:
		return l.pdfSphere(si.Point, dir)
	case Infinite:
		return l.pdfInfinite(si, dir)
	}
	return 0
}

// L returns the radiance emitted from a point on the light surface with
// outward normal n in direction w
func (l *Light) L(n, w core.Vec3) core.Vec3 {
	switch l.Kind {
	case Area:
		if w.Dot(l.Normal) > 0 {
			return l.Emission
		}
	case Sphere:
		return l.Emission
	}
	return core.Vec3{}
}

// Le returns the radiance carried by a ray that escapes the scene
func (l *Light) Le(ray core.Ray) core.Vec3 {
	if l.Kind == Infinite {
		return l.Emission
	}
	return core.Vec3{}
}
