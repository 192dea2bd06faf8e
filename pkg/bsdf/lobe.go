package bsdf

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// LobeType is a capability bitmask over {Reflection, Transmission} x
// {Diffuse, Glossy, Specular}.
type LobeType uint8

const (
	Reflection LobeType = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular
)

const (
	// Null marks a failed or absent sample
	Null LobeType = 0
	// All matches every lobe
	All = Reflection | Transmission | Diffuse | Glossy | Specular
	// NonSpecular matches every lobe that has a density and can be evaluated
	NonSpecular = All &^ Specular
)

// IsSpecular reports whether the type includes a delta distribution
func (t LobeType) IsSpecular() bool { return t&Specular != 0 }

// IsTransmission reports whether the type crosses the surface
func (t LobeType) IsTransmission() bool { return t&Transmission != 0 }

// Matches reports whether every bit of t is permitted by allowed
func (t LobeType) Matches(allowed LobeType) bool { return t != Null && t&allowed == t }

func (t LobeType) String() string {
	if t == Null {
		return "null"
	}
	s := ""
	for _, part := range []struct {
		bit  LobeType
		name string
	}{{Reflection, "R"}, {Transmission, "T"}, {Diffuse, "diffuse"}, {Glossy, "glossy"}, {Specular, "specular"}} {
		if t&part.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += part.name
		}
	}
	return s
}

// LobeKind enumerates the closed set of lobe shapes
type LobeKind uint8

const (
	LambertReflection LobeKind = iota
	LambertTransmission
	GlossyReflection
	SpecularReflection
	SpecularDielectric
)

var lobeKindNames = [...]string{
	LambertReflection:   "lambert-reflection",
	LambertTransmission: "lambert-transmission",
	GlossyReflection:    "glossy-reflection",
	SpecularReflection:  "specular-reflection",
	SpecularDielectric:  "specular-dielectric",
}

func (k LobeKind) String() string {
	if int(k) < len(lobeKindNames) {
		return lobeKindNames[k]
	}
	return "unknown"
}

// Lobe is one additive term of a BSDF. It is a plain value so a BSDF can
// hold a fixed array of them without allocation.
type Lobe struct {
	Kind     LobeKind
	Color    core.Vec3 // reflectance (or transmittance for LambertTransmission)
	Tint     core.Vec3 // transmittance of SpecularDielectric
	Exponent float64   // Phong exponent of GlossyReflection
	Eta      float64   // index of refraction of SpecularDielectric
}

// NewLambertReflection creates a diffuse reflection lobe
func NewLambertReflection(reflectance core.Vec3) Lobe {
	return Lobe{Kind: LambertReflection, Color: reflectance}
}

// NewLambertTransmission creates a diffuse transmission lobe
func NewLambertTransmission(transmittance core.Vec3) Lobe {
	return Lobe{Kind: LambertTransmission, Color: transmittance}
}

// NewGlossyReflection creates a normalized Phong lobe around the mirror direction
func NewGlossyReflection(reflectance core.Vec3, exponent float64) Lobe {
	return Lobe{Kind: GlossyReflection, Color: reflectance, Exponent: math.Max(0, exponent)}
}

// NewSpecularReflection creates a perfect mirror
func NewSpecularReflection(reflectance core.Vec3) Lobe {
	return Lobe{Kind: SpecularReflection, Color: reflectance}
}

// NewSpecularDielectric creates a smooth glass interface choosing between
// reflection and refraction by Fresnel reflectance
func NewSpecularDielectric(reflectance, transmittance core.Vec3, eta float64) Lobe {
	return Lobe{Kind: SpecularDielectric, Color: reflectance, Tint: transmittance, Eta: eta}
}

// Type returns the capability tag of the lobe
func (l Lobe) Type() LobeType {
	switch l.Kind {
	case LambertReflection:
		return Reflection | Diffuse
	case LambertTransmission:
		return Transmission | Diffuse
	case GlossyReflection:
		return Reflection | Glossy
	case SpecularReflection:
		return Reflection | Specular
	case SpecularDielectric:
		return Reflection | Transmission | Specular
	}
	return Null
}

func sameHemisphere(a, b core.Vec3) bool { return a.Z*b.Z > 0 }

func mirror(wo core.Vec3) core.Vec3 { return core.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z} }

// f evaluates the lobe for local directions. Delta lobes evaluate to black.
func (l Lobe) f(wo, wi core.Vec3) core.Vec3 {
	switch l.Kind {
	case LambertReflection:
		if sameHemisphere(wo, wi) {
			return l.Color.Multiply(core.InvPi)
		}
	case LambertTransmission:
		if !sameHemisphere(wo, wi) {
			return l.Color.Multiply(core.InvPi)
		}
	case GlossyReflection:
		if sameHemisphere(wo, wi) {
			cosAlpha := math.Max(0, wi.Dot(mirror(wo)))
			return l.Color.Multiply((l.Exponent + 2) * core.Inv2Pi * math.Pow(cosAlpha, l.Exponent))
		}
	}
	return core.Vec3{}
}

// pdf returns the solid-angle density of sampling wi. Delta lobes return 0.
func (l Lobe) pdf(wo, wi core.Vec3) float64 {
	switch l.Kind {
	case LambertReflection:
		if sameHemisphere(wo, wi) {
			return core.CosineHemispherePDF(math.Abs(wi.Z))
		}
	case LambertTransmission:
		if !sameHemisphere(wo, wi) {
			return core.CosineHemispherePDF(math.Abs(wi.Z))
		}
	case GlossyReflection:
		if sameHemisphere(wo, wi) {
			cosAlpha := math.Max(0, wi.Dot(mirror(wo)))
			return (l.Exponent + 1) * core.Inv2Pi * math.Pow(cosAlpha, l.Exponent)
		}
	}
	return 0
}

// lobeSample is the result of sampling a single lobe in local space.
// For delta lobes value is the path weight f·|cosθi| and pdf is the discrete
// probability of the chosen event.
type lobeSample struct {
	wi    core.Vec3
	value core.Vec3
	pdf   float64
	typ   LobeType
}

// sample draws a local incident direction. ok is false when the draw is
// unusable (below the surface, total internal reflection with no reflection
// weight, zero density).
func (l Lobe) sample(wo core.Vec3, u core.Vec2, si *SurfaceInteraction) (lobeSample, bool) {
	switch l.Kind {
	case LambertReflection, LambertTransmission:
		wi := core.SampleCosineHemisphere(u)
		flip := wo.Z < 0
		if l.Kind == LambertTransmission {
			flip = !flip
		}
		if flip {
			wi.Z = -wi.Z
		}
		return lobeSample{wi: wi, value: l.f(wo, wi), pdf: l.pdf(wo, wi), typ: l.Type()}, true

	case GlossyReflection:
		cosAlpha := math.Pow(u.X, 1/(l.Exponent+1))
		sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
		local := core.SphericalDirection(sinAlpha, cosAlpha, 2*math.Pi*u.Y)
		wi := core.NewFrame(mirror(wo)).FromLocal(local)
		if !sameHemisphere(wo, wi) {
			return lobeSample{}, false
		}
		return lobeSample{wi: wi, value: l.f(wo, wi), pdf: l.pdf(wo, wi), typ: l.Type()}, true

	case SpecularReflection:
		return lobeSample{wi: mirror(wo), value: l.Color, pdf: 1, typ: Reflection | Specular}, true

	case SpecularDielectric:
		etaI, etaT := l.etas(wo, si)
		cosI := math.Abs(wo.Z)
		fr := FrDielectric(cosI, etaI, etaT)
		if u.X < fr {
			return lobeSample{wi: mirror(wo), value: l.Color.Multiply(fr), pdf: fr, typ: Reflection | Specular}, true
		}
		n := core.FaceForward(core.Vec3{Z: 1}, wo)
		wt, ok := Refract(wo, n, etaI/etaT)
		if !ok {
			return lobeSample{}, false
		}
		scale := (etaI * etaI) / (etaT * etaT)
		return lobeSample{wi: wt, value: l.Tint.Multiply((1 - fr) * scale), pdf: 1 - fr, typ: Transmission | Specular}, true
	}
	return lobeSample{}, false
}

// etas resolves the indices of refraction on the Wo side and the far side
func (l Lobe) etas(wo core.Vec3, si *SurfaceInteraction) (float64, float64) {
	if si.EtaI > 0 && si.EtaT > 0 {
		return si.EtaI, si.EtaT
	}
	if wo.Z > 0 {
		return 1, l.Eta
	}
	return l.Eta, 1
}
