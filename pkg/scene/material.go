package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material pairs a BSDF with an optional texture that tints its
// non-specular lobes.
type Material struct {
	BSDF    bsdf.BSDF
	Texture Texture

	// Boundary marks a lobe-free interface that only separates media. Rays
	// pass straight through it. A lobe-free material without Boundary absorbs.
	Boundary bool
}

// BSDFAt returns the BSDF at a surface point with the texture applied
func (m *Material) BSDFAt(si *bsdf.SurfaceInteraction) bsdf.BSDF {
	if m.Texture == nil {
		return m.BSDF
	}
	return m.BSDF.Tinted(m.Texture.Evaluate(si.UV, si.Point))
}

// Lambertian is a diffuse reflector
func Lambertian(albedo core.Vec3) []bsdf.Lobe {
	return []bsdf.Lobe{bsdf.NewLambertReflection(albedo)}
}

// Glossy is a diffuse base under a Phong highlight
func Glossy(diffuse, specular core.Vec3, exponent float64) []bsdf.Lobe {
	return []bsdf.Lobe{
		bsdf.NewLambertReflection(diffuse),
		bsdf.NewGlossyReflection(specular, exponent),
	}
}

// Mirror is a perfect specular reflector
func Mirror(reflectance core.Vec3) []bsdf.Lobe {
	return []bsdf.Lobe{bsdf.NewSpecularReflection(reflectance)}
}

// Glass is a smooth clear dielectric
func Glass(eta float64) []bsdf.Lobe {
	white := core.NewVec3(1, 1, 1)
	return []bsdf.Lobe{bsdf.NewSpecularDielectric(white, white, eta)}
}

// Translucent scatters diffusely to both sides of the surface
func Translucent(reflectance, transmittance core.Vec3) []bsdf.Lobe {
	return []bsdf.Lobe{
		bsdf.NewLambertReflection(reflectance),
		bsdf.NewLambertTransmission(transmittance),
	}
}
