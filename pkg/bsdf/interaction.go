package bsdf

import "github.com/df07/go-progressive-pathtracer/pkg/core"

// SurfaceInteraction describes one path vertex on a surface. It is created
// fresh for every bounce and mutated in place by BSDF.Sample.
type SurfaceInteraction struct {
	Point           core.Vec3
	GeometricNormal core.Vec3 // outward geometric normal, never flipped toward Wo
	ShadingNormal   core.Vec3 // interpolated normal, same hemisphere as GeometricNormal
	UV              core.Vec2
	Wo              core.Vec3 // toward the previous vertex (the eye side)
	Wi              core.Vec3 // sampled direction toward the next vertex
	SampledLobe     LobeType
	EtaI            float64 // index of refraction on the Wo side (0 = derive from lobe)
	EtaT            float64 // index of refraction on the far side (0 = derive from lobe)
}

// FrontFace reports whether Wo lies on the side the geometric normal points to
func (si *SurfaceInteraction) FrontFace() bool {
	return si.Wo.Dot(si.GeometricNormal) > 0
}

// SpawnRay starts a ray leaving the surface in direction dir
func (si *SurfaceInteraction) SpawnRay(dir core.Vec3) core.Ray {
	return core.SpawnRay(si.Point, si.GeometricNormal, dir)
}
