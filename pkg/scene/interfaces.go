package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

// Hit identifies the closest intersection along a ray
type Hit struct {
	GeometryID  int
	PrimitiveID int
	U, V        float64 // barycentric (triangles) or parametric (quads) coordinates
	Distance    float64
}

// Intersector answers closest-hit and any-hit queries. Implementations must
// be safe for concurrent use once built.
type Intersector interface {
	Intersect(ray core.Ray, tMax float64) (Hit, bool)
	Occluded(ray core.Ray, tMax float64) bool
}

// Camera generates primary rays for pixel (x, y), drawing any lens or
// sub-pixel jitter from s
type Camera interface {
	CalculateRayFromPixel(x, y int, s *sampler.Sampler) core.Ray
}
