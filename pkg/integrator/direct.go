package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/lights"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var inf = math.Inf(1)

// shadowEpsilon shortens shadow rays so they stop before the light surface
const shadowEpsilon = 1e-3

// EstimateDirect computes direct lighting at a surface vertex from one
// uniformly chosen light. The light-sampling and BSDF-sampling strategies
// are combined with the power heuristic, and the result is scaled by the
// number of lights. Only non-specular lobes take part.
func (pt *PathTracer) EstimateDirect(si *bsdf.SurfaceInteraction, b *bsdf.BSDF, s *sampler.Sampler, geomID, currentMedium int) core.Vec3 {
	n := len(pt.scene.Lights)
	if n == 0 {
		return core.Vec3{}
	}
	light := &pt.scene.Lights[s.NextDiscrete(n)]
	if light.Geometry != lights.NoGeometry && light.Geometry == geomID {
		return core.Vec3{}
	}
	geom := pt.scene.Geometry(geomID)

	var ld core.Vec3

	// light sampling
	ls := light.SampleLi(s, si)
	if ls.Pdf > 0 && !ls.Radiance.IsBlack() {
		f := b.Eval(si, ls.Direction, bsdf.NonSpecular).Multiply(core.AbsDot(ls.Direction, si.ShadingNormal))
		if !f.IsBlack() {
			med := startMedium(geom, si, ls.Direction, currentMedium)
			if tr := pt.transmittance(si.SpawnRay(ls.Direction), ls.Distance-shadowEpsilon, med); tr > 0 {
				weight := 1.0
				if !pt.config.NEEOnly {
					weight = core.PowerHeuristic(1, ls.Pdf, 1, b.Pdf(si, ls.Direction, bsdf.NonSpecular))
				}
				ld = ld.Add(f.MultiplyVec(ls.Radiance).Multiply(tr * weight / ls.Pdf))
			}
		}
	}

	// BSDF sampling
	if !pt.config.NEEOnly {
		bsi := *si
		f, pdf := b.Sample(s, &bsi, bsdf.NonSpecular)
		if pdf > 0 && !f.IsBlack() {
			if lightPdf := light.PdfLi(si, bsi.Wi); lightPdf > 0 {
				med := startMedium(geom, si, bsi.Wi, currentMedium)
				li, tr := pt.traceToLight(si.SpawnRay(bsi.Wi), light, med)
				if tr > 0 && !li.IsBlack() {
					weight := core.PowerHeuristic(1, pdf, 1, lightPdf)
					cos := core.AbsDot(bsi.Wi, si.ShadingNormal)
					ld = ld.Add(f.MultiplyVec(li).Multiply(cos * tr * weight / pdf))
				}
			}
		}
	}

	return ld.Multiply(float64(n))
}

// transmittance returns the fraction of light that travels the first tMax
// units of ray. Medium boundaries are crossed and any other surface blocks.
func (pt *PathTracer) transmittance(ray core.Ray, tMax float64, med int) float64 {
	if tMax <= 0 {
		return 0
	}
	if !pt.passThrough {
		if pt.scene.Occluded(ray, tMax) {
			return 0
		}
		return 1
	}

	tr := 1.0
	for range maxPassThrough {
		hit, ok := pt.scene.Intersect(ray, tMax)
		seg := tMax
		if ok {
			seg = hit.Distance
		}
		if m := pt.scene.Medium(med); m != nil {
			tr *= m.Transmittance(seg)
			if tr == 0 {
				return 0
			}
		}
		if !ok {
			return tr
		}
		if !pt.scene.Material(hit.GeometryID).Boundary {
			return 0
		}
		med = pt.crossBoundary(hit, ray, med)
		ray = core.SpawnRay(ray.At(hit.Distance), pt.boundaryNormal(hit, ray), ray.Direction)
		tMax -= hit.Distance
	}
	return 0
}

// traceToLight follows ray through medium boundaries and returns the radiance
// it receives from light together with the transmittance along the way. The
// radiance is black when anything else is hit first.
func (pt *PathTracer) traceToLight(ray core.Ray, light *lights.Light, med int) (core.Vec3, float64) {
	tr := 1.0
	for range maxPassThrough {
		hit, ok := pt.scene.Intersect(ray, inf)
		if m := pt.scene.Medium(med); m != nil {
			seg := inf
			if ok {
				seg = hit.Distance
			}
			tr *= m.Transmittance(seg)
			if tr == 0 {
				return core.Vec3{}, 0
			}
		}
		if !ok {
			if light.Kind == lights.Infinite {
				return light.Le(ray), tr
			}
			return core.Vec3{}, 0
		}
		if hit.GeometryID == light.Geometry {
			si := pt.scene.Interaction(hit, ray)
			return light.L(si.GeometricNormal, si.Wo), tr
		}
		if !pt.scene.Material(hit.GeometryID).Boundary {
			return core.Vec3{}, 0
		}
		med = pt.crossBoundary(hit, ray, med)
		ray = core.SpawnRay(ray.At(hit.Distance), pt.boundaryNormal(hit, ray), ray.Direction)
	}
	return core.Vec3{}, 0
}

func (pt *PathTracer) boundaryNormal(hit scene.Hit, ray core.Ray) core.Vec3 {
	si := pt.scene.Interaction(hit, ray)
	return si.GeometricNormal
}

// crossBoundary returns the medium on the far side of a boundary hit
func (pt *PathTracer) crossBoundary(hit scene.Hit, ray core.Ray, med int) int {
	g := pt.scene.Geometry(hit.GeometryID)
	if !g.Media.IsTransition() {
		return med
	}
	return g.Media.Next(ray.Direction, pt.boundaryNormal(hit, ray))
}
