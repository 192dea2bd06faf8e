package lights

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// supportNormal is the axis of the hemisphere the infinite light samples:
// the shading normal flipped to the side of Wo
func supportNormal(si *bsdf.SurfaceInteraction) core.Vec3 {
	return core.FaceForward(si.ShadingNormal, si.Wo)
}

func (l *Light) sampleInfinite(si *bsdf.SurfaceInteraction, u core.Vec2) LiSample {
	n := supportNormal(si)
	dir := core.NewFrame(n).FromLocal(core.SampleUniformHemisphere(u))
	return LiSample{
		Radiance:  l.Emission,
		Direction: dir,
		Distance:  math.Inf(1),
		Pdf:       core.Inv2Pi,
	}
}

func (l *Light) pdfInfinite(si *bsdf.SurfaceInteraction, dir core.Vec3) float64 {
	if dir.Dot(supportNormal(si)) <= 0 {
		return 0
	}
	return core.Inv2Pi
}
