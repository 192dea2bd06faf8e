package lights

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// sampleQuad picks a point uniformly on the parallelogram and converts the
// area density 1/A to solid angle: d²/(|cosθl|·A)
func (l *Light) sampleQuad(p core.Vec3, u core.Vec2) LiSample {
	point := l.Corner.Add(l.U.Multiply(u.X)).Add(l.V.Multiply(u.Y))
	toLight := point.Subtract(p)
	dist := toLight.Length()
	if dist == 0 {
		return LiSample{}
	}
	dir := toLight.Multiply(1 / dist)

	cosLight := math.Abs(l.Normal.Dot(dir))
	if cosLight < 1e-8 {
		return LiSample{Direction: dir, Distance: dist}
	}

	var radiance core.Vec3
	if dir.Dot(l.Normal) < 0 {
		radiance = l.Emission
	}
	return LiSample{
		Radiance:  radiance,
		Direction: dir,
		Distance:  dist,
		Pdf:       dist * dist / (cosLight * l.area),
	}
}

// hitQuad intersects the ray p + t·dir with the parallelogram
func (l *Light) hitQuad(p, dir core.Vec3) (float64, bool) {
	denom := l.Normal.Dot(dir)
	if math.Abs(denom) < 1e-8 {
		return 0, false
	}
	t := l.Normal.Dot(l.Corner.Subtract(p)) / denom
	if t <= 0 {
		return 0, false
	}

	n := l.U.Cross(l.V)
	w := n.Multiply(1 / n.Dot(n))
	planar := p.Add(dir.Multiply(t)).Subtract(l.Corner)
	alpha := w.Dot(planar.Cross(l.V))
	beta := w.Dot(l.U.Cross(planar))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return 0, false
	}
	return t, true
}

func (l *Light) pdfQuad(p, dir core.Vec3) float64 {
	t, ok := l.hitQuad(p, dir)
	if !ok {
		return 0
	}
	cosLight := math.Abs(l.Normal.Dot(dir))
	if cosLight < 1e-8 {
		return 0
	}
	dist := t * dir.Length()
	return dist * dist / (cosLight * l.area)
}
