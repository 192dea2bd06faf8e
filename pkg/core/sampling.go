package core

import "math"

const (
	// InvPi is 1/π
	InvPi = 1.0 / math.Pi
	// Inv2Pi is 1/(2π)
	Inv2Pi = 1.0 / (2.0 * math.Pi)
	// Inv4Pi is 1/(4π)
	Inv4Pi = 1.0 / (4.0 * math.Pi)
)

// SampleConcentricDisk maps a point in [0,1)² to the unit disk using Shirley's
// concentric mapping. This avoids rejection sampling and keeps strata compact.
func SampleConcentricDisk(sample Vec2) Vec2 {
	ox := 2*sample.X - 1
	oy := 2*sample.Y - 1
	if ox == 0 && oy == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}
	return Vec2{r * math.Cos(theta), r * math.Sin(theta)}
}

// SampleCosineHemisphere returns a cosine-weighted direction in the local
// hemisphere around +Z. The density is CosineHemispherePDF(dir.Z).
func SampleCosineHemisphere(sample Vec2) Vec3 {
	d := SampleConcentricDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return Vec3{d.X, d.Y, z}
}

// CosineHemispherePDF is cos(θ)/π
func CosineHemispherePDF(cosTheta float64) float64 {
	return cosTheta * InvPi
}

// SampleUniformHemisphere returns a uniformly distributed direction in the
// local hemisphere around +Z (pdf 1/2π)
func SampleUniformHemisphere(sample Vec2) Vec3 {
	z := sample.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * sample.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// SampleUniformSphere generates a uniform random direction on the unit sphere (pdf 1/4π)
func SampleUniformSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// SphericalDirection builds a local direction from spherical coordinates
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	sinTheta = math.Max(-1, math.Min(1, sinTheta))
	return Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), math.Max(-1, math.Min(1, cosTheta))}
}

// PowerHeuristic calculates the power heuristic (β=2) MIS weight for
// technique f given nf samples from f and ng samples from g.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	if math.IsInf(f*f, 1) {
		return 1
	}
	return (f * f) / (f*f + g*g)
}
