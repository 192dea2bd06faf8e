package bsdf

import (
	"errors"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

// MaxLobes bounds the number of lobes a single BSDF can hold
const MaxLobes = 8

// ErrLobeCapacity is returned by material construction when a BSDF is full
var ErrLobeCapacity = errors.New("bsdf: lobe capacity exceeded")

// BSDF is a weighted collection of lobes evaluated in the local shading frame
// of a SurfaceInteraction.
type BSDF struct {
	lobes [MaxLobes]Lobe
	n     int
}

// New builds a BSDF from lobes, failing with ErrLobeCapacity when they do not fit
func New(lobes ...Lobe) (BSDF, error) {
	var b BSDF
	for _, l := range lobes {
		if !b.AddLobe(l) {
			return b, ErrLobeCapacity
		}
	}
	return b, nil
}

// AddLobe appends a lobe. It returns false and leaves the BSDF unchanged when full.
func (b *BSDF) AddLobe(l Lobe) bool {
	if b.n >= MaxLobes {
		return false
	}
	b.lobes[b.n] = l
	b.n++
	return true
}

// NumLobes returns the number of lobes
func (b *BSDF) NumLobes() int { return b.n }

// Lobe returns the i-th lobe
func (b *BSDF) Lobe(i int) Lobe { return b.lobes[i] }

// NumMatching counts lobes whose type is permitted by allowed
func (b *BSDF) NumMatching(allowed LobeType) int {
	count := 0
	for i := 0; i < b.n; i++ {
		if b.lobes[i].Type().Matches(allowed) {
			count++
		}
	}
	return count
}

// HasNonSpecular reports whether any lobe can be evaluated for arbitrary directions
func (b *BSDF) HasNonSpecular() bool {
	return b.NumMatching(NonSpecular) > 0
}

// Tinted returns a copy whose non-specular lobes are multiplied by tint
func (b BSDF) Tinted(tint core.Vec3) BSDF {
	for i := 0; i < b.n; i++ {
		if !b.lobes[i].Type().IsSpecular() {
			b.lobes[i].Color = b.lobes[i].Color.MultiplyVec(tint)
		}
	}
	return b
}

// Eval sums f(wo, wi) over matching lobes. Whether reflection or
// transmission lobes apply is decided by the geometric normal so that
// shading normals cannot leak light through the surface.
func (b *BSDF) Eval(si *SurfaceInteraction, wi core.Vec3, allowed LobeType) core.Vec3 {
	frame := core.NewFrame(si.ShadingNormal)
	wo := frame.ToLocal(si.Wo)
	if wo.Z == 0 {
		return core.Vec3{}
	}
	wiLocal := frame.ToLocal(wi)
	reflect := si.Wo.Dot(si.GeometricNormal)*wi.Dot(si.GeometricNormal) > 0

	var f core.Vec3
	for i := 0; i < b.n; i++ {
		l := &b.lobes[i]
		t := l.Type()
		if !t.Matches(allowed) {
			continue
		}
		if (reflect && t&Reflection != 0) || (!reflect && t&Transmission != 0) {
			f = f.Add(l.f(wo, wiLocal))
		}
	}
	return f
}

// Sample picks one matching lobe uniformly, draws an incident direction from
// it and stores it in si.Wi together with the sampled lobe type. It returns
// the BSDF value and the solid-angle PDF of the direction.
//
// For delta lobes only the chosen lobe contributes and the returned pair is
// scaled so that value·|cosθi|/pdf equals the lobe's path weight divided by
// its selection probability. On failure si.SampledLobe is Null and the
// value is black.
func (b *BSDF) Sample(s *sampler.Sampler, si *SurfaceInteraction, allowed LobeType) (core.Vec3, float64) {
	si.SampledLobe = Null
	matching := b.NumMatching(allowed)
	if matching == 0 {
		return core.Vec3{}, 0
	}

	comp := s.NextDiscrete(matching)
	var chosen *Lobe
	for i := 0; i < b.n; i++ {
		if b.lobes[i].Type().Matches(allowed) {
			if comp == 0 {
				chosen = &b.lobes[i]
				break
			}
			comp--
		}
	}

	u := s.Next2D()
	frame := core.NewFrame(si.ShadingNormal)
	wo := frame.ToLocal(si.Wo)
	if wo.Z == 0 {
		return core.Vec3{}, 0
	}

	ls, ok := chosen.sample(wo, u, si)
	if !ok || ls.pdf <= 0 || ls.wi.Z == 0 {
		return core.Vec3{}, 0
	}
	wi := frame.FromLocal(ls.wi)
	if !wi.IsFinite() {
		return core.Vec3{}, 0
	}

	selection := 1 / float64(matching)
	if ls.typ.IsSpecular() {
		pdf := ls.pdf * selection * core.AbsDot(wi, si.ShadingNormal)
		if pdf == 0 {
			return core.Vec3{}, 0
		}
		si.Wi = wi
		si.SampledLobe = ls.typ
		return ls.value, pdf
	}

	f, pdf := ls.value, ls.pdf
	if matching > 1 {
		f = b.Eval(si, wi, allowed)
		pdf = b.Pdf(si, wi, allowed)
	}
	if pdf == 0 {
		return core.Vec3{}, 0
	}
	si.Wi = wi
	si.SampledLobe = ls.typ
	return f, pdf
}

// Pdf returns the mean of every matching lobe's solid-angle density for wi.
// Delta lobes contribute zero density.
func (b *BSDF) Pdf(si *SurfaceInteraction, wi core.Vec3, allowed LobeType) float64 {
	frame := core.NewFrame(si.ShadingNormal)
	wo := frame.ToLocal(si.Wo)
	if wo.Z == 0 {
		return 0
	}
	wiLocal := frame.ToLocal(wi)

	matching := 0
	sum := 0.0
	for i := 0; i < b.n; i++ {
		l := &b.lobes[i]
		if !l.Type().Matches(allowed) {
			continue
		}
		matching++
		sum += l.pdf(wo, wiLocal)
	}
	if matching == 0 {
		return 0
	}
	return sum / float64(matching)
}

// Eta returns the index of refraction of the first dielectric lobe, or 0
// when the BSDF has none
func (b *BSDF) Eta() float64 {
	for i := 0; i < b.n; i++ {
		if b.lobes[i].Kind == SpecularDielectric {
			return b.lobes[i].Eta
		}
	}
	return 0
}
