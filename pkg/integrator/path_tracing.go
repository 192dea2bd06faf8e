package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/lights"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// maxPassThrough bounds the number of medium boundaries a single ray segment
// may cross before the path is abandoned
const maxPassThrough = 64

// PathTracer implements unidirectional path tracing with next-event
// estimation, multiple importance sampling and Russian roulette
type PathTracer struct {
	scene  *scene.Scene
	config Config

	// shadow rays must walk through boundaries and media instead of using Occluded
	passThrough bool
}

// NewPathTracer creates a path tracer over a built scene
func NewPathTracer(sc *scene.Scene, config Config) *PathTracer {
	pt := &PathTracer{scene: sc, config: config, passThrough: len(sc.Media) > 0}
	for i := range sc.Materials {
		if sc.Materials[i].Boundary {
			pt.passThrough = true
		}
	}
	return pt
}

// Config returns the integrator configuration
func (pt *PathTracer) Config() Config { return pt.config }

// pathState is everything the state machine carries between bounces
type pathState struct {
	state      State
	ray        core.Ray
	hit        scene.Hit
	throughput core.Vec3
	radiance   core.Vec3
	bounces    int
	passes     int
	medium     int
	ior        iorStack

	// how the current ray was generated
	specular    bool // camera ray, specular lobe or medium scatter: emission counts fully
	prev        bsdf.SurfaceInteraction
	prevHadNEE  bool
	scatterDist float64
}

// Li traces one camera path and returns its radiance estimate
func (pt *PathTracer) Li(ray core.Ray, s *sampler.Sampler) Sample {
	p := pathState{
		state:      TraceRay,
		ray:        ray,
		throughput: core.NewVec3(1, 1, 1),
		medium:     pt.scene.CameraMedium,
		ior:        newIORStack(),
		specular:   true,
	}

	for {
		switch p.state {
		case TraceRay:
			pt.traceRay(&p, s)
		case MediumScatter:
			pt.mediumScatter(&p, s)
		case SurfaceShade:
			pt.surfaceShade(&p, s)
		case Escaped:
			pt.escaped(&p)
			p.state = Terminated
		case Terminated:
			if !p.radiance.IsValid() {
				return Sample{Bounces: p.bounces}
			}
			return Sample{Radiance: p.radiance, Bounces: p.bounces, Valid: true}
		}

		if p.state != Terminated && !p.throughput.IsValid() {
			core.Logger().Debug("degenerate path throughput",
				"state", p.state.String(), "bounce", p.bounces, "throughput", p.throughput)
			return Sample{Bounces: p.bounces}
		}
	}
}

func (pt *PathTracer) traceRay(p *pathState, s *sampler.Sampler) {
	hit, ok := pt.scene.Intersect(p.ray, inf)
	if m := pt.scene.Medium(p.medium); m != nil {
		d := m.SampleDistance(s.NextFloat())
		if !ok || d < hit.Distance {
			if d == inf {
				p.state = Escaped
				return
			}
			p.scatterDist = d
			p.throughput = p.throughput.MultiplyVec(m.Albedo)
			p.state = MediumScatter
			return
		}
	}
	if !ok {
		p.state = Escaped
		return
	}
	p.hit = hit
	p.state = SurfaceShade
}

func (pt *PathTracer) mediumScatter(p *pathState, s *sampler.Sampler) {
	m := pt.scene.Medium(p.medium)
	origin := p.ray.At(p.scatterDist)
	dir, pdf := m.SamplePhase(s.Next2D())
	if pdf <= 0 {
		p.state = Terminated
		return
	}
	p.throughput = p.throughput.Multiply(m.PhasePdf() / pdf)

	p.ray = core.NewRay(origin, dir)
	p.specular = true
	p.prevHadNEE = false
	p.bounces++
	pt.continuePath(p, s)
}

// escaped adds the background and any infinite lights the path reaches
func (pt *PathTracer) escaped(p *pathState) {
	p.radiance = p.radiance.Add(p.throughput.MultiplyVec(pt.scene.Background))
	for i := range pt.scene.Lights {
		l := &pt.scene.Lights[i]
		if l.Kind != lights.Infinite {
			continue
		}
		if pt.countsEmission(p, l) {
			p.radiance = p.radiance.Add(p.throughput.MultiplyVec(l.Le(p.ray)))
		}
	}
}

// countsEmission reports whether emission reached along the current ray is
// added by the path itself. After a non-specular bounce direct lighting has
// already accounted for it, except for directions the light cannot sample.
func (pt *PathTracer) countsEmission(p *pathState, l *lights.Light) bool {
	if p.specular || !p.prevHadNEE {
		return true
	}
	return l.PdfLi(&p.prev, p.ray.Direction) == 0
}

func (pt *PathTracer) surfaceShade(p *pathState, s *sampler.Sampler) {
	si := pt.scene.Interaction(p.hit, p.ray)
	geom := pt.scene.Geometry(p.hit.GeometryID)
	mat := pt.scene.Material(p.hit.GeometryID)

	if l, _, ok := pt.scene.LightFor(p.hit.GeometryID); ok && pt.countsEmission(p, l) {
		p.radiance = p.radiance.Add(p.throughput.MultiplyVec(l.L(si.GeometricNormal, si.Wo)))
	}

	if mat.Boundary {
		p.passes++
		if p.passes > maxPassThrough {
			p.state = Terminated
			return
		}
		if geom.Media.IsTransition() {
			p.medium = geom.Media.Next(p.ray.Direction, si.GeometricNormal)
		}
		p.ray = si.SpawnRay(p.ray.Direction)
		p.state = TraceRay
		return
	}

	b := mat.BSDFAt(&si)
	if b.NumLobes() == 0 {
		p.state = Terminated
		return
	}

	if eta := b.Eta(); eta > 0 {
		if si.FrontFace() {
			si.EtaI, si.EtaT = p.ior.Current(), eta
		} else {
			si.EtaI, si.EtaT = eta, p.ior.Outer()
		}
	}

	p.prevHadNEE = false
	if b.HasNonSpecular() && len(pt.scene.Lights) > 0 {
		ld := pt.EstimateDirect(&si, &b, s, p.hit.GeometryID, p.medium)
		p.radiance = p.radiance.Add(p.throughput.MultiplyVec(ld))
		p.prevHadNEE = true
	}

	f, pdf := b.Sample(s, &si, bsdf.All)
	if pdf <= 0 || f.IsBlack() {
		p.state = Terminated
		return
	}
	p.throughput = p.throughput.MultiplyVec(f).Multiply(core.AbsDot(si.Wi, si.ShadingNormal) / pdf)

	transmitted := si.Wi.Dot(si.GeometricNormal)*si.Wo.Dot(si.GeometricNormal) < 0
	if transmitted {
		if geom.Media.IsTransition() {
			p.medium = geom.Media.Next(si.Wi, si.GeometricNormal)
		}
		if si.SampledLobe.IsSpecular() && b.Eta() > 0 {
			if si.FrontFace() {
				p.ior.Push(b.Eta())
			} else {
				p.ior.Pop()
			}
		}
	}

	p.specular = si.SampledLobe.IsSpecular()
	p.prev = si
	p.ray = si.SpawnRay(si.Wi)
	p.bounces++
	pt.continuePath(p, s)
}

// continuePath applies the depth limit and Russian roulette after a bounce
func (pt *PathTracer) continuePath(p *pathState, s *sampler.Sampler) {
	p.passes = 0
	if p.bounces >= pt.config.MaxDepth {
		p.state = Terminated
		return
	}
	if p.bounces > pt.config.RRStartBounce {
		var ok bool
		p.throughput, ok = RussianRoulette(p.throughput, s.NextFloat())
		if !ok {
			p.state = Terminated
			return
		}
	}
	p.state = TraceRay
}

// RussianRoulette terminates a path with probability 1-q, where q is the
// throughput's largest component clamped to [0,1]. Survivors are divided by q.
func RussianRoulette(throughput core.Vec3, u float64) (core.Vec3, bool) {
	q := min(max(throughput.MaxComponent(), 0), 1)
	if q <= 0 || u >= q {
		return core.Vec3{}, false
	}
	return throughput.Multiply(1 / q), true
}

// startMedium returns the medium a ray leaving a surface in direction dir travels through
func startMedium(g *scene.Geometry, si *bsdf.SurfaceInteraction, dir core.Vec3, current int) int {
	if g.Media.IsTransition() && dir.Dot(si.GeometricNormal)*si.Wo.Dot(si.GeometricNormal) < 0 {
		return g.Media.Next(dir, si.GeometricNormal)
	}
	return current
}
