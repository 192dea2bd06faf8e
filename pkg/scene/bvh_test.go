package scene

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

func randomScene(t *testing.T, s *sampler.Sampler) *Scene {
	t.Helper()
	sc := New()
	mat, err := sc.AddMaterial(Lambertian(core.NewVec3(0.5, 0.5, 0.5))...)
	if err != nil {
		t.Fatal(err)
	}
	randVec := func(scale float64) core.Vec3 {
		return core.NewVec3(s.NextFloat()*2-1, s.NextFloat()*2-1, s.NextFloat()*2-1).Multiply(scale)
	}
	for i := 0; i < 60; i++ {
		if _, err := sc.AddSphere(randVec(10), 0.2+s.NextFloat(), mat); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 20; i++ {
		if _, err := sc.AddQuad(randVec(10), randVec(2), randVec(2), mat); err != nil {
			t.Fatal(err)
		}
	}
	mesh := &Mesh{}
	for i := 0; i < 40; i++ {
		base := randVec(10)
		mesh.Positions = append(mesh.Positions, base, base.Add(randVec(1.5)), base.Add(randVec(1.5)))
		mesh.Indices = append(mesh.Indices, 3*i, 3*i+1, 3*i+2)
	}
	if _, err := sc.AddMesh(mesh, mat); err != nil {
		t.Fatal(err)
	}
	sc.Camera = NewPerspectiveCamera(CameraConfig{Center: core.NewVec3(0, 0, 30), Width: 4, VFov: 40}, nil)
	if err := sc.Build(); err != nil {
		t.Fatal(err)
	}
	return sc
}

// bruteForce intersects every primitive without the hierarchy
func bruteForce(sc *Scene, ray core.Ray, tMax float64) (Hit, bool) {
	var best Hit
	found := false
	for gi := range sc.Geometries {
		g := &sc.Geometries[gi]
		for p := 0; p < g.PrimitiveCount(); p++ {
			if t, u, v, ok := g.intersect(p, ray, tMax); ok {
				tMax = t
				found = true
				best = Hit{GeometryID: gi, PrimitiveID: p, U: u, V: v, Distance: t}
			}
		}
	}
	return best, found
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	s := sampler.New(123, 7)
	sc := randomScene(t, s)

	if sc.PrimitiveCount() != 60+20+40 {
		t.Fatalf("PrimitiveCount = %d", sc.PrimitiveCount())
	}
	stats := sc.BVH().Stats()
	if stats.Primitives != sc.PrimitiveCount() {
		t.Fatalf("BVH holds %d primitives, want %d", stats.Primitives, sc.PrimitiveCount())
	}

	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(s.NextFloat()*30-15, s.NextFloat()*30-15, s.NextFloat()*30-15)
		dir := core.SampleUniformSphere(s.Next2D())
		ray := core.NewRay(origin, dir)

		want, wantOK := bruteForce(sc, ray, math.Inf(1))
		got, gotOK := sc.Intersect(ray, math.Inf(1))
		if wantOK != gotOK {
			t.Fatalf("ray %d: hit = %v, brute force = %v", i, gotOK, wantOK)
		}
		if gotOK && (got.GeometryID != want.GeometryID || got.PrimitiveID != want.PrimitiveID ||
			math.Abs(got.Distance-want.Distance) > 1e-9) {
			t.Fatalf("ray %d: hit %+v, brute force %+v", i, got, want)
		}
		if occluded := sc.Occluded(ray, math.Inf(1)); occluded != wantOK {
			t.Fatalf("ray %d: Occluded = %v, want %v", i, occluded, wantOK)
		}
		if wantOK && sc.Occluded(ray, want.Distance*0.999) {
			t.Fatalf("ray %d: occluded before the closest hit", i)
		}
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	if _, ok := bvh.Intersect(ray, math.Inf(1)); ok {
		t.Error("empty BVH reported a hit")
	}
	if bvh.Occluded(ray, math.Inf(1)) {
		t.Error("empty BVH reported occlusion")
	}
	if stats := bvh.Stats(); stats.TotalNodes != 0 {
		t.Errorf("empty BVH stats = %+v", stats)
	}
}

func TestBVH_CoincidentCenters(t *testing.T) {
	sc := New()
	mat, _ := sc.AddMaterial(Lambertian(core.NewVec3(0.5, 0.5, 0.5))...)
	for i := 0; i < 20; i++ {
		if _, err := sc.AddSphere(core.NewVec3(0, 0, 0), float64(i+1), mat); err != nil {
			t.Fatal(err)
		}
	}
	bvh := NewBVH(sc.Geometries)
	hit, ok := bvh.Intersect(core.NewRay(core.NewVec3(0, 0, 50), core.NewVec3(0, 0, -1)), math.Inf(1))
	if !ok || hit.GeometryID != 19 || math.Abs(hit.Distance-30) > 1e-9 {
		t.Errorf("hit = %+v, %v; want outermost sphere at distance 30", hit, ok)
	}
}
