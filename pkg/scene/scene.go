// Package scene holds the arena of geometry, materials, media and lights a
// render reads, together with the acceleration structure and camera.
package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/lights"
	"github.com/df07/go-progressive-pathtracer/pkg/medium"
)

var (
	// ErrNotBuilt is returned when a query needs Build to have run
	ErrNotBuilt = errors.New("scene: not built")
	// ErrNoCamera is returned by Build when no camera was set
	ErrNoCamera = errors.New("scene: no camera")
)

// Scene is an arena. Geometries refer to materials, lights and media by
// index, and nothing is mutated once Build has run.
type Scene struct {
	Camera       Camera
	Background   core.Vec3 // constant radiance for escaped rays, not a light
	CameraMedium int       // medium containing the camera, medium.None for vacuum

	Geometries []Geometry
	Materials  []Material
	Media      []medium.Homogeneous
	Lights     []lights.Light

	emitterMaterial int
	bvh             *BVH
}

// New creates an empty scene
func New() *Scene {
	return &Scene{CameraMedium: medium.None, emitterMaterial: -1}
}

// AddMaterial registers a material built from lobes and returns its index
func (s *Scene) AddMaterial(lobes ...bsdf.Lobe) (int, error) {
	return s.AddTexturedMaterial(nil, lobes...)
}

// AddTexturedMaterial registers a material whose non-specular lobes are tinted by tex
func (s *Scene) AddTexturedMaterial(tex Texture, lobes ...bsdf.Lobe) (int, error) {
	b, err := bsdf.New(lobes...)
	if err != nil {
		return 0, fmt.Errorf("add material with %d lobes: %w", len(lobes), err)
	}
	s.Materials = append(s.Materials, Material{BSDF: b, Texture: tex})
	return len(s.Materials) - 1, nil
}

// AddBoundaryMaterial registers a lobe-free medium interface
func (s *Scene) AddBoundaryMaterial() int {
	s.Materials = append(s.Materials, Material{Boundary: true})
	return len(s.Materials) - 1
}

// AddMedium registers a homogeneous medium and returns its index
func (s *Scene) AddMedium(m medium.Homogeneous) int {
	s.Media = append(s.Media, m)
	return len(s.Media) - 1
}

func (s *Scene) checkMaterial(material int) error {
	if material < 0 || material >= len(s.Materials) {
		return fmt.Errorf("scene: material %d not registered (have %d)", material, len(s.Materials))
	}
	return nil
}

func (s *Scene) addGeometry(g Geometry) (int, error) {
	if err := s.checkMaterial(g.Material); err != nil {
		return 0, err
	}
	s.Geometries = append(s.Geometries, g)
	s.bvh = nil
	return len(s.Geometries) - 1, nil
}

// AddSphere adds a sphere. A negative radius flips the normals inward.
func (s *Scene) AddSphere(center core.Vec3, radius float64, material int) (int, error) {
	if radius == 0 {
		return 0, errors.New("scene: sphere radius must be non-zero")
	}
	return s.addGeometry(newSphere(center, radius, material))
}

// AddQuad adds a parallelogram corner + s*u + t*v with normal u×v
func (s *Scene) AddQuad(corner, u, v core.Vec3, material int) (int, error) {
	if u.Cross(v).LengthSquared() == 0 {
		return 0, errors.New("scene: degenerate quad")
	}
	return s.addGeometry(newQuad(corner, u, v, material))
}

// AddMesh adds a triangle mesh
func (s *Scene) AddMesh(m *Mesh, material int) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return s.addGeometry(newMesh(m, material))
}

// SetMedia assigns the media on either side of a geometry's surface
func (s *Scene) SetMedia(geom int, mi medium.Interface) error {
	if geom < 0 || geom >= len(s.Geometries) {
		return fmt.Errorf("scene: geometry %d out of range", geom)
	}
	for _, idx := range []int{mi.Inside, mi.Outside} {
		if idx != medium.None && (idx < 0 || idx >= len(s.Media)) {
			return fmt.Errorf("scene: medium %d not registered", idx)
		}
	}
	s.Geometries[geom].Media = mi
	return nil
}

// emitter returns the shared black material of light geometry
func (s *Scene) emitter() int {
	if s.emitterMaterial < 0 {
		s.Materials = append(s.Materials, Material{})
		s.emitterMaterial = len(s.Materials) - 1
	}
	return s.emitterMaterial
}

func (s *Scene) addLight(g Geometry, l lights.Light) (int, error) {
	g.Material = s.emitter()
	id, err := s.addGeometry(g)
	if err != nil {
		return 0, err
	}
	l.Geometry = id
	s.Lights = append(s.Lights, l)
	s.Geometries[id].Light = len(s.Lights) - 1
	return len(s.Lights) - 1, nil
}

// AddQuadLight adds a one-sided emitting parallelogram facing u×v
func (s *Scene) AddQuadLight(corner, u, v, emission core.Vec3) (int, error) {
	if u.Cross(v).LengthSquared() == 0 {
		return 0, errors.New("scene: degenerate quad light")
	}
	return s.addLight(newQuad(corner, u, v, 0), lights.NewQuad(corner, u, v, emission))
}

// AddSphereLight adds an emitting sphere
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3) (int, error) {
	if radius <= 0 {
		return 0, errors.New("scene: sphere light radius must be positive")
	}
	return s.addLight(newSphere(center, radius, 0), lights.NewSphere(center, radius, emission))
}

// AddInfiniteLight adds a constant environment light
func (s *Scene) AddInfiniteLight(emission core.Vec3) int {
	s.Lights = append(s.Lights, lights.NewInfinite(emission))
	return len(s.Lights) - 1
}

// Build validates the arena and constructs the BVH
func (s *Scene) Build() error {
	if s.Camera == nil {
		return ErrNoCamera
	}
	if s.CameraMedium != medium.None && (s.CameraMedium < 0 || s.CameraMedium >= len(s.Media)) {
		return fmt.Errorf("scene: camera medium %d not registered", s.CameraMedium)
	}
	s.bvh = NewBVH(s.Geometries)
	core.Logger().Debug("scene built",
		"geometries", len(s.Geometries),
		"primitives", s.PrimitiveCount(),
		"lights", len(s.Lights),
		"bvh_depth", s.bvh.Stats().MaxDepth)
	return nil
}

// Built reports whether the acceleration structure is current
func (s *Scene) Built() bool { return s.bvh != nil }

// BVH returns the acceleration structure, nil before Build
func (s *Scene) BVH() *BVH { return s.bvh }

// Intersect implements Intersector
func (s *Scene) Intersect(ray core.Ray, tMax float64) (Hit, bool) {
	return s.mustBVH().Intersect(ray, tMax)
}

// Occluded implements Intersector
func (s *Scene) Occluded(ray core.Ray, tMax float64) bool {
	return s.mustBVH().Occluded(ray, tMax)
}

func (s *Scene) mustBVH() *BVH {
	if s.bvh == nil {
		panic(ErrNotBuilt)
	}
	return s.bvh
}

// Interaction builds the surface interaction for a hit. ray.Direction must be unit length.
func (s *Scene) Interaction(hit Hit, ray core.Ray) bsdf.SurfaceInteraction {
	g := s.geometry(hit.GeometryID)
	p := ray.At(hit.Distance)
	ng, ns, uv := g.surface(hit, p)
	return bsdf.SurfaceInteraction{
		Point:           p,
		GeometricNormal: ng,
		ShadingNormal:   ns,
		UV:              uv,
		Wo:              ray.Direction.Negate(),
	}
}

// Geometry returns the arena entry for id
func (s *Scene) Geometry(id int) *Geometry { return s.geometry(id) }

func (s *Scene) geometry(id int) *Geometry {
	if id < 0 || id >= len(s.Geometries) {
		panic(fmt.Sprintf("scene: geometry %d out of range (have %d)", id, len(s.Geometries)))
	}
	return &s.Geometries[id]
}

// Material returns the material of a geometry. An unregistered index is a
// construction bug and panics.
func (s *Scene) Material(geomID int) *Material {
	g := s.geometry(geomID)
	if g.Material < 0 || g.Material >= len(s.Materials) {
		panic(fmt.Sprintf("scene: geometry %d references unregistered material %d", geomID, g.Material))
	}
	return &s.Materials[g.Material]
}

// LightFor returns the light carried by a geometry and its index
func (s *Scene) LightFor(geomID int) (*lights.Light, int, bool) {
	g := s.geometry(geomID)
	if g.Light == NoLight {
		return nil, NoLight, false
	}
	if g.Light < 0 || g.Light >= len(s.Lights) {
		panic(fmt.Sprintf("scene: geometry %d references unregistered light %d", geomID, g.Light))
	}
	return &s.Lights[g.Light], g.Light, true
}

// Medium returns the medium at index idx, or nil for medium.None
func (s *Scene) Medium(idx int) *medium.Homogeneous {
	if idx == medium.None {
		return nil
	}
	if idx < 0 || idx >= len(s.Media) {
		panic(fmt.Sprintf("scene: medium %d out of range (have %d)", idx, len(s.Media)))
	}
	return &s.Media[idx]
}

// PrimitiveCount returns the total number of intersectable primitives
func (s *Scene) PrimitiveCount() int {
	n := 0
	for i := range s.Geometries {
		n += s.Geometries[i].PrimitiveCount()
	}
	return n
}
