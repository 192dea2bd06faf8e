package scene

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Mesh is an indexed triangle list with optional per-vertex normals and UVs
type Mesh struct {
	Positions []core.Vec3
	Indices   []int // three per triangle
	Normals   []core.Vec3
	UVs       []core.Vec2
}

// TriangleCount returns the number of triangles
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Validate checks index ranges and attribute counts
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a multiple of 3", len(m.Indices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh: %d normals for %d vertices", len(m.Normals), len(m.Positions))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("mesh: %d uvs for %d vertices", len(m.UVs), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Positions) {
			return fmt.Errorf("mesh: index %d at %d out of range", idx, i)
		}
	}
	return nil
}

func (m *Mesh) vertices(prim int) (core.Vec3, core.Vec3, core.Vec3) {
	i := prim * 3
	return m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
}

func (m *Mesh) bounds(prim int) core.AABB {
	v0, v1, v2 := m.vertices(prim)
	return core.NewAABBFromPoints(v0, v1, v2).Expand(1e-5)
}

// intersect runs Möller-Trumbore against one triangle
func (m *Mesh) intersect(prim int, ray core.Ray, tMax float64) (float64, float64, float64, bool) {
	const epsilon = 1e-12
	v0, v1, v2 := m.vertices(prim)
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t := f * edge2.Dot(q)
	if t <= hitEpsilon || t >= tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// surface returns the geometric normal, interpolated shading normal and UV at
// barycentric (u, v)
func (m *Mesh) surface(prim int, u, v float64) (core.Vec3, core.Vec3, core.Vec2) {
	v0, v1, v2 := m.vertices(prim)
	ng := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	w := 1 - u - v
	i := prim * 3

	ns := ng
	if m.Normals != nil {
		n0, n1, n2 := m.Normals[m.Indices[i]], m.Normals[m.Indices[i+1]], m.Normals[m.Indices[i+2]]
		interp := n0.Multiply(w).Add(n1.Multiply(u)).Add(n2.Multiply(v))
		if interp.LengthSquared() > 0 {
			ns = core.FaceForward(interp.Normalize(), ng)
		}
	}

	uv := core.NewVec2(u, v)
	if m.UVs != nil {
		t0, t1, t2 := m.UVs[m.Indices[i]], m.UVs[m.Indices[i+1]], m.UVs[m.Indices[i+2]]
		uv = core.NewVec2(w*t0.X+u*t1.X+v*t2.X, w*t0.Y+u*t1.Y+v*t2.Y)
	}
	return ng, ns, uv
}

// NewBoxMesh creates an axis-aligned box with outward-facing triangles
func NewBoxMesh(min, max core.Vec3) *Mesh {
	p := []core.Vec3{
		core.NewVec3(min.X, min.Y, min.Z), core.NewVec3(max.X, min.Y, min.Z),
		core.NewVec3(max.X, max.Y, min.Z), core.NewVec3(min.X, max.Y, min.Z),
		core.NewVec3(min.X, min.Y, max.Z), core.NewVec3(max.X, min.Y, max.Z),
		core.NewVec3(max.X, max.Y, max.Z), core.NewVec3(min.X, max.Y, max.Z),
	}
	return &Mesh{
		Positions: p,
		Indices: []int{
			0, 2, 1, 0, 3, 2, // -z
			4, 5, 6, 4, 6, 7, // +z
			0, 1, 5, 0, 5, 4, // -y
			3, 7, 6, 3, 6, 2, // +y
			0, 4, 7, 0, 7, 3, // -x
			1, 2, 6, 1, 6, 5, // +x
		},
	}
}
