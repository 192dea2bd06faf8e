package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/medium"
)

// hitEpsilon rejects intersections at the ray origin
const hitEpsilon = 1e-7

// ShapeKind tags the geometry variant
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeQuad
	ShapeMesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeQuad:
		return "quad"
	case ShapeMesh:
		return "mesh"
	}
	return "unknown"
}

// NoLight marks a geometry that does not emit
const NoLight = -1

// Geometry is one entry of the scene arena. Materials, lights and media are
// referenced by index into the owning Scene.
type Geometry struct {
	Kind ShapeKind

	// sphere
	Center core.Vec3
	Radius float64

	// quad: Corner + s*U + t*V
	Corner, U, V core.Vec3
	normal, w    core.Vec3

	Mesh *Mesh

	Material int
	Light    int
	Media    medium.Interface
}

func newSphere(center core.Vec3, radius float64, material int) Geometry {
	return Geometry{Kind: ShapeSphere, Center: center, Radius: radius, Material: material, Light: NoLight, Media: medium.Vacuum}
}

func newQuad(corner, u, v core.Vec3, material int) Geometry {
	n := u.Cross(v)
	return Geometry{
		Kind:     ShapeQuad,
		Corner:   corner,
		U:        u,
		V:        v,
		normal:   n.Normalize(),
		w:        n.Multiply(1 / n.Dot(n)),
		Material: material,
		Light:    NoLight,
		Media:    medium.Vacuum,
	}
}

func newMesh(m *Mesh, material int) Geometry {
	return Geometry{Kind: ShapeMesh, Mesh: m, Material: material, Light: NoLight, Media: medium.Vacuum}
}

// PrimitiveCount returns the number of intersectable primitives
func (g *Geometry) PrimitiveCount() int {
	if g.Kind == ShapeMesh {
		return g.Mesh.TriangleCount()
	}
	return 1
}

// Bounds returns the bounding box of one primitive
func (g *Geometry) Bounds(prim int) core.AABB {
	switch g.Kind {
	case ShapeSphere:
		ar := math.Abs(g.Radius)
		r := core.NewVec3(ar, ar, ar)
		return core.NewAABB(g.Center.Subtract(r), g.Center.Add(r))
	case ShapeQuad:
		// padded so axis-aligned quads have volume
		return core.NewAABBFromPoints(g.Corner, g.Corner.Add(g.U), g.Corner.Add(g.V), g.Corner.Add(g.U).Add(g.V)).Expand(1e-4)
	default:
		return g.Mesh.bounds(prim)
	}
}

// intersect returns distance and surface coordinates of the closest hit in (hitEpsilon, tMax)
func (g *Geometry) intersect(prim int, ray core.Ray, tMax float64) (float64, float64, float64, bool) {
	switch g.Kind {
	case ShapeSphere:
		oc := ray.Origin.Subtract(g.Center)
		a := ray.Direction.Dot(ray.Direction)
		halfB := oc.Dot(ray.Direction)
		c := oc.Dot(oc) - g.Radius*g.Radius
		disc := halfB*halfB - a*c
		if disc < 0 {
			return 0, 0, 0, false
		}
		sqrtD := math.Sqrt(disc)
		root := (-halfB - sqrtD) / a
		if root <= hitEpsilon || root >= tMax {
			root = (-halfB + sqrtD) / a
			if root <= hitEpsilon || root >= tMax {
				return 0, 0, 0, false
			}
		}
		return root, 0, 0, true

	case ShapeQuad:
		denom := g.normal.Dot(ray.Direction)
		if math.Abs(denom) < 1e-12 {
			return 0, 0, 0, false
		}
		t := g.normal.Dot(g.Corner.Subtract(ray.Origin)) / denom
		if t <= hitEpsilon || t >= tMax {
			return 0, 0, 0, false
		}
		planar := ray.At(t).Subtract(g.Corner)
		alpha := g.w.Dot(planar.Cross(g.V))
		beta := g.w.Dot(g.U.Cross(planar))
		if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
			return 0, 0, 0, false
		}
		return t, alpha, beta, true

	default:
		return g.Mesh.intersect(prim, ray, tMax)
	}
}

// surface returns the outward geometric normal, shading normal and UV at a hit point
func (g *Geometry) surface(h Hit, p core.Vec3) (core.Vec3, core.Vec3, core.Vec2) {
	switch g.Kind {
	case ShapeSphere:
		n := p.Subtract(g.Center).Multiply(1 / g.Radius)
		theta := math.Acos(math.Max(-1, math.Min(1, -n.Y)))
		phi := math.Atan2(-n.Z, n.X) + math.Pi
		return n, n, core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
	case ShapeQuad:
		return g.normal, g.normal, core.NewVec2(h.U, h.V)
	default:
		return g.Mesh.surface(h.PrimitiveID, h.U, h.V)
	}
}
