package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// primRef addresses one primitive of one geometry
type primRef struct {
	geom   int
	prim   int
	bounds core.AABB
	center core.Vec3
}

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	refs        []primRef // non-nil for leaf nodes
}

// BVH is a median-split bounding volume hierarchy over every primitive of
// a geometry arena. It is immutable after construction.
type BVH struct {
	Root   *BVHNode
	geoms  []Geometry
	Center core.Vec3 // center of the world bounds
	Radius float64   // radius of the world bounding sphere
}

// Leaf threshold: if we have this many or fewer primitives, store them in a leaf node
const leafThreshold = 8

// NewBVH builds a BVH over all primitives of geoms
func NewBVH(geoms []Geometry) *BVH {
	var refs []primRef
	for gi := range geoms {
		g := &geoms[gi]
		for p := 0; p < g.PrimitiveCount(); p++ {
			b := g.Bounds(p)
			refs = append(refs, primRef{geom: gi, prim: p, bounds: b, center: b.Center()})
		}
	}

	bvh := &BVH{geoms: geoms}
	if len(refs) == 0 {
		return bvh
	}
	bvh.Root = buildBVH(refs)
	bvh.Center = bvh.Root.BoundingBox.Center()
	bvh.Radius = bvh.Root.BoundingBox.Max.Subtract(bvh.Center).Length()
	return bvh
}

// buildBVH recursively splits at the midpoint of the longest axis
func buildBVH(refs []primRef) *BVHNode {
	bounds := refs[0].bounds
	for i := 1; i < len(refs); i++ {
		bounds = bounds.Union(refs[i].bounds)
	}

	if len(refs) <= leafThreshold {
		return &BVHNode{BoundingBox: bounds, refs: refs}
	}

	// split on the centroid bounds so coincident boxes still separate
	centroids := core.NewAABBFromPoints(refs[0].center)
	for i := 1; i < len(refs); i++ {
		centroids = centroids.Union(core.NewAABBFromPoints(refs[i].center))
	}
	axis := centroids.LongestAxis()
	lo, hi := centroids.Min.Component(axis), centroids.Max.Component(axis)
	if hi <= lo {
		return &BVHNode{BoundingBox: bounds, refs: refs}
	}
	split := (lo + hi) * 0.5

	// partition in place
	i, j := 0, len(refs)-1
	for i <= j {
		if refs[i].center.Component(axis) < split {
			i++
		} else {
			refs[i], refs[j] = refs[j], refs[i]
			j--
		}
	}
	if i == 0 || i == len(refs) {
		return &BVHNode{BoundingBox: bounds, refs: refs}
	}

	return &BVHNode{
		BoundingBox: bounds,
		Left:        buildBVH(refs[:i]),
		Right:       buildBVH(refs[i:]),
	}
}

// Intersect finds the closest primitive hit in (0, tMax)
func (bvh *BVH) Intersect(ray core.Ray, tMax float64) (Hit, bool) {
	var hit Hit
	if bvh.Root == nil {
		return hit, false
	}
	found := bvh.hitNode(bvh.Root, ray, tMax, &hit)
	return hit, found
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMax float64, hit *Hit) bool {
	if !node.BoundingBox.Hit(ray, 0, tMax) {
		return false
	}

	if node.refs != nil {
		hitAnything := false
		closestSoFar := tMax
		for _, ref := range node.refs {
			t, u, v, ok := bvh.geoms[ref.geom].intersect(ref.prim, ray, closestSoFar)
			if ok {
				hitAnything = true
				closestSoFar = t
				*hit = Hit{GeometryID: ref.geom, PrimitiveID: ref.prim, U: u, V: v, Distance: t}
			}
		}
		return hitAnything
	}

	hitAnything := false
	closestSoFar := tMax
	if bvh.hitNode(node.Left, ray, closestSoFar, hit) {
		hitAnything = true
		closestSoFar = hit.Distance
	}
	if bvh.hitNode(node.Right, ray, closestSoFar, hit) {
		hitAnything = true
	}
	return hitAnything
}

// Occluded reports whether any primitive lies in (0, tMax) along the ray
func (bvh *BVH) Occluded(ray core.Ray, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.anyHit(bvh.Root, ray, tMax)
}

func (bvh *BVH) anyHit(node *BVHNode, ray core.Ray, tMax float64) bool {
	if !node.BoundingBox.Hit(ray, 0, tMax) {
		return false
	}
	if node.refs != nil {
		for _, ref := range node.refs {
			if _, _, _, ok := bvh.geoms[ref.geom].intersect(ref.prim, ray, tMax); ok {
				return true
			}
		}
		return false
	}
	return bvh.anyHit(node.Left, ray, tMax) || bvh.anyHit(node.Right, ray, tMax)
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
	Primitives int
}

// Stats walks the hierarchy and collects node statistics
func (bvh *BVH) Stats() BVHStats {
	var stats BVHStats
	if bvh.Root == nil {
		return stats
	}
	collectStats(bvh.Root, 0, &stats)
	if stats.LeafNodes > 0 {
		stats.AvgDepth /= float64(stats.LeafNodes)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	if node.refs != nil {
		stats.LeafNodes++
		stats.Primitives += len(node.refs)
		stats.AvgDepth += float64(depth)
		return
	}
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
