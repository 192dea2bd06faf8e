package core

import "math"

// Frame is an orthonormal basis used to move directions between world space
// and a local shading space where Z is the normal.
type Frame struct {
	S, T, N Vec3
}

// NewFrame builds an orthonormal basis around the unit vector n without
// branching on the normal's orientation (Duff et al. 2017).
func NewFrame(n Vec3) Frame {
	sign := math.Copysign(1.0, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	s := Vec3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	t := Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return Frame{S: s, T: t, N: n}
}

// ToLocal expresses a world-space direction in this frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// FromLocal converts a direction in this frame back to world space
func (f Frame) FromLocal(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}
