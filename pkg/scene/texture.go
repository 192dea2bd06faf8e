package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Texture provides spatially-varying colors for materials
type Texture interface {
	// Evaluate returns color at given UV coordinates and 3D point
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color texture
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// Checker alternates two colors on a grid in UV space
type Checker struct {
	Even, Odd core.Vec3
	Scale     float64 // checks per unit of UV
}

// NewChecker creates a checkerboard with scale checks along each UV axis
func NewChecker(scale float64, even, odd core.Vec3) *Checker {
	return &Checker{Even: even, Odd: odd, Scale: scale}
}

// Evaluate picks the color of the check containing uv
func (c *Checker) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	cx := int(math.Floor(uv.X * c.Scale))
	cy := int(math.Floor(uv.Y * c.Scale))
	if (cx+cy)%2 == 0 {
		return c.Even
	}
	return c.Odd
}

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{Width: width, Height: height, Pixels: pixels}
}

// Evaluate samples the texture with nearest-neighbor lookup and wrapping UVs.
// V=0 is the bottom row of the image.
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	u := uv.X - math.Floor(uv.X)
	v := uv.Y - math.Floor(uv.Y)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int((1-v)*float64(t.Height)), t.Height-1)
	return t.Pixels[max(y, 0)*t.Width+max(x, 0)]
}
