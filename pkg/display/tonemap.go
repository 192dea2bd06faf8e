// Package display turns accumulated framebuffers into displayable images.
package display

import (
	"image"
	"image/color"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/framebuffer"
	"golang.org/x/image/draw"
)

// ToneMapper maps mean pixel radiance to 8-bit sRGB-ish color
type ToneMapper struct {
	Exposure float64 // linear scale applied before the curve
	Gamma    float64
}

// DefaultToneMapper returns unit exposure and gamma 2.2
func DefaultToneMapper() ToneMapper {
	return ToneMapper{Exposure: 1, Gamma: 2.2}
}

// Color maps one radiance value: exposure, then Reinhard, then gamma
func (tm ToneMapper) Color(radiance core.Vec3) color.RGBA {
	c := radiance.Multiply(tm.Exposure)
	c = core.NewVec3(c.X/(1+c.X), c.Y/(1+c.Y), c.Z/(1+c.Z))
	c = c.Clamp(0, 1).GammaCorrect(tm.Gamma)

	return color.RGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}

// Image tonemaps every pixel mean of fb
func (tm ToneMapper) Image(fb *framebuffer.Framebuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, tm.Color(fb.At(x, y).Mean()))
		}
	}
	return img
}

// Snapshot tonemaps the currently published buffer. It returns false when the
// buffer is unavailable because the producer is publishing or another
// consumer holds it.
func (tm ToneMapper) Snapshot(db *framebuffer.DoubleBuffer) (*image.RGBA, bool) {
	fb := db.Acquire()
	if fb == nil {
		return nil, false
	}
	defer db.Release(fb)
	return tm.Image(fb), true
}

// Thumbnail scales img to fit within maxEdge pixels on its longer side
func Thumbnail(img image.Image, maxEdge int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h && w > maxEdge {
		w, h = maxEdge, max(1, h*maxEdge/w)
	} else if h > w && h > maxEdge {
		w, h = max(1, w*maxEdge/h), maxEdge
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
