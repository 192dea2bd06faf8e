// Package framebuffer accumulates per-pixel radiance across frames and hands
// finished frames to a consumer through a two-instance exchange.
package framebuffer

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Pixel is the running sum of every sample splatted into one pixel
type Pixel struct {
	ColorSum    core.Vec3
	SampleCount uint32
	BounceSum   uint64
}

// Mean returns the average radiance, or black before the first sample
func (p Pixel) Mean() core.Vec3 {
	if p.SampleCount == 0 {
		return core.Vec3{}
	}
	return p.ColorSum.Multiply(1 / float64(p.SampleCount))
}

// Framebuffer is a row-major grid of accumulating pixels. It has no internal
// locking: within a frame every pixel is written by exactly one tile.
type Framebuffer struct {
	Width, Height int
	Pixels        []Pixel
}

// New allocates a zeroed framebuffer
func New(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Pixel, width*height),
	}
}

// Reset zeroes every pixel
func (fb *Framebuffer) Reset() {
	clear(fb.Pixels)
}

// SplatPixel adds one sample to pixel (x, y)
func (fb *Framebuffer) SplatPixel(x, y int, color core.Vec3, bounces int) {
	p := &fb.Pixels[y*fb.Width+x]
	p.ColorSum = p.ColorSum.Add(color)
	p.SampleCount++
	p.BounceSum += uint64(bounces)
}

// At returns pixel (x, y)
func (fb *Framebuffer) At(x, y int) Pixel {
	return fb.Pixels[y*fb.Width+x]
}

// CopyFrom overwrites fb with the contents of src, which must have the same size
func (fb *Framebuffer) CopyFrom(src *Framebuffer) {
	if src.Width != fb.Width || src.Height != fb.Height {
		panic(fmt.Sprintf("framebuffer: copy %dx%d into %dx%d", src.Width, src.Height, fb.Width, fb.Height))
	}
	copy(fb.Pixels, src.Pixels)
}

// Totals returns the summed sample and bounce counts over the whole image
func (fb *Framebuffer) Totals() (samples, bounces uint64) {
	for i := range fb.Pixels {
		samples += uint64(fb.Pixels[i].SampleCount)
		bounces += fb.Pixels[i].BounceSum
	}
	return samples, bounces
}
