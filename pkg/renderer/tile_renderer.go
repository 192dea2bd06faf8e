package renderer

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/framebuffer"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera          scene.Camera
	integrator      integrator.Integrator
	samplesPerFrame int
}

// NewTileRenderer creates a new tile renderer with the given camera and integrator
func NewTileRenderer(camera scene.Camera, integratorInst integrator.Integrator, samplesPerFrame int) *TileRenderer {
	return &TileRenderer{
		camera:          camera,
		integrator:      integratorInst,
		samplesPerFrame: max(1, samplesPerFrame),
	}
}

// RenderTile traces samplesPerFrame paths through every pixel of tile and
// splats them into fb. The sampler is seeded from (tile, frame) so the same
// tile in the same frame always reproduces the same values.
func (tr *TileRenderer) RenderTile(tile Tile, frame uint64, fb *framebuffer.Framebuffer) TileStats {
	s := sampler.NewTileSampler(uint32(tile.ID), uint32(frame))
	var stats TileStats

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			for range tr.samplesPerFrame {
				ray := tr.camera.CalculateRayFromPixel(x, y, s)
				res := tr.integrator.Li(ray, s)
				if !res.Valid {
					stats.Discarded++
					core.Logger().Debug("discarded sample",
						"x", x, "y", y, "frame", frame, "bounces", res.Bounces)
					continue
				}
				fb.SplatPixel(x, y, res.Radiance, res.Bounces)
				stats.Samples++
				stats.Bounces += res.Bounces
			}
		}
	}
	return stats
}
