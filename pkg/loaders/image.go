// Package loaders reads external assets into scene resources.
package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
)

// LoadImageTexture loads a PNG, JPEG, BMP or TIFF file as an image texture
func LoadImageTexture(filename string) (*scene.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	tex, err := DecodeImageTexture(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tex, nil
}

// DecodeImageTexture decodes an image stream (format detected from its
// header) into linear [0,1] colors
func DecodeImageTexture(r io.Reader) (*scene.ImageTexture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty %s image", format)
	}
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}
	core.Logger().Debug("decoded texture", "format", format, "width", width, "height", height)
	return scene.NewImageTexture(width, height, pixels), nil
}
