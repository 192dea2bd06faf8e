package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255}) // white
	img.Set(1, 0, color.RGBA{R: 255, A: 255})                 // red
	img.Set(0, 1, color.RGBA{G: 255, A: 255})                 // green
	img.Set(1, 1, color.RGBA{B: 255, A: 255})                 // blue
	return img
}

func checkPixels(t *testing.T, got []core.Vec3) {
	t.Helper()
	expected := []core.Vec3{
		core.NewVec3(1, 1, 1), core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1),
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d pixels, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i].Subtract(expected[i]).Length() > 1e-3 {
			t.Errorf("pixel %d: got %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestLoadImageTexture_PNG(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		f.Close()
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	f.Close()

	tex, err := LoadImageTexture(testFile)
	if err != nil {
		t.Fatalf("LoadImageTexture failed: %v", err)
	}
	if tex.Width != 2 || tex.Height != 2 {
		t.Errorf("Expected 2x2 image, got %dx%d", tex.Width, tex.Height)
	}
	checkPixels(t, tex.Pixels)

	// V=1 is the top row
	if c := tex.Evaluate(core.NewVec2(0.75, 0.99), core.Vec3{}); math.Abs(c.X-1) > 1e-3 || c.Y > 1e-3 {
		t.Errorf("top-right lookup: got %v, expected red", c)
	}
}

func TestDecodeImageTexture_XImageFormats(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer) error{
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, testImage(), nil) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, testImage()) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf); err != nil {
				t.Fatal(err)
			}
			tex, err := DecodeImageTexture(&buf)
			if err != nil {
				t.Fatal(err)
			}
			checkPixels(t, tex.Pixels)
		})
	}
}

func TestLoadImageTexture_Errors(t *testing.T) {
	if _, err := LoadImageTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := DecodeImageTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}
