package display

import (
	"image"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/framebuffer"
)

func TestToneMapper_Color(t *testing.T) {
	tm := DefaultToneMapper()
	tests := []struct {
		name     string
		radiance core.Vec3
		expected uint8
	}{
		{"black", core.Vec3{}, 0},
		{"unit radiance maps to half before gamma", core.NewVec3(1, 1, 1), 186}, // 0.5^(1/2.2)
		{"very bright approaches white", core.NewVec3(1e6, 1e6, 1e6), 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tm.Color(tt.radiance)
			if c.R != tt.expected || c.G != tt.expected || c.B != tt.expected || c.A != 255 {
				t.Errorf("Color(%v) = %v, expected gray %d", tt.radiance, c, tt.expected)
			}
		})
	}
}

func TestToneMapper_ExposureScales(t *testing.T) {
	dim := ToneMapper{Exposure: 0.5, Gamma: 2.2}.Color(core.NewVec3(2, 2, 2))
	ref := DefaultToneMapper().Color(core.NewVec3(1, 1, 1))
	if dim != ref {
		t.Errorf("exposure mismatch: got %v, expected %v", dim, ref)
	}
}

func TestToneMapper_SnapshotRespectsOwnership(t *testing.T) {
	db := framebuffer.NewDoubleBuffer(3, 2)
	db.Work().SplatPixel(1, 1, core.NewVec3(1, 1, 1), 0)
	db.Publish()

	img, ok := DefaultToneMapper().Snapshot(db)
	if !ok {
		t.Fatal("snapshot unavailable")
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds mismatch: %v", img.Bounds())
	}
	if img.RGBAAt(1, 1).R != 186 || img.RGBAAt(0, 0).R != 0 {
		t.Errorf("pixels mismatch: %v %v", img.RGBAAt(1, 1), img.RGBAAt(0, 0))
	}

	held := db.Acquire()
	if _, ok := DefaultToneMapper().Snapshot(db); ok {
		t.Error("snapshot succeeded while another consumer held the buffer")
	}
	db.Release(held)
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		w, h, edge, ew, eh int
	}{
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{64, 32, 100, 64, 32},
	}
	for _, tt := range tests {
		th := Thumbnail(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.edge)
		if th.Bounds().Dx() != tt.ew || th.Bounds().Dy() != tt.eh {
			t.Errorf("Thumbnail(%dx%d, %d) = %v, expected %dx%d", tt.w, tt.h, tt.edge, th.Bounds(), tt.ew, tt.eh)
		}
	}
}
