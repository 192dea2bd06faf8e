package scene

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

func TestPerspectiveCamera_CenterPixel(t *testing.T) {
	cam := NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(1, 2, 3),
		LookAt: core.NewVec3(1, 2, -7),
		Width:  101,
		Height: 101,
		VFov:   45,
	}, nil)

	ray := cam.CalculateRayFromPixel(50, 50, sampler.New(1, 1))
	if ray.Origin.Subtract(core.NewVec3(1, 2, 3)).Length() > 1e-9 {
		t.Errorf("origin = %v", ray.Origin)
	}
	if ray.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-9 {
		t.Errorf("center direction = %v, want (0,0,-1)", ray.Direction)
	}
}

func TestPerspectiveCamera_Orientation(t *testing.T) {
	cam := NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(0, 0, 4),
		LookAt: core.NewVec3(0, 0, 0),
		Width:  64,
		Height: 32,
		VFov:   90,
	}, nil)
	s := sampler.New(1, 1)

	topLeft := cam.CalculateRayFromPixel(0, 0, s)
	if topLeft.Direction.X >= 0 || topLeft.Direction.Y <= 0 {
		t.Errorf("top-left direction %v should point left and up", topLeft.Direction)
	}
	bottomRight := cam.CalculateRayFromPixel(63, 31, s)
	if bottomRight.Direction.X <= 0 || bottomRight.Direction.Y >= 0 {
		t.Errorf("bottom-right direction %v should point right and down", bottomRight.Direction)
	}

	// vertical half-angle of 45° at the image edge
	edge := cam.CalculateRayFromPixel(32, 0, s)
	slope := edge.Direction.Y / -edge.Direction.Z
	want := 1 - 1.0/32
	if math.Abs(slope-want) > 1e-9 {
		t.Errorf("edge slope = %f, want %f", slope, want)
	}
}

func TestPerspectiveCamera_FilterJitterStaysNearPixel(t *testing.T) {
	f := filter.New(filter.Box, 0.5)
	cam := NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(0, 0, 0),
		LookAt: core.NewVec3(0, 0, -1),
		Width:  10,
		Height: 10,
		VFov:   90,
	}, f)
	s := sampler.New(3, 3)

	// pixel 5 spans [0, 0.2] in normalized screen coordinates
	for i := 0; i < 200; i++ {
		ray := cam.CalculateRayFromPixel(5, 5, s)
		x := ray.Direction.X / -ray.Direction.Z
		y := ray.Direction.Y / -ray.Direction.Z
		if x < -1e-9 || x > 0.2+1e-9 || y > 1e-9 || y < -0.2-1e-9 {
			t.Fatalf("jittered ray left the pixel: x=%f y=%f", x, y)
		}
	}
}

func TestPerspectiveCamera_ThinLens(t *testing.T) {
	cam := NewPerspectiveCamera(CameraConfig{
		Center:   core.NewVec3(0, 0, 0),
		LookAt:   core.NewVec3(0, 0, -5),
		Width:    11,
		Height:   11,
		VFov:     40,
		Aperture: 0.5,
	}, nil)
	s := sampler.New(9, 9)

	// rays through the center pixel converge on the focus point
	for i := 0; i < 100; i++ {
		ray := cam.CalculateRayFromPixel(5, 5, s)
		if ray.Origin.Length() > 0.25+1e-9 {
			t.Fatalf("lens origin %v outside the aperture", ray.Origin)
		}
		tFocus := -5 / ray.Direction.Z
		p := ray.At(tFocus)
		if p.Subtract(core.NewVec3(0, 0, -5)).Length() > 1e-9 {
			t.Fatalf("ray misses the focus point: %v", p)
		}
	}
}
