package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually 0,1,0)
	Width         int       // Image width in pixels
	Height        int       // Image height in pixels
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to the focus plane, 0 = distance to LookAt
}

// PerspectiveCamera is a thin-lens camera. Pixel (0, 0) is the top-left corner.
type PerspectiveCamera struct {
	config     CameraConfig
	camToWorld mgl64.Mat4
	halfWidth  float64
	halfHeight float64
	lensRadius float64
	focusDist  float64
	filter     *filter.Filter
}

func toMgl(v core.Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// NewPerspectiveCamera creates a camera. A nil filter places every ray at the pixel center.
func NewPerspectiveCamera(config CameraConfig, f *filter.Filter) *PerspectiveCamera {
	if config.Up == (core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.Height <= 0 {
		config.Height = config.Width
	}
	focus := config.FocusDistance
	if focus <= 0 {
		focus = config.LookAt.Subtract(config.Center).Length()
	}

	view := mgl64.LookAtV(toMgl(config.Center), toMgl(config.LookAt), toMgl(config.Up))
	halfHeight := math.Tan(config.VFov * math.Pi / 360)
	aspect := float64(config.Width) / float64(config.Height)

	return &PerspectiveCamera{
		config:     config,
		camToWorld: view.Inv(),
		halfWidth:  halfHeight * aspect,
		halfHeight: halfHeight,
		lensRadius: config.Aperture / 2,
		focusDist:  focus,
		filter:     f,
	}
}

// Config returns the configuration the camera was built from
func (c *PerspectiveCamera) Config() CameraConfig { return c.config }

// CalculateRayFromPixel implements Camera
func (c *PerspectiveCamera) CalculateRayFromPixel(x, y int, s *sampler.Sampler) core.Ray {
	var dx, dy float64
	if c.filter != nil {
		u := s.Next2D()
		dx, dy = c.filter.Sample(u.X), c.filter.Sample(u.Y)
	}
	px := (float64(x) + 0.5 + dx) / float64(c.config.Width)
	py := (float64(y) + 0.5 + dy) / float64(c.config.Height)

	// camera space looks down -Z
	focus := mgl64.Vec3{
		(2*px - 1) * c.halfWidth * c.focusDist,
		(1 - 2*py) * c.halfHeight * c.focusDist,
		-c.focusDist,
	}
	var lens mgl64.Vec3
	if c.lensRadius > 0 {
		d := core.SampleConcentricDisk(s.Next2D())
		lens = mgl64.Vec3{d.X * c.lensRadius, d.Y * c.lensRadius, 0}
	}

	origin := c.camToWorld.Mul4x1(lens.Vec4(1))
	dir := c.camToWorld.Mul4x1(focus.Sub(lens).Vec4(0)).Vec3().Normalize()
	return core.NewRay(core.NewVec3(origin[0], origin[1], origin[2]), core.NewVec3(dir[0], dir[1], dir[2]))
}
