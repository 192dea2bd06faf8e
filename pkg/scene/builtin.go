package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/medium"
)

// ErrUnknownScene is returned by Load for names with no built-in scene
var ErrUnknownScene = errors.New("scene: unknown scene")

// Options configures a built-in scene
type Options struct {
	Width, Height int
	Filter        *filter.Filter
	GroundTexture Texture // replaces the procedural ground of scenes that have one
}

type builder func(opts Options) (*Scene, error)

var builtins = map[string]builder{
	"cornell": newCornellScene,
	"mirror":  newMirrorScene,
	"fog":     newFogScene,
	"sky":     newSkyScene,
}

// Names lists the built-in scenes in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load builds and prepares a built-in scene
func Load(name string, opts Options) (*Scene, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownScene, name, Names())
	}
	if opts.Width <= 0 {
		opts.Width = 400
	}
	if opts.Height <= 0 {
		opts.Height = opts.Width
	}
	s, err := build(opts)
	if err != nil {
		return nil, fmt.Errorf("build scene %q: %w", name, err)
	}
	if err := s.Build(); err != nil {
		return nil, fmt.Errorf("build scene %q: %w", name, err)
	}
	return s, nil
}

// sceneBuilder collects the first construction error so scene code reads linearly
type sceneBuilder struct {
	*Scene
	err error
}

func (b *sceneBuilder) material(lobes []bsdf.Lobe) int {
	return b.texturedMaterial(nil, lobes)
}

func (b *sceneBuilder) texturedMaterial(tex Texture, lobes []bsdf.Lobe) int {
	if b.err != nil {
		return 0
	}
	id, err := b.AddTexturedMaterial(tex, lobes...)
	b.err = err
	return id
}

func (b *sceneBuilder) check(_ int, err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *sceneBuilder) geom(id int, err error) int {
	if b.err == nil {
		b.err = err
	}
	return id
}

// newCornellScene creates a Cornell box with a ceiling quad light, a mirror
// sphere, a glass sphere and a glossy block
func newCornellScene(opts Options) (*Scene, error) {
	b := &sceneBuilder{Scene: New()}
	b.Camera = NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(278, 278, -800),
		LookAt: core.NewVec3(278, 278, 0),
		Width:  opts.Width,
		Height: opts.Height,
		VFov:   40,
	}, opts.Filter)

	white := b.material(Lambertian(core.NewVec3(0.73, 0.73, 0.73)))
	red := b.material(Lambertian(core.NewVec3(0.65, 0.05, 0.05)))
	green := b.material(Lambertian(core.NewVec3(0.12, 0.45, 0.15)))
	satin := b.material(Glossy(core.NewVec3(0.45, 0.45, 0.5), core.NewVec3(0.3, 0.3, 0.3), 60))
	mirror := b.material(Mirror(core.NewVec3(0.8, 0.8, 0.9)))
	glass := b.material(Glass(1.5))

	const size = 555.0
	b.check(b.AddQuad(core.NewVec3(0, 0, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white))    // floor
	b.check(b.AddQuad(core.NewVec3(0, size, 0), core.NewVec3(size, 0, 0), core.NewVec3(0, 0, size), white)) // ceiling
	b.check(b.AddQuad(core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), core.NewVec3(0, size, 0), white)) // back
	b.check(b.AddQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, size), core.NewVec3(0, size, 0), red))      // left
	b.check(b.AddQuad(core.NewVec3(size, 0, 0), core.NewVec3(0, size, 0), core.NewVec3(0, 0, size), green)) // right

	const lightSize = 130.0
	offset := (size - lightSize) / 2
	b.check(b.AddQuadLight(
		core.NewVec3(offset, size-1, offset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15, 15, 15),
	))

	b.check(b.AddSphere(core.NewVec3(185, 82.5, 169), 82.5, mirror))
	b.check(b.AddSphere(core.NewVec3(370, 90, 351), 90, glass))
	b.check(b.AddMesh(NewBoxMesh(core.NewVec3(330, 0, 100), core.NewVec3(480, 120, 250)), satin))

	return b.Scene, b.err
}

// newMirrorScene is a perfect mirror sphere under a uniform white background
// with no lights
func newMirrorScene(opts Options) (*Scene, error) {
	b := &sceneBuilder{Scene: New()}
	b.Camera = NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(0, 0, 4),
		LookAt: core.NewVec3(0, 0, 0),
		Width:  opts.Width,
		Height: opts.Height,
		VFov:   40,
	}, opts.Filter)
	b.Background = core.NewVec3(1, 1, 1)

	mirror := b.material(Mirror(core.NewVec3(1, 1, 1)))
	b.check(b.AddSphere(core.NewVec3(0, 0, 0), 1, mirror))
	return b.Scene, b.err
}

// newFogScene places a ball of scattering fog on a floor lit by a sphere light
func newFogScene(opts Options) (*Scene, error) {
	b := &sceneBuilder{Scene: New()}
	b.Camera = NewPerspectiveCamera(CameraConfig{
		Center: core.NewVec3(0, 1.5, 5),
		LookAt: core.NewVec3(0, 0.8, 0),
		Width:  opts.Width,
		Height: opts.Height,
		VFov:   40,
	}, opts.Filter)

	floor := b.material(Lambertian(core.NewVec3(0.6, 0.6, 0.6)))
	boundary := b.AddBoundaryMaterial()
	fog := b.AddMedium(medium.NewHomogeneous(1.2, core.NewVec3(0.9, 0.85, 0.8)))

	b.check(b.AddQuad(core.NewVec3(-5, 0, -5), core.NewVec3(0, 0, 10), core.NewVec3(10, 0, 0), floor))
	ball := b.geom(b.AddSphere(core.NewVec3(0, 1, 0), 1, boundary))
	if b.err == nil {
		b.err = b.SetMedia(ball, medium.Interface{Inside: fog, Outside: medium.None})
	}
	b.check(b.AddSphereLight(core.NewVec3(2, 4, 1), 0.5, core.NewVec3(40, 36, 30)))
	return b.Scene, b.err
}

// newSkyScene is an outdoor scene of spheres on a checkered ground under a
// sky light and a distant sun
func newSkyScene(opts Options) (*Scene, error) {
	b := &sceneBuilder{Scene: New()}
	b.Camera = NewPerspectiveCamera(CameraConfig{
		Center:   core.NewVec3(0, 0.75, 2),
		LookAt:   core.NewVec3(0, 0.5, -1),
		Width:    opts.Width,
		Height:   opts.Height,
		VFov:     40,
		Aperture: 0.05,
	}, opts.Filter)

	ground := opts.GroundTexture
	if ground == nil {
		ground = NewChecker(200, core.NewVec3(1, 1, 1), core.NewVec3(0.5, 0.5, 0.5))
	}
	groundMat := b.texturedMaterial(ground, Lambertian(core.NewVec3(0.48, 0.48, 0)))
	red := b.material(Lambertian(core.NewVec3(0.65, 0.25, 0.2)))
	blue := b.material(Lambertian(core.NewVec3(0.1, 0.2, 0.5)))
	silver := b.material(Mirror(core.NewVec3(0.8, 0.8, 0.8)))
	gold := b.material(Glossy(core.NewVec3(0.2, 0.15, 0.05), core.NewVec3(0.6, 0.45, 0.15), 120))
	glass := b.material(Glass(1.5))
	felt := b.material(Translucent(core.NewVec3(0.4, 0.6, 0.4), core.NewVec3(0.3, 0.5, 0.3)))

	const groundSize = 100.0
	b.check(b.AddQuad(
		core.NewVec3(-groundSize/2, 0, -groundSize/2),
		core.NewVec3(0, 0, groundSize),
		core.NewVec3(groundSize, 0, 0),
		groundMat,
	))
	b.check(b.AddSphere(core.NewVec3(0, 0.5, -1), 0.5, red))
	b.check(b.AddSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver))
	b.check(b.AddSphere(core.NewVec3(1, 0.5, -1), 0.5, gold))
	b.check(b.AddSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass))
	b.check(b.AddSphere(core.NewVec3(1.2, 0.15, -0.3), 0.15, felt))

	// hollow glass: the inner sphere has inward normals
	b.check(b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass))
	b.check(b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, glass))
	b.check(b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, blue))

	b.check(b.AddSphereLight(core.NewVec3(30, 30.5, 15), 10, core.NewVec3(6, 5.6, 5.2)))
	b.AddInfiniteLight(core.NewVec3(0.5, 0.7, 1.0))
	return b.Scene, b.err
}
