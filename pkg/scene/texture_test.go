package scene

import (
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/bsdf"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestChecker(t *testing.T) {
	c := NewChecker(2, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	tests := []struct {
		uv   core.Vec2
		want core.Vec3
	}{
		{core.NewVec2(0.1, 0.1), c.Even},
		{core.NewVec2(0.6, 0.1), c.Odd},
		{core.NewVec2(0.6, 0.6), c.Even},
		{core.NewVec2(-0.1, 0.1), c.Odd},
	}
	for _, tt := range tests {
		if got := c.Evaluate(tt.uv, core.Vec3{}); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestImageTexture_Wraps(t *testing.T) {
	red, green, blue, white := core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1)
	tex := NewImageTexture(2, 2, []core.Vec3{red, green, blue, white})

	tests := []struct {
		uv   core.Vec2
		want core.Vec3
	}{
		{core.NewVec2(0.25, 0.75), red},    // top-left
		{core.NewVec2(0.75, 0.75), green},  // top-right
		{core.NewVec2(0.25, 0.25), blue},   // bottom-left
		{core.NewVec2(1.75, -0.75), white}, // wraps to bottom-right
		{core.NewVec2(1, 1), blue},         // wraps to bottom-left
	}
	for _, tt := range tests {
		if got := tex.Evaluate(tt.uv, core.Vec3{}); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestMaterial_TextureTintsDiffuse(t *testing.T) {
	sc := New()
	id, err := sc.AddTexturedMaterial(NewSolidColor(core.NewVec3(0.5, 0.5, 0.5)), Lambertian(core.NewVec3(0.8, 0.6, 0.4))...)
	if err != nil {
		t.Fatal(err)
	}
	si := &bsdf.SurfaceInteraction{}
	b := sc.Materials[id].BSDFAt(si)
	if got := b.Lobe(0).Color; got != core.NewVec3(0.4, 0.3, 0.2) {
		t.Errorf("tinted color = %v", got)
	}
	if sc.Materials[id].BSDF.Lobe(0).Color != core.NewVec3(0.8, 0.6, 0.4) {
		t.Error("BSDFAt mutated the stored material")
	}
}
