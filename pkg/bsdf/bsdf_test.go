package bsdf

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

func upInteraction(wo core.Vec3) *SurfaceInteraction {
	n := core.NewVec3(0, 0, 1)
	return &SurfaceInteraction{
		Point:           core.NewVec3(0, 0, 0),
		GeometricNormal: n,
		ShadingNormal:   n,
		Wo:              wo.Normalize(),
	}
}

func TestBSDF_AddLobeCapacity(t *testing.T) {
	var b BSDF
	for i := 0; i < MaxLobes; i++ {
		if !b.AddLobe(NewLambertReflection(core.NewVec3(0.1, 0.1, 0.1))) {
			t.Fatalf("AddLobe %d failed before capacity", i)
		}
	}
	if b.AddLobe(NewLambertReflection(core.NewVec3(0.1, 0.1, 0.1))) {
		t.Error("AddLobe should fail once the BSDF is full")
	}
	if b.NumLobes() != MaxLobes {
		t.Errorf("NumLobes = %d, want %d", b.NumLobes(), MaxLobes)
	}

	lobes := make([]Lobe, MaxLobes+1)
	if _, err := New(lobes...); !errors.Is(err, ErrLobeCapacity) {
		t.Errorf("New with %d lobes: err = %v, want ErrLobeCapacity", len(lobes), err)
	}
}

func TestBSDF_EmptyIsBlack(t *testing.T) {
	var b BSDF
	si := upInteraction(core.NewVec3(0, 0, 1))
	s := sampler.New(1, 1)

	f, pdf := b.Sample(s, si, All)
	if !f.IsBlack() || pdf != 0 || si.SampledLobe != Null {
		t.Errorf("empty Sample = (%v, %f, %v), want black/0/null", f, pdf, si.SampledLobe)
	}
	if !b.Eval(si, core.NewVec3(0, 0, 1), All).IsBlack() {
		t.Error("empty Eval should be black")
	}
	if b.Pdf(si, core.NewVec3(0, 0, 1), All) != 0 {
		t.Error("empty Pdf should be 0")
	}
}

func TestBSDF_NoMatchingLobes(t *testing.T) {
	b, _ := New(NewSpecularReflection(core.NewVec3(1, 1, 1)))
	si := upInteraction(core.NewVec3(0.3, 0, 1))
	f, pdf := b.Sample(sampler.New(3, 3), si, NonSpecular)
	if !f.IsBlack() || pdf != 0 || si.SampledLobe != Null {
		t.Errorf("Sample with no matching lobe = (%v, %f, %v)", f, pdf, si.SampledLobe)
	}
}

func TestBSDF_GrazingOutgoingDirection(t *testing.T) {
	b, _ := New(NewLambertReflection(core.NewVec3(0.5, 0.5, 0.5)))
	si := upInteraction(core.NewVec3(1, 0, 0))
	s := sampler.New(7, 7)

	f, pdf := b.Sample(s, si, All)
	if !f.IsBlack() || pdf != 0 || si.SampledLobe != Null {
		t.Errorf("grazing Sample = (%v, %f, %v), want black/0/null", f, pdf, si.SampledLobe)
	}
	if !b.Eval(si, core.NewVec3(0, 0, 1), All).IsBlack() {
		t.Error("grazing Eval should be black")
	}
}

func TestBSDF_EvalRespectsGeometricSide(t *testing.T) {
	b, _ := New(NewLambertReflection(core.NewVec3(0.5, 0.5, 0.5)))
	si := upInteraction(core.NewVec3(0, 0.2, 1))

	above := b.Eval(si, core.NewVec3(0.1, 0, 1).Normalize(), All)
	below := b.Eval(si, core.NewVec3(0.1, 0, -1).Normalize(), All)
	if math.Abs(above.X-0.5/math.Pi) > 1e-12 {
		t.Errorf("Eval above = %v, want %f", above, 0.5/math.Pi)
	}
	if !below.IsBlack() {
		t.Errorf("reflection lobe leaked below the surface: %v", below)
	}
}

func TestBSDF_SampledDirectionHasPositivePdf(t *testing.T) {
	tests := []struct {
		name  string
		lobes []Lobe
		mask  LobeType
	}{
		{"lambert", []Lobe{NewLambertReflection(core.NewVec3(0.8, 0.8, 0.8))}, All},
		{"glossy", []Lobe{NewGlossyReflection(core.NewVec3(0.8, 0.8, 0.8), 40)}, All},
		{"lambert+glossy", []Lobe{
			NewLambertReflection(core.NewVec3(0.4, 0.4, 0.4)),
			NewGlossyReflection(core.NewVec3(0.4, 0.4, 0.4), 20),
		}, All},
		{"reflect+transmit", []Lobe{
			NewLambertReflection(core.NewVec3(0.4, 0.4, 0.4)),
			NewLambertTransmission(core.NewVec3(0.4, 0.4, 0.4)),
		}, All},
		{"mixed nonspecular mask", []Lobe{
			NewLambertReflection(core.NewVec3(0.5, 0.5, 0.5)),
			NewSpecularReflection(core.NewVec3(0.5, 0.5, 0.5)),
		}, NonSpecular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.lobes...)
			if err != nil {
				t.Fatal(err)
			}
			s := sampler.New(42, 9)
			for i := 0; i < 1000; i++ {
				si := upInteraction(core.NewVec3(0.3, -0.2, 1))
				f, pdf := b.Sample(s, si, tt.mask)
				if f.IsBlack() {
					continue
				}
				if pdf <= 0 {
					t.Fatalf("sample %d: non-black value with pdf %f", i, pdf)
				}
				paired := b.Pdf(si, si.Wi, tt.mask)
				if paired <= 0 {
					t.Fatalf("sample %d: Pdf(%v) = %f, want > 0", i, si.Wi, paired)
				}
				if math.Abs(paired-pdf) > 1e-9*math.Max(1, pdf) {
					t.Fatalf("sample %d: Sample pdf %f disagrees with Pdf %f", i, pdf, paired)
				}
			}
		})
	}
}

func TestBSDF_PdfIsMeanOfMatchingLobes(t *testing.T) {
	b, _ := New(
		NewLambertReflection(core.NewVec3(0.5, 0.5, 0.5)),
		NewLambertTransmission(core.NewVec3(0.5, 0.5, 0.5)),
	)
	si := upInteraction(core.NewVec3(0, 0, 1))
	wi := core.NewVec3(0, 0.6, 0.8)

	got := b.Pdf(si, wi, All)
	want := (0.8 / math.Pi) / 2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Pdf = %f, want %f", got, want)
	}

	got = b.Pdf(si, wi, Reflection|Diffuse)
	want = 0.8 / math.Pi
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Pdf(reflection only) = %f, want %f", got, want)
	}
}

func TestBSDF_LambertWeightIsAlbedo(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	b, _ := New(NewLambertReflection(albedo))
	s := sampler.New(5, 5)

	for i := 0; i < 200; i++ {
		si := upInteraction(core.NewVec3(0, 0.5, 1))
		f, pdf := b.Sample(s, si, All)
		if f.IsBlack() {
			continue
		}
		weight := f.Multiply(core.AbsDot(si.Wi, si.ShadingNormal) / pdf)
		if weight.Subtract(albedo).Length() > 1e-9 {
			t.Fatalf("weight %v, want albedo %v", weight, albedo)
		}
		if si.Wi.Z <= 0 {
			t.Fatalf("reflection sampled below the surface: %v", si.Wi)
		}
	}
}

func TestBSDF_MirrorWeightIsExact(t *testing.T) {
	r := core.NewVec3(1, 1, 1)
	b, _ := New(NewSpecularReflection(r))
	si := upInteraction(core.NewVec3(0.6, 0, 0.8))

	f, pdf := b.Sample(sampler.New(1, 2), si, All)
	if si.SampledLobe != Reflection|Specular {
		t.Fatalf("SampledLobe = %v, want specular reflection", si.SampledLobe)
	}
	want := core.NewVec3(-0.6, 0, 0.8)
	if si.Wi.Subtract(want).Length() > 1e-12 {
		t.Errorf("mirror direction = %v, want %v", si.Wi, want)
	}
	weight := f.Multiply(core.AbsDot(si.Wi, si.ShadingNormal) / pdf)
	if weight != r {
		t.Errorf("mirror weight = %v, want exactly %v", weight, r)
	}
}

func TestBSDF_DielectricSplitsByFresnel(t *testing.T) {
	b, _ := New(NewSpecularDielectric(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1.5))
	s := sampler.New(11, 4)
	const n = 20000

	reflections := 0
	for i := 0; i < n; i++ {
		si := upInteraction(core.NewVec3(0, 0, 1))
		f, pdf := b.Sample(s, si, All)
		if pdf == 0 {
			t.Fatal("dielectric sample failed at normal incidence")
		}
		weight := f.Multiply(core.AbsDot(si.Wi, si.ShadingNormal) / pdf)
		if si.SampledLobe&Reflection != 0 {
			reflections++
			if math.Abs(weight.X-1) > 1e-9 {
				t.Fatalf("reflection weight %v, want 1", weight)
			}
		} else {
			// radiance scale (1/1.5)^2 applies on entry
			if math.Abs(weight.X-1/2.25) > 1e-9 {
				t.Fatalf("transmission weight %v, want %f", weight, 1/2.25)
			}
			if si.Wi.Z >= 0 {
				t.Fatalf("transmitted direction %v should cross the surface", si.Wi)
			}
		}
	}
	got := float64(reflections) / n
	if math.Abs(got-0.04) > 0.01 {
		t.Errorf("reflection fraction %f, want about 0.04", got)
	}
}

func TestBSDF_TintedOnlyAffectsNonSpecular(t *testing.T) {
	b, _ := New(
		NewLambertReflection(core.NewVec3(1, 1, 1)),
		NewSpecularReflection(core.NewVec3(1, 1, 1)),
	)
	tinted := b.Tinted(core.NewVec3(0.5, 0.25, 0))
	if tinted.Lobe(0).Color != core.NewVec3(0.5, 0.25, 0) {
		t.Errorf("diffuse lobe color = %v", tinted.Lobe(0).Color)
	}
	if tinted.Lobe(1).Color != core.NewVec3(1, 1, 1) {
		t.Errorf("specular lobe color = %v, should be untouched", tinted.Lobe(1).Color)
	}
	if b.Lobe(0).Color != core.NewVec3(1, 1, 1) {
		t.Error("Tinted modified the receiver")
	}
}

func TestLobeType(t *testing.T) {
	if !(Reflection | Specular).IsSpecular() {
		t.Error("specular reflection should be specular")
	}
	if (Reflection | Diffuse).IsSpecular() {
		t.Error("diffuse reflection should not be specular")
	}
	if !(Reflection | Diffuse).Matches(NonSpecular) {
		t.Error("diffuse should match NonSpecular")
	}
	if (Reflection | Specular).Matches(NonSpecular) {
		t.Error("specular should not match NonSpecular")
	}
	if Null.Matches(All) {
		t.Error("Null should not match anything")
	}
	if got := (Transmission | Glossy).String(); got != "T|glossy" {
		t.Errorf("String = %q", got)
	}
}

func TestFresnel(t *testing.T) {
	if got := FrDielectric(1, 1, 1.5); math.Abs(got-0.04) > 1e-9 {
		t.Errorf("normal incidence reflectance = %f, want 0.04", got)
	}
	if got := FrDielectric(0.1, 1.5, 1); got != 1 {
		t.Errorf("total internal reflection = %f, want 1", got)
	}
	if _, ok := Refract(core.NewVec3(0.99, 0, 0.141).Normalize(), core.NewVec3(0, 0, 1), 1.5); ok {
		t.Error("Refract should report total internal reflection")
	}
	wt, ok := Refract(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), 1/1.5)
	if !ok || wt.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Refract at normal incidence = %v, %v", wt, ok)
	}
}

func TestLobeKind_String(t *testing.T) {
	if got := SpecularDielectric.String(); got != "specular-dielectric" {
		t.Errorf("SpecularDielectric.String() = %q", got)
	}
	if got := LobeKind(99).String(); got != "unknown" {
		t.Errorf("LobeKind(99).String() = %q", got)
	}
}
