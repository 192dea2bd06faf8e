package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestPowerHeuristic_WeightsSumToOne(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		lightPdf := random.Float64()*100 + 1e-6
		scatteringPdf := random.Float64()*100 + 1e-6

		sum := PowerHeuristic(1, lightPdf, 1, scatteringPdf) + PowerHeuristic(1, scatteringPdf, 1, lightPdf)
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("Weights for (%g, %g) sum to %g, expected 1", lightPdf, scatteringPdf, sum)
		}
	}
}

func TestPowerHeuristic_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		fPdf     float64
		gPdf     float64
		expected float64
	}{
		{"both zero", 0, 0, 0},
		{"other zero", 2, 0, 1},
		{"self zero", 0, 3, 0},
		{"equal", 0.5, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PowerHeuristic(1, tt.fPdf, 1, tt.gPdf); got != tt.expected {
				t.Errorf("PowerHeuristic(%g, %g) = %g, expected %g", tt.fPdf, tt.gPdf, got, tt.expected)
			}
		})
	}
}

func TestSampleCosineHemisphere_UpperHemisphere(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		d := SampleCosineHemisphere(NewVec2(random.Float64(), random.Float64()))
		if d.Z < 0 {
			t.Fatalf("Sample below hemisphere: %v", d)
		}
		if math.Abs(d.Length()-1) > 1e-9 {
			t.Fatalf("Sample not normalized: %v (length %g)", d, d.Length())
		}
	}
}

func TestSampleUniformSphere_MeanIsCentered(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	const n = 20000
	var sum Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(SampleUniformSphere(NewVec2(random.Float64(), random.Float64())))
	}
	mean := sum.Multiply(1.0 / n)
	if mean.Length() > 0.03 {
		t.Errorf("Uniform sphere samples biased: mean %v", mean)
	}
}

func TestFrame_Orthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-0.3, 0.1, -0.9).Normalize(),
	}

	for _, n := range normals {
		f := NewFrame(n)
		if math.Abs(f.S.Dot(f.T)) > 1e-12 || math.Abs(f.S.Dot(f.N)) > 1e-12 || math.Abs(f.T.Dot(f.N)) > 1e-12 {
			t.Errorf("Frame for %v is not orthogonal: %+v", n, f)
		}
		if math.Abs(f.S.Length()-1) > 1e-12 || math.Abs(f.T.Length()-1) > 1e-12 {
			t.Errorf("Frame for %v is not normalized: %+v", n, f)
		}

		v := NewVec3(0.2, -0.7, 0.4)
		roundTrip := f.FromLocal(f.ToLocal(v))
		if roundTrip.Subtract(v).Length() > 1e-12 {
			t.Errorf("Round trip through frame for %v changed %v to %v", n, v, roundTrip)
		}
		if local := f.ToLocal(n); math.Abs(local.Z-1) > 1e-12 {
			t.Errorf("Normal %v does not map to +Z: %v", n, local)
		}
	}
}
