package sampler

import (
	"math"
	"testing"
)

func TestSampler_Deterministic(t *testing.T) {
	a := NewTileSampler(17, 3)
	b := NewTileSampler(17, 3)

	for i := 0; i < 1000; i++ {
		if x, y := a.NextUInt(), b.NextUInt(); x != y {
			t.Fatalf("Draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestSampler_DifferentTilesDecorrelated(t *testing.T) {
	a := NewTileSampler(0, 0)
	b := NewTileSampler(1, 0)
	c := NewTileSampler(0, 1)

	same := 0
	for i := 0; i < 100; i++ {
		x, y, z := a.NextUInt(), b.NextUInt(), c.NextUInt()
		if x == y || x == z {
			same++
		}
	}
	if same > 2 {
		t.Errorf("Expected decorrelated streams, %d of 100 draws matched", same)
	}
}

func TestHash_InjectivePerFrame(t *testing.T) {
	const tiles = 1 << 16
	for _, frame := range []uint32{0, 1, 12345} {
		seen := make(map[uint32]uint32, tiles)
		for tile := uint32(0); tile < tiles; tile++ {
			h := Hash(tile, frame)
			if prev, dup := seen[h]; dup {
				t.Fatalf("Frame %d: tiles %d and %d share stream id %d", frame, prev, tile, h)
			}
			seen[h] = tile
		}
	}
}

func TestSampler_NextFloatRangeAndMean(t *testing.T) {
	s := New(42, 54)
	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		f := s.NextFloat()
		if f < 0 || f >= 1 {
			t.Fatalf("NextFloat out of range: %g", f)
		}
		sum += f
	}
	if mean := sum / n; math.Abs(mean-0.5) > 0.01 {
		t.Errorf("Expected mean near 0.5, got %g", mean)
	}
}

func TestSampler_NextDiscrete(t *testing.T) {
	s := New(1, 2)
	counts := make([]int, 5)
	const n = 50000
	for i := 0; i < n; i++ {
		k := s.NextDiscrete(len(counts))
		if k < 0 || k >= len(counts) {
			t.Fatalf("NextDiscrete out of range: %d", k)
		}
		counts[k]++
	}
	for i, c := range counts {
		if frac := float64(c) / n; math.Abs(frac-0.2) > 0.01 {
			t.Errorf("Bucket %d has frequency %g, expected ~0.2", i, frac)
		}
	}
}

func TestSampler_Stream(t *testing.T) {
	s := New(9, 1234)
	if s.Stream() != 1234 {
		t.Errorf("Expected stream 1234, got %d", s.Stream())
	}
}
