// Package sampler provides the deterministic per-tile random stream used by
// every stochastic decision in the renderer.
//
// Each tile task owns one Sampler seeded from Hash(tile, frame), so the same
// tile in the same frame always replays the same sequence of draws while
// different tiles and frames stay decorrelated.
package sampler

import (
	"math"
	"math/bits"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

const pcgMultiplier = 6364136223846793005

// Sampler is a PCG32 generator: a 64-bit LCG state permuted by an
// xorshift + random rotation on output. Not safe for concurrent use.
type Sampler struct {
	state  uint64
	stream uint64 // odd increment selecting the sequence
}

// New creates a sampler on the given stream, positioned by seed
func New(seed, stream uint64) *Sampler {
	s := &Sampler{stream: stream<<1 | 1}
	s.NextUInt()
	s.state += seed
	s.NextUInt()
	return s
}

// NewTileSampler creates the sampler for one tile task of one frame
func NewTileSampler(tile, frame uint32) *Sampler {
	h := uint64(Hash(tile, frame))
	return New(h, h)
}

// Stream returns the stream id this sampler was created on
func (s *Sampler) Stream() uint64 {
	return s.stream >> 1
}

// NextUInt returns a uniformly distributed 32-bit integer
func (s *Sampler) NextUInt() uint32 {
	old := s.state
	s.state = old*pcgMultiplier + s.stream
	xorShifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorShifted, -rot)
}

// NextFloat returns a float in [0, 1) built from the top 23 bits of a draw
// placed into the mantissa of a float32 in [1, 2).
func (s *Sampler) NextFloat() float64 {
	return float64(math.Float32frombits(0x3f800000|(s.NextUInt()>>9)) - 1.0)
}

// Next2D returns two consecutive uniform floats
func (s *Sampler) Next2D() core.Vec2 {
	x := s.NextFloat()
	y := s.NextFloat()
	return core.Vec2{X: x, Y: y}
}

// NextDiscrete returns an integer in [0, n) by scaling a float draw.
// n must be positive.
func (s *Sampler) NextDiscrete(n int) int {
	return min(int(s.NextFloat()*float64(n)), n-1)
}
