// Package filter implements the pixel reconstruction filters used to jitter
// camera samples inside the pixel footprint.
package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind selects the antialiasing kernel
type Kind int

const (
	Box Kind = iota
	Tent
	Gaussian
	Point
)

// tableSize is the number of bins in the discretized inverse CDF
const tableSize = 32

// gaussianAlpha is the falloff of the truncated Gaussian kernel
const gaussianAlpha = 2.0

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Tent:
		return "tent"
	case Gaussian:
		return "gaussian"
	case Point:
		return "point"
	}
	return "invalid"
}

// ParseKind looks up a filter kind by name
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "box":
		return Box, nil
	case "tent", "triangle":
		return Tent, nil
	case "gaussian":
		return Gaussian, nil
	case "point", "dirac":
		return Point, nil
	}
	return Box, fmt.Errorf("unknown filter %q", name)
}

// Filter maps uniform draws to sub-pixel offsets distributed by its kernel.
// It is immutable after construction and safe for concurrent use.
type Filter struct {
	kind  Kind
	width float64
	cdf   [tableSize + 1]float64
}

// New builds a filter with the given half-width (radius) in pixels.
// Box, tent and Gaussian kernels with a non-positive width degrade to Point.
func New(kind Kind, width float64) *Filter {
	if width <= 0 {
		kind = Point
	}
	f := &Filter{kind: kind, width: width}
	if kind == Tent || kind == Gaussian {
		f.buildTable()
	}
	return f
}

// Kind returns the filter kernel
func (f *Filter) Kind() Kind { return f.kind }

// Width returns the filter radius in pixels
func (f *Filter) Width() float64 { return f.width }

// buildTable discretizes the kernel over [0, width], normalizes it to a
// density and integrates it into a cumulative table.
func (f *Filter) buildTable() {
	for i := 0; i < tableSize; i++ {
		x := (float64(i) + 0.5) / tableSize * f.width
		f.cdf[i+1] = f.cdf[i] + math.Max(0, f.Evaluate(x))
	}
	total := f.cdf[tableSize]
	for i := 1; i <= tableSize; i++ {
		f.cdf[i] /= total
	}
	f.cdf[tableSize] = 1
}

// Evaluate returns the unnormalized kernel value at offset x
func (f *Filter) Evaluate(x float64) float64 {
	ax := math.Abs(x)
	switch f.kind {
	case Box:
		if ax <= f.width {
			return 1
		}
		return 0
	case Tent:
		return math.Max(0, f.width-ax)
	case Gaussian:
		if ax > f.width {
			return 0
		}
		return math.Max(0, math.Exp(-gaussianAlpha*x*x)-math.Exp(-gaussianAlpha*f.width*f.width))
	case Point:
		if x == 0 {
			return 1
		}
	}
	return 0
}

// Sample maps u in [0,1) to an offset in [-width, width]. The lower half of
// the unit interval produces negative offsets, the upper half positive ones.
func (f *Filter) Sample(u float64) float64 {
	switch f.kind {
	case Point:
		return 0
	case Box:
		return (2*u - 1) * f.width
	}

	negative := u < 0.5
	if negative {
		u *= 2
	} else {
		u = (u - 0.5) * 2
	}

	// Containing bin: last i with cdf[i] <= u
	i := sort.Search(tableSize+1, func(i int) bool { return f.cdf[i] > u }) - 1
	i = max(0, min(i, tableSize-1))

	t := 0.0
	if span := f.cdf[i+1] - f.cdf[i]; span > 0 {
		t = (u - f.cdf[i]) / span
	}
	x := (float64(i) + t) / tableSize * f.width
	if negative {
		return -x
	}
	return x
}
