// Package integrator estimates radiance along camera rays with a
// unidirectional path tracer using next-event estimation and multiple
// importance sampling.
package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Li estimates the radiance arriving along ray
	Li(ray core.Ray, s *sampler.Sampler) Sample
}

// Sample is the outcome of tracing one camera path
type Sample struct {
	Radiance core.Vec3
	Bounces  int
	// Valid is false when the path produced a NaN or negative value. Such a
	// sample must be discarded rather than accumulated.
	Valid bool
}

// Config contains path tracing configuration
type Config struct {
	MaxDepth      int  // hard cap on bounces
	RRStartBounce int  // Russian roulette applies once the bounce count exceeds this
	NEEOnly       bool // drop the BSDF-sampling term of direct lighting (weight 1 light sampling)
}

// DefaultConfig returns the configuration used by the renderer unless overridden
func DefaultConfig() Config {
	return Config{
		MaxDepth:      1500,
		RRStartBounce: 3,
	}
}

// State is a step of the per-path state machine
type State uint8

const (
	TraceRay State = iota
	SurfaceShade
	MediumScatter
	Escaped
	Terminated
)

func (s State) String() string {
	switch s {
	case TraceRay:
		return "trace"
	case SurfaceShade:
		return "surface"
	case MediumScatter:
		return "medium"
	case Escaped:
		return "escaped"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}
