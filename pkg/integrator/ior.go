package integrator

// maxIORDepth bounds the nesting of transmissive objects a path tracks
const maxIORDepth = 8

// iorStack tracks the indices of refraction of the dielectrics a path is
// currently inside. The bottom entry is the surrounding medium.
type iorStack struct {
	etas  [maxIORDepth]float64
	depth int
}

func newIORStack() iorStack {
	s := iorStack{depth: 1}
	s.etas[0] = 1
	return s
}

// Current returns the index of the innermost medium
func (s *iorStack) Current() float64 { return s.etas[s.depth-1] }

// Outer returns the index of the medium around the innermost one
func (s *iorStack) Outer() float64 {
	if s.depth < 2 {
		return s.etas[0]
	}
	return s.etas[s.depth-2]
}

// Push enters a dielectric. Beyond the capacity the innermost entry is replaced.
func (s *iorStack) Push(eta float64) {
	if s.depth == maxIORDepth {
		s.etas[s.depth-1] = eta
		return
	}
	s.etas[s.depth] = eta
	s.depth++
}

// Pop leaves the innermost dielectric. The surrounding medium is never popped.
func (s *iorStack) Pop() {
	if s.depth > 1 {
		s.depth--
	}
}
