package render

import (
	"github.com/go-gl/mathgl/mgl64"
)

// maxMatrixDepth bounds the matrix stacks. The engine never nests
// transforms deeper than a handful of levels; blowing the bound is a
// broken push/pop bracket, not a data condition.
const maxMatrixDepth = 8

// MatrixStack is a bounded stack of 4x4 transforms. One rendering
// backend has no fixed-function transform pipeline, so the engine
// maintains modelview and projection matrices itself and hands the
// products to whichever backend is active.
//
// Push/pop pairs must balance within one render cycle; overflow and
// underflow are fatal caller errors.
type MatrixStack struct {
	mats  [maxMatrixDepth]mgl64.Mat4
	depth int
}

// NewMatrixStack creates a stack holding a single identity matrix.
func NewMatrixStack() *MatrixStack {
	var s MatrixStack
	s.mats[0] = mgl64.Ident4()
	return &s
}

// Top returns the current matrix.
func (s *MatrixStack) Top() mgl64.Mat4 { return s.mats[s.depth] }

// Load replaces the current matrix.
func (s *MatrixStack) Load(m mgl64.Mat4) { s.mats[s.depth] = m }

// LoadIdentity replaces the current matrix with the identity.
func (s *MatrixStack) LoadIdentity() { s.mats[s.depth] = mgl64.Ident4() }

// Mult right-multiplies the current matrix by m.
func (s *MatrixStack) Mult(m mgl64.Mat4) {
	s.mats[s.depth] = s.mats[s.depth].Mul4(m)
}

// Push duplicates the current matrix onto the stack.
func (s *MatrixStack) Push() {
	if s.depth+1 >= maxMatrixDepth {
		panic("render: matrix stack overflow")
	}
	s.mats[s.depth+1] = s.mats[s.depth]
	s.depth++
}

// Pop discards the current matrix, restoring the previous one.
func (s *MatrixStack) Pop() {
	if s.depth == 0 {
		panic("render: matrix stack underflow")
	}
	s.depth--
}

// Depth returns the number of pushed levels (zero when balanced).
func (s *MatrixStack) Depth() int { return s.depth }
