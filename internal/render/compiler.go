package render

import (
	"fmt"
	"math"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// defaultCircleSlices is the parametric disk tessellation rate.
// Divisible by four so circle extrema land exactly on the axes.
const defaultCircleSlices = 32

// WidthSpan records the pen width in effect from a draw-command index
// onward. Width changes mid-program split the batch into spans so the
// cache can replay them without recompiling.
type WidthSpan struct {
	FromCommand int
	Width       float64
}

// CompiledLayer is one vector program compiled into a primitive
// batch, with the color token and pen-width spans the draw path
// replays.
type CompiledLayer struct {
	Name   string
	Color  string
	Batch  *geodata.PrimitiveBatch
	Widths []WidthSpan
}

// Compiler interprets vector programs into primitive batches. One
// compiler is reused across symbols; it owns no per-program state
// between calls.
type Compiler struct {
	Slices int // circle tessellation rate; defaultCircleSlices when zero
	tess   *Tessellator
}

// NewCompiler creates a compiler sharing the given tessellator for
// polygon fills.
func NewCompiler(tess *Tessellator) *Compiler {
	return &Compiler{Slices: defaultCircleSlices, tess: tess}
}

// Compile interprets the program into b and returns the compiled
// layer. The batch is finalized on return. Programs come from a
// trusted, pre-validated symbol library: an unknown opcode is a fatal
// logic error, not a data condition.
func (c *Compiler) Compile(p *VectorProgram, b *geodata.PrimitiveBatch) *CompiledLayer {
	layer := &CompiledLayer{Name: p.Name, Color: p.Color, Batch: b}

	st := compileState{c: c, b: b, layer: layer, penWidth: 1}
	for i := range p.Instrs {
		st.exec(&p.Instrs[i])
	}
	st.flush()
	b.Finalize()
	return layer
}

// compileState is the interpreter's mutable state for one program.
type compileState struct {
	c     *Compiler
	b     *geodata.PrimitiveBatch
	layer *CompiledLayer

	penX, penY float64
	penWidth   float64
	polyFilled bool

	// Open pen stroke: accumulated vertices since the last flush.
	// seeded marks an accumulator whose only vertex is a reposition
	// target, which must not flush as a dot.
	accum  []float64 // packed x,y
	seeded bool
}

func (st *compileState) exec(in *Instr) {
	switch in.Op {
	case OpPenUp:
		st.flush()
		if in.Move {
			st.penX, st.penY = in.X, in.Y
			st.accum = append(st.accum, in.X, in.Y)
			st.seeded = true
		}

	case OpPenDown:
		if in.AtPen {
			st.flush()
			st.accum = append(st.accum, st.penX, st.penY)
			st.seeded = false
			return
		}
		st.accum = append(st.accum, in.X, in.Y)
		st.penX, st.penY = in.X, in.Y

	case OpPenWidth:
		// Flush the open stroke under the old width before the new
		// one takes effect.
		st.flush()
		st.penWidth = in.W
		st.layer.Widths = append(st.layer.Widths, WidthSpan{
			FromCommand: len(st.b.Commands()),
			Width:       in.W,
		})

	case OpCircleOutline:
		st.flush()
		st.circleOutline(in.R)

	case OpCircleFill:
		st.flush()
		st.circleFill(in.R)

	case OpTogglePolyMode:
		st.polyFilled = !st.polyFilled

	case OpBeginFill:
		st.fillPolygon()

	case OpNewMarker:
		st.flush()

	default:
		panic(fmt.Sprintf("render: unknown vector opcode %d", in.Op))
	}
}

// flush emits the open stroke: consecutive accumulated vertices as
// independent line segments (overlapping symbol strokes must not
// share strip state), a single drawn vertex as a point primitive, a
// lone reposition seed as nothing.
func (st *compileState) flush() {
	n := len(st.accum) / 2
	defer func() {
		st.accum = st.accum[:0]
		st.seeded = false
	}()

	switch {
	case n == 0:
		return
	case n == 1:
		if st.seeded {
			return
		}
		st.b.Begin(geodata.Points)
		st.b.Add(st.accum[0], st.accum[1], 0)
		st.b.End()
	default:
		st.b.Begin(geodata.Lines)
		for i := 0; i+1 < n; i++ {
			st.b.Add(st.accum[i*2], st.accum[i*2+1], 0)
			st.b.Add(st.accum[(i+1)*2], st.accum[(i+1)*2+1], 0)
		}
		st.b.End()
	}
}

func (st *compileState) slices() int {
	if st.c.Slices > 0 {
		return st.c.Slices
	}
	return defaultCircleSlices
}

// circleOutline rasterizes a partial-disk boundary (full sweep, inner
// radius 0) as a line loop at the pen position.
func (st *compileState) circleOutline(r float64) {
	n := st.slices()
	st.b.Begin(geodata.LineLoop)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		st.b.Add(st.penX+r*math.Cos(a), st.penY+r*math.Sin(a), 0)
	}
	st.b.End()
}

// circleFill rasterizes a solid disk as a triangle fan, plus a thin
// outline pass so the edge antialiases.
func (st *compileState) circleFill(r float64) {
	n := st.slices()
	st.b.Begin(geodata.TriangleFan)
	st.b.Add(st.penX, st.penY, 0)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i%n) / float64(n)
		st.b.Add(st.penX+r*math.Cos(a), st.penY+r*math.Sin(a), 0)
	}
	st.b.End()
	st.circleOutline(r)
}

// fillPolygon closes the accumulated point list and emits it as a
// solid fill (filled mode) or a boundary loop (outline mode).
func (st *compileState) fillPolygon() {
	n := len(st.accum) / 2
	if n < 3 {
		st.flush()
		return
	}
	if st.polyFilled {
		ring := make([]float64, 0, n*3)
		for i := 0; i < n; i++ {
			ring = append(ring, st.accum[i*2], st.accum[i*2+1], 0)
		}
		st.c.tess.Tessellate(st.b, [][]float64{ring}, WindingOdd)
	} else {
		st.b.Begin(geodata.LineLoop)
		for i := 0; i < n; i++ {
			st.b.Add(st.accum[i*2], st.accum[i*2+1], 0)
		}
		st.b.End()
	}
	st.accum = st.accum[:0]
	st.seeded = false
}
