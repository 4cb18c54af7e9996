package render

import (
	"fmt"
	"log/slog"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// CycleKind selects what a render cycle produces.
type CycleKind int

const (
	// CycleDraw renders the chart to the framebuffer and snapshots
	// the result for later overlay redraws.
	CycleDraw CycleKind = iota
	// CyclePick renders candidate objects flat in index colors for
	// cursor picking; nothing it draws is meant to be seen.
	CyclePick
	// CycleLastOverlay restores the snapshot taken by the last draw
	// cycle so transient overlays can be repainted cheaply.
	CycleLastOverlay
)

func (k CycleKind) String() string {
	switch k {
	case CycleDraw:
		return "draw"
	case CyclePick:
		return "pick"
	case CycleLastOverlay:
		return "last-overlay"
	}
	return fmt.Sprintf("CycleKind(%d)", int(k))
}

// Engine drives render cycles over a geometry store: it derives the
// view, culls, dispatches per-object draw instructions, and brackets
// everything in an explicit Begin/End cycle protocol. Begin/End
// misuse is a programming error and panics; per-object data problems
// are skipped with a diagnostic.
type Engine struct {
	store   *geodata.Store
	backend Backend
	proj    Projection
	view    *ViewState
	ctx     *RenderContext
	cache   *BatchCache
	tess    *Tessellator
	colors  *ColorTable
	source  InstructionSource
	text    TextDrawer
	picker  Picker

	// objArena owns the vertex buffers of tessellated area objects,
	// kept separate from the symbol cache arena so a portrayal
	// library reload does not drop chart geometry.
	objArena HandleArena

	// centroidViews remembers the projected view rectangle each
	// object's centroid cache was computed under.
	centroidViews map[uint32][4]float64

	pickRadius int

	// lastPick holds the objects highlighted by the previous pick so
	// the next one can clear them before applying its own result.
	lastPick []*geodata.Object

	inCycle bool
	cycle   CycleKind
}

// NewEngine wires an engine over a store, a backend, and a symbol
// source. The text drawer may be nil, in which case text instructions
// are skipped.
func NewEngine(store *geodata.Store, backend Backend, source SymbolSource, instrs InstructionSource, text TextDrawer) *Engine {
	tess := NewTessellator()
	return &Engine{
		store:         store,
		backend:       backend,
		view:          NewViewState(),
		ctx:           NewRenderContext(),
		cache:         NewBatchCache(source, NewCompiler(tess)),
		tess:          tess,
		colors:        NewColorTable(),
		source:        instrs,
		text:          text,
		centroidViews: make(map[uint32][4]float64),
	}
}

// Store returns the engine's geometry store.
func (e *Engine) Store() *geodata.Store { return e.store }

// View returns the engine's view state for configuration.
func (e *Engine) View() *ViewState { return e.view }

// Context returns the per-cycle render context.
func (e *Engine) Context() *RenderContext { return e.ctx }

// Colors returns the engine's color table.
func (e *Engine) Colors() *ColorTable { return e.colors }

// Cache returns the symbol batch cache.
func (e *Engine) Cache() *BatchCache { return e.cache }

// SetText installs the text collaborator. A nil drawer disables text
// instructions.
func (e *Engine) SetText(t TextDrawer) { e.text = t }

// SetPickRadius sets the half-width in pixels of the cursor block
// sampled by Pick. Values below one restore the default.
func (e *Engine) SetPickRadius(r int) { e.pickRadius = r }

// SetCircleSlices sets the tessellation rate for symbol circles.
// Values below three restore the default.
func (e *Engine) SetCircleSlices(n int) {
	if n < 3 {
		n = 0
	}
	e.cache.compiler.Slices = n
}

// SetProjection installs the geodetic projection. Objects inserted
// before a projection is set stay in geographic coordinates until the
// next cycle projects them.
func (e *Engine) SetProjection(p Projection) { e.proj = p }

// InvalidateSymbols marks every cached symbol dirty, to be recompiled
// on next use. Call after a portrayal library reload.
func (e *Engine) InvalidateSymbols() {
	e.cache.Invalidate(e.backend)
}

// RemoveObject releases an object's backend resources and removes it
// from the store.
func (e *Engine) RemoveObject(id uint32) {
	o, err := e.store.Resolve(id)
	if err == nil {
		e.releaseBatch(o)
	}
	delete(e.centroidViews, id)
	e.store.Remove(id)
}

func (e *Engine) releaseBatch(o *geodata.Object) {
	b := o.Batch()
	if b == nil || b.Handle() == geodata.NoHandle {
		return
	}
	if id, ok := e.objArena.Get(b.Handle()); ok {
		e.backend.DeleteVertexBuffer(id)
	}
	b.SetHandle(geodata.NoHandle)
}

// Begin opens a render cycle. It derives the view if stale, programs
// the backend viewport and matrices, and prepares kind-specific
// state. Beginning a cycle while one is open panics.
func (e *Engine) Begin(kind CycleKind) error {
	if e.inCycle {
		panic("render: Begin inside an open render cycle")
	}
	if e.proj == nil {
		return ErrProjectionNotReady
	}
	if !e.view.Derived() {
		if err := e.view.Derive(e.proj, e.ctx.DotPitch()); err != nil {
			return err
		}
	}
	x, y, w, h := e.view.Viewport()
	e.ctx.SetViewport(x, y, w, h)
	e.ctx.Stats = Stats{}
	e.backend.Viewport(x, y, w, h)

	switch kind {
	case CycleLastOverlay:
		e.backend.BlitSnapshot()
	default:
		pw, ps, pe, pn := e.view.PrjExtent()
		e.ctx.SetProjectionWindow(pw, ps, pe, pn, e.view.Rotation())
		mv, pr := e.ctx.MatrixProducts()
		e.backend.LoadMatrices(mv, pr)
	}
	switch kind {
	case CycleDraw:
		e.backend.Blend(true)
	case CyclePick:
		e.backend.Blend(false)
		e.backend.Clear(0, 0, 0, 0)
		e.picker.Reset()
	}
	e.inCycle = true
	e.cycle = kind
	return nil
}

// End closes the cycle opened by Begin. Ending a cycle that is not
// open, ending the wrong kind, or ending with unbalanced matrix
// stacks panics.
func (e *Engine) End(kind CycleKind) {
	if !e.inCycle {
		panic("render: End without a matching Begin")
	}
	if kind != e.cycle {
		panic(fmt.Sprintf("render: End(%v) inside a %v cycle", kind, e.cycle))
	}
	if !e.ctx.Balanced() {
		panic("render: unbalanced matrix stacks at cycle end")
	}
	if kind == CycleDraw {
		e.backend.Snapshot()
	}
	e.inCycle = false
	slog.Debug("render cycle finished",
		"kind", kind.String(),
		"objects", e.ctx.Stats.Objects,
		"drawCalls", e.ctx.Stats.DrawCalls,
		"tessTriangles", e.ctx.Stats.TessTriangles)
}

// InCycle reports whether a cycle is open.
func (e *Engine) InCycle() bool { return e.inCycle }

// DrawVisible runs the standard draw pass: every stored object
// intersecting the view, in store order, skipping culled and
// suppressed objects. Begin(CycleDraw) must be open.
func (e *Engine) DrawVisible() error {
	if !e.inCycle {
		panic("render: DrawVisible outside a render cycle")
	}
	for _, o := range e.store.QueryExtent(e.view.GeoExtent()) {
		if e.view.IsOffscreen(o) || e.view.IsSuppressed(o) {
			continue
		}
		if err := e.DrawObject(o); err != nil {
			return err
		}
	}
	return nil
}

// Pick renders a pick cycle and resolves the objects under the cursor
// block centered at pixel (px, py). The result is ordered by draw
// order; the last entry, the one painted on top, is flagged
// highlighted and gets its object highlight set. A cursor outside the
// viewport yields no hits.
func (e *Engine) Pick(px, py int) ([]Hit, error) {
	if e.inCycle {
		panic("render: Pick inside an open render cycle")
	}
	if err := e.Begin(CyclePick); err != nil {
		return nil, err
	}
	err := e.DrawVisible()
	e.End(CyclePick)
	if err != nil {
		return nil, err
	}
	r := e.pickRadius
	if r <= 0 {
		r = pickBlockRadius
	}
	block := e.backend.ReadPixels(px-r, py-r, 2*r+1, 2*r+1)
	hits := e.picker.Resolve(block)
	for _, o := range e.lastPick {
		o.SetHighlight(false)
	}
	e.lastPick = e.lastPick[:0]
	for i := range hits {
		hits[i].Object.SetHighlight(hits[i].Highlighted)
		e.lastPick = append(e.lastPick, hits[i].Object)
	}
	return hits, nil
}
