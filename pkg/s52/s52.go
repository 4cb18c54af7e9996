package s52

import (
	"fmt"
	"sync"

	"github.com/beetlebugorg/s52/internal/geodata"
	"github.com/beetlebugorg/s52/internal/render"
)

// InstructionKind selects what a portrayal instruction draws.
type InstructionKind int

const (
	// PointSymbol stamps a vector symbol at the feature's anchor.
	PointSymbol InstructionKind = iota
	// LineStyle strokes the feature's boundary.
	LineStyle
	// AreaFill fills the feature's polygon.
	AreaFill
	// Text places a label at the feature's anchor.
	Text
)

// Instruction is one resolved S-52 drawing instruction for a feature.
// The portrayal callback returns these; the renderer executes them in
// order.
type Instruction struct {
	Kind    InstructionKind
	Symbol  string  // symbol name, for PointSymbol
	Variant string  // symbol variant, part of the compile cache key
	Color   string  // S-52 color token, for LineStyle/AreaFill/Text
	Width   float64 // pen width units (0.3 mm), for LineStyle
	Text    string  // label text, for Text
	OffsetX float64 // label offset in pixels
	OffsetY float64
}

// Portrayal resolves a chart feature to its drawing instructions.
// This is where S-52 lookup tables and conditional symbology rules
// plug in.
type Portrayal func(o *Object) []Instruction

// TextRenderer draws label text at a pixel position. Font rendering
// is host machinery; a renderer without one skips text instructions.
type TextRenderer interface {
	DrawText(px, py float64, red, green, blue, alpha float64, text string)
}

// Object is one chart feature held by the renderer.
type Object struct {
	o *geodata.Object
}

// ID returns the feature's stable identifier.
func (ob *Object) ID() uint32 { return ob.o.ID() }

// Name returns the feature's object-class name (e.g. "BOYSPP").
func (ob *Object) Name() string { return ob.o.Name() }

// SetName sets the feature's object-class name.
func (ob *Object) SetName(name string) { ob.o.SetName(name) }

// SetAttribute stores one S-57 attribute as a string value. Setting
// an attribute again overwrites the previous value.
func (ob *Object) SetAttribute(name, value string) { ob.o.SetAttribute(name, value) }

// Attribute returns an attribute value. ok is false when the
// attribute is absent, empty, or carries the S-57 empty-number
// marker.
func (ob *Object) Attribute(name string) (value string, ok bool) {
	return ob.o.Attribute(name)
}

// SetScamin sets the minimum display scale denominator: the feature
// disappears when the chart is zoomed out beyond 1:scamin.
func (ob *Object) SetScamin(scamin float64) { ob.o.SetScamin(scamin) }

// SetSuppressed toggles explicit display suppression.
func (ob *Object) SetSuppressed(on bool) { ob.o.SetSuppressed(on) }

// Highlighted reports whether the feature was marked by the last
// pick.
func (ob *Object) Highlighted() bool { return ob.o.Highlight() }

// Renderer is the S-52 rendering engine: a feature store, a compiled
// symbol cache and a rasterization backend behind one façade.
//
// All drawing methods must run on the goroutine that owns the
// renderer (and its GL context, for the opengl backend).
type Renderer struct {
	backend render.Backend
	engine  *render.Engine
	symbols *symbolLibrary

	mu        sync.RWMutex
	objects   map[uint32]*Object
	portrayal Portrayal

	projected bool // projection pinned by the first SetView
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) (*Renderer, error) {
	backend, err := render.NewBackend(opts.Backend)
	if err != nil {
		return nil, fmt.Errorf("s52: %w", err)
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("s52: backend init: %w", err)
	}

	r := &Renderer{
		backend: backend,
		symbols: newSymbolLibrary(),
		objects: make(map[uint32]*Object),
	}
	r.engine = render.NewEngine(geodata.NewStore(), backend, r.symbols,
		instructionAdapter{r}, nil)
	if opts.DotPitchMM > 0 {
		r.engine.Context().SetDotPitch(opts.DotPitchMM)
	}
	if opts.Width > 0 && opts.Height > 0 {
		r.engine.View().SetViewport(0, 0, opts.Width, opts.Height)
	}
	if opts.PickRadius > 0 {
		r.engine.SetPickRadius(opts.PickRadius)
	}
	if opts.CircleSlices > 0 {
		r.engine.SetCircleSlices(opts.CircleSlices)
	}
	return r, nil
}

// SetPortrayal installs the symbology callback consulted for every
// feature drawn.
func (r *Renderer) SetPortrayal(p Portrayal) {
	r.mu.Lock()
	r.portrayal = p
	r.mu.Unlock()
}

// SetTextRenderer installs the host text drawer.
func (r *Renderer) SetTextRenderer(tr TextRenderer) {
	r.engine.SetText(textAdapter{tr})
}

// AddPoint adds a point feature at geographic (lon, lat) with a depth
// value, and returns its handle.
func (r *Renderer) AddPoint(lon, lat, depth float64) *Object {
	o := geodata.NewPoint([3]float64{lon, lat, depth})
	o.SetExtent(geodata.Extent{W: lon, S: lat, E: lon, N: lat})
	return r.adopt(o)
}

// AddLine adds a polyline feature from packed lon, lat, depth
// coordinates. A feature with no coordinates gets no extent and is
// never drawn.
func (r *Renderer) AddLine(coords []float64) *Object {
	o := geodata.NewLine(coords)
	if len(coords) >= 3 {
		o.SetExtent(coordExtent(coords))
	}
	return r.adopt(o)
}

// AddArea adds a polygon feature; rings[0] is the outer boundary,
// further rings are holes. Each ring is packed lon, lat, depth. A
// feature with no outer ring gets no extent and is never drawn.
func (r *Renderer) AddArea(rings [][]float64) *Object {
	o := geodata.NewArea(rings)
	if len(rings) > 0 && len(rings[0]) >= 3 {
		o.SetExtent(coordExtent(rings[0]))
	}
	return r.adopt(o)
}

func (r *Renderer) adopt(o *geodata.Object) *Object {
	ob := &Object{o: o}
	r.engine.Store().Insert(o)
	r.mu.Lock()
	r.objects[o.ID()] = ob
	r.mu.Unlock()
	return ob
}

// Remove deletes a feature and releases its rendering resources.
func (r *Renderer) Remove(ob *Object) {
	r.engine.RemoveObject(ob.ID())
	r.mu.Lock()
	delete(r.objects, ob.ID())
	r.mu.Unlock()
}

// Touches reports whether any vertex of feature a lies inside the
// area geometry of feature b, e.g. a light inside a depth area.
// Useful for pre-computing conditional-symbology relations.
func (r *Renderer) Touches(a, b *Object) bool {
	return geodata.Touches(a.o, b.o)
}

// TextAnchor reports the pixel position where a label for the
// feature would be placed, before instruction offsets. ok is false
// before the first SetView or when the feature has no anchor in the
// current view.
func (r *Renderer) TextAnchor(ob *Object) (px, py float64, ok bool) {
	return r.engine.TextAnchor(ob.o)
}

// MarkSharedEdges flags boundary coordinates the two features have in
// common so the shared edge is stroked only once, and returns the
// number of coordinates marked. Call it for adjacent depth areas
// after loading a cell.
func (r *Renderer) MarkSharedEdges(a, b *Object) int {
	return geodata.MarkOverlap(a.o, b.o, 1e-9)
}

// SetView positions the chart view: center in degrees, range in
// degrees of latitude from the center to the top of the viewport, and
// clockwise rotation in degrees. The first SetView pins the Mercator
// projection to its center.
func (r *Renderer) SetView(lat, lon, rangeDeg, rotationDeg float64) error {
	if !r.projected {
		m := render.NewMercator(lat, lon)
		if err := m.Initialize(); err != nil {
			return fmt.Errorf("s52: projection: %w", err)
		}
		r.engine.SetProjection(m)
		r.projected = true
	}
	r.engine.View().SetView(lat, lon, rangeDeg, rotationDeg)
	return nil
}

// SetViewport sets the pixel viewport.
func (r *Renderer) SetViewport(x, y, w, h int) {
	r.engine.View().SetViewport(x, y, w, h)
}

// Cycle selects what a render cycle produces.
type Cycle int

const (
	// DrawCycle renders the chart and snapshots the result.
	DrawCycle Cycle = iota
	// PickCycle renders flat index colors for cursor picking.
	PickCycle
	// OverlayCycle restores the last draw snapshot.
	OverlayCycle
)

func cycleKind(c Cycle) render.CycleKind {
	switch c {
	case PickCycle:
		return render.CyclePick
	case OverlayCycle:
		return render.CycleLastOverlay
	default:
		return render.CycleDraw
	}
}

// BeginCycle opens a render cycle for callers that drive object
// drawing themselves. Most callers want Draw, Pick or RestoreOverlay
// instead. Beginning a cycle while one is open panics.
func (r *Renderer) BeginCycle(c Cycle) error {
	return r.engine.Begin(cycleKind(c))
}

// EndCycle closes the cycle opened by BeginCycle. Ending a cycle that
// is not open, or ending the wrong kind, panics.
func (r *Renderer) EndCycle(c Cycle) {
	r.engine.End(cycleKind(c))
}

// DrawObject draws one feature inside an open cycle, bypassing
// culling and suppression. Use with BeginCycle for custom passes.
func (r *Renderer) DrawObject(ob *Object) error {
	return r.engine.DrawObject(ob.o)
}

// Draw renders every visible feature and snapshots the result for
// RestoreOverlay.
func (r *Renderer) Draw() error {
	if err := r.engine.Begin(render.CycleDraw); err != nil {
		return err
	}
	err := r.engine.DrawVisible()
	r.engine.End(render.CycleDraw)
	return err
}

// RestoreOverlay repaints the framebuffer from the last Draw's
// snapshot, the cheap path for redrawing transient overlays (cursor,
// range rings) without re-rendering the chart.
func (r *Renderer) RestoreOverlay() error {
	if err := r.engine.Begin(render.CycleLastOverlay); err != nil {
		return err
	}
	r.engine.End(render.CycleLastOverlay)
	return nil
}

// PickHit is one feature found under the pick cursor.
type PickHit struct {
	Object      *Object
	Highlighted bool
}

// Pick returns the features under the cursor pixel, ordered by draw
// order. The last hit, the feature painted on top, is highlighted.
func (r *Renderer) Pick(px, py int) ([]PickHit, error) {
	hits, err := r.engine.Pick(px, py)
	if err != nil {
		return nil, err
	}
	out := make([]PickHit, 0, len(hits))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range hits {
		ob, ok := r.objects[h.Object.ID()]
		if !ok {
			continue
		}
		out = append(out, PickHit{Object: ob, Highlighted: h.Highlighted})
	}
	return out, nil
}

// ScaleDenominator returns the display scale denominator of the last
// derived view (e.g. 50000 for 1:50000), or zero before the first
// draw.
func (r *Renderer) ScaleDenominator() float64 {
	return r.engine.View().ScaleDenom()
}

// Stats reports the work done by the last render cycle.
type Stats struct {
	Objects       int // features drawn after culling
	DrawCalls     int // primitive batches issued to the backend
	TessTriangles int // triangles produced by fresh tessellations
}

// Stats returns counters from the last render cycle.
func (r *Renderer) Stats() Stats {
	s := r.engine.Context().Stats
	return Stats{
		Objects:       s.Objects,
		DrawCalls:     s.DrawCalls,
		TessTriangles: s.TessTriangles,
	}
}

// Close releases all backend resources. The renderer must not be used
// afterwards.
func (r *Renderer) Close() {
	r.engine.Close()
}

// instructionAdapter routes the engine's symbology queries to the
// public portrayal callback.
type instructionAdapter struct {
	r *Renderer
}

func (a instructionAdapter) Instructions(o *geodata.Object) []render.DrawInstr {
	a.r.mu.RLock()
	p := a.r.portrayal
	ob := a.r.objects[o.ID()]
	a.r.mu.RUnlock()
	if p == nil || ob == nil {
		return nil
	}
	instrs := p(ob)
	out := make([]render.DrawInstr, len(instrs))
	for i, in := range instrs {
		out[i] = render.DrawInstr{
			Kind:    instructionKind(in.Kind),
			Symbol:  in.Symbol,
			Variant: in.Variant,
			Color:   in.Color,
			Width:   in.Width,
			Text:    in.Text,
			OffsetX: in.OffsetX,
			OffsetY: in.OffsetY,
		}
	}
	return out
}

func instructionKind(k InstructionKind) render.InstrKind {
	switch k {
	case LineStyle:
		return render.InstrLineStyle
	case AreaFill:
		return render.InstrAreaFill
	case Text:
		return render.InstrText
	default:
		return render.InstrPointSymbol
	}
}

type textAdapter struct {
	tr TextRenderer
}

func (a textAdapter) DrawText(px, py float64, color render.RGBA, text string) {
	a.tr.DrawText(px, py, color[0], color[1], color[2], color[3], text)
}

func coordExtent(coords []float64) geodata.Extent {
	ext := geodata.Extent{}
	first := true
	for i := 0; i+2 < len(coords); i += 3 {
		x, y := coords[i], coords[i+1]
		if first {
			ext = geodata.Extent{W: x, S: y, E: x, N: y}
			first = false
			continue
		}
		if x < ext.W {
			ext.W = x
		}
		if x > ext.E {
			ext.E = x
		}
		if y < ext.S {
			ext.S = y
		}
		if y > ext.N {
			ext.N = y
		}
	}
	return ext
}
