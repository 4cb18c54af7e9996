package render

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// InstrKind selects what a draw instruction paints.
type InstrKind int

const (
	// InstrPointSymbol stamps a compiled vector symbol at the
	// object's anchor point(s), at constant physical size.
	InstrPointSymbol InstrKind = iota
	// InstrLineStyle strokes the object's boundary.
	InstrLineStyle
	// InstrAreaFill fills the object's polygon.
	InstrAreaFill
	// InstrText places a label at the object's anchor point(s).
	InstrText
)

// DrawInstr is one resolved portrayal instruction for an object. The
// lookup-table evaluator produces these; the engine only executes
// them.
type DrawInstr struct {
	Kind    InstrKind
	Symbol  string  // symbol name, for InstrPointSymbol
	Variant string  // symbol variant (rotation/state), part of the cache key
	Color   string  // color token, for line/area/text instructions
	Width   float64 // pen width units, for InstrLineStyle
	Text    string  // label text, for InstrText
	OffsetX float64 // label pixel offset
	OffsetY float64
}

// InstructionSource resolves an object to its draw instructions. The
// S-52 lookup-table evaluator implements this.
type InstructionSource interface {
	Instructions(o *geodata.Object) []DrawInstr
}

// TextDrawer renders label text at a pixel position. Text rendering
// needs font machinery the engine deliberately does not own; a nil
// drawer makes text instructions no-ops.
type TextDrawer interface {
	DrawText(px, py float64, color RGBA, text string)
}

// DrawObject executes every instruction the source resolves for o.
// Must be called inside an open cycle. Objects whose geometry cannot
// satisfy an instruction are skipped with a diagnostic; only backend
// resource failures surface as errors.
func (e *Engine) DrawObject(o *geodata.Object) error {
	if !e.inCycle {
		panic("render: DrawObject outside a render cycle")
	}
	if o.Type() == geodata.MetaType {
		return nil
	}
	if !o.Projected() {
		if err := o.Project(e.proj); err != nil {
			slog.Debug("projection failed, object skipped",
				"object", o.ID(), "name", o.Name(), "err", err)
			return nil
		}
	}
	e.ctx.Stats.Objects++

	colorFor := e.colors.RGBA
	if e.cycle == CyclePick {
		idx := e.picker.Enter(o)
		colorFor = func(string) RGBA { return idx }
	}

	for _, in := range e.source.Instructions(o) {
		var err error
		switch in.Kind {
		case InstrAreaFill:
			err = e.drawAreaFill(o, in, colorFor)
		case InstrLineStyle:
			e.drawLineStyle(o, in, colorFor)
		case InstrPointSymbol:
			err = e.drawPointSymbol(o, in, colorFor)
		case InstrText:
			e.drawText(o, in)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// drawAreaFill tessellates the object's rings on first use, uploads
// the triangles once, and re-issues the stored batch afterwards.
func (e *Engine) drawAreaFill(o *geodata.Object, in DrawInstr, colorFor func(string) RGBA) error {
	if o.Type() != geodata.AreaType {
		slog.Debug("area fill on non-area object, skipped",
			"object", o.ID(), "name", o.Name(), "type", o.Type())
		return nil
	}
	b := o.Batch()
	if b == nil || !b.Finalized() {
		if b == nil {
			b = o.InitBatch()
		}
		rings := make([][]float64, 0, o.RingCount())
		for i := 0; i < o.RingCount(); i++ {
			r, err := o.Ring(i)
			if err != nil {
				slog.Debug("ring access failed, area skipped",
					"object", o.ID(), "ring", i, "err", err)
				return nil
			}
			rings = append(rings, r)
		}
		e.ctx.Stats.TessTriangles += e.tess.Tessellate(b, rings, WindingOdd)
		b.Finalize()
	}
	if b.VertexCount() == 0 {
		return nil
	}
	if b.Handle() == geodata.NoHandle {
		id, err := e.backend.UploadVertexBuffer(b.Vertices())
		if err != nil {
			return err
		}
		b.SetHandle(e.objArena.Alloc(id))
	}
	id, ok := e.objArena.Get(b.Handle())
	if !ok {
		b.SetHandle(geodata.NoHandle)
		return nil
	}
	col := colorFor(in.Color)
	e.backend.SetColor(col[0], col[1], col[2], col[3])
	for _, cmd := range b.Commands() {
		e.backend.DrawBuffer(id, cmd.Mode, cmd.First, cmd.Count)
		e.ctx.Stats.DrawCalls++
	}
	return nil
}

// drawLineStyle strokes every ring of the object, splitting each into
// runs at segments suppressed by chart-overlap marking. A segment is
// suppressed only when both of its endpoints carry the overlap depth
// sentinel.
func (e *Engine) drawLineStyle(o *geodata.Object, in DrawInstr, colorFor func(string) RGBA) {
	if o.Type() == geodata.PointType {
		slog.Debug("line style on point object, skipped",
			"object", o.ID(), "name", o.Name())
		return
	}
	col := colorFor(in.Color)
	e.backend.SetColor(col[0], col[1], col[2], col[3])
	px := in.Width * lineWidthUnitMM / e.ctx.DotPitch()
	if px < 1 {
		px = 1
	}
	e.backend.LineWidth(px)
	for i := 0; i < o.RingCount(); i++ {
		ring, err := o.Ring(i)
		if err != nil {
			slog.Debug("ring access failed, boundary skipped",
				"object", o.ID(), "ring", i, "err", err)
			return
		}
		e.strokeRuns(ring)
	}
}

// strokeRuns draws the unsuppressed runs of one packed-XYZ polyline
// as immediate line strips. The overlap sentinel lives in the z slot;
// drawn vertices are flattened to z=0.
func (e *Engine) strokeRuns(ring []float64) {
	n := len(ring) / 3
	if n < 2 {
		return
	}
	run := make([]float64, 0, len(ring))
	flush := func() {
		if len(run) >= 6 {
			e.backend.DrawVertices(run, geodata.LineStrip, 0, len(run)/3)
			e.ctx.Stats.DrawCalls++
		}
		run = run[:0]
	}
	for i := 0; i+1 < n; i++ {
		z0 := ring[i*3+2]
		z1 := ring[(i+1)*3+2]
		if z0 == geodata.OverlapZ && z1 == geodata.OverlapZ {
			flush()
			continue
		}
		if len(run) == 0 {
			run = append(run, ring[i*3], ring[i*3+1], 0)
		}
		run = append(run, ring[(i+1)*3], ring[(i+1)*3+1], 0)
	}
	flush()
}

// drawPointSymbol stamps the compiled symbol at each anchor of the
// object, at constant physical size regardless of chart scale.
func (e *Engine) drawPointSymbol(o *geodata.Object, in DrawInstr, colorFor func(string) RGBA) error {
	key := SymbolKey{Name: in.Symbol, Variant: in.Variant}
	for _, a := range e.anchors(o) {
		e.ctx.Modelview.Push()
		e.ctx.Modelview.Mult(mgl64.Translate3D(a[0], a[1], 0))
		e.ctx.PushScaleToPixel()
		mv, pr := e.ctx.MatrixProducts()
		e.backend.LoadMatrices(mv, pr)
		err := e.cache.Draw(e.ctx, e.backend, key, colorFor)
		e.ctx.PopScaleToPixel()
		e.ctx.Modelview.Pop()
		mv, pr = e.ctx.MatrixProducts()
		e.backend.LoadMatrices(mv, pr)
		if err != nil {
			return err
		}
	}
	return nil
}

// drawText places the instruction's label at each anchor, offset in
// pixels. Text draws nothing during picking.
func (e *Engine) drawText(o *geodata.Object, in DrawInstr) {
	if e.cycle == CyclePick || e.text == nil || in.Text == "" {
		return
	}
	col := e.colors.RGBA(in.Color)
	for _, a := range e.anchors(o) {
		px, py := e.ctx.ProjectedToPixel(a[0], a[1])
		e.text.DrawText(px+in.OffsetX, py+in.OffsetY, col, in.Text)
	}
}

// TextAnchor reports the pixel position where a label for the object
// would be placed, before instruction offsets. ok is false when the
// object has no anchor in the current view or cannot be projected.
func (e *Engine) TextAnchor(o *geodata.Object) (px, py float64, ok bool) {
	if e.proj == nil {
		return 0, 0, false
	}
	if !e.view.Derived() {
		if err := e.view.Derive(e.proj, e.ctx.DotPitch()); err != nil {
			return 0, 0, false
		}
	}
	if !e.inCycle {
		x, y, w, h := e.view.Viewport()
		e.ctx.SetViewport(x, y, w, h)
		pw, ps, pe, pn := e.view.PrjExtent()
		e.ctx.SetProjectionWindow(pw, ps, pe, pn, e.view.Rotation())
	}
	if !o.Projected() {
		if err := o.Project(e.proj); err != nil {
			return 0, 0, false
		}
	}
	as := e.anchors(o)
	if len(as) == 0 {
		return 0, 0, false
	}
	px, py = e.ctx.ProjectedToPixel(as[0][0], as[0][1])
	return px, py, true
}

// anchors returns the projected anchor points for symbol and text
// placement: the point itself for point objects, the middle vertex
// for lines, and the cached label points for areas.
func (e *Engine) anchors(o *geodata.Object) [][2]float64 {
	switch g := o.Geometry().(type) {
	case geodata.Point:
		return [][2]float64{{g.XYZ[0], g.XYZ[1]}}
	case geodata.Line:
		n := len(g.XYZ) / 3
		if n == 0 {
			return nil
		}
		mid := n / 2
		return [][2]float64{{g.XYZ[mid*3], g.XYZ[mid*3+1]}}
	case geodata.Area:
		e.EnsureCentroids(o)
		var out [][2]float64
		if o.HasCentroid() {
			for {
				x, y, ok := o.NextCentroid()
				if !ok {
					break
				}
				out = append(out, [2]float64{x, y})
			}
		}
		return out
	}
	return nil
}

// EnsureCentroids fills the object's centroid cache for the current
// view. Polygons wholly inside the view get one shoelace centroid
// (with an interior-point fallback for concave shapes); polygons
// crossing the view edge get one label point per clipped sub-contour.
// The cache is keyed to the projected view rectangle and recomputed
// when the view moves.
func (e *Engine) EnsureCentroids(o *geodata.Object) {
	w, s, x, n := e.view.PrjExtent()
	key := [4]float64{w, s, x, n}
	if e.centroidViews[o.ID()] == key && o.HasCentroid() {
		return
	}
	o.ResetCentroids()
	e.centroidViews[o.ID()] = key

	ring, err := o.Ring(0)
	if err != nil || len(ring) < 9 {
		return
	}
	if ringInsideRect(ring, w, s, x, n) {
		if cx, cy, ok := SimpleCentroid(ring); ok {
			o.AddCentroid(cx, cy)
		}
		return
	}
	for _, c := range ClippedCentroids(ring, w, s, x, n) {
		o.AddCentroid(c[0], c[1])
	}
}

func ringInsideRect(ring []float64, w, s, e, n float64) bool {
	for i := 0; i+2 < len(ring); i += 3 {
		x, y := ring[i], ring[i+1]
		if x < w || x > e || y < s || y > n {
			return false
		}
	}
	return true
}

// Close releases every backend resource the engine allocated: object
// vertex buffers, the symbol cache arena, and the backend itself.
func (e *Engine) Close() {
	if e.inCycle {
		panic("render: Close inside an open render cycle")
	}
	e.store.Each(func(o *geodata.Object) {
		e.releaseBatch(o)
	})
	e.cache.Invalidate(e.backend)
	e.objArena.Reset(e.backend)
	e.backend.Close()
}
