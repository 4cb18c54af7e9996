package render

import (
	"testing"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// scaleProjection is a linear degree-to-meter stand-in used so engine
// tests do not depend on geodetic math.
type scaleProjection struct{ k float64 }

func (p scaleProjection) Initialize() error { return nil }

func (p scaleProjection) GeoToProjected(xyz []float64) error {
	for i := 0; i+2 < len(xyz); i += 3 {
		xyz[i] *= p.k
		xyz[i+1] *= p.k
	}
	return nil
}

func (p scaleProjection) ProjectedToGeo(x, y float64) (lon, lat float64, err error) {
	return x / p.k, y / p.k, nil
}

type stubInstrs struct {
	m map[uint32][]DrawInstr
}

func (s stubInstrs) Instructions(o *geodata.Object) []DrawInstr {
	return s.m[o.ID()]
}

type recordedText struct {
	px, py float64
	text   string
}

type stubText struct {
	drawn []recordedText
}

func (s *stubText) DrawText(px, py float64, color RGBA, text string) {
	s.drawn = append(s.drawn, recordedText{px, py, text})
}

// newTestEngine builds an engine over a 200x200 software framebuffer
// with a view spanning projected (-1000, -1000)..(1000, 1000).
func newTestEngine(t *testing.T) (*Engine, *Software, stubInstrs, *stubText) {
	t.Helper()
	sw := NewSoftware(200, 200)
	src := &stubSymbols{defs: map[string]*SymbolDef{
		"BOYSPP11": testSymbol(t, "BOYSPP11", "SW1;PU0,0;PD100,0;PD100,100"),
	}}
	instrs := stubInstrs{m: map[uint32][]DrawInstr{}}
	text := &stubText{}
	e := NewEngine(geodata.NewStore(), sw, src, instrs, text)
	e.SetProjection(scaleProjection{k: 1000})
	e.View().SetView(0, 0, 1, 0)
	e.View().SetViewport(0, 0, 200, 200)
	return e, sw, instrs, text
}

func addArea(e *Engine, instrs stubInstrs, w, s, x, n float64, in ...DrawInstr) *geodata.Object {
	o := geodata.NewArea([][]float64{ring(w, s, x, s, x, n, w, n)})
	o.SetExtent(geodata.Extent{W: w, S: s, E: x, N: n})
	e.Store().Insert(o)
	instrs.m[o.ID()] = in
	return o
}

func TestCycleProtocol(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	mustPanic(t, "nested Begin", func() { e.Begin(CyclePick) })
	mustPanic(t, "mismatched End", func() { e.End(CyclePick) })
	e.End(CycleDraw)
	mustPanic(t, "End without Begin", func() { e.End(CycleDraw) })
	mustPanic(t, "draw outside cycle", func() {
		e.DrawObject(geodata.NewPoint([3]float64{0, 0, 0}))
	})
}

func TestBeginWithoutProjection(t *testing.T) {
	sw := NewSoftware(8, 8)
	e := NewEngine(geodata.NewStore(), sw, &stubSymbols{}, stubInstrs{}, nil)
	if err := e.Begin(CycleDraw); err != ErrProjectionNotReady {
		t.Fatalf("Begin without projection = %v, want ErrProjectionNotReady", err)
	}
}

func TestDrawAreaFill(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	o := addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)

	if e.Context().Stats.Objects != 1 {
		t.Errorf("objects drawn = %d, want 1", e.Context().Stats.Objects)
	}
	if e.Context().Stats.TessTriangles != 2 {
		t.Errorf("tessellated %d triangles, want 2", e.Context().Stats.TessTriangles)
	}
	if o.Batch() == nil || !o.Batch().Finalized() {
		t.Fatal("area batch not built")
	}
	if o.Batch().Handle() == geodata.NoHandle {
		t.Error("area batch not uploaded")
	}

	// The framebuffer center must carry the fill color.
	px := sw.ReadPixels(100, 100, 1, 1)
	land := e.Colors().RGBA("LANDA")
	want := [3]byte{clampByte(land[0]), clampByte(land[1]), clampByte(land[2])}
	if px[0] != want[0] || px[1] != want[1] || px[2] != want[2] {
		t.Errorf("center pixel = %v, want %v", px[:3], want)
	}
}

// A second draw cycle must re-issue the stored batch without
// tessellating again.
func TestDrawAreaFillIdempotent(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "DEPDW"})

	for i := 0; i < 2; i++ {
		if err := e.Begin(CycleDraw); err != nil {
			t.Fatalf("Begin %d: %v", i, err)
		}
		if err := e.DrawVisible(); err != nil {
			t.Fatalf("DrawVisible %d: %v", i, err)
		}
		e.End(CycleDraw)
	}
	if n := e.Context().Stats.TessTriangles; n != 0 {
		t.Errorf("second cycle tessellated %d triangles, want 0", n)
	}
	if sw.Uploads != 1 {
		t.Errorf("uploads = %d, want 1", sw.Uploads)
	}
}

func TestDrawCullsOffscreenAndSuppressed(t *testing.T) {
	e, _, instrs, _ := newTestEngine(t)
	addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})
	// Far outside the one-degree view.
	addArea(e, instrs, 30, 30, 31, 31, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})
	sup := addArea(e, instrs, -0.2, -0.2, 0.2, 0.2, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})
	sup.SetSuppressed(true)

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)

	if e.Context().Stats.Objects != 1 {
		t.Errorf("objects drawn = %d, want 1 (offscreen and suppressed culled)",
			e.Context().Stats.Objects)
	}
}

func TestDrawLineOverlapSuppression(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	// Four-point polyline whose middle segment joins two vertices
	// carrying the shared-edge depth sentinel.
	o := geodata.NewLine([]float64{
		-0.6, 0, 0,
		-0.2, 0, geodata.OverlapZ,
		0.2, 0, geodata.OverlapZ,
		0.6, 0, 0,
	})
	o.SetExtent(geodata.Extent{W: -0.6, S: -0.1, E: 0.6, N: 0.1})
	e.Store().Insert(o)
	instrs.m[o.ID()] = []DrawInstr{{Kind: InstrLineStyle, Color: "CSTLN", Width: 1}}

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	before := sw.DrawCalls
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)

	if got := sw.DrawCalls - before; got != 2 {
		t.Errorf("issued %d strokes, want 2 runs around the suppressed segment", got)
	}
	// The suppressed middle segment leaves the center pixel untouched.
	px := sw.ReadPixels(100, 100, 1, 1)
	if px[3] != 0 {
		t.Errorf("suppressed segment drew at the center: %v", px)
	}
}

func TestDrawPointSymbolBalanced(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	o := geodata.NewPoint([3]float64{0.1, 0.1, 0})
	o.SetExtent(geodata.Extent{W: 0.1, S: 0.1, E: 0.1, N: 0.1})
	e.Store().Insert(o)
	instrs.m[o.ID()] = []DrawInstr{{Kind: InstrPointSymbol, Symbol: "BOYSPP11"}}

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw) // panics if the scale push leaked

	if e.Cache().Compiles != 1 {
		t.Errorf("symbol compiles = %d, want 1", e.Cache().Compiles)
	}
	if sw.DrawCalls == 0 {
		t.Error("symbol drew nothing")
	}
	if !e.Context().Balanced() {
		t.Error("matrix stacks unbalanced after symbol draw")
	}
}

func TestDrawTextAnchoredAndOffset(t *testing.T) {
	e, _, instrs, text := newTestEngine(t)
	o := geodata.NewPoint([3]float64{0, 0, 0})
	o.SetExtent(geodata.Extent{W: 0, S: 0, E: 0, N: 0})
	e.Store().Insert(o)
	instrs.m[o.ID()] = []DrawInstr{
		{Kind: InstrText, Color: "CHBLK", Text: "No 4", OffsetX: 12, OffsetY: -6},
	}

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)

	if len(text.drawn) != 1 {
		t.Fatalf("drew %d labels, want 1", len(text.drawn))
	}
	got := text.drawn[0]
	if got.text != "No 4" {
		t.Errorf("label text = %q", got.text)
	}
	// Anchor at the window center plus the pixel offset.
	if got.px != 112 || got.py != 94 {
		t.Errorf("label at (%g, %g), want (112, 94)", got.px, got.py)
	}
}

func TestPickFindsObjectUnderCursor(t *testing.T) {
	e, _, instrs, text := newTestEngine(t)
	o := addArea(e, instrs, -0.5, -0.5, 0.5, 0.5,
		DrawInstr{Kind: InstrAreaFill, Color: "LANDA"},
		DrawInstr{Kind: InstrText, Color: "CHBLK", Text: "anchorage"})

	hits, err := e.Pick(100, 100)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Object != o || !hits[0].Highlighted {
		t.Errorf("hit = %+v, want the area highlighted", hits[0])
	}
	if !o.Highlight() {
		t.Error("picked object highlight flag not set")
	}
	if len(text.drawn) != 0 {
		t.Error("pick cycle rendered text")
	}
}

func TestPickMissesAndOutOfBounds(t *testing.T) {
	e, _, instrs, _ := newTestEngine(t)
	addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})

	hits, err := e.Pick(10, 190)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("pick beside the area returned %d hits", len(hits))
	}

	hits, err = e.Pick(-50, 100)
	if err != nil {
		t.Fatalf("Pick out of bounds: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("out-of-viewport pick returned %d hits", len(hits))
	}
}

// A pick replaces the previous pick's highlights wholesale: objects
// highlighted last time but no longer under the cursor are cleared.
func TestPickClearsPreviousHighlight(t *testing.T) {
	e, _, instrs, _ := newTestEngine(t)
	left := addArea(e, instrs, -0.8, -0.3, -0.2, 0.3,
		DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})
	right := addArea(e, instrs, 0.2, -0.3, 0.8, 0.3,
		DrawInstr{Kind: InstrAreaFill, Color: "DEPVS"})

	if _, err := e.Pick(50, 100); err != nil {
		t.Fatalf("first Pick: %v", err)
	}
	if !left.Highlight() {
		t.Fatal("first pick did not highlight the left area")
	}

	hits, err := e.Pick(150, 100)
	if err != nil {
		t.Fatalf("second Pick: %v", err)
	}
	if len(hits) != 1 || hits[0].Object != right {
		t.Fatalf("second pick hits = %+v, want the right area", hits)
	}
	if left.Highlight() {
		t.Error("left area kept its highlight after picking elsewhere")
	}
	if !right.Highlight() {
		t.Error("right area not highlighted by the second pick")
	}
}

func TestPickOrdersOverlappingObjects(t *testing.T) {
	e, _, instrs, _ := newTestEngine(t)
	addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "DEPDW"})
	over := addArea(e, instrs, -0.2, -0.2, 0.2, 0.2, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})

	// The upper area overwrites the lower one's index color across
	// the whole cursor block, so only the top object is hit.
	hits, err := e.Pick(100, 100)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Object != over || !hits[0].Highlighted {
		t.Errorf("hit = %+v, want the top area highlighted", hits[0])
	}

	// A cursor block straddling the upper area's edge sees both index
	// colors: hits come back in draw order with the top one
	// highlighted.
	hits, err = e.Pick(120, 100)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("edge pick got %d hits, want 2", len(hits))
	}
	if hits[0].Highlighted || !hits[1].Highlighted {
		t.Error("highlight must mark only the last-drawn hit")
	}
	if hits[1].Object != over {
		t.Error("hits out of draw order")
	}
}

func TestLastOverlayRestoresSnapshot(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)
	want := sw.ReadPixels(100, 100, 1, 1)

	sw.Clear(0, 0, 0, 0)
	if err := e.Begin(CycleLastOverlay); err != nil {
		t.Fatalf("Begin overlay: %v", err)
	}
	e.End(CycleLastOverlay)

	got := sw.ReadPixels(100, 100, 1, 1)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("overlay restore pixel = %v, want %v", got, want)
		}
	}
}

func TestRemoveObjectReleasesBuffer(t *testing.T) {
	e, sw, instrs, _ := newTestEngine(t)
	o := addArea(e, instrs, -0.5, -0.5, 0.5, 0.5, DrawInstr{Kind: InstrAreaFill, Color: "LANDA"})

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.DrawVisible(); err != nil {
		t.Fatalf("DrawVisible: %v", err)
	}
	e.End(CycleDraw)
	if len(sw.buffers) != 1 {
		t.Fatalf("buffers after draw = %d, want 1", len(sw.buffers))
	}

	e.RemoveObject(o.ID())
	if len(sw.buffers) != 0 {
		t.Errorf("buffers after remove = %d, want 0", len(sw.buffers))
	}
	if e.Store().Len() != 0 {
		t.Errorf("store length after remove = %d", e.Store().Len())
	}
}

func TestEnsureCentroidsTracksView(t *testing.T) {
	e, _, instrs, _ := newTestEngine(t)
	o := addArea(e, instrs, -0.2, -0.2, 0.2, 0.2)

	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := o.Project(scaleProjection{k: 1000}); err != nil {
		t.Fatal(err)
	}
	e.EnsureCentroids(o)
	if o.CentroidCount() != 1 {
		t.Fatalf("centroids = %d, want 1", o.CentroidCount())
	}
	x, y, ok := o.NextCentroid()
	if !ok || x != 0 || y != 0 {
		t.Errorf("centroid = (%g, %g), want (0, 0)", x, y)
	}
	e.End(CycleDraw)

	// Moving the view invalidates the cached label points.
	e.View().SetView(0.5, 0.5, 1, 0)
	if err := e.Begin(CycleDraw); err != nil {
		t.Fatalf("Begin after move: %v", err)
	}
	e.EnsureCentroids(o)
	if o.CentroidCount() != 1 {
		t.Errorf("centroids after view move = %d, want 1", o.CentroidCount())
	}
	e.End(CycleDraw)
}
