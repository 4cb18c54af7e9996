package render

import (
	"log/slog"
	"math"
	"sort"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// WindingRule selects which regions of a (possibly self-intersecting,
// possibly multi-ring) polygon count as interior.
type WindingRule int

const (
	// WindingOdd is the even-odd (XOR) rule. Chosen for area fills
	// because real chart data contains donut rings and
	// self-intersections with no consistent ring orientation, and
	// odd winding still produces a sensible fill for them.
	WindingOdd WindingRule = iota

	// WindingAbsGeqTwo counts regions covered at least twice, the
	// CSG-intersection rule used when clipping a polygon against the
	// view rectangle.
	WindingAbsGeqTwo
)

// CombineFunc is called once for every vertex the tessellation pass
// synthesizes at a detected edge crossing.
type CombineFunc func(x, y float64)

const tessEps = 1e-12

// tessEdge is one directed polygon edge after crossing subdivision.
type tessEdge struct {
	x1, y1, x2, y2 float64
	dir            int // +1 upward, -1 downward, 0 horizontal
}

func (e *tessEdge) xAt(y float64) float64 {
	if e.y2 == e.y1 {
		return e.x1
	}
	return e.x1 + (y-e.y1)*(e.x2-e.x1)/(e.y2-e.y1)
}

// crossing is one edge intersecting the current slab.
type crossing struct {
	edge *tessEdge
	xMid float64
}

// Tessellator decomposes polygon rings into GPU triangle primitives
// using a slab (trapezoid) decomposition under a winding rule. It
// owns the vertices synthesized at edge crossings for the duration of
// one pass and releases them when the pass's batch is emitted.
type Tessellator struct {
	combine  CombineFunc
	combined [][2]float64

	edges     []tessEdge
	ys        []float64
	crossings []crossing
}

// NewTessellator creates a tessellator.
func NewTessellator() *Tessellator {
	return &Tessellator{}
}

// SetCombine installs a callback observing synthesized crossing
// vertices.
func (t *Tessellator) SetCombine(fn CombineFunc) { t.combine = fn }

// Tessellate decomposes the rings into triangles appended to b as a
// single Triangles draw command, and returns the number of triangles
// emitted. Rings are packed XYZ; rings with fewer than 3 points are
// skipped with a diagnostic, which is a data condition rather than an
// error. Coordinates marked with the overlap depth sentinel take part
// in the fill (suppression only affects boundary drawing).
func (t *Tessellator) Tessellate(b *geodata.PrimitiveBatch, rings [][]float64, rule WindingRule) int {
	t.buildEdges(rings)
	if len(t.edges) == 0 {
		return 0
	}
	t.splitCrossings()
	t.collectYs()

	triangles := 0
	opened := false
	for i := 0; i+1 < len(t.ys); i++ {
		y0, y1 := t.ys[i], t.ys[i+1]
		if y1-y0 <= tessEps {
			continue
		}
		yMid := (y0 + y1) / 2
		t.slabCrossings(yMid)
		if len(t.crossings) < 2 {
			continue
		}

		winding := 0
		runStart := -1
		for k := 0; k < len(t.crossings); k++ {
			winding += t.crossings[k].edge.dir
			inside := insideRule(winding, rule)
			if inside && runStart < 0 {
				runStart = k
			}
			if runStart >= 0 && (!inside || k == len(t.crossings)-1) {
				end := k
				if inside {
					// Run still open at the last crossing cannot
					// close; winding returns to zero at the end so
					// this only happens on numeric trouble.
					break
				}
				if !opened {
					b.Begin(geodata.Triangles)
					opened = true
				}
				triangles += emitTrapezoid(b,
					t.crossings[runStart].edge, t.crossings[end].edge, y0, y1)
				runStart = -1
			}
		}
	}
	if opened {
		b.End()
	}

	// Release pass-owned crossing vertices.
	t.combined = t.combined[:0]
	return triangles
}

func insideRule(winding int, rule WindingRule) bool {
	switch rule {
	case WindingAbsGeqTwo:
		return winding >= 2 || winding <= -2
	default:
		return winding%2 != 0
	}
}

// emitTrapezoid appends the slab piece between the left and right
// edges as up to two triangles, skipping degenerate rims.
func emitTrapezoid(b *geodata.PrimitiveBatch, left, right *tessEdge, y0, y1 float64) int {
	l0, r0 := left.xAt(y0), right.xAt(y0)
	l1, r1 := left.xAt(y1), right.xAt(y1)

	n := 0
	if r0-l0 > tessEps {
		b.Add(l0, y0, 0)
		b.Add(r0, y0, 0)
		b.Add(r1, y1, 0)
		n++
	}
	if r1-l1 > tessEps {
		b.Add(l0, y0, 0)
		b.Add(r1, y1, 0)
		b.Add(l1, y1, 0)
		n++
	}
	return n
}

func (t *Tessellator) buildEdges(rings [][]float64) {
	t.edges = t.edges[:0]
	for ri, ring := range rings {
		npt := len(ring) / 3
		if npt < 3 {
			slog.Debug("skipping degenerate ring", "ring", ri, "points", npt)
			continue
		}
		for i := 0; i < npt; i++ {
			j := (i + 1) % npt
			x1, y1 := ring[i*3], ring[i*3+1]
			x2, y2 := ring[j*3], ring[j*3+1]
			if x1 == x2 && y1 == y2 {
				continue // closing duplicate
			}
			dir := 0
			switch {
			case y2 > y1:
				dir = 1
			case y2 < y1:
				dir = -1
			}
			t.edges = append(t.edges, tessEdge{x1, y1, x2, y2, dir})
		}
	}
}

// splitCrossings subdivides edges at pairwise interior intersections,
// synthesizing combine vertices, so every slab sees straight edges
// with consistent ordering.
func (t *Tessellator) splitCrossings() {
	splits := make(map[int][]float64) // edge index -> interpolation params
	for i := 0; i < len(t.edges); i++ {
		for j := i + 1; j < len(t.edges); j++ {
			ti, tj, ok := segIntersect(&t.edges[i], &t.edges[j])
			if !ok {
				continue
			}
			splits[i] = append(splits[i], ti)
			splits[j] = append(splits[j], tj)
			e := &t.edges[i]
			x := e.x1 + ti*(e.x2-e.x1)
			y := e.y1 + ti*(e.y2-e.y1)
			t.combined = append(t.combined, [2]float64{x, y})
			if t.combine != nil {
				t.combine(x, y)
			}
		}
	}
	if len(splits) == 0 {
		return
	}

	out := make([]tessEdge, 0, len(t.edges)+2*len(splits))
	for i := range t.edges {
		e := t.edges[i]
		params, ok := splits[i]
		if !ok {
			out = append(out, e)
			continue
		}
		sort.Float64s(params)
		px, py := e.x1, e.y1
		prev := 0.0
		for _, p := range params {
			if p-prev <= tessEps {
				continue
			}
			nx := e.x1 + p*(e.x2-e.x1)
			ny := e.y1 + p*(e.y2-e.y1)
			out = append(out, makeEdge(px, py, nx, ny))
			px, py, prev = nx, ny, p
		}
		out = append(out, makeEdge(px, py, e.x2, e.y2))
	}
	t.edges = out
}

func makeEdge(x1, y1, x2, y2 float64) tessEdge {
	dir := 0
	switch {
	case y2 > y1:
		dir = 1
	case y2 < y1:
		dir = -1
	}
	return tessEdge{x1, y1, x2, y2, dir}
}

// segIntersect returns the interpolation parameters of a proper
// interior intersection of two segments.
func segIntersect(a, b *tessEdge) (ta, tb float64, ok bool) {
	dax, day := a.x2-a.x1, a.y2-a.y1
	dbx, dby := b.x2-b.x1, b.y2-b.y1
	den := dax*dby - day*dbx
	if math.Abs(den) < tessEps {
		return 0, 0, false // parallel or collinear
	}
	ta = ((b.x1-a.x1)*dby - (b.y1-a.y1)*dbx) / den
	tb = ((b.x1-a.x1)*day - (b.y1-a.y1)*dax) / den
	const margin = 1e-9
	if ta <= margin || ta >= 1-margin || tb <= margin || tb >= 1-margin {
		return 0, 0, false // touches at an endpoint, not a crossing
	}
	return ta, tb, true
}

func (t *Tessellator) collectYs() {
	t.ys = t.ys[:0]
	for i := range t.edges {
		t.ys = append(t.ys, t.edges[i].y1, t.edges[i].y2)
	}
	sort.Float64s(t.ys)
	// Deduplicate within tolerance.
	out := t.ys[:0]
	for _, y := range t.ys {
		if len(out) == 0 || y-out[len(out)-1] > tessEps {
			out = append(out, y)
		}
	}
	t.ys = out
}

func (t *Tessellator) slabCrossings(yMid float64) {
	t.crossings = t.crossings[:0]
	for i := range t.edges {
		e := &t.edges[i]
		if e.dir == 0 {
			continue
		}
		lo, hi := math.Min(e.y1, e.y2), math.Max(e.y1, e.y2)
		if yMid <= lo || yMid >= hi {
			continue
		}
		t.crossings = append(t.crossings, crossing{edge: e, xMid: e.xAt(yMid)})
	}
	sort.Slice(t.crossings, func(i, j int) bool {
		return t.crossings[i].xMid < t.crossings[j].xMid
	})
}
