package render

import (
	"math"
	"sort"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// Label placement. Area features anchor their point symbol and text
// at a representative interior point. Fully visible polygons use the
// signed-area centroid with an interior fallback for concave shapes;
// polygons clipped by the view boundary are intersected with the view
// rectangle first so the anchor stays on screen.

// RingCentroid returns the signed-area (shoelace) centroid of a ring.
// The ring need not repeat its first coordinate. ok is false for
// degenerate rings (fewer than 3 points or ~zero area).
func RingCentroid(ring []float64) (x, y float64, ok bool) {
	npt := len(ring) / 3
	if npt < 3 {
		return 0, 0, false
	}
	var area, cx, cy float64
	for i := 0; i < npt; i++ {
		j := (i + 1) % npt
		x1, y1 := ring[i*3], ring[i*3+1]
		x2, y2 := ring[j*3], ring[j*3+1]
		cross := x1*y2 - x2*y1
		area += cross
		cx += (x1 + x2) * cross
		cy += (y1 + y2) * cross
	}
	area /= 2
	if math.Abs(area) < tessEps {
		return 0, 0, false
	}
	return cx / (6 * area), cy / (6 * area), true
}

// InteriorPoint returns a point guaranteed inside the ring: the
// boundary is traced slab by slab, inside/outside transitions give
// interior spans, and the midpoint of the longest span found wins.
func InteriorPoint(ring []float64) (x, y float64, ok bool) {
	npt := len(ring) / 3
	if npt < 3 {
		return 0, 0, false
	}

	ys := make([]float64, 0, npt)
	for i := 0; i < npt; i++ {
		ys = append(ys, ring[i*3+1])
	}
	sort.Float64s(ys)

	var bestLen float64
	var bestX, bestY float64
	xs := make([]float64, 0, npt)
	for i := 0; i+1 < len(ys); i++ {
		if ys[i+1]-ys[i] <= tessEps {
			continue
		}
		yMid := (ys[i] + ys[i+1]) / 2

		// Even-odd crossings of the horizontal line at yMid.
		xs = xs[:0]
		for k := 0; k < npt; k++ {
			j := (k + 1) % npt
			x1, y1 := ring[k*3], ring[k*3+1]
			x2, y2 := ring[j*3], ring[j*3+1]
			if (y1 > yMid) == (y2 > yMid) {
				continue
			}
			xs = append(xs, x1+(yMid-y1)*(x2-x1)/(y2-y1))
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			if l := xs[k+1] - xs[k]; l > bestLen {
				bestLen = l
				bestX = (xs[k] + xs[k+1]) / 2
				bestY = yMid
			}
		}
	}
	if bestLen <= 0 {
		return 0, 0, false
	}
	return bestX, bestY, true
}

// SimpleCentroid returns the label point for a polygon fully inside
// the view: the shoelace centroid when it lands inside the ring, the
// traced interior point otherwise (concave shapes).
func SimpleCentroid(ring []float64) (x, y float64, ok bool) {
	x, y, ok = RingCentroid(ring)
	if ok && geodata.PointInside(ring, x, y, false) {
		return x, y, true
	}
	return InteriorPoint(ring)
}

// ClipRingToRect intersects a polygon ring with an axis-aligned
// rectangle and returns the bounded sub-contours, packed XYZ.
// Vertices synthesized where edges cross the rectangle boundary are
// reported through combine. An empty result means the ring does not
// reach into the rectangle.
//
// The clip is Sutherland-Hodgman, so a concave ring whose
// intersection with the rectangle is disconnected comes back as one
// contour with the pieces bridged along the rectangle boundary.
// Label placement still works: the bridged regions cancel under the
// even-odd rule, so the InteriorPoint fallback lands inside a real
// piece, just one label instead of one per piece.
func ClipRingToRect(ring []float64, w, s, e, n float64, combine CombineFunc) [][]float64 {
	npt := len(ring) / 3
	if npt < 3 {
		return nil
	}
	// Drop a closing duplicate; the clip works on the open form.
	if npt > 1 && ring[0] == ring[(npt-1)*3] && ring[1] == ring[(npt-1)*3+1] {
		npt--
	}
	pts := make([][2]float64, 0, npt)
	for i := 0; i < npt; i++ {
		pts = append(pts, [2]float64{ring[i*3], ring[i*3+1]})
	}

	type halfPlane struct {
		inside func(p [2]float64) bool
		cross  func(a, b [2]float64) [2]float64
	}
	lerp := func(a, b [2]float64, t float64) [2]float64 {
		return [2]float64{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
	}
	planes := []halfPlane{
		{func(p [2]float64) bool { return p[0] >= w },
			func(a, b [2]float64) [2]float64 { return lerp(a, b, (w-a[0])/(b[0]-a[0])) }},
		{func(p [2]float64) bool { return p[0] <= e },
			func(a, b [2]float64) [2]float64 { return lerp(a, b, (e-a[0])/(b[0]-a[0])) }},
		{func(p [2]float64) bool { return p[1] >= s },
			func(a, b [2]float64) [2]float64 { return lerp(a, b, (s-a[1])/(b[1]-a[1])) }},
		{func(p [2]float64) bool { return p[1] <= n },
			func(a, b [2]float64) [2]float64 { return lerp(a, b, (n-a[1])/(b[1]-a[1])) }},
	}

	for _, pl := range planes {
		if len(pts) == 0 {
			break
		}
		out := make([][2]float64, 0, len(pts)+4)
		for i := range pts {
			cur := pts[i]
			prev := pts[(i+len(pts)-1)%len(pts)]
			curIn, prevIn := pl.inside(cur), pl.inside(prev)
			if curIn {
				if !prevIn {
					p := pl.cross(prev, cur)
					out = append(out, p)
					if combine != nil {
						combine(p[0], p[1])
					}
				}
				out = append(out, cur)
			} else if prevIn {
				p := pl.cross(prev, cur)
				out = append(out, p)
				if combine != nil {
					combine(p[0], p[1])
				}
			}
		}
		pts = out
	}
	if len(pts) < 3 {
		return nil
	}

	contour := make([]float64, 0, len(pts)*3)
	for _, p := range pts {
		contour = append(contour, p[0], p[1], 0)
	}
	return [][]float64{contour}
}

// ClippedCentroids returns the label points for a polygon whose
// extent crosses the view boundary: one per clipped sub-contour, each
// guaranteed inside both the polygon and the view rectangle.
func ClippedCentroids(ring []float64, w, s, e, n float64) [][2]float64 {
	contours := ClipRingToRect(ring, w, s, e, n, nil)
	out := make([][2]float64, 0, len(contours))
	for _, c := range contours {
		x, y, ok := SimpleCentroid(c)
		if !ok {
			continue
		}
		out = append(out, [2]float64{x, y})
	}
	return out
}
