package render

import (
	"math"
	"testing"

	"github.com/beetlebugorg/s52/internal/geodata"
)

func TestRingCentroidSquare(t *testing.T) {
	sq := ring(0, 0, 4, 0, 4, 4, 0, 4)
	x, y, ok := RingCentroid(sq)
	if !ok {
		t.Fatal("centroid of a square reported degenerate")
	}
	if math.Abs(x-2) > 1e-9 || math.Abs(y-2) > 1e-9 {
		t.Errorf("centroid = (%g, %g), want (2, 2)", x, y)
	}
}

func TestRingCentroidDegenerate(t *testing.T) {
	if _, _, ok := RingCentroid(ring(0, 0, 1, 1)); ok {
		t.Error("2-point ring reported a centroid")
	}
	if _, _, ok := RingCentroid(ring(0, 0, 2, 2, 4, 4)); ok {
		t.Error("collinear ring reported a centroid")
	}
}

// A U shape puts the shoelace centroid in the notch, outside the
// polygon; the label point must fall back to a traced interior point.
func TestSimpleCentroidConcave(t *testing.T) {
	u := ring(0, 0, 10, 0, 10, 10, 7, 10, 7, 2, 3, 2, 3, 10, 0, 10)
	x, y, ok := SimpleCentroid(u)
	if !ok {
		t.Fatal("no label point for a concave polygon")
	}
	if !geodata.PointInside(u, x, y, true) {
		t.Errorf("label point (%g, %g) lies outside the polygon", x, y)
	}
}

func TestSimpleCentroidConvexUsesCentroid(t *testing.T) {
	sq := ring(1, 1, 5, 1, 5, 5, 1, 5)
	x, y, ok := SimpleCentroid(sq)
	if !ok {
		t.Fatal("no label point for a square")
	}
	if math.Abs(x-3) > 1e-9 || math.Abs(y-3) > 1e-9 {
		t.Errorf("label point = (%g, %g), want the centroid (3, 3)", x, y)
	}
}

func TestInteriorPointInside(t *testing.T) {
	shapes := [][]float64{
		ring(0, 0, 4, 0, 0, 4),
		ring(0, 0, 10, 0, 10, 10, 7, 10, 7, 2, 3, 2, 3, 10, 0, 10),
		ring(0, 0, 8, 0, 8, 2, 2, 2, 2, 6, 8, 6, 8, 8, 0, 8),
	}
	for i, s := range shapes {
		x, y, ok := InteriorPoint(s)
		if !ok {
			t.Errorf("shape %d: no interior point", i)
			continue
		}
		if !geodata.PointInside(s, x, y, true) {
			t.Errorf("shape %d: interior point (%g, %g) outside", i, x, y)
		}
	}
}

func TestClipRingToRect(t *testing.T) {
	// Square half inside the rect: the clipped contour is the inside
	// half.
	sq := ring(-2, 0, 2, 0, 2, 4, -2, 4)
	out := ClipRingToRect(sq, 0, -10, 10, 10, nil)
	if len(out) != 1 {
		t.Fatalf("clip produced %d contours, want 1", len(out))
	}
	for i := 0; i+2 < len(out[0]); i += 3 {
		if out[0][i] < -1e-9 {
			t.Errorf("clipped vertex x = %g outside the rect", out[0][i])
		}
	}
	x, y, ok := SimpleCentroid(out[0])
	if !ok {
		t.Fatal("no centroid for the clipped contour")
	}
	if math.Abs(x-1) > 1e-9 || math.Abs(y-2) > 1e-9 {
		t.Errorf("clipped centroid = (%g, %g), want (1, 2)", x, y)
	}
}

func TestClipRingFullyOutside(t *testing.T) {
	sq := ring(20, 20, 24, 20, 24, 24, 20, 24)
	if out := ClipRingToRect(sq, 0, 0, 10, 10, nil); out != nil {
		t.Errorf("fully outside ring clipped to %v, want nil", out)
	}
}

func TestClippedCentroidsInsideView(t *testing.T) {
	// Square straddling the west view edge.
	sq := ring(-5, 0, 5, 0, 5, 6, -5, 6)
	pts := ClippedCentroids(sq, 0, -100, 100, 100)
	if len(pts) != 1 {
		t.Fatalf("got %d label points, want 1", len(pts))
	}
	p := pts[0]
	if p[0] < 0 || p[0] > 5 || p[1] < 0 || p[1] > 6 {
		t.Errorf("label point (%g, %g) outside polygon/view intersection", p[0], p[1])
	}
	if !geodata.PointInside(sq, p[0], p[1], true) {
		t.Errorf("label point (%g, %g) outside the polygon", p[0], p[1])
	}
}

// A concave polygon whose intersection with the view is two disjoint
// prongs: the clip bridges them into a single contour, so only one
// label point comes back, but it must land inside a real prong and
// inside the view, never in the gap between them.
func TestClippedCentroidsDisconnectedIntersection(t *testing.T) {
	u := ring(0, 0, 10, 0, 10, 10, 7, 10, 7, 2, 3, 2, 3, 10, 0, 10)
	pts := ClippedCentroids(u, -1, 4, 11, 12)
	if len(pts) == 0 {
		t.Fatal("no label point for the clipped prongs")
	}
	for _, p := range pts {
		if !geodata.PointInside(u, p[0], p[1], true) {
			t.Errorf("label point (%g, %g) outside the polygon", p[0], p[1])
		}
		if p[0] < -1 || p[0] > 11 || p[1] < 4 || p[1] > 12 {
			t.Errorf("label point (%g, %g) outside the view", p[0], p[1])
		}
	}
}
