package render

import (
	"math"
	"testing"

	"github.com/beetlebugorg/s52/internal/geodata"
)

func TestViewDerive(t *testing.T) {
	v := NewViewState()
	v.SetView(0, 0, 1, 0)
	v.SetViewport(0, 0, 800, 400)
	if v.Derived() {
		t.Fatal("view derived before Derive")
	}
	if err := v.Derive(scaleProjection{k: 1000}, 0.28); err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !v.Derived() {
		t.Fatal("view not derived after Derive")
	}

	w, s, e, n := v.PrjExtent()
	if math.Abs(n-1000) > 1e-9 || math.Abs(s+1000) > 1e-9 {
		t.Errorf("projected N/S = %g/%g, want 1000/-1000", n, s)
	}
	// Twice as wide as tall for the 2:1 viewport.
	if math.Abs(e-2000) > 1e-9 || math.Abs(w+2000) > 1e-9 {
		t.Errorf("projected E/W = %g/%g, want 2000/-2000", e, w)
	}

	ext := v.GeoExtent()
	if math.Abs(ext.N-1) > 1e-9 || math.Abs(ext.E-2) > 1e-9 {
		t.Errorf("geographic extent = %+v", ext)
	}

	// 2000 m of chart over 400 px of 0.28 mm gives about 1:17857.
	want := 2000.0 / (400 * 0.28 / 1000)
	if math.Abs(v.ScaleDenom()-want) > 1 {
		t.Errorf("scale denominator = %g, want %g", v.ScaleDenom(), want)
	}
}

func TestViewMutationInvalidatesDerive(t *testing.T) {
	v := NewViewState()
	v.SetView(0, 0, 1, 0)
	v.SetViewport(0, 0, 400, 400)
	if err := v.Derive(scaleProjection{k: 1000}, 0.28); err != nil {
		t.Fatal(err)
	}
	v.SetView(10, 10, 1, 0)
	if v.Derived() {
		t.Error("SetView kept the derived flag")
	}
}

func TestIsOffscreen(t *testing.T) {
	v := NewViewState()
	v.SetView(0, 0, 1, 0)
	v.SetViewport(0, 0, 400, 400)
	if err := v.Derive(scaleProjection{k: 1000}, 0.28); err != nil {
		t.Fatal(err)
	}

	inside := geodata.NewPoint([3]float64{0.5, 0.5, 0})
	inside.SetExtent(geodata.Extent{W: 0.5, S: 0.5, E: 0.5, N: 0.5})
	if v.IsOffscreen(inside) {
		t.Error("object inside the view reported offscreen")
	}

	outside := geodata.NewPoint([3]float64{50, 50, 0})
	outside.SetExtent(geodata.Extent{W: 50, S: 50, E: 51, N: 51})
	if !v.IsOffscreen(outside) {
		t.Error("object far outside the view reported onscreen")
	}

	// An extent that was never set cannot prove visibility.
	unset := geodata.NewPoint([3]float64{0, 0, 0})
	if !v.IsOffscreen(unset) {
		t.Error("object with unset extent reported onscreen")
	}
}

// A view across the antimeridian must still see objects on both
// sides of the date line.
func TestIsOffscreenAntimeridian(t *testing.T) {
	v := NewViewState()
	v.SetView(0, 179.5, 1, 0)
	v.SetViewport(0, 0, 400, 400)
	if err := v.Derive(scaleProjection{k: 1000}, 0.28); err != nil {
		t.Fatal(err)
	}

	east := geodata.NewPoint([3]float64{179.8, 0, 0})
	east.SetExtent(geodata.Extent{W: 179.8, S: -0.1, E: 179.9, N: 0.1})
	if v.IsOffscreen(east) {
		t.Error("object just east of the view center reported offscreen")
	}
}

func TestIsSuppressed(t *testing.T) {
	v := NewViewState()
	v.SetView(0, 0, 1, 0)
	v.SetViewport(0, 0, 400, 400)
	if err := v.Derive(scaleProjection{k: 1000}, 0.28); err != nil {
		t.Fatal(err)
	}
	// ScaleDenom is about 17857 here.

	o := geodata.NewPoint([3]float64{0, 0, 0})
	if v.IsSuppressed(o) {
		t.Error("object with unset minimum scale suppressed")
	}

	o.SetScamin(10000)
	if !v.IsSuppressed(o) {
		t.Error("object with SCAMIN below the display scale not suppressed")
	}

	o.SetScamin(1000000)
	if v.IsSuppressed(o) {
		t.Error("object with generous SCAMIN suppressed")
	}

	o.SetSuppressed(true)
	if !v.IsSuppressed(o) {
		t.Error("explicit suppression ignored")
	}
}
