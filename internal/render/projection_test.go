package render

import (
	"errors"
	"math"
	"testing"
)

func TestMercatorNotReady(t *testing.T) {
	m := NewMercator(50, 5)
	if m.Initialized() {
		t.Fatal("projection initialized before Initialize")
	}
	err := m.GeoToProjected([]float64{5, 50, 0})
	if !errors.Is(err, ErrProjectionNotReady) {
		t.Fatalf("transform before Initialize = %v, want ErrProjectionNotReady", err)
	}
	if _, _, err := m.ProjectedToGeo(0, 0); !errors.Is(err, ErrProjectionNotReady) {
		t.Fatalf("inverse before Initialize = %v, want ErrProjectionNotReady", err)
	}
}

func TestMercatorRoundTrip(t *testing.T) {
	m := NewMercator(50, 5)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pts := [][2]float64{ // lon, lat
		{5, 50},
		{5.25, 50.1},
		{4.5, 49.8},
	}
	for _, p := range pts {
		xyz := []float64{p[0], p[1], 7}
		if err := m.GeoToProjected(xyz); err != nil {
			t.Fatalf("GeoToProjected(%v): %v", p, err)
		}
		if xyz[2] != 7 {
			t.Error("projection touched the Z coordinate")
		}
		lon, lat, err := m.ProjectedToGeo(xyz[0], xyz[1])
		if err != nil {
			t.Fatalf("ProjectedToGeo: %v", err)
		}
		if math.Abs(lon-p[0]) > 1e-6 || math.Abs(lat-p[1]) > 1e-6 {
			t.Errorf("round trip of %v = (%g, %g)", p, lon, lat)
		}
	}
}

func TestMercatorCentralMeridian(t *testing.T) {
	m := NewMercator(50, 5)
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	xyz := []float64{5, 50, 0}
	if err := m.GeoToProjected(xyz); err != nil {
		t.Fatal(err)
	}
	if math.Abs(xyz[0]) > 1e-6 {
		t.Errorf("central meridian projects to x = %g, want 0", xyz[0])
	}
	// East of the central meridian must project east.
	east := []float64{6, 50, 0}
	if err := m.GeoToProjected(east); err != nil {
		t.Fatal(err)
	}
	if east[0] <= 0 {
		t.Errorf("lon 6 projects to x = %g, want > 0", east[0])
	}
}
