package geodata

import (
	"errors"
	"testing"
)

func makeAreaAt(w, s, e, n float64) *Object {
	o := NewArea([][]float64{{w, s, 0, e, s, 0, e, n, 0, w, n, 0, w, s, 0}})
	o.SetExtent(Extent{W: w, S: s, E: e, N: n})
	return o
}

func TestStoreInsertResolve(t *testing.T) {
	st := NewStore()
	o := makeAreaAt(-71, 41, -70, 42)
	st.Insert(o)

	if st.Len() != 1 {
		t.Fatalf("store length = %d, want 1", st.Len())
	}
	got, err := st.Resolve(o.ID())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != o {
		t.Error("Resolve returned a different object")
	}

	var unknown *ErrUnknownObject
	if _, err := st.Resolve(0xffffffff); !errors.As(err, &unknown) {
		t.Errorf("Resolve of missing id error = %v, want ErrUnknownObject", err)
	}

	// Duplicate insert is a no-op.
	st.Insert(o)
	if st.Len() != 1 {
		t.Errorf("duplicate insert grew store to %d", st.Len())
	}
}

func TestStoreQueryExtent(t *testing.T) {
	st := NewStore()
	inside := makeAreaAt(-71, 41, -70, 42)
	edge := makeAreaAt(-70.1, 41.5, -69.5, 42.5) // straddles the query east bound
	outside := makeAreaAt(-60, 30, -59, 31)
	st.Insert(inside)
	st.Insert(edge)
	st.Insert(outside)

	// Point features index with a degenerate extent.
	buoy := NewPoint([3]float64{-70.5, 41.5, 0})
	buoy.SetExtent(Extent{W: -70.5, S: 41.5, E: -70.5, N: 41.5})
	st.Insert(buoy)

	hits := st.QueryExtent(Extent{W: -71.5, S: 40.5, E: -70, N: 42.5})
	if len(hits) != 3 {
		t.Fatalf("query returned %d objects, want 3", len(hits))
	}
	// Deterministic id order.
	for i := 1; i < len(hits); i++ {
		if hits[i-1].ID() >= hits[i].ID() {
			t.Error("query results should be ordered by id")
		}
	}
	for _, h := range hits {
		if h == outside {
			t.Error("query must not return objects outside the rectangle")
		}
	}
}

func TestStoreRemove(t *testing.T) {
	st := NewStore()
	o := makeAreaAt(0, 0, 1, 1)
	o.InitBatch()
	st.Insert(o)

	st.Remove(o.ID())
	if st.Len() != 0 {
		t.Errorf("store length after remove = %d", st.Len())
	}
	if hits := st.QueryExtent(Extent{W: -1, S: -1, E: 2, N: 2}); len(hits) != 0 {
		t.Errorf("removed object still indexed: %d hits", len(hits))
	}
	if o.Batch() != nil {
		t.Error("remove should release the primitive cache")
	}

	// Removing an unknown id is a no-op.
	st.Remove(12345)
}

func TestStoreTouchResolution(t *testing.T) {
	st := NewStore()
	buoy := NewPoint([3]float64{-70, 41, 0})
	buoy.SetExtent(Extent{W: -70, S: 41, E: -70, N: 41})
	light := NewPoint([3]float64{-70, 41, 0})
	light.SetExtent(Extent{W: -70, S: 41, E: -70, N: 41})
	st.Insert(buoy)
	st.Insert(light)

	buoy.SetTouch(TouchLight, light.ID())
	if got := st.TouchOf(buoy, TouchLight); got != light {
		t.Error("TouchOf should resolve the light")
	}
	if got := st.TouchOf(buoy, TouchDepthArea); got != nil {
		t.Error("unset relation should resolve to nil")
	}

	// A dangling reference resolves to nil, not an error: touch
	// references are non-owning.
	st.Remove(light.ID())
	if got := st.TouchOf(buoy, TouchLight); got != nil {
		t.Error("dangling touch should resolve to nil")
	}
}
