package geodata

import (
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
)

// minRectSize pads degenerate extents (point features) so the R-tree
// accepts them; rtreego rejects zero-length rectangle sides.
const minRectSize = 1e-9

// Store owns the chart objects known to the renderer and maintains a
// spatial index over their geographic extents for visibility culling
// and pick-region preselection.
//
// Spatial queries are O(log N) with the R-tree, compared to O(N) with
// a linear scan over every loaded feature.
//
// The store may be populated and queried from a chart-loading path
// while no render cycle is open; within a cycle it is read-only.
type Store struct {
	mu      sync.RWMutex
	objects map[uint32]*storeEntry
	tree    *rtreego.Rtree
}

// storeEntry adapts one object to the rtreego.Spatial interface.
// The entry is kept so Remove can hand the identical Spatial value
// back to the tree.
type storeEntry struct {
	obj *Object
}

// Bounds method for the rtreego.Spatial interface. Converts the
// object's geographic extent to an R-tree rectangle.
func (e *storeEntry) Bounds() rtreego.Rect {
	ext := e.obj.Extent()
	point := rtreego.Point{ext.W, ext.S}
	lengths := []float64{
		max(ext.E-ext.W, minRectSize),
		max(ext.N-ext.S, minRectSize),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// NewStore creates an empty object store.
func NewStore() *Store {
	return &Store{
		objects: make(map[uint32]*storeEntry),
		tree:    rtreego.NewTree(2, 25, 50),
	}
}

// Insert adds an object to the store and its extent to the spatial
// index. The object's extent must be set first.
func (s *Store) Insert(o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.objects[o.ID()]; dup {
		return
	}
	e := &storeEntry{obj: o}
	s.objects[o.ID()] = e
	if o.Extent().Valid() {
		s.tree.Insert(e)
	}
}

// Remove deletes an object from the store and index. The object's
// primitive cache is released; its GPU handle must already be freed.
func (s *Store) Remove(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.objects[id]
	if !ok {
		return
	}
	if e.obj.Extent().Valid() {
		s.tree.Delete(e)
	}
	e.obj.DropBatch()
	delete(s.objects, id)
}

// Resolve returns the object with the given id.
func (s *Store) Resolve(id uint32) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objects[id]
	if !ok {
		return nil, &ErrUnknownObject{ID: id}
	}
	return e.obj, nil
}

// TouchOf resolves the object's touch relation of the given kind
// through the store; nil when the relation is unset or the target no
// longer exists. Touch references are non-owning, so a dangling id
// is not an error.
func (s *Store) TouchOf(o *Object, kind TouchKind) *Object {
	id := o.TouchOf(kind)
	if id == 0 {
		return nil
	}
	t, err := s.Resolve(id)
	if err != nil {
		return nil
	}
	return t
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// QueryExtent returns every object whose extent intersects the given
// geographic rectangle, ordered by id for deterministic draw order.
func (s *Store) QueryExtent(ext Extent) []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	point := rtreego.Point{ext.W, ext.S}
	lengths := []float64{
		max(ext.E-ext.W, minRectSize),
		max(ext.N-ext.S, minRectSize),
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	hits := s.tree.SearchIntersect(rect)
	out := make([]*Object, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*storeEntry).obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Each calls fn for every stored object, ordered by id.
func (s *Store) Each(fn func(*Object)) {
	s.mu.RLock()
	ids := make([]uint32, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if o, err := s.Resolve(id); err == nil {
			fn(o)
		}
	}
}
