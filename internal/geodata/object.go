package geodata

import (
	"math"
	"sync/atomic"
)

// Unknown is the value of any numeric field that has not been set.
// S-52 PresLib treats an absent SCAMIN as "always shown", which the
// reference data model encodes as +Inf.
var Unknown = math.Inf(1)

// OverlapZ is the sentinel depth written into coordinates that lie on
// a shared chain-node edge. The renderer skips line segments whose
// endpoints carry this depth so adjacent area borders draw once.
const OverlapZ = -9999.0

// ObjectType identifies the geometric primitive class of an Object.
//
// S-57 §7.6.1: PRIM values are 1=Point, 2=Line, 3=Area, 255=N/A.
// Meta covers PRIM=255 features (M_COVR, C_AGGR, ...) that carry
// attributes but no drawable geometry.
type ObjectType int

const (
	MetaType ObjectType = iota
	PointType
	LineType
	AreaType
)

// String returns a human-readable name for the object type.
func (t ObjectType) String() string {
	switch t {
	case MetaType:
		return "Meta"
	case PointType:
		return "Point"
	case LineType:
		return "Line"
	case AreaType:
		return "Area"
	default:
		return "Unknown"
	}
}

// Geometry is the sum type of chart-object geometry variants.
// Coordinates are packed XYZ triplets (stride 3), geographic degrees
// until Project is called, projected meters afterwards.
type Geometry interface {
	objectType() ObjectType
}

// Point is an isolated node (or sounding cluster of one coordinate).
type Point struct {
	XYZ [3]float64
}

// Line is an open polyline.
type Line struct {
	XYZ []float64 // packed x,y,z
}

// Area is a polygon; Rings[0] is the exterior ring, the rest are
// holes or additional contours. Ring orientation is not normalized:
// the tessellator's winding rule copes with either.
type Area struct {
	Rings [][]float64 // each packed x,y,z
}

// Meta is attribute-only geometry (no drawable coordinates).
type Meta struct{}

func (Point) objectType() ObjectType { return PointType }
func (Line) objectType() ObjectType  { return LineType }
func (Area) objectType() ObjectType  { return AreaType }
func (Meta) objectType() ObjectType  { return MetaType }

// Extent is an axis-aligned geographic rectangle: West, South, East,
// North. A fresh object's extent is (+Inf, +Inf, -Inf, -Inf) and must
// be set explicitly before culling consults it.
type Extent struct {
	W, S, E, N float64
}

func emptyExtent() Extent {
	return Extent{W: math.Inf(1), S: math.Inf(1), E: math.Inf(-1), N: math.Inf(-1)}
}

// Valid reports whether the extent has been set.
func (e Extent) Valid() bool {
	return !math.IsInf(e.W, 1) && !math.IsInf(e.E, -1)
}

// Intersects reports whether two extents overlap. Both must be valid.
func (e Extent) Intersects(o Extent) bool {
	return e.W <= o.E && o.W <= e.E && e.S <= o.N && o.S <= e.N
}

// TouchKind names one of the fixed conditional-symbology
// cross-references between objects (e.g. a TOPMAR touching a buoy,
// a LIGHTS touching the structure it is mounted on).
type TouchKind int

const (
	TouchTopmark TouchKind = iota
	TouchLight
	TouchDepthArea
	TouchDepthValue
	numTouchKinds
)

// Transformer applies the geographic→projected transform to a packed
// XYZ coordinate slice in place. Implemented by the render pipeline's
// projection service.
type Transformer interface {
	GeoToProjected(xyz []float64) error
}

// Object is one chart feature: geometry, extent, attributes and the
// render-side caches that hang off it (tessellated primitives,
// centroids). Geometry arrays are owned exclusively by the object.
type Object struct {
	id   uint32
	name string
	geom Geometry

	ext    Extent
	attrs  map[string]string
	scamin float64

	// Non-owning cross-references to "touching" objects, resolved by
	// id through the Store rather than held as pointers.
	touch [numTouchKinds]uint32

	// Lazily built caches. prim holds the tessellated area geometry;
	// centroids anchor labels and point symbols on area features.
	prim        *PrimitiveBatch
	centroids   [][2]float64
	centroidIdx int
	haveCents   bool

	highlight  bool
	suppressed bool
	projected  bool

	// dataSize limits how many points of the geometry are live, for
	// objects whose point count grows incrementally (ship tracks).
	// Zero means the full allocation is live.
	dataSize int
}

var nextObjectID atomic.Uint32

// NewPoint creates a point object from one XYZ coordinate.
func NewPoint(xyz [3]float64) *Object {
	return newObject(Point{XYZ: xyz})
}

// NewLine creates a polyline object. xyz is packed x,y,z and is owned
// by the object from here on.
func NewLine(xyz []float64) *Object {
	return newObject(Line{XYZ: xyz})
}

// NewArea creates a polygon object from one or more rings. rings[0]
// is the exterior. The slices are owned by the object from here on.
func NewArea(rings [][]float64) *Object {
	return newObject(Area{Rings: rings})
}

// NewMeta creates an attribute-only object with no drawable geometry.
func NewMeta() *Object {
	return newObject(Meta{})
}

func newObject(g Geometry) *Object {
	return &Object{
		id:     nextObjectID.Add(1),
		geom:   g,
		ext:    emptyExtent(),
		scamin: Unknown,
	}
}

// ID returns the unique object identifier.
func (o *Object) ID() uint32 { return o.id }

// Name returns the S-57 object class name (e.g. "DEPARE", "BOYLAT").
func (o *Object) Name() string { return o.name }

// SetName sets the object class name.
func (o *Object) SetName(name string) { o.name = name }

// Type returns the geometry variant class.
func (o *Object) Type() ObjectType { return o.geom.objectType() }

// Geometry returns the geometry variant for exhaustive switching.
func (o *Object) Geometry() Geometry { return o.geom }

// Extent returns the object's geographic extent.
func (o *Object) Extent() Extent { return o.ext }

// SetExtent sets the object's extent. Extents are canonical:
// W < E and S < N.
func (o *Object) SetExtent(ext Extent) {
	if math.IsInf(ext.W, 1) && math.IsInf(ext.E, 1) {
		panic("geodata: extent set from uninitialized bounds")
	}
	o.ext = ext
}

// Scamin returns the minimum display scale; Unknown (+Inf) when the
// object has no SCAMIN attribute.
func (o *Object) Scamin() float64 { return o.scamin }

// SetScamin sets the minimum display scale.
func (o *Object) SetScamin(s float64) { o.scamin = s }

// ResetScamin refreshes scamin from the SCAMIN attribute, falling
// back to Unknown when the attribute is absent or unset.
func (o *Object) ResetScamin() float64 {
	v, ok := o.AttributeFloat("SCAMIN")
	if !ok {
		o.scamin = Unknown
	} else {
		o.scamin = v
	}
	return o.scamin
}

// Highlight reports whether the object is cursor-highlighted.
func (o *Object) Highlight() bool { return o.highlight }

// SetHighlight sets the cursor-highlight flag.
func (o *Object) SetHighlight(on bool) { o.highlight = on }

// Suppressed reports whether display of this object is suppressed.
func (o *Object) Suppressed() bool { return o.suppressed }

// SetSuppressed sets display suppression.
func (o *Object) SetSuppressed(on bool) { o.suppressed = on }

// Projected reports whether Project has been applied.
func (o *Object) Projected() bool { return o.projected }

// Touch records a non-owning cross-reference to a related object,
// identified by id. A zero id clears the relation.
func (o *Object) SetTouch(kind TouchKind, id uint32) {
	o.touch[kind] = id
}

// TouchOf returns the id recorded for the relation kind; zero when
// unset.
func (o *Object) TouchOf(kind TouchKind) uint32 {
	return o.touch[kind]
}

// RingCount returns the number of coordinate rings: 1 for point and
// line objects, the ring count for areas, 0 for meta objects.
func (o *Object) RingCount() int {
	switch g := o.geom.(type) {
	case Point:
		return 1
	case Line:
		return 1
	case Area:
		return len(g.Rings)
	case Meta:
		return 0
	default:
		return 0
	}
}

// Ring returns the packed XYZ coordinates of ring i. Point objects
// expose a single synthetic ring of one coordinate; meta objects
// yield zero points, which is not an error. A ring index at or past
// RingCount returns ErrRingIndex.
//
// For objects with a partial data size (live tracks), the returned
// slice is clipped to the live point count.
func (o *Object) Ring(i int) ([]float64, error) {
	switch g := o.geom.(type) {
	case Point:
		if i != 0 {
			return nil, &ErrRingIndex{ID: o.id, Index: i, Count: 1}
		}
		return g.XYZ[:], nil
	case Line:
		if i != 0 {
			return nil, &ErrRingIndex{ID: o.id, Index: i, Count: 1}
		}
		return o.clipToDataSize(g.XYZ), nil
	case Area:
		if i >= len(g.Rings) {
			return nil, &ErrRingIndex{ID: o.id, Index: i, Count: len(g.Rings)}
		}
		if i == 0 {
			return o.clipToDataSize(g.Rings[0]), nil
		}
		return g.Rings[i], nil
	default: // Meta
		return nil, nil
	}
}

func (o *Object) clipToDataSize(xyz []float64) []float64 {
	if o.dataSize == 0 || o.dataSize*3 >= len(xyz) {
		return xyz
	}
	return xyz[:o.dataSize*3]
}

// DataSize returns the live point count; zero means all points.
func (o *Object) DataSize() int { return o.dataSize }

// SetDataSize sets the live point count for incrementally growing
// geometry. The count must fit the underlying allocation; meta
// objects have no geometry to grow.
func (o *Object) SetDataSize(n int) error {
	switch g := o.geom.(type) {
	case Point:
		if n > 1 {
			return &ErrDataSize{ID: o.id, Size: n, Capacity: 1}
		}
	case Line:
		if n > len(g.XYZ)/3 {
			return &ErrDataSize{ID: o.id, Size: n, Capacity: len(g.XYZ) / 3}
		}
	case Area:
		if n > len(g.Rings[0])/3 {
			return &ErrDataSize{ID: o.id, Size: n, Capacity: len(g.Rings[0]) / 3}
		}
	case Meta:
		return &ErrInvalidObjectType{ID: o.id, Type: MetaType}
	}
	o.dataSize = n
	return nil
}

// Project applies the geographic→projected transform in place to all
// rings. It is applied at most once per object.
func (o *Object) Project(t Transformer) error {
	if o.projected {
		return nil
	}
	for i := 0; i < o.RingCount(); i++ {
		xyz, err := o.Ring(i)
		if err != nil {
			return err
		}
		if len(xyz) == 0 {
			continue
		}
		if err := t.GeoToProjected(xyz); err != nil {
			return err
		}
	}
	o.projected = true
	return nil
}

// Batch returns the object's tessellated-primitive cache, or nil if
// none has been built.
func (o *Object) Batch() *PrimitiveBatch { return o.prim }

// InitBatch creates (or resets) the object's primitive cache and
// returns it.
func (o *Object) InitBatch() *PrimitiveBatch {
	if o.prim == nil {
		o.prim = NewBatch()
	} else {
		o.prim.Reset()
	}
	return o.prim
}

// DropBatch releases the primitive cache. The caller must have freed
// any GPU handle first; dropping a batch that still holds one is a
// caller contract violation.
func (o *Object) DropBatch() {
	if o.prim != nil && o.prim.Handle() != NoHandle {
		panic("geodata: dropping primitive batch with live GPU handle")
	}
	o.prim = nil
}

// PointInside reports whether (x, y) is inside the polygon described
// by the packed coordinates using the even-odd rule. closed indicates
// the ring repeats its first coordinate at the end.
func PointInside(xyz []float64, x, y float64, closed bool) bool {
	npt := len(xyz) / 3
	if npt < 3 {
		return false
	}
	in := false
	if closed {
		for i := 0; i < npt-1; i++ {
			x1, y1 := xyz[i*3], xyz[i*3+1]
			x2, y2 := xyz[(i+1)*3], xyz[(i+1)*3+1]
			if (y1 > y) != (y2 > y) && x < (x2-x1)*(y-y1)/(y2-y1)+x1 {
				in = !in
			}
		}
		return in
	}
	for i, j := 0, npt-1; i < npt; j, i = i, i+1 {
		x1, y1 := xyz[i*3], xyz[i*3+1]
		x2, y2 := xyz[j*3], xyz[j*3+1]
		if (y1 > y) != (y2 > y) && x < (x2-x1)*(y-y1)/(y2-y1)+x1 {
			in = !in
		}
	}
	return in
}

// Touches reports whether any vertex of a lies inside the area
// geometry of b. Used when pre-computing conditional-symbology touch
// relations (a light inside a depth area, a top mark over a buoy).
func Touches(a, b *Object) bool {
	if b.Type() == LineType {
		// Point-in-polygon only; vertex-on-line is not meaningful here.
		return false
	}
	pa, err := a.Ring(0)
	if err != nil || len(pa) == 0 {
		return false
	}
	pb, err := b.Ring(0)
	if err != nil || len(pb) == 0 {
		return false
	}
	for i := 0; i+2 < len(pa); i += 3 {
		if PointInside(pb, pa[i], pa[i+1], true) {
			return true
		}
	}
	return false
}

// MarkOverlap marks coordinates of obj's outer ring that coincide
// with the chain-node edge geometry by writing OverlapZ into their
// depth. Matching is tolerance-based: projection rounding makes exact
// float equality unreliable across independently projected records.
func MarkOverlap(obj, edge *Object, tol float64) int {
	ring, err := obj.Ring(0)
	if err != nil || len(ring) == 0 {
		return 0
	}
	chain, err := edge.Ring(0)
	if err != nil || len(chain) == 0 {
		return 0
	}
	marked := 0
	for i := 0; i+2 < len(ring); i += 3 {
		for j := 0; j+2 < len(chain); j += 3 {
			if math.Abs(ring[i]-chain[j]) <= tol && math.Abs(ring[i+1]-chain[j+1]) <= tol {
				ring[i+2] = OverlapZ
				marked++
				break
			}
		}
	}
	return marked
}
