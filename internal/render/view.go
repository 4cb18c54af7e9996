package render

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// metersPerDegreeLat is the nominal meridian arc length of one degree
// of latitude, used to seed the projected window height before the
// projection refines it.
const metersPerDegreeLat = 60.0 * 1852.0

// ViewState holds the chart view: center, angular range, rotation and
// viewport, plus the geographic and projected extents derived from
// them. It is mutated only between render cycles, never during one.
type ViewState struct {
	centerLat float64
	centerLon float64
	rangeDeg  float64 // half the north-south span, in degrees of latitude
	rotation  float64 // degrees clockwise from north-up

	vpX, vpY, vpW, vpH int

	geoExt geodata.Extent // derived geographic extent
	prjW   float64        // derived projected extent
	prjS   float64
	prjE   float64
	prjN   float64

	// Display scale denominator (e.g. 50000 for 1:50000), derived
	// from the projected window and the physical viewport size.
	scaleDenom float64

	derived bool
}

// NewViewState creates a view centered on the null island with a one
// degree range and a default viewport, pending SetView/SetViewport.
func NewViewState() *ViewState {
	return &ViewState{rangeDeg: 1, vpW: 800, vpH: 600}
}

// SetView sets the view center (degrees), angular range (degrees of
// latitude from center to the top of the viewport) and rotation
// (degrees clockwise).
func (v *ViewState) SetView(lat, lon, rangeDeg, rotationDeg float64) {
	v.centerLat = lat
	v.centerLon = lon
	v.rangeDeg = rangeDeg
	v.rotation = rotationDeg
	v.derived = false
}

// SetViewport sets the pixel viewport.
func (v *ViewState) SetViewport(x, y, w, h int) {
	v.vpX, v.vpY, v.vpW, v.vpH = x, y, w, h
	v.derived = false
}

// Center returns the view center in degrees.
func (v *ViewState) Center() (lat, lon float64) { return v.centerLat, v.centerLon }

// Range returns the angular range in degrees of latitude.
func (v *ViewState) Range() float64 { return v.rangeDeg }

// Rotation returns the view rotation in degrees.
func (v *ViewState) Rotation() float64 { return v.rotation }

// Viewport returns the pixel viewport.
func (v *ViewState) Viewport() (x, y, w, h int) { return v.vpX, v.vpY, v.vpW, v.vpH }

// Derive computes the projected and geographic extents of the view
// through the projection service, and the display scale denominator
// from the viewport's physical size. dotPitchMM is the display dot
// pitch.
func (v *ViewState) Derive(p Projection, dotPitchMM float64) error {
	center := []float64{v.centerLon, v.centerLat, 0}
	if err := p.GeoToProjected(center); err != nil {
		return err
	}
	top := []float64{v.centerLon, v.centerLat + v.rangeDeg, 0}
	if err := p.GeoToProjected(top); err != nil {
		return err
	}

	halfH := math.Abs(top[1] - center[1])
	if halfH == 0 {
		halfH = v.rangeDeg * metersPerDegreeLat
	}
	aspect := 1.0
	if v.vpH > 0 {
		aspect = float64(v.vpW) / float64(v.vpH)
	}
	halfW := halfH * aspect

	v.prjW, v.prjE = center[0]-halfW, center[0]+halfW
	v.prjS, v.prjN = center[1]-halfH, center[1]+halfH

	// Geographic extent from the projected corners. Under rotation
	// the axis-aligned window no longer bounds the visible area, so
	// inflate to the window diagonal.
	gw, gs := v.prjW, v.prjS
	ge, gn := v.prjE, v.prjN
	if v.rotation != 0 {
		cx, cy := (gw+ge)/2, (gs+gn)/2
		r := math.Hypot(halfW, halfH)
		gw, ge = cx-r, cx+r
		gs, gn = cy-r, cy+r
	}
	lonW, latS, err := projectedToGeo(p, gw, gs)
	if err != nil {
		return err
	}
	lonE, latN, err := projectedToGeo(p, ge, gn)
	if err != nil {
		return err
	}
	v.geoExt = geodata.Extent{W: lonW, S: latS, E: lonE, N: latN}

	if v.vpH > 0 && dotPitchMM > 0 {
		screenMeters := float64(v.vpH) * dotPitchMM / 1000.0
		v.scaleDenom = (2 * halfH) / screenMeters
	}

	v.derived = true
	return nil
}

func projectedToGeo(p Projection, x, y float64) (lon, lat float64, err error) {
	return p.ProjectedToGeo(x, y)
}

// Derived reports whether extents are current for the view settings.
func (v *ViewState) Derived() bool { return v.derived }

// GeoExtent returns the derived geographic extent.
func (v *ViewState) GeoExtent() geodata.Extent { return v.geoExt }

// PrjExtent returns the derived projected extent (W, S, E, N).
func (v *ViewState) PrjExtent() (w, s, e, n float64) {
	return v.prjW, v.prjS, v.prjE, v.prjN
}

// ScaleDenom returns the display scale denominator.
func (v *ViewState) ScaleDenom() float64 { return v.scaleDenom }

// IsOffscreen reports whether the object's geographic extent falls
// entirely outside the view. Extents are compared as lat/lng
// rectangles on the sphere so views spanning the antimeridian cull
// correctly. Objects whose extent was never set are offscreen.
func (v *ViewState) IsOffscreen(o *geodata.Object) bool {
	ext := o.Extent()
	if !ext.Valid() {
		return true
	}
	return !s2RectFromExtent(v.geoExt).Intersects(s2RectFromExtent(ext))
}

// IsSuppressed reports whether the object is excluded from display at
// the current scale: either explicitly suppressed, or the display
// scale is smaller than the object's minimum display scale (SCAMIN).
func (v *ViewState) IsSuppressed(o *geodata.Object) bool {
	if o.Suppressed() {
		return true
	}
	return v.scaleDenom > o.Scamin()
}

func s2RectFromExtent(e geodata.Extent) s2.Rect {
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(e.S, e.W))
	return r.AddPoint(s2.LatLngFromDegrees(e.N, e.E))
}
