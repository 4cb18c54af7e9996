package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ctessum/geom/proj"
)

// ErrProjectionNotReady is returned when a coordinate transform is
// requested before the projection service has been initialized.
var ErrProjectionNotReady = errors.New("render: projection not initialized")

// Projection is the geodetic projection service consumed by the
// coordinate pipeline. Geographic coordinates are lon/lat degrees;
// projected coordinates are meters.
type Projection interface {
	// Initialize prepares the projection. It must be called before
	// any transform.
	Initialize() error

	// GeoToProjected transforms packed XYZ coordinates in place from
	// geographic to projected space. Z is untouched.
	GeoToProjected(xyz []float64) error

	// ProjectedToGeo transforms one projected coordinate back to
	// geographic space.
	ProjectedToGeo(x, y float64) (lon, lat float64, err error)
}

// MercatorProjection projects geographic coordinates through a
// Mercator spatial reference centered on the chart view, the
// projection the reference display uses for all chart rendering:
//
//	+proj=merc +lat_ts=<lat> +lon_0=<lon> +ellps=WGS84
type MercatorProjection struct {
	lat, lon float64

	fwd proj.Transformer
	inv proj.Transformer
}

// NewMercator creates a Mercator projection with true scale at lat
// and central meridian lon. Initialize must be called before use.
func NewMercator(lat, lon float64) *MercatorProjection {
	return &MercatorProjection{lat: lat, lon: lon}
}

// Initialize parses the spatial references and builds the forward and
// inverse transforms.
func (m *MercatorProjection) Initialize() error {
	merc, err := proj.Parse(fmt.Sprintf("+proj=merc +lat_ts=%f +lon_0=%f +ellps=WGS84", m.lat, m.lon))
	if err != nil {
		return fmt.Errorf("render: parsing mercator spatial reference: %w", err)
	}
	geo, err := proj.Parse("+proj=longlat +ellps=WGS84")
	if err != nil {
		return fmt.Errorf("render: parsing geographic spatial reference: %w", err)
	}
	fwd, err := geo.NewTransform(merc)
	if err != nil {
		return fmt.Errorf("render: building forward transform: %w", err)
	}
	inv, err := merc.NewTransform(geo)
	if err != nil {
		return fmt.Errorf("render: building inverse transform: %w", err)
	}
	m.fwd, m.inv = fwd, inv
	slog.Debug("projection initialized", "lat_ts", m.lat, "lon_0", m.lon)
	return nil
}

// Initialized reports whether Initialize has completed.
func (m *MercatorProjection) Initialized() bool { return m.fwd != nil }

// GeoToProjected transforms packed lon/lat/Z triplets in place to
// projected meters.
func (m *MercatorProjection) GeoToProjected(xyz []float64) error {
	if m.fwd == nil {
		return ErrProjectionNotReady
	}
	for i := 0; i+2 < len(xyz); i += 3 {
		x, y, err := m.fwd(xyz[i], xyz[i+1])
		if err != nil {
			return fmt.Errorf("render: projecting (%f, %f): %w", xyz[i], xyz[i+1], err)
		}
		xyz[i], xyz[i+1] = x, y
	}
	return nil
}

// ProjectedToGeo transforms one projected coordinate to lon/lat
// degrees.
func (m *MercatorProjection) ProjectedToGeo(x, y float64) (lon, lat float64, err error) {
	if m.inv == nil {
		return 0, 0, ErrProjectionNotReady
	}
	lon, lat, err = m.inv(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("render: unprojecting (%f, %f): %w", x, y, err)
	}
	return lon, lat, nil
}
