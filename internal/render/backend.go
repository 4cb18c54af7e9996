package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// Backend errors.
var (
	// ErrBackendUnknown is returned when no backend is registered
	// under the requested name.
	ErrBackendUnknown = errors.New("render: unknown backend")

	// ErrResourceAlloc is returned when the backend cannot allocate a
	// GPU resource; the render cycle may legitimately produce a
	// partial frame.
	ErrResourceAlloc = errors.New("render: resource allocation failed")
)

// Backend is the host rasterization contract: vertex-buffer upload,
// draw-batch submission, framebuffer readback and matrix upload.
// Either a fixed-function or a shader-based implementation can
// satisfy it; the engine performs all transform math itself and hands
// finished matrices down.
//
// All calls happen on the single rendering goroutine that owns the
// GPU context.
type Backend interface {
	// Name returns the backend identifier (e.g. "opengl", "software").
	Name() string

	// Init prepares the backend. Called once before any rendering.
	Init() error

	// Close releases all backend resources.
	Close()

	// Viewport sets the pixel viewport.
	Viewport(x, y, w, h int)

	// LoadMatrices uploads the modelview and projection matrices
	// (column-major).
	LoadMatrices(modelview, projection [16]float64)

	// SetColor sets the current draw color (components in [0,1]).
	SetColor(r, g, b, a float64)

	// LineWidth sets the rasterized line width in pixels.
	LineWidth(w float64)

	// PointSize sets the rasterized point size in pixels.
	PointSize(s float64)

	// Blend enables or disables alpha blending. Picking draws with
	// blending off so index colors survive readback byte-for-byte.
	Blend(on bool)

	// Clear fills the framebuffer with a color.
	Clear(r, g, b, a float64)

	// UploadVertexBuffer uploads packed XYZ vertices and returns the
	// buffer id.
	UploadVertexBuffer(verts []float64) (uint32, error)

	// DeleteVertexBuffer releases an uploaded buffer.
	DeleteVertexBuffer(id uint32)

	// DrawBuffer draws count vertices starting at first from an
	// uploaded buffer.
	DrawBuffer(id uint32, mode geodata.Topology, first, count int)

	// DrawVertices draws immediate-mode vertices without an upload.
	DrawVertices(verts []float64, mode geodata.Topology, first, count int)

	// ReadPixels returns the RGBA contents of a framebuffer block,
	// rows bottom-up. The block must lie inside the framebuffer.
	ReadPixels(x, y, w, h int) []byte

	// Snapshot saves the current framebuffer for later re-display.
	Snapshot()

	// BlitSnapshot restores the saved framebuffer, the cheap path for
	// overlay-only redraws.
	BlitSnapshot()
}

var (
	backendMu sync.Mutex
	backends  = make(map[string]func() Backend)
)

// RegisterBackend makes a backend constructor available under a name.
// Typically called from an implementation's init.
func RegisterBackend(name string, factory func() Backend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backends[name] = factory
}

// NewBackend constructs the named backend.
func NewBackend(name string) (Backend, error) {
	backendMu.Lock()
	factory, ok := backends[name]
	backendMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrBackendUnknown, name, BackendNames())
	}
	return factory(), nil
}

// BackendNames returns the registered backend names, sorted.
func BackendNames() []string {
	backendMu.Lock()
	defer backendMu.Unlock()
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
