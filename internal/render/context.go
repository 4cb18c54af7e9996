package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// symbolUnitMM is the size of one S-52 vector unit: symbol geometry
// is authored on a 0.01 mm grid.
const symbolUnitMM = 0.01

// defaultDotPitchMM is used when the caller does not supply the
// display's physical dot pitch.
const defaultDotPitchMM = 0.28

// Stats counts work done during one render cycle.
type Stats struct {
	Objects       int
	DrawCalls     int
	DrawCommands  int
	Vertices      int
	TessTriangles int
	CacheHits     int
	CacheMisses   int
}

// RenderContext carries all per-cycle rendering state explicitly:
// matrix stacks, viewport, dot pitch and statistics. It is owned by
// the cycle controller for the duration of one cycle; nothing in the
// engine reaches for global state.
type RenderContext struct {
	Modelview  *MatrixStack
	Projection *MatrixStack

	vpX, vpY, vpW, vpH int
	dotPitchMM         float64

	// Projected meters per pixel under the current window.
	scaleX, scaleY float64

	scalePushes int

	Stats Stats
}

// NewRenderContext creates a context with identity transforms and the
// default dot pitch.
func NewRenderContext() *RenderContext {
	return &RenderContext{
		Modelview:  NewMatrixStack(),
		Projection: NewMatrixStack(),
		dotPitchMM: defaultDotPitchMM,
	}
}

// SetDotPitch sets the display dot pitch in millimeters per pixel.
func (c *RenderContext) SetDotPitch(mm float64) {
	if mm > 0 {
		c.dotPitchMM = mm
	}
}

// DotPitch returns the display dot pitch in millimeters per pixel.
func (c *RenderContext) DotPitch() float64 { return c.dotPitchMM }

// SetViewport sets the pixel viewport (origin at the viewport
// corner).
func (c *RenderContext) SetViewport(x, y, w, h int) {
	c.vpX, c.vpY, c.vpW, c.vpH = x, y, w, h
}

// Viewport returns the pixel viewport.
func (c *RenderContext) Viewport() (x, y, w, h int) {
	return c.vpX, c.vpY, c.vpW, c.vpH
}

// SetProjectionWindow establishes an orthographic mapping of the
// visible projected extent onto the viewport, with a rotation (in
// degrees, for course-up display) about the window center. It loads
// the projection stack and resets the modelview stack.
func (c *RenderContext) SetProjectionWindow(w, s, e, n, rotationDeg float64) {
	c.Projection.Load(mgl64.Ortho(w, e, s, n, -1, 1))

	c.Modelview.LoadIdentity()
	if rotationDeg != 0 {
		cx, cy := (w+e)/2, (s+n)/2
		c.Modelview.Mult(mgl64.Translate3D(cx, cy, 0))
		c.Modelview.Mult(mgl64.HomogRotate3DZ(rotationDeg * math.Pi / 180))
		c.Modelview.Mult(mgl64.Translate3D(-cx, -cy, 0))
	}

	if c.vpW > 0 && c.vpH > 0 {
		c.scaleX = (e - w) / float64(c.vpW)
		c.scaleY = (n - s) / float64(c.vpH)
	}
}

// Scale returns the projected meters per pixel in X and Y.
func (c *RenderContext) Scale() (sx, sy float64) { return c.scaleX, c.scaleY }

// ProjectedToPixel maps one projected coordinate to device pixels
// under the current matrices and viewport.
func (c *RenderContext) ProjectedToPixel(x, y float64) (px, py float64) {
	win := mgl64.Project(mgl64.Vec3{x, y, 0},
		c.Modelview.Top(), c.Projection.Top(), c.vpX, c.vpY, c.vpW, c.vpH)
	return win.X(), win.Y()
}

// PixelToProjected maps one device pixel back to projected space.
func (c *RenderContext) PixelToProjected(px, py float64) (x, y float64, err error) {
	obj, err := mgl64.UnProject(mgl64.Vec3{px, py, 0},
		c.Modelview.Top(), c.Projection.Top(), c.vpX, c.vpY, c.vpW, c.vpH)
	if err != nil {
		return 0, 0, err
	}
	return obj.X(), obj.Y(), nil
}

// PushScaleToPixel pushes a modelview scale so that symbol geometry,
// authored in 0.01 mm units, renders at a constant physical size
// independent of chart zoom. It brackets symbol-primitive drawing
// only and must be popped with PopScaleToPixel immediately after.
func (c *RenderContext) PushScaleToPixel() {
	sx := symbolUnitMM / c.dotPitchMM * c.scaleX
	sy := symbolUnitMM / c.dotPitchMM * c.scaleY
	c.Modelview.Push()
	c.Modelview.Mult(mgl64.Scale3D(sx, sy, 1))
	c.scalePushes++
}

// PopScaleToPixel restores the modelview after symbol drawing.
func (c *RenderContext) PopScaleToPixel() {
	if c.scalePushes == 0 {
		panic("render: PopScaleToPixel without matching push")
	}
	c.scalePushes--
	c.Modelview.Pop()
}

// Balanced reports whether all push/pop brackets have closed; checked
// when a render cycle ends.
func (c *RenderContext) Balanced() bool {
	return c.scalePushes == 0 && c.Modelview.Depth() == 0 && c.Projection.Depth() == 0
}

// MatrixProducts returns the current modelview and projection
// matrices flattened column-major for backend upload.
func (c *RenderContext) MatrixProducts() (modelview, projection [16]float64) {
	mv, pr := c.Modelview.Top(), c.Projection.Top()
	copy(modelview[:], mv[:])
	copy(projection[:], pr[:])
	return
}
