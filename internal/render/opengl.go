package render

import (
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/beetlebugorg/s52/internal/geodata"
)

func init() {
	RegisterBackend("opengl", func() Backend { return &OpenGL{} })
}

// OpenGL is the fixed-function GL 2.1 backend. The caller owns the
// window and GL context; this backend only issues state, buffer and
// draw calls into the current context on the rendering goroutine.
type OpenGL struct {
	snapshot     []byte
	snapW, snapH int
	vpX, vpY     int
	vpW, vpH     int
}

func (o *OpenGL) Name() string { return "opengl" }

func (o *OpenGL) Init() error {
	if err := gl.Init(); err != nil {
		return err
	}
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.Disable(gl.DEPTH_TEST)
	slog.Info("opengl backend ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return nil
}

func (o *OpenGL) Close() {
	gl.DisableClientState(gl.VERTEX_ARRAY)
}

func (o *OpenGL) Viewport(x, y, w, h int) {
	o.vpX, o.vpY, o.vpW, o.vpH = x, y, w, h
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (o *OpenGL) LoadMatrices(modelview, projection [16]float64) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixd(&projection[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixd(&modelview[0])
}

func (o *OpenGL) SetColor(r, g, b, a float64) {
	gl.Color4d(r, g, b, a)
}

func (o *OpenGL) LineWidth(w float64) {
	gl.LineWidth(float32(w))
}

func (o *OpenGL) PointSize(s float64) {
	gl.PointSize(float32(s))
}

func (o *OpenGL) Blend(on bool) {
	if on {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.Enable(gl.LINE_SMOOTH)
	} else {
		gl.Disable(gl.BLEND)
		gl.Disable(gl.LINE_SMOOTH)
	}
}

func (o *OpenGL) Clear(r, g, b, a float64) {
	gl.ClearColor(float32(r), float32(g), float32(b), float32(a))
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (o *OpenGL) UploadVertexBuffer(verts []float64) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, ErrResourceAlloc
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*8, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return id, nil
}

func (o *OpenGL) DeleteVertexBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (o *OpenGL) DrawBuffer(id uint32, mode geodata.Topology, first, count int) {
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.VertexPointer(3, gl.DOUBLE, 0, nil)
	gl.DrawArrays(glMode(mode), int32(first), int32(count))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (o *OpenGL) DrawVertices(verts []float64, mode geodata.Topology, first, count int) {
	if len(verts) == 0 {
		return
	}
	gl.VertexPointer(3, gl.DOUBLE, 0, unsafe.Pointer(&verts[0]))
	gl.DrawArrays(glMode(mode), int32(first), int32(count))
}

func (o *OpenGL) ReadPixels(x, y, w, h int) []byte {
	if w <= 0 || h <= 0 {
		return nil
	}
	out := make([]byte, w*h*4)
	gl.ReadPixels(int32(x), int32(y), int32(w), int32(h),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(out))
	return out
}

func (o *OpenGL) Snapshot() {
	o.snapW, o.snapH = o.vpW, o.vpH
	o.snapshot = o.ReadPixels(o.vpX, o.vpY, o.vpW, o.vpH)
}

func (o *OpenGL) BlitSnapshot() {
	if o.snapshot == nil {
		return
	}
	gl.RasterPos2i(int32(o.vpX), int32(o.vpY))
	gl.DrawPixels(int32(o.snapW), int32(o.snapH),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(o.snapshot))
}

func glMode(mode geodata.Topology) uint32 {
	switch mode {
	case geodata.Points:
		return gl.POINTS
	case geodata.Lines:
		return gl.LINES
	case geodata.LineStrip:
		return gl.LINE_STRIP
	case geodata.LineLoop:
		return gl.LINE_LOOP
	case geodata.Triangles:
		return gl.TRIANGLES
	case geodata.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case geodata.TriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.POINTS
	}
}
