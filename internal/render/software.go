package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/beetlebugorg/s52/internal/geodata"
)

func init() {
	RegisterBackend("software", func() Backend { return NewSoftware(800, 600) })
}

// Software is a CPU raster backend. It runs the same transform and
// draw protocol as the GPU backends against an in-memory RGBA
// framebuffer, which makes the full render and pick paths testable
// without a GL context. Rasterization is deliberately plain: single
// pixel points and lines, edge-function triangle fill, no
// antialiasing.
type Software struct {
	w, h int
	fb   []byte // RGBA, rows bottom-up
	snap []byte

	modelview  mgl64.Mat4
	projection mgl64.Mat4
	vpX, vpY   int
	vpW, vpH   int

	color [4]byte
	blend bool

	buffers map[uint32][]float64
	nextID  uint32

	// Counters inspected by tests and statistics.
	DrawCalls int
	Uploads   int
}

// NewSoftware creates a software backend with the given framebuffer
// size.
func NewSoftware(w, h int) *Software {
	s := &Software{
		w: w, h: h,
		fb:         make([]byte, w*h*4),
		modelview:  mgl64.Ident4(),
		projection: mgl64.Ident4(),
		vpW:        w, vpH: h,
		buffers: make(map[uint32][]float64),
	}
	s.color = [4]byte{255, 255, 255, 255}
	return s
}

func (s *Software) Name() string { return "software" }

func (s *Software) Init() error { return nil }

func (s *Software) Close() {
	s.buffers = make(map[uint32][]float64)
}

func (s *Software) Viewport(x, y, w, h int) {
	s.vpX, s.vpY, s.vpW, s.vpH = x, y, w, h
}

func (s *Software) LoadMatrices(modelview, projection [16]float64) {
	s.modelview = mgl64.Mat4(modelview)
	s.projection = mgl64.Mat4(projection)
}

func (s *Software) SetColor(r, g, b, a float64) {
	s.color = [4]byte{clampByte(r), clampByte(g), clampByte(b), clampByte(a)}
}

func clampByte(v float64) byte {
	return byte(math.Round(math.Min(1, math.Max(0, v)) * 255))
}

func (s *Software) LineWidth(float64) {}
func (s *Software) PointSize(float64) {}

func (s *Software) Blend(on bool) { s.blend = on }

func (s *Software) Clear(r, g, b, a float64) {
	px := [4]byte{clampByte(r), clampByte(g), clampByte(b), clampByte(a)}
	for i := 0; i < len(s.fb); i += 4 {
		copy(s.fb[i:i+4], px[:])
	}
}

func (s *Software) UploadVertexBuffer(verts []float64) (uint32, error) {
	s.nextID++
	own := make([]float64, len(verts))
	copy(own, verts)
	s.buffers[s.nextID] = own
	s.Uploads++
	return s.nextID, nil
}

func (s *Software) DeleteVertexBuffer(id uint32) {
	delete(s.buffers, id)
}

func (s *Software) DrawBuffer(id uint32, mode geodata.Topology, first, count int) {
	verts, ok := s.buffers[id]
	if !ok {
		return
	}
	s.DrawVertices(verts, mode, first, count)
}

func (s *Software) DrawVertices(verts []float64, mode geodata.Topology, first, count int) {
	s.DrawCalls++
	// Transform the addressed range to pixels up front.
	px := make([][2]float64, 0, count)
	for i := first; i < first+count && (i*3+2) < len(verts); i++ {
		win := mgl64.Project(mgl64.Vec3{verts[i*3], verts[i*3+1], 0},
			s.modelview, s.projection, s.vpX, s.vpY, s.vpW, s.vpH)
		px = append(px, [2]float64{win.X(), win.Y()})
	}

	switch mode {
	case geodata.Points:
		for _, p := range px {
			s.plot(int(math.Round(p[0])), int(math.Round(p[1])))
		}
	case geodata.Lines:
		for i := 0; i+1 < len(px); i += 2 {
			s.line(px[i], px[i+1])
		}
	case geodata.LineStrip:
		for i := 0; i+1 < len(px); i++ {
			s.line(px[i], px[i+1])
		}
	case geodata.LineLoop:
		for i := 0; i+1 < len(px); i++ {
			s.line(px[i], px[i+1])
		}
		if len(px) > 2 {
			s.line(px[len(px)-1], px[0])
		}
	case geodata.Triangles:
		for i := 0; i+2 < len(px); i += 3 {
			s.triangle(px[i], px[i+1], px[i+2])
		}
	case geodata.TriangleStrip:
		for i := 0; i+2 < len(px); i++ {
			s.triangle(px[i], px[i+1], px[i+2])
		}
	case geodata.TriangleFan:
		for i := 1; i+1 < len(px); i++ {
			s.triangle(px[0], px[i], px[i+1])
		}
	}
}

func (s *Software) ReadPixels(x, y, w, h int) []byte {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > s.w || y+h > s.h {
		return nil
	}
	out := make([]byte, w*h*4)
	for row := 0; row < h; row++ {
		src := ((y+row)*s.w + x) * 4
		copy(out[row*w*4:(row+1)*w*4], s.fb[src:src+w*4])
	}
	return out
}

func (s *Software) Snapshot() {
	if s.snap == nil {
		s.snap = make([]byte, len(s.fb))
	}
	copy(s.snap, s.fb)
}

func (s *Software) BlitSnapshot() {
	if s.snap != nil {
		copy(s.fb, s.snap)
	}
}

// Size returns the framebuffer dimensions.
func (s *Software) Size() (w, h int) { return s.w, s.h }

func (s *Software) plot(x, y int) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	i := (y*s.w + x) * 4
	copy(s.fb[i:i+4], s.color[:])
}

func (s *Software) line(a, b [2]float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.plot(int(math.Round(a[0]+t*dx)), int(math.Round(a[1]+t*dy)))
	}
}

func (s *Software) triangle(a, b, c [2]float64) {
	minX := int(math.Floor(math.Min(a[0], math.Min(b[0], c[0]))))
	maxX := int(math.Ceil(math.Max(a[0], math.Max(b[0], c[0]))))
	minY := int(math.Floor(math.Min(a[1], math.Min(b[1], c[1]))))
	maxY := int(math.Ceil(math.Max(a[1], math.Max(b[1], c[1]))))

	area := edgeFn(a, b, c)
	if math.Abs(area) < 1e-12 {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := [2]float64{float64(x) + 0.5, float64(y) + 0.5}
			w0 := edgeFn(b, c, p) / area
			w1 := edgeFn(c, a, p) / area
			w2 := edgeFn(a, b, p) / area
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				s.plot(x, y)
			}
		}
	}
}

func edgeFn(a, b, p [2]float64) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}
