package geodata

import "math"

// Topology is the GPU draw mode of one DrawCommand.
type Topology int

const (
	Points Topology = iota
	Lines
	LineStrip
	LineLoop
	Triangles
	TriangleStrip
	TriangleFan
)

// String returns the draw-mode name.
func (t Topology) String() string {
	switch t {
	case Points:
		return "Points"
	case Lines:
		return "Lines"
	case LineStrip:
		return "LineStrip"
	case LineLoop:
		return "LineLoop"
	case Triangles:
		return "Triangles"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	default:
		return "Unknown"
	}
}

// DrawCommand is one GPU-ready draw call: a topology mode plus a
// vertex range into the owning batch's vertex buffer.
type DrawCommand struct {
	Mode  Topology
	First int // index of the first vertex (not float offset)
	Count int // number of vertices
}

// NoHandle marks a batch with no GPU vertex buffer.
const NoHandle = -1

// PrimitiveBatch is an append-only sequence of DrawCommands over one
// flat packed-XYZ vertex buffer. Batches follow a reset-then-append
// pattern during construction and are immutable once finalized; the
// optional GPU handle is an index into the draw-batch cache's handle
// arena, created once and reused across frames.
type PrimitiveBatch struct {
	cmds  []DrawCommand
	verts []float64 // packed x,y,z

	open   bool
	sealed bool
	handle int
}

// NewBatch creates an empty primitive batch.
func NewBatch() *PrimitiveBatch {
	return &PrimitiveBatch{handle: NoHandle}
}

// Reset empties the batch for rebuilding, keeping allocations. The
// GPU handle must have been invalidated first.
func (b *PrimitiveBatch) Reset() {
	if b.handle != NoHandle {
		panic("geodata: reset of primitive batch with live GPU handle")
	}
	b.cmds = b.cmds[:0]
	b.verts = b.verts[:0]
	b.open = false
	b.sealed = false
}

// Begin opens a new draw command with the given topology. Commands
// may not nest.
func (b *PrimitiveBatch) Begin(mode Topology) {
	if b.sealed {
		panic("geodata: append to finalized primitive batch")
	}
	if b.open {
		panic("geodata: Begin while a draw command is open")
	}
	b.cmds = append(b.cmds, DrawCommand{Mode: mode, First: len(b.verts) / 3})
	b.open = true
}

// Add appends one vertex to the open draw command.
func (b *PrimitiveBatch) Add(x, y, z float64) {
	if !b.open {
		panic("geodata: Add with no open draw command")
	}
	b.verts = append(b.verts, x, y, z)
}

// End closes the open draw command, fixing its vertex count.
func (b *PrimitiveBatch) End() {
	if !b.open {
		panic("geodata: End with no open draw command")
	}
	last := &b.cmds[len(b.cmds)-1]
	last.Count = len(b.verts)/3 - last.First
	b.open = false
}

// Finalize seals the batch against further appends.
func (b *PrimitiveBatch) Finalize() {
	if b.open {
		panic("geodata: Finalize with an open draw command")
	}
	b.sealed = true
}

// Finalized reports whether the batch is sealed.
func (b *PrimitiveBatch) Finalized() bool { return b.sealed }

// Commands returns the draw-command list. The slice is owned by the
// batch; callers must not mutate it.
func (b *PrimitiveBatch) Commands() []DrawCommand { return b.cmds }

// Vertices returns the packed XYZ vertex buffer.
func (b *PrimitiveBatch) Vertices() []float64 { return b.verts }

// VertexCount returns the number of XYZ vertices in the buffer.
func (b *PrimitiveBatch) VertexCount() int { return len(b.verts) / 3 }

// Handle returns the GPU handle arena index, or NoHandle.
func (b *PrimitiveBatch) Handle() int { return b.handle }

// SetHandle records the GPU handle arena index. A batch's vertex
// buffer never changes after its handle exists, so setting a second
// handle is a caller contract violation. Setting NoHandle releases
// the association.
func (b *PrimitiveBatch) SetHandle(h int) {
	if h != NoHandle && b.handle != NoHandle {
		panic("geodata: GPU handle already set on primitive batch")
	}
	b.handle = h
}

// Bounds returns the XY bounding box of all vertices in the batch.
// An empty batch returns an inverted box.
func (b *PrimitiveBatch) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := 0; i+2 < len(b.verts); i += 3 {
		minX = math.Min(minX, b.verts[i])
		maxX = math.Max(maxX, b.verts[i])
		minY = math.Min(minY, b.verts[i+1])
		maxY = math.Max(maxY, b.verts[i+1])
	}
	return
}
