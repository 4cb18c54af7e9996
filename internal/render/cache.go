package render

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// lineWidthUnitMM is the physical width of one pen-width unit.
const lineWidthUnitMM = 0.3

// SymbolKey identifies one cached symbol compilation.
type SymbolKey struct {
	Name    string
	Variant string
}

func (k SymbolKey) String() string {
	if k.Variant == "" {
		return k.Name
	}
	return k.Name + "/" + k.Variant
}

// SymbolSource supplies symbol definitions by name. The portrayal
// library (the DAI file loader) implements this; tests supply stubs.
type SymbolSource interface {
	Symbol(name string) (*SymbolDef, error)
}

// ErrSymbolUnknown is returned when the symbol source has no
// definition for a requested name.
type ErrSymbolUnknown struct {
	Name string
}

func (e *ErrSymbolUnknown) Error() string {
	return fmt.Sprintf("render: unknown symbol %q", e.Name)
}

// HandleArena owns backend vertex-buffer ids and hands out stable
// integer slots. Batches record the slot, never the raw id, so a
// Reset can drop every backend buffer in one sweep and leave the
// slots dangling; the next draw through a dangling slot recompiles.
type HandleArena struct {
	ids []uint32
}

// Alloc stores a backend buffer id and returns its slot.
func (a *HandleArena) Alloc(id uint32) int {
	a.ids = append(a.ids, id)
	return len(a.ids) - 1
}

// Get resolves a slot to its backend id. Slots from before the last
// Reset resolve to ok=false.
func (a *HandleArena) Get(slot int) (uint32, bool) {
	if slot < 0 || slot >= len(a.ids) {
		return 0, false
	}
	return a.ids[slot], true
}

// Len reports the number of live slots.
func (a *HandleArena) Len() int { return len(a.ids) }

// Reset deletes every backend buffer and clears the slot table.
func (a *HandleArena) Reset(b Backend) {
	for _, id := range a.ids {
		b.DeleteVertexBuffer(id)
	}
	a.ids = a.ids[:0]
}

// cacheEntry is one compiled symbol: the per-program layers plus the
// arena slot each layer's vertex buffer occupies.
type cacheEntry struct {
	layers []*CompiledLayer
	slots  []int
	dirty  bool
}

// BatchCache memoizes symbol compilation and vertex upload. A symbol
// is tessellated and compiled once per library generation; repeat
// draws re-issue the uploaded buffers. Invalidate marks every entry
// dirty and resets the handle arena, which is how a portrayal library
// reload or a GL context loss is absorbed.
type BatchCache struct {
	mu       sync.Mutex
	source   SymbolSource
	compiler *Compiler
	arena    HandleArena
	entries  map[SymbolKey]*cacheEntry

	// Compiles counts compile passes since construction. A warm
	// cache draw leaves it unchanged.
	Compiles int
	// Hits counts draws served without compiling.
	Hits int
}

// NewBatchCache creates an empty cache over the given symbol source.
func NewBatchCache(source SymbolSource, compiler *Compiler) *BatchCache {
	return &BatchCache{
		source:   source,
		compiler: compiler,
		entries:  make(map[SymbolKey]*cacheEntry),
	}
}

// Invalidate marks all entries dirty and releases every backend
// buffer through the arena.
func (c *BatchCache) Invalidate(b Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.dirty = true
		e.slots = nil
		for _, l := range e.layers {
			l.Batch.SetHandle(geodata.NoHandle)
		}
	}
	c.arena.Reset(b)
	slog.Debug("symbol cache invalidated", "entries", len(c.entries))
}

// Len reports the number of cached symbols, dirty or not.
func (c *BatchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// entry returns a clean compiled entry for key, compiling and
// uploading if the cache has none or the cached one is dirty.
func (c *BatchCache) entry(b Backend, key SymbolKey) (*cacheEntry, error) {
	e := c.entries[key]
	if e != nil && !e.dirty {
		c.Hits++
		return e, nil
	}
	def, err := c.source.Symbol(key.Name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, &ErrSymbolUnknown{Name: key.Name}
	}
	if e == nil {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	e.layers = e.layers[:0]
	e.slots = e.slots[:0]
	for _, p := range def.Programs {
		batch := geodata.NewBatch()
		layer := c.compiler.Compile(p, batch)
		id, err := b.UploadVertexBuffer(batch.Vertices())
		if err != nil {
			return nil, err
		}
		slot := c.arena.Alloc(id)
		batch.SetHandle(slot)
		e.layers = append(e.layers, layer)
		e.slots = append(e.slots, slot)
	}
	e.dirty = false
	c.Compiles++
	return e, nil
}

// Draw compiles key on demand and issues its layers. colorFor maps a
// layer's color token to the display color; the picking pass supplies
// a function that ignores the token and returns the object's index
// color instead.
func (c *BatchCache) Draw(ctx *RenderContext, b Backend, key SymbolKey, colorFor func(token string) RGBA) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.entry(b, key)
	if err != nil {
		return err
	}
	widthPx := func(units float64) float64 {
		px := units * lineWidthUnitMM / ctx.DotPitch()
		if px < 1 {
			px = 1
		}
		return px
	}
	for i, layer := range e.layers {
		id, ok := c.arena.Get(e.slots[i])
		if !ok {
			e.dirty = true
			return &ErrResourceLost{Symbol: key.String()}
		}
		col := colorFor(layer.Color)
		b.SetColor(col[0], col[1], col[2], col[3])
		b.LineWidth(widthPx(1))
		spans := layer.Widths
		for ci, cmd := range layer.Batch.Commands() {
			for len(spans) > 0 && spans[0].FromCommand <= ci {
				b.LineWidth(widthPx(spans[0].Width))
				spans = spans[1:]
			}
			b.DrawBuffer(id, cmd.Mode, cmd.First, cmd.Count)
			ctx.Stats.DrawCalls++
		}
	}
	return nil
}

// ErrResourceLost reports a draw through an arena slot that was
// reclaimed by a Reset before the entry was marked dirty.
type ErrResourceLost struct {
	Symbol string
}

func (e *ErrResourceLost) Error() string {
	return fmt.Sprintf("render: vertex buffer for symbol %q was reclaimed", e.Symbol)
}
