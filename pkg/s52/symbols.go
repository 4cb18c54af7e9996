package s52

import (
	"sync"

	"github.com/beetlebugorg/s52/internal/render"
)

// SymbolLayer is one drawing layer of a vector symbol: a PresLib
// instruction string and the color token it draws in. Multi-layer
// symbols draw their layers in registration order.
type SymbolLayer struct {
	Color      string
	Definition string
}

// symbolLibrary is the renderer's registry of parsed symbol
// definitions. It satisfies the engine's symbol lookup and is safe
// for concurrent readers.
type symbolLibrary struct {
	mu   sync.RWMutex
	defs map[string]*render.SymbolDef
}

func newSymbolLibrary() *symbolLibrary {
	return &symbolLibrary{defs: make(map[string]*render.SymbolDef)}
}

// Symbol implements render.SymbolSource.
func (l *symbolLibrary) Symbol(name string) (*render.SymbolDef, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.defs[name]
	if !ok {
		return nil, &render.ErrSymbolUnknown{Name: name}
	}
	return d, nil
}

// load parses and registers one symbol, replacing any previous
// definition under the same name.
func (l *symbolLibrary) load(name string, layers []SymbolLayer) error {
	def := &render.SymbolDef{Name: name}
	for _, layer := range layers {
		p, err := render.ParseProgram(name, layer.Color, layer.Definition)
		if err != nil {
			return err
		}
		def.Programs = append(def.Programs, p)
	}
	l.mu.Lock()
	l.defs[name] = def
	l.mu.Unlock()
	return nil
}

// LoadSymbol registers a vector symbol under name. Loading a name
// again replaces the old definition; call InvalidateSymbols afterwards
// so cached compilations of it are rebuilt.
func (r *Renderer) LoadSymbol(name string, layers []SymbolLayer) error {
	return r.symbols.load(name, layers)
}

// InvalidateSymbols discards every compiled symbol so the next draw
// recompiles from the current definitions. Call after reloading the
// symbol library or replacing the color palette.
func (r *Renderer) InvalidateSymbols() {
	r.engine.InvalidateSymbols()
}

// SetColor installs or replaces one color token in the palette.
func (r *Renderer) SetColor(token string, red, green, blue, alpha float64) {
	r.engine.Colors().Set(token, render.RGBA{red, green, blue, alpha})
}
