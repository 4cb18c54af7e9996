package render

import (
	"sort"

	"github.com/beetlebugorg/s52/internal/geodata"
)

// pickBlockRadius is the half-size of the cursor readback block.
const pickBlockRadius = 3

// Picker implements color-index picking. During a pick cycle every
// candidate object is drawn flat in a color that encodes its draw
// index; reading the framebuffer under the cursor and decoding the
// colors found there recovers the objects, in draw order.
type Picker struct {
	objects []*geodata.Object
}

// Reset discards the previous cycle's assignments.
func (p *Picker) Reset() {
	p.objects = p.objects[:0]
}

// Enter registers an object for the current pick cycle and returns
// the index color it must be drawn with. Colors are assigned in
// strictly increasing order, are never reused within a cycle, and are
// always fully opaque so blending cannot perturb the readback.
func (p *Picker) Enter(o *geodata.Object) RGBA {
	p.objects = append(p.objects, o)
	return indexColor(len(p.objects))
}

// Count reports the number of objects entered this cycle.
func (p *Picker) Count() int { return len(p.objects) }

// indexColor encodes a 1-based draw index into an opaque RGBA color.
// Index 0 is reserved for the cleared background.
func indexColor(idx int) RGBA {
	r := byte(idx >> 16)
	g := byte(idx >> 8)
	b := byte(idx)
	return RGBA{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// decodeIndex recovers the 1-based draw index from one readback
// pixel, or 0 when the pixel is background or not fully opaque.
func decodeIndex(r, g, b, a byte) int {
	if a != 0xff {
		return 0
	}
	return int(r)<<16 | int(g)<<8 | int(b)
}

// Hit is one picked object. Highlighted is set on the hit drawn last,
// which under painter's order is the one shown on top.
type Hit struct {
	Object      *geodata.Object
	Highlighted bool
}

// Resolve decodes an RGBA readback block into the ordered hit list.
// pixels is w*h*4 bytes as returned by Backend.ReadPixels; a nil
// block (cursor outside the viewport) resolves to no hits.
func (p *Picker) Resolve(pixels []byte) []Hit {
	if len(pixels) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	for i := 0; i+3 < len(pixels); i += 4 {
		idx := decodeIndex(pixels[i], pixels[i+1], pixels[i+2], pixels[i+3])
		if idx > 0 && idx <= len(p.objects) {
			seen[idx] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	order := make([]int, 0, len(seen))
	for idx := range seen {
		order = append(order, idx)
	}
	sort.Ints(order)
	hits := make([]Hit, len(order))
	for i, idx := range order {
		hits[i] = Hit{Object: p.objects[idx-1]}
	}
	hits[len(hits)-1].Highlighted = true
	return hits
}
