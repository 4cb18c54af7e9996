// Package s52 renders IHO S-57 chart features according to the S-52
// presentation library model: vector symbol compilation, polygon
// tessellation, scale-aware culling and cursor picking.
//
// The package owns the rendering half of an ECDIS display. Chart
// parsing (for example with an S-57 parser) and symbology lookup (the
// S-52 conditional rules) stay outside; they feed the renderer with
// geometry and resolved draw instructions.
//
// # Basic Usage
//
//	r, err := s52.NewRenderer(s52.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	// Register the symbols your portrayal uses (from a PresLib DAI).
//	r.LoadSymbol("BOYSPP11", []s52.SymbolLayer{
//	    {Color: "CHBLK", Definition: "SW1;PU750,750;PD1250,750,1250,1250"},
//	})
//
//	// Route symbology decisions through your lookup tables.
//	r.SetPortrayal(func(o *s52.Object) []s52.Instruction {
//	    return []s52.Instruction{{Kind: s52.PointSymbol, Symbol: "BOYSPP11"}}
//	})
//
// # Rendering Workflow
//
// Load features, set the view, draw:
//
//	buoy := r.AddPoint(-70.64, 41.52, 0)
//	buoy.SetAttribute("OBJNAM", "Vineyard Sound Buoy 4")
//
//	r.SetView(41.5, -70.7, 0.25, 0) // lat, lon, range, rotation
//	r.SetViewport(0, 0, 1024, 768)
//	if err := r.Draw(); err != nil {
//	    log.Fatal(err)
//	}
//
// Symbols render at constant physical size: a buoy symbol is the same
// number of millimeters on screen at 1:10000 and at 1:500000.
//
// # Picking
//
// Cursor picking renders the scene flat in index colors off screen
// and decodes the pixels under the cursor, so pick results match the
// drawn picture exactly:
//
//	hits, err := r.Pick(mouseX, mouseY)
//	for _, h := range hits {
//	    fmt.Println(h.Object.ID(), h.Highlighted)
//	}
//
// # Backends
//
// Rendering runs against a pluggable backend. "opengl" drives a
// fixed-function GL 2.1 context supplied by the host; "software"
// rasterizes into an in-memory framebuffer and needs no GPU, which
// also makes it the backend of choice for tests and headless chart
// tile generation.
//
// # Concurrency
//
// A Renderer confines all drawing to the goroutine that owns it,
// matching the single-threaded ownership of a GL context. The feature
// store underneath is safe for concurrent readers.
package s52
