package s52

// Options configures a Renderer.
type Options struct {
	// Backend selects the rasterization backend: "opengl" or
	// "software".
	Backend string

	// Width and Height size the initial viewport in pixels.
	Width  int
	Height int

	// DotPitchMM is the display's physical dot pitch in millimeters
	// per pixel, used to render symbols and line widths at their
	// chartered physical size. Zero keeps the default of 0.28 mm.
	DotPitchMM float64

	// PickRadius is the half-width in pixels of the cursor block
	// sampled by Pick. Zero keeps the default of 3 (a 7x7 block).
	PickRadius int

	// CircleSlices is the tessellation rate for symbol circles.
	// Zero keeps the default of 32.
	CircleSlices int
}

// DefaultOptions returns options for a 1024x768 software-rendered
// display at the default dot pitch.
func DefaultOptions() Options {
	return Options{
		Backend: "software",
		Width:   1024,
		Height:  768,
	}
}
