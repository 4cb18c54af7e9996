package render

import "log/slog"

// RGBA is one display color, components in [0,1].
type RGBA [4]float64

// ColorTable maps S-52 color tokens (CHBLK, LITRD, DEPDW, ...) to
// display colors. The portrayal library supplies a palette per
// display mode (day/dusk/night); the table below seeds a usable day
// palette so the engine renders before any palette load, and a
// library reload replaces entries wholesale.
type ColorTable struct {
	colors map[string]RGBA
}

// NewColorTable creates a table seeded with the day palette.
func NewColorTable() *ColorTable {
	t := &ColorTable{colors: make(map[string]RGBA)}
	for tok, c := range dayPalette {
		t.colors[tok] = c
	}
	return t
}

// RGBA resolves a color token; unknown tokens resolve to a loud
// magenta with a diagnostic rather than failing the draw.
func (t *ColorTable) RGBA(token string) RGBA {
	if c, ok := t.colors[token]; ok {
		return c
	}
	slog.Debug("unknown color token", "token", token)
	return RGBA{1, 0, 1, 1}
}

// Set installs or replaces one token.
func (t *ColorTable) Set(token string, c RGBA) {
	t.colors[token] = c
}

// Replace swaps the whole palette (display-mode change).
func (t *ColorTable) Replace(colors map[string]RGBA) {
	t.colors = make(map[string]RGBA, len(colors))
	for tok, c := range colors {
		t.colors[tok] = c
	}
}

// dayPalette approximates the S-52 day bright color scheme.
var dayPalette = map[string]RGBA{
	"NODTA": {0.64, 0.64, 0.64, 1},
	"CHBLK": {0.0, 0.0, 0.0, 1},
	"CHGRD": {0.43, 0.46, 0.51, 1},
	"CHGRF": {0.67, 0.70, 0.72, 1},
	"CHRED": {0.95, 0.00, 0.20, 1},
	"CHGRN": {0.00, 0.98, 0.00, 1},
	"CHYLW": {0.95, 0.93, 0.00, 1},
	"CHMGD": {0.77, 0.08, 0.77, 1},
	"CHWHT": {1.0, 1.0, 1.0, 1},
	"SCLBR": {0.96, 0.60, 0.00, 1},
	"CHCOR": {0.96, 0.60, 0.00, 1},
	"LITRD": {0.95, 0.00, 0.20, 1},
	"LITGN": {0.00, 0.98, 0.00, 1},
	"LITYW": {0.95, 0.93, 0.00, 1},
	"ISDNG": {0.77, 0.08, 0.77, 1},
	"DNGHL": {0.95, 0.00, 0.20, 1},
	"TRFCD": {0.77, 0.08, 0.77, 1},
	"TRFCF": {0.77, 0.08, 0.77, 1},
	"LANDA": {0.78, 0.72, 0.52, 1},
	"LANDF": {0.54, 0.45, 0.30, 1},
	"CSTLN": {0.33, 0.36, 0.40, 1},
	"SNDG1": {0.48, 0.53, 0.59, 1},
	"SNDG2": {0.0, 0.0, 0.0, 1},
	"DEPSC": {0.33, 0.36, 0.40, 1},
	"DEPCN": {0.43, 0.46, 0.51, 1},
	"DEPDW": {1.0, 1.0, 1.0, 1},
	"DEPMD": {0.85, 0.91, 0.97, 1},
	"DEPMS": {0.72, 0.83, 0.95, 1},
	"DEPVS": {0.60, 0.76, 0.92, 1},
	"DEPIT": {0.55, 0.72, 0.61, 1},
	"RADHI": {0.00, 0.98, 0.00, 1},
	"RADLO": {0.00, 0.49, 0.00, 1},
	"ARPAT": {0.00, 0.49, 0.49, 1},
	"NINFO": {0.96, 0.60, 0.00, 1},
	"RESBL": {0.00, 0.00, 0.98, 1},
	"ADINF": {0.95, 0.93, 0.00, 1},
	"DOCMA": {0.77, 0.08, 0.77, 1},
	"CURSR": {0.96, 0.60, 0.00, 1},
	"CHBRN": {0.54, 0.45, 0.30, 1},
	"OUTLW": {0.0, 0.0, 0.0, 1},
	"OUTLL": {0.78, 0.72, 0.52, 1},
	"PLRTE": {0.86, 0.37, 0.10, 1},
	"APLRT": {0.96, 0.60, 0.00, 1},
	"UINFD": {0.0, 0.0, 0.0, 1},
	"UINFF": {0.48, 0.53, 0.59, 1},
	"UIBCK": {1.0, 1.0, 1.0, 1},
	"UIAFD": {0.60, 0.76, 0.92, 1},
	"UINFR": {0.95, 0.00, 0.20, 1},
	"UINFG": {0.00, 0.98, 0.00, 1},
	"UINFO": {0.96, 0.60, 0.00, 1},
	"UINFB": {0.00, 0.00, 0.98, 1},
	"UINFM": {0.77, 0.08, 0.77, 1},
	"UIBDR": {0.48, 0.53, 0.59, 1},
	"UINFY": {0.95, 0.93, 0.00, 1},
}
