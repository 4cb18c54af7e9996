package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Vector symbol language. S-52 PresLib symbols (SY/LC/AC patterns)
// are authored as HPGL-like instruction strings on a 0.01 mm grid:
//
//	SPA;SW1;PU750,750;PD1250,750,1250,1250;CI250;...
//
// The parser turns one such string into a VectorProgram, an immutable
// token stream the compiler interprets into a primitive batch. One
// symbol may carry several programs (outline and fill layers), each
// with its own color token.

// Opcode is one vector-program instruction kind.
type Opcode int

const (
	// OpPenUp lifts the pen, flushing the open stroke.
	OpPenUp Opcode = iota
	// OpPenDown moves the pen to (X, Y) drawing.
	OpPenDown
	// OpCircleOutline draws a circle outline of radius R at the pen.
	OpCircleOutline
	// OpCircleFill draws a filled disk of radius R at the pen.
	OpCircleFill
	// OpBeginFill tessellates the accumulated points as a solid fill.
	OpBeginFill
	// OpPenWidth sets the pen width to W (units of 0.3 mm).
	OpPenWidth
	// OpTogglePolyMode toggles outline vs. filled polygon mode.
	OpTogglePolyMode
	// OpNewMarker separates independent sub-symbols in one program.
	OpNewMarker
)

// Instr is one vector instruction with its operands.
type Instr struct {
	Op    Opcode
	X, Y  float64 // OpPenDown target, OpPenUp reposition
	R     float64 // circle radius
	W     float64 // OpPenWidth
	Move  bool    // OpPenUp: reposition the pen to (X, Y) after flushing
	AtPen bool    // OpPenDown: draw a dot at the current pen position
}

// VectorProgram is an immutable instruction stream for one symbol
// layer.
type VectorProgram struct {
	Name   string
	Color  string // S-52 color token, e.g. "LITRD", "CHBLK"
	Instrs []Instr
}

// SymbolDef is one named symbol: one or more vector programs drawn in
// order (outline layer, fill layer, ...).
type SymbolDef struct {
	Name     string
	Programs []*VectorProgram
}

// ErrBadProgram indicates an unparseable symbol definition string
type ErrBadProgram struct {
	Name   string
	Token  string
	Reason string
}

func (e *ErrBadProgram) Error() string {
	return fmt.Sprintf("symbol %q: bad vector instruction %q: %s", e.Name, e.Token, e.Reason)
}

// ParseProgram decodes one PresLib vector definition string into a
// VectorProgram. color is the layer's S-52 color token. Instruction
// strings come from a pre-validated symbol library, so only framing
// errors are reported; a genuinely unknown opcode at compile time is
// a library defect and fatal there, not here.
func ParseProgram(name, color, def string) (*VectorProgram, error) {
	p := &VectorProgram{Name: name, Color: color}
	polyOpen := false

	for _, tok := range strings.Split(def, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if len(tok) < 2 {
			return nil, &ErrBadProgram{Name: name, Token: tok, Reason: "truncated"}
		}
		op, arg := tok[:2], strings.TrimSpace(tok[2:])
		switch op {
		case "SP": // select pen: starts a new sub-symbol stroke group
			p.Instrs = append(p.Instrs, Instr{Op: OpNewMarker})
		case "ST": // transparency; no geometric effect
		case "SW":
			w, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, &ErrBadProgram{Name: name, Token: tok, Reason: "bad width"}
			}
			p.Instrs = append(p.Instrs, Instr{Op: OpPenWidth, W: w})
		case "PU":
			if arg == "" {
				p.Instrs = append(p.Instrs, Instr{Op: OpPenUp})
				break
			}
			// A PU with coordinates flushes and repositions without
			// drawing; additional pairs draw from there.
			xy, err := parsePairs(arg)
			if err != nil {
				return nil, &ErrBadProgram{Name: name, Token: tok, Reason: err.Error()}
			}
			p.Instrs = append(p.Instrs, Instr{Op: OpPenUp, Move: true, X: xy[0], Y: xy[1]})
			for i := 2; i+1 < len(xy); i += 2 {
				p.Instrs = append(p.Instrs, Instr{Op: OpPenDown, X: xy[i], Y: xy[i+1]})
			}
		case "PD":
			if arg == "" {
				// A bare PD draws a dot at the pen position.
				p.Instrs = append(p.Instrs, Instr{Op: OpPenDown, AtPen: true})
				break
			}
			xy, err := parsePairs(arg)
			if err != nil {
				return nil, &ErrBadProgram{Name: name, Token: tok, Reason: err.Error()}
			}
			for i := 0; i+1 < len(xy); i += 2 {
				p.Instrs = append(p.Instrs, Instr{Op: OpPenDown, X: xy[i], Y: xy[i+1]})
			}
		case "CI":
			r, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, &ErrBadProgram{Name: name, Token: tok, Reason: "bad radius"}
			}
			if polyOpen {
				p.Instrs = append(p.Instrs, Instr{Op: OpCircleFill, R: r})
			} else {
				p.Instrs = append(p.Instrs, Instr{Op: OpCircleOutline, R: r})
			}
		case "PM":
			p.Instrs = append(p.Instrs, Instr{Op: OpTogglePolyMode})
			polyOpen = !polyOpen
		case "FP", "EP":
			p.Instrs = append(p.Instrs, Instr{Op: OpBeginFill})
		default:
			return nil, &ErrBadProgram{Name: name, Token: tok, Reason: "unknown instruction"}
		}
	}
	return p, nil
}

func parsePairs(arg string) ([]float64, error) {
	fields := strings.Split(arg, ",")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd coordinate count")
	}
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
