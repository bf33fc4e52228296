package canvas

import "github.com/zsiec/cdg/internal/subcode"

// Stats counts what an Interpreter has seen since its last Reset.
type Stats struct {
	Packets             int `json:"packets"`
	NonGraphics         int `json:"nonGraphics"`
	MemoryPresets       int `json:"memoryPresets"`
	BorderPresets       int `json:"borderPresets"`
	Tiles               int `json:"tiles"`
	TilesXOR            int `json:"tilesXor"`
	Scrolls             int `json:"scrolls"`
	ColorLoads          int `json:"colorLoads"`
	DefineTransparent   int `json:"defineTransparent"`
	Unknown             int `json:"unknown"`
	Deduplicated        int `json:"deduplicatedPresets"`
	RedundantColorLoads int `json:"redundantColorLoads"`
	ClampedTiles        int `json:"clampedTiles"`
}

// Interpreter applies CD+G commands to a Canvas and tracks whether the
// canvas changed since the last time the caller cleared the dirty flag.
type Interpreter struct {
	canvas        *Canvas
	presetPending bool
	dirty         bool
	stats         Stats
}

// NewInterpreter returns an Interpreter drawing on c. If c is nil a fresh
// canvas is allocated.
func NewInterpreter(c *Canvas) *Interpreter {
	if c == nil {
		c = New()
	}
	return &Interpreter{canvas: c}
}

// Canvas returns the canvas the interpreter draws on.
func (in *Interpreter) Canvas() *Canvas {
	return in.canvas
}

// Stats returns a copy of the command counters.
func (in *Interpreter) Stats() Stats {
	return in.stats
}

// Dirty reports whether an applied command changed the canvas since the
// last ClearDirty.
func (in *Interpreter) Dirty() bool {
	return in.dirty
}

// ClearDirty resets the dirty flag, typically after a frame was sampled.
func (in *Interpreter) ClearDirty() {
	in.dirty = false
}

// Reset clears interpreter state. When keepCanvas is false the canvas is
// reset as well.
func (in *Interpreter) Reset(keepCanvas bool) {
	if !keepCanvas {
		in.canvas.Reset()
	}
	in.presetPending = false
	in.dirty = false
	in.stats = Stats{}
}

// Handle counts a packet and, when it carries a graphics command, decodes
// and applies it. It reports whether the canvas changed.
func (in *Interpreter) Handle(p *subcode.Packet) bool {
	in.stats.Packets++
	if !p.IsGraphics() {
		in.stats.NonGraphics++
		return false
	}
	return in.Apply(subcode.Decode(p))
}

// Apply executes a single command and reports whether the canvas changed.
func (in *Interpreter) Apply(cmd subcode.Command) bool {
	var changed bool
	switch c := cmd.(type) {
	case subcode.MemoryPreset:
		in.stats.MemoryPresets++
		// Discs repeat presets for error resilience; only the first of a
		// run is applied.
		if in.presetPending && c.Repeat != 0 {
			in.stats.Deduplicated++
			return false
		}
		in.canvas.Fill(c.Color)
		in.presetPending = true
		in.dirty = true
		return true

	case subcode.BorderPreset:
		in.stats.BorderPresets++
		in.canvas.FillBorder(c.Color)
		changed = true

	case subcode.TileBlock:
		if c.XOR {
			in.stats.TilesXOR++
		} else {
			in.stats.Tiles++
		}
		if in.canvas.DrawTile(c) {
			in.stats.ClampedTiles++
		}
		changed = true

	case subcode.Scroll:
		in.stats.Scrolls++
		changed = in.canvas.Scroll(c)

	case subcode.LoadColors:
		in.stats.ColorLoads++
		base := 0
		if c.High {
			base = 8
		}
		for i, rgb := range c.Colors {
			if in.canvas.SetColor(base+i, rgb) {
				changed = true
			}
		}
		if !changed {
			in.stats.RedundantColorLoads++
		}

	case subcode.DefineTransparent:
		// No payload layout is defined for this instruction; it is
		// accepted and ignored.
		in.stats.DefineTransparent++

	default:
		in.stats.Unknown++
		return false
	}

	in.presetPending = false
	if changed {
		in.dirty = true
	}
	return changed
}
