package subcode

// Packet is one 24-byte subcode pack.
type Packet struct {
	Command     byte
	Instruction byte
	ParityQ     [2]byte
	Data        [16]byte
	ParityP     [4]byte
}

// IsGraphics reports whether the packet carries a CD+G command.
func (p *Packet) IsGraphics() bool {
	return p.Command&modeMask == graphicsMode
}

// Kind returns the instruction code selecting the command type.
func (p *Packet) Kind() Kind {
	return Kind(p.Instruction & modeMask)
}

// Kind is a CD+G instruction code.
type Kind uint8

// CD+G instruction codes.
const (
	KindMemoryPreset      Kind = 1
	KindBorderPreset      Kind = 2
	KindTileBlock         Kind = 6
	KindScrollPreset      Kind = 20
	KindScrollCopy        Kind = 24
	KindDefineTransparent Kind = 28
	KindColorsLow         Kind = 30
	KindColorsHigh        Kind = 31
	KindTileBlockXOR      Kind = 38
)

func (k Kind) String() string {
	switch k {
	case KindMemoryPreset:
		return "memory_preset"
	case KindBorderPreset:
		return "border_preset"
	case KindTileBlock:
		return "tile_block"
	case KindScrollPreset:
		return "scroll_preset"
	case KindScrollCopy:
		return "scroll_copy"
	case KindDefineTransparent:
		return "define_transparent"
	case KindColorsLow:
		return "colors_low"
	case KindColorsHigh:
		return "colors_high"
	case KindTileBlockXOR:
		return "tile_block_xor"
	default:
		return "unknown"
	}
}

// Command is a decoded CD+G instruction. Exactly one of the concrete types
// below implements it.
type Command interface {
	Kind() Kind
}

// MemoryPreset clears the whole canvas to Color. Repeat counts the redundant
// copies a disc carries of the same preset.
type MemoryPreset struct {
	Color  uint8
	Repeat uint8
}

// BorderPreset paints the border bands with Color.
type BorderPreset struct {
	Color uint8
}

// TileBlock draws a 6×12 tile. Each Rows entry holds six pixel bits, MSB
// first; a set bit selects Color1, a clear bit Color0.
type TileBlock struct {
	Color0 uint8
	Color1 uint8
	Row    uint8
	Column uint8
	Rows   [TileHeight]uint8
	XOR    bool
}

// Scroll directions.
const (
	ScrollNone  uint8 = 0
	ScrollRight uint8 = 1
	ScrollLeft  uint8 = 2

	ScrollDown uint8 = 1
	ScrollUp   uint8 = 2
)

// Scroll shifts the canvas by one tile step. With Copy set the pixels pushed
// off one edge reappear on the opposite edge, otherwise the vacated band is
// filled with Color.
type Scroll struct {
	Color   uint8
	HCmd    uint8
	HOffset uint8
	VCmd    uint8
	VOffset uint8
	Copy    bool
}

// DefineTransparent is accepted but carries no defined payload layout.
type DefineTransparent struct{}

// RGB is a 4-bit-per-channel color expanded to 8 bits.
type RGB struct {
	R, G, B uint8
}

// LoadColors replaces eight palette entries starting at 0 (low) or 8 (high).
type LoadColors struct {
	High   bool
	Colors [8]RGB
}

// Unknown wraps an instruction code this decoder does not recognize.
type Unknown struct {
	Code Kind
}

func (MemoryPreset) Kind() Kind      { return KindMemoryPreset }
func (BorderPreset) Kind() Kind      { return KindBorderPreset }
func (DefineTransparent) Kind() Kind { return KindDefineTransparent }
func (u Unknown) Kind() Kind         { return u.Code }

func (t TileBlock) Kind() Kind {
	if t.XOR {
		return KindTileBlockXOR
	}
	return KindTileBlock
}

func (s Scroll) Kind() Kind {
	if s.Copy {
		return KindScrollCopy
	}
	return KindScrollPreset
}

func (c LoadColors) Kind() Kind {
	if c.High {
		return KindColorsHigh
	}
	return KindColorsLow
}
