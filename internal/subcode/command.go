package subcode

// Tile geometry in canvas pixels.
const (
	TileWidth  = 6
	TileHeight = 12
)

// Decode interprets the data payload of a graphics packet. Field values are
// masked to their documented widths but not range-checked; clamping against
// the canvas happens when the command is applied.
func Decode(p *Packet) Command {
	d := &p.Data
	switch k := p.Kind(); k {
	case KindMemoryPreset:
		return MemoryPreset{Color: d[0] & 0x0F, Repeat: d[1] & 0x0F}

	case KindBorderPreset:
		return BorderPreset{Color: d[0] & 0x0F}

	case KindTileBlock, KindTileBlockXOR:
		t := TileBlock{
			Color0: d[0] & 0x0F,
			Color1: d[1] & 0x0F,
			Row:    d[2] & 0x1F,
			Column: d[3] & 0x3F,
			XOR:    k == KindTileBlockXOR,
		}
		for i := range t.Rows {
			t.Rows[i] = d[4+i] & 0x3F
		}
		return t

	case KindScrollPreset, KindScrollCopy:
		return Scroll{
			Color:   d[0] & 0x0F,
			HCmd:    (d[1] >> 4) & 0x03,
			HOffset: d[1] & 0x07,
			VCmd:    (d[2] >> 4) & 0x03,
			VOffset: d[2] & 0x0F,
			Copy:    k == KindScrollCopy,
		}

	case KindDefineTransparent:
		return DefineTransparent{}

	case KindColorsLow, KindColorsHigh:
		c := LoadColors{High: k == KindColorsHigh}
		for i := range c.Colors {
			c.Colors[i] = DecodeColor(d[2*i], d[2*i+1])
		}
		return c

	default:
		return Unknown{Code: k}
	}
}

// DecodeColor unpacks a color table entry. The first byte carries red in
// bits 5-2 and the high half of green in bits 1-0; the second carries the
// low half of green in bits 5-4 and blue in bits 3-0. Each 4-bit channel is
// scaled by 17 so that 15 maps to 255.
func DecodeColor(hi, lo byte) RGB {
	r := (hi >> 2) & 0x0F
	g := (hi&0x03)<<2 | (lo>>4)&0x03
	b := lo & 0x0F
	return RGB{R: r * 17, G: g * 17, B: b * 17}
}
