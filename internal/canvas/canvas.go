package canvas

import (
	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/media"
)

// Canvas geometry.
const (
	Width       = 300
	Height      = 216
	BorderLeft  = 6
	BorderTop   = 12
	PaletteSize = 16

	maxRow     = Height/subcode.TileHeight - 1 // 17
	maxColumn  = Width/subcode.TileWidth - 1   // 49
	maxHOffset = subcode.TileWidth - 1
	maxVOffset = subcode.TileHeight - 1
)

// Canvas is the mutable CD+G screen. The zero value is not usable; call New.
type Canvas struct {
	pix     [Width * Height]uint8
	palette [PaletteSize]subcode.RGB
	packed  [PaletteSize]uint16
	hOffset int
	vOffset int
}

// New returns a canvas filled with index 0 and an all-black palette.
func New() *Canvas {
	return &Canvas{}
}

// Reset returns the canvas to its initial state.
func (c *Canvas) Reset() {
	*c = Canvas{}
}

// At returns the palette index at (x, y), or 0 outside the buffer.
func (c *Canvas) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return 0
	}
	return c.pix[y*Width+x]
}

// Set writes a palette index at (x, y). Writes outside the buffer are
// dropped.
func (c *Canvas) Set(x, y int, idx uint8) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}
	c.pix[y*Width+x] = idx & 0x0F
}

// Fill sets every pixel, border included, to idx.
func (c *Canvas) Fill(idx uint8) {
	idx &= 0x0F
	for i := range c.pix {
		c.pix[i] = idx
	}
}

// FillBorder paints the top and bottom bands and the left and right columns
// of the rows between them. The safe area is untouched.
func (c *Canvas) FillBorder(idx uint8) {
	idx &= 0x0F
	bottom := BorderTop + media.FrameHeight
	right := BorderLeft + media.FrameWidth
	for y := 0; y < Height; y++ {
		row := c.pix[y*Width : (y+1)*Width]
		if y < BorderTop || y >= bottom {
			for x := range row {
				row[x] = idx
			}
			continue
		}
		for x := 0; x < BorderLeft; x++ {
			row[x] = idx
		}
		for x := right; x < Width; x++ {
			row[x] = idx
		}
	}
}

// TileOrigin converts a tile row and column into the top-left pixel of the
// tile, clamping both so the whole tile lies inside the buffer. clamped
// reports whether either value was out of range.
func TileOrigin(row, column uint8) (left, top int, clamped bool) {
	r, col := int(row), int(column)
	if r > maxRow {
		r, clamped = maxRow, true
	}
	if col > maxColumn {
		col, clamped = maxColumn, true
	}
	return col * subcode.TileWidth, r * subcode.TileHeight, clamped
}

// DrawTile renders a tile block. It reports whether the coordinates had to
// be clamped.
func (c *Canvas) DrawTile(t subcode.TileBlock) bool {
	left, top, clamped := TileOrigin(t.Row, t.Column)
	for y := 0; y < subcode.TileHeight; y++ {
		bits := t.Rows[y]
		for x := 0; x < subcode.TileWidth; x++ {
			idx := t.Color0
			if bits&(0x20>>x) != 0 {
				idx = t.Color1
			}
			px, py := left+x, top+y
			if t.XOR {
				idx ^= c.At(px, py)
			}
			c.Set(px, py, idx)
		}
	}
	return clamped
}

// Scroll shifts the canvas by at most one tile step in each direction and
// records the new scroll sub-position. It reports whether anything visible
// changed.
func (c *Canvas) Scroll(s subcode.Scroll) bool {
	changed := false
	switch s.HCmd {
	case subcode.ScrollRight:
		c.shiftHorizontal(subcode.TileWidth, s.Copy, s.Color)
		changed = true
	case subcode.ScrollLeft:
		c.shiftHorizontal(-subcode.TileWidth, s.Copy, s.Color)
		changed = true
	}
	switch s.VCmd {
	case subcode.ScrollDown:
		c.shiftVertical(subcode.TileHeight, s.Copy, s.Color)
		changed = true
	case subcode.ScrollUp:
		c.shiftVertical(-subcode.TileHeight, s.Copy, s.Color)
		changed = true
	}

	h := min(int(s.HOffset), maxHOffset)
	v := min(int(s.VOffset), maxVOffset)
	if h != c.hOffset || v != c.vOffset {
		c.hOffset, c.vOffset = h, v
		changed = true
	}
	return changed
}

// shiftHorizontal moves every row by dx pixels (positive is right).
func (c *Canvas) shiftHorizontal(dx int, wrap bool, fill uint8) {
	var line [Width]uint8
	for y := 0; y < Height; y++ {
		row := c.pix[y*Width : (y+1)*Width]
		copy(line[:], row)
		for x := 0; x < Width; x++ {
			src := x - dx
			if src >= 0 && src < Width {
				row[x] = line[src]
			} else if wrap {
				row[x] = line[(src+Width)%Width]
			} else {
				row[x] = fill & 0x0F
			}
		}
	}
}

// shiftVertical moves every column by dy pixels (positive is down).
func (c *Canvas) shiftVertical(dy int, wrap bool, fill uint8) {
	old := c.pix
	for y := 0; y < Height; y++ {
		dst := c.pix[y*Width : (y+1)*Width]
		src := y - dy
		switch {
		case src >= 0 && src < Height:
			copy(dst, old[src*Width:(src+1)*Width])
		case wrap:
			src = (src + Height) % Height
			copy(dst, old[src*Width:(src+1)*Width])
		default:
			for x := range dst {
				dst[x] = fill & 0x0F
			}
		}
	}
}

// Offset returns the current scroll sub-position.
func (c *Canvas) Offset() (h, v int) {
	return c.hOffset, c.vOffset
}

// SetColor stores a palette entry and reports whether it changed.
func (c *Canvas) SetColor(i int, rgb subcode.RGB) bool {
	if i < 0 || i >= PaletteSize || c.palette[i] == rgb {
		return false
	}
	c.palette[i] = rgb
	c.packed[i] = media.PackRGB565(rgb.R, rgb.G, rgb.B)
	return true
}

// Color returns palette entry i.
func (c *Canvas) Color(i int) subcode.RGB {
	if i < 0 || i >= PaletteSize {
		return subcode.RGB{}
	}
	return c.palette[i]
}

// RenderSafeArea writes the visible 288×192 region, shifted by the scroll
// sub-position, into dst as little-endian RGB565. dst must hold
// media.FrameSize bytes.
func (c *Canvas) RenderSafeArea(dst []byte) {
	if len(dst) < media.FrameSize {
		return
	}
	x0 := BorderLeft + c.hOffset
	y0 := BorderTop + c.vOffset
	o := 0
	for y := 0; y < media.FrameHeight; y++ {
		row := c.pix[(y0+y)*Width+x0:]
		for x := 0; x < media.FrameWidth; x++ {
			p := c.packed[row[x]&0x0F]
			dst[o] = byte(p)
			dst[o+1] = byte(p >> 8)
			o += media.BytesPerPixel
		}
	}
}
