package main

import (
	"image"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zsiec/cdg/internal/subcode"
)

// Palette slots used by generated tracks. Highlighting XORs text pixels
// with colorText^colorHighlight.
const (
	colorBackground = 0
	colorText       = 1
	colorHighlight  = 2
	colorBorder     = 4
)

// Safe-area tile grid: rows 1-16, columns 1-48.
const (
	firstRow    = 1
	lastRow     = 16
	firstColumn = 1
	maxColumns  = 48
)

var palette = [8]subcode.RGB{
	colorBackground: {R: 0, G: 0, B: 102},
	colorText:       {R: 255, G: 255, B: 255},
	colorHighlight:  {R: 255, G: 221, B: 0},
	colorBorder:     {R: 170, G: 0, B: 0},
}

type builder struct {
	buf []byte
}

func (b *builder) packets() int {
	return len(b.buf) / subcode.PacketSize
}

func (b *builder) emit(c subcode.Command) {
	p := encode(c)
	b.buf = appendPacket(b.buf, &p)
}

// waitUntil pads with empty packets until ms. It does nothing when the
// track is already past ms.
func (b *builder) waitUntil(ms int64) {
	target := int(ms * subcode.PacketsPerSecond / 1000)
	if n := target - b.packets(); n > 0 {
		b.buf = append(b.buf, make([]byte, n*subcode.PacketSize)...)
	}
}

// clear emits a memory preset the way discs do, repeated with an
// increasing repeat count.
func (b *builder) clear(color uint8) {
	for i := range 16 {
		b.emit(subcode.MemoryPreset{Color: color, Repeat: uint8(i)})
	}
}

// text draws s centred on a tile row and returns the column span used.
func (b *builder) text(row int, s string, fg uint8) (first, n int) {
	tiles := glyphTiles(s)
	first = firstColumn + (maxColumns-len(tiles))/2
	for i, rows := range tiles {
		b.emit(subcode.TileBlock{
			Color0: colorBackground,
			Color1: fg,
			Row:    uint8(row),
			Column: uint8(first + i),
			Rows:   rows,
		})
	}
	return first, len(tiles)
}

// highlight recolors the text in one tile column by XOR, leaving the
// background untouched.
func (b *builder) highlight(row, column int, rows [subcode.TileHeight]uint8) {
	b.emit(subcode.TileBlock{
		Color0: 0,
		Color1: colorText ^ colorHighlight,
		Row:    uint8(row),
		Column: uint8(column),
		Rows:   rows,
		XOR:    true,
	})
}

// glyphTiles rasterizes s with the 7x13 bitmap face and slices it into
// tile bitmaps, one per six-pixel column. Text that does not fit the safe
// area is truncated.
func glyphTiles(s string) [][subcode.TileHeight]uint8 {
	face := basicfont.Face7x13
	maxRunes := maxColumns * subcode.TileWidth / face.Advance
	if utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
	}
	width := font.MeasureString(face, s).Ceil()
	cols := (width + subcode.TileWidth - 1) / subcode.TileWidth
	if cols == 0 {
		return nil
	}

	img := image.NewAlpha(image.Rect(0, 0, cols*subcode.TileWidth, subcode.TileHeight))
	d := font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent-1),
	}
	d.DrawString(s)

	tiles := make([][subcode.TileHeight]uint8, cols)
	for c := range tiles {
		for y := range subcode.TileHeight {
			var bits uint8
			for x := range subcode.TileWidth {
				if img.AlphaAt(c*subcode.TileWidth+x, y).A >= 0x80 {
					bits |= 1 << (subcode.TileWidth - 1 - x)
				}
			}
			tiles[c][y] = bits
		}
	}
	return tiles
}

// buildTrack renders a lyric sheet. A title card is shown for two seconds,
// then each line is drawn and highlighted column by column over its slot.
// Scrolling tracks push every new line in from the bottom; the others page
// four lines at a time.
func buildTrack(tc trackConfig) []byte {
	var b builder
	lineMs := int64(tc.LineSeconds * 1000)
	if lineMs <= 0 {
		lineMs = 2500
	}

	b.emit(subcode.LoadColors{Colors: palette})
	b.clear(colorBackground)
	b.emit(subcode.BorderPreset{Color: colorBorder})
	b.text(8, tc.Title, colorHighlight)

	at := int64(2000)
	b.waitUntil(at)
	b.clear(colorBackground)

	const pageRows = 4
	for i, line := range tc.Lines {
		var row int
		if tc.Scroll {
			for range 2 {
				b.emit(subcode.Scroll{Color: colorBackground, VCmd: subcode.ScrollUp})
			}
			row = lastRow - 1
		} else {
			slot := i % pageRows
			if slot == 0 && i > 0 {
				b.clear(colorBackground)
			}
			row = 4 + 3*slot
		}

		tiles := glyphTiles(line)
		first, n := b.text(row, line, colorText)
		for c := 0; c < n; c++ {
			b.waitUntil(at + lineMs*int64(c)/int64(n))
			b.highlight(row, first+c, tiles[c])
		}
		at += lineMs
		b.waitUntil(at)
	}

	b.clear(colorBackground)
	b.waitUntil(at + 1000)
	return b.buf
}
