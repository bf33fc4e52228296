package cdg

import (
	"github.com/zsiec/cdg/internal/subcode"
)

func packet(kind subcode.Kind, data ...byte) []byte {
	buf := make([]byte, subcode.PacketSize)
	buf[0] = 0x09
	buf[1] = byte(kind)
	copy(buf[4:20], data)
	return buf
}

// padding returns n packets that carry no graphics command.
func padding(n int) []byte {
	return make([]byte, n*subcode.PacketSize)
}

func preset(color, repeat byte) []byte {
	return packet(subcode.KindMemoryPreset, color, repeat)
}

func border(color byte) []byte {
	return packet(subcode.KindBorderPreset, color)
}

func tile(c0, c1, row, col byte, rows [subcode.TileHeight]byte, xor bool) []byte {
	kind := subcode.KindTileBlock
	if xor {
		kind = subcode.KindTileBlockXOR
	}
	data := []byte{c0, c1, row, col}
	data = append(data, rows[:]...)
	return packet(kind, data...)
}

func scroll(copyMode bool, color, h, v byte) []byte {
	kind := subcode.KindScrollPreset
	if copyMode {
		kind = subcode.KindScrollCopy
	}
	return packet(kind, color, h, v)
}

// colors builds a color table load from 4-bit channel triples.
func colors(high bool, rgb ...[3]byte) []byte {
	data := make([]byte, 16)
	for i, c := range rgb {
		r, g, b := c[0]&0x0F, c[1]&0x0F, c[2]&0x0F
		data[2*i] = r<<2 | g>>2
		data[2*i+1] = (g&0x03)<<4 | b
	}
	kind := subcode.KindColorsLow
	if high {
		kind = subcode.KindColorsHigh
	}
	return packet(kind, data...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// arrow is a 6x12 tile shape used by scenario tests.
var arrow = [subcode.TileHeight]byte{
	0b001100, 0b011110, 0b111111, 0b001100,
	0b001100, 0b001100, 0b001100, 0b001100,
	0b001100, 0b001100, 0b000000, 0b000000,
}
