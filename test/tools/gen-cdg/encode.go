package main

import "github.com/zsiec/cdg/internal/subcode"

// cdgMode marks a subcode pack as carrying a graphics command.
const cdgMode = 0x09

// encode builds the pack that carries c. Parity bytes are left zero; the
// decoder never checks them.
func encode(c subcode.Command) subcode.Packet {
	p := subcode.Packet{Command: cdgMode, Instruction: byte(c.Kind()) & 0x3F}
	d := &p.Data
	switch c := c.(type) {
	case subcode.MemoryPreset:
		d[0] = c.Color & 0x0F
		d[1] = c.Repeat & 0x0F

	case subcode.BorderPreset:
		d[0] = c.Color & 0x0F

	case subcode.TileBlock:
		d[0] = c.Color0 & 0x0F
		d[1] = c.Color1 & 0x0F
		d[2] = c.Row & 0x1F
		d[3] = c.Column & 0x3F
		for i, bits := range c.Rows {
			d[4+i] = bits & 0x3F
		}

	case subcode.Scroll:
		d[0] = c.Color & 0x0F
		d[1] = (c.HCmd&0x03)<<4 | c.HOffset&0x07
		d[2] = (c.VCmd&0x03)<<4 | c.VOffset&0x0F

	case subcode.LoadColors:
		for i, rgb := range c.Colors {
			d[2*i], d[2*i+1] = encodeColor(rgb)
		}
	}
	return p
}

// encodeColor packs an 8-bit color into a color table entry, rounding each
// channel to the nearest of the 16 representable levels.
func encodeColor(c subcode.RGB) (hi, lo byte) {
	level := func(v uint8) byte { return byte((int(v) + 8) / 17) }
	r, g, b := level(c.R), level(c.G), level(c.B)
	hi = r<<2 | g>>2
	lo = (g&0x03)<<4 | b
	return hi, lo
}

// appendPacket appends the wire form of p to dst.
func appendPacket(dst []byte, p *subcode.Packet) []byte {
	dst = append(dst, p.Command, p.Instruction)
	dst = append(dst, p.ParityQ[:]...)
	dst = append(dst, p.Data[:]...)
	return append(dst, p.ParityP[:]...)
}
