// Package media defines the raster frame type produced by the CD+G decoder
// and consumed by renderers, the frame server, and audio/video muxers.
package media

import (
	"crypto/md5"
	"encoding/hex"
	"image"
	"image/color"
)

// Safe-area geometry. Every Frame has exactly these dimensions regardless of
// the canvas scroll position it was captured at.
const (
	FrameWidth  = 288
	FrameHeight = 192
)

// PixelFormat identifies the byte layout of Frame.Pix.
type PixelFormat int

const (
	// PixelFormatRGB565 packs each pixel into a little-endian uint16 with
	// 5 bits red, 6 bits green and 5 bits blue.
	PixelFormatRGB565 PixelFormat = iota
)

// BytesPerPixel is the storage size of one pixel in PixelFormatRGB565.
const BytesPerPixel = 2

// FrameSize is the exact length of Frame.Pix.
const FrameSize = FrameWidth * FrameHeight * BytesPerPixel

// String returns the conventional name of the format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB565:
		return "rgb565le"
	default:
		return "unknown"
	}
}

// Frame is a snapshot of the visible safe area. Each lookup returns its own
// Pix, so callers may draw on it freely.
type Frame struct {
	Index  int
	Format PixelFormat
	Pix    []byte
}

// BlankFrame returns an all-black frame, used for lookups past the end of
// the timeline.
func BlankFrame(index int) *Frame {
	return &Frame{
		Index:  index,
		Format: PixelFormatRGB565,
		Pix:    make([]byte, FrameSize),
	}
}

// PackRGB565 converts an 8-bit-per-channel color to RGB565.
func PackRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// UnpackRGB565 expands an RGB565 value back to 8 bits per channel,
// replicating the high bits so that full intensity maps to 0xFF.
func UnpackRGB565(p uint16) (r, g, b uint8) {
	r5 := uint8(p >> 11 & 0x1F)
	g6 := uint8(p >> 5 & 0x3F)
	b5 := uint8(p & 0x1F)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGB565At returns the packed pixel at (x, y). Out-of-range coordinates
// return 0.
func (f *Frame) RGB565At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= FrameWidth || y >= FrameHeight {
		return 0
	}
	off := (y*FrameWidth + x) * BytesPerPixel
	if off+1 >= len(f.Pix) {
		return 0
	}
	return uint16(f.Pix[off]) | uint16(f.Pix[off+1])<<8
}

// IsBlank reports whether every pixel is black.
func (f *Frame) IsBlank() bool {
	for _, b := range f.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

// MD5 returns the hex-encoded MD5 digest of the pixel data, used for golden
// comparisons in tests and by the frame server.
func (f *Frame) MD5() string {
	sum := md5.Sum(f.Pix)
	return hex.EncodeToString(sum[:])
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, FrameWidth, FrameHeight)
}

// At implements image.Image so frames can be passed directly to image
// encoders and scalers.
func (f *Frame) At(x, y int) color.Color {
	r, g, b := UnpackRGB565(f.RGB565At(x, y))
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// RGBA converts the frame into a freshly allocated *image.RGBA.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < FrameHeight; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < FrameWidth; x++ {
			r, g, b := UnpackRGB565(f.RGB565At(x, y))
			i := x * 4
			row[i] = r
			row[i+1] = g
			row[i+2] = b
			row[i+3] = 0xFF
		}
	}
	return img
}
