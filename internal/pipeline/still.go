package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zsiec/cdg/media"
)

// MaxScale bounds the integer upscale factor for stills.
const MaxScale = 8

// StillOptions controls frame-to-image conversion.
type StillOptions struct {
	// Scale is an integer upscale factor, clamped to [1, MaxScale].
	Scale int
	// Stamp draws the playback time in the bottom-left corner.
	Stamp bool
}

// Still converts f to an RGBA image, scaled with nearest-neighbour
// sampling so the tile grid stays crisp. ms is the stamped time.
func Still(f *media.Frame, ms int64, opts StillOptions) *image.RGBA {
	scale := min(max(opts.Scale, 1), MaxScale)

	var img *image.RGBA
	if scale == 1 {
		img = f.RGBA()
	} else {
		img = image.NewRGBA(image.Rect(0, 0, media.FrameWidth*scale, media.FrameHeight*scale))
		draw.NearestNeighbor.Scale(img, img.Bounds(), f, f.Bounds(), draw.Src, nil)
	}
	if opts.Stamp {
		stamp(img, Timecode(ms))
	}
	return img
}

// stamp draws s with a one-pixel drop shadow so it reads on any palette.
func stamp(img *image.RGBA, s string) {
	face := basicfont.Face7x13
	b := img.Bounds()
	y := b.Max.Y - face.Descent - 2
	for _, pass := range []struct {
		dx, dy int
		c      color.Color
	}{
		{1, 1, color.Black},
		{0, 0, color.White},
	} {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(pass.c),
			Face: face,
			Dot:  fixed.P(b.Min.X+3+pass.dx, y+pass.dy),
		}
		d.DrawString(s)
	}
}

// Timecode formats ms as mm:ss.cc.
func Timecode(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d.%02d", ms/60000, ms/1000%60, ms/10%100)
}

// EncodePNG writes f as a PNG image.
func EncodePNG(w io.Writer, f *media.Frame, ms int64, opts StillOptions) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, Still(f, ms, opts)); err != nil {
		return fmt.Errorf("pipeline: encode png: %w", err)
	}
	return nil
}
