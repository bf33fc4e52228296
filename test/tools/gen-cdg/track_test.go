package main

import (
	"testing"

	"github.com/zsiec/cdg/cdg"
	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/internal/timeline"
)

func TestGlyphTiles(t *testing.T) {
	t.Parallel()
	if tiles := glyphTiles(""); tiles != nil {
		t.Errorf("empty string gave %d tiles", len(tiles))
	}

	// "HI" is 14 pixels wide: three tile columns.
	tiles := glyphTiles("HI")
	if len(tiles) != 3 {
		t.Fatalf("got %d tiles, want 3", len(tiles))
	}
	ink := 0
	for _, tile := range tiles {
		for _, bits := range tile {
			if bits&^0x3F != 0 {
				t.Fatalf("row %08b uses more than six bits", bits)
			}
			for ; bits != 0; bits &= bits - 1 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("glyphs produced no ink")
	}

	long := glyphTiles("this line is far too long to fit across the screen in one go")
	if len(long) > maxColumns {
		t.Errorf("long line uses %d columns, max %d", len(long), maxColumns)
	}
}

func TestBuildTrackDecodes(t *testing.T) {
	t.Parallel()
	for _, tc := range tracks {
		t.Run(tc.Key, func(t *testing.T) {
			data := buildTrack(tc)
			if len(data)%subcode.PacketSize != 0 {
				t.Fatalf("length %d is not packet aligned", len(data))
			}

			p := cdg.NewParser()
			if !p.Open(data) || !p.Process() {
				t.Fatal("decode failed")
			}
			st := p.Stats().Commands
			if st.Tiles == 0 || st.TilesXOR == 0 {
				t.Errorf("tiles=%d xor=%d, want both", st.Tiles, st.TilesXOR)
			}
			if st.Deduplicated == 0 {
				t.Error("repeated presets should be deduplicated")
			}
			if tc.Scroll && st.Scrolls != 2*len(tc.Lines) {
				t.Errorf("scrolls = %d, want %d", st.Scrolls, 2*len(tc.Lines))
			}
			if st.ClampedTiles != 0 {
				t.Errorf("%d tiles fell outside the grid", st.ClampedTiles)
			}

			// The title card is on screen one second in.
			if p.FrameByTime(1000).IsBlank() {
				t.Error("title frame is blank")
			}
			if got, want := p.FrameCount(), int(p.Duration()/timeline.FrameIntervalMs); got < want-1 || got > want+1 {
				t.Errorf("frame count %d for %dms", got, p.Duration())
			}
		})
	}
}
