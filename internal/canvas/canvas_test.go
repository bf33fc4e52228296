package canvas

import (
	"testing"

	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/media"
)

// checker is a tile pattern where every row differs from its neighbours.
var checker = [subcode.TileHeight]uint8{
	0b101010, 0b010101, 0b111000, 0b000111,
	0b110011, 0b001100, 0b100001, 0b011110,
	0b111111, 0b000000, 0b100000, 0b000001,
}

func fillPattern(c *Canvas) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c.Set(x, y, uint8((x/3+y*7)%16))
		}
	}
}

func TestSetAtBounds(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(-1, 0, 5)
	c.Set(Width, 0, 5)
	c.Set(0, Height, 5)
	c.Set(299, 215, 0x1F)

	if got := c.At(299, 215); got != 0x0F {
		t.Errorf("At(299,215) = %d, want 15 (index masked to 4 bits)", got)
	}
	if got := c.At(Width, 0); got != 0 {
		t.Errorf("At out of range = %d, want 0", got)
	}
}

func TestFill(t *testing.T) {
	t.Parallel()
	c := New()
	c.Fill(9)
	for _, p := range [][2]int{{0, 0}, {299, 215}, {150, 100}} {
		if got := c.At(p[0], p[1]); got != 9 {
			t.Errorf("At(%d,%d) = %d, want 9", p[0], p[1], got)
		}
	}
}

func TestFillBorderLeavesSafeArea(t *testing.T) {
	t.Parallel()
	c := New()
	c.Fill(1)
	c.FillBorder(2)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			inSafe := x >= 6 && x < 294 && y >= 12 && y < 204
			want := uint8(2)
			if inSafe {
				want = 1
			}
			if got := c.At(x, y); got != want {
				t.Fatalf("At(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestDrawTileMatchesPattern(t *testing.T) {
	t.Parallel()
	c := New()
	tb := subcode.TileBlock{Color0: 4, Color1: 11, Row: 3, Column: 10, Rows: checker}
	if clamped := c.DrawTile(tb); clamped {
		t.Fatal("in-range tile reported clamped")
	}

	left, top := 10*6, 3*12
	for y := 0; y < 12; y++ {
		for x := 0; x < 6; x++ {
			want := uint8(4)
			if checker[y]&(0x20>>x) != 0 {
				want = 11
			}
			if got := c.At(left+x, top+y); got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", left+x, top+y, got, want)
			}
		}
	}
	if c.At(left-1, top) != 0 || c.At(left+6, top) != 0 || c.At(left, top+12) != 0 {
		t.Error("tile wrote outside its 6x12 cell")
	}
}

func TestDrawTileXORRestores(t *testing.T) {
	t.Parallel()
	c := New()
	fillPattern(c)
	before := c.pix

	tb := subcode.TileBlock{Color0: 3, Color1: 12, Row: 8, Column: 20, Rows: checker, XOR: true}
	c.DrawTile(tb)
	if c.pix == before {
		t.Fatal("XOR tile did not change the canvas")
	}
	c.DrawTile(tb)
	if c.pix != before {
		t.Error("applying the same XOR tile twice should restore the canvas")
	}
}

func TestDrawTileClamps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		row, column uint8
		wantLeft    int
		wantTop     int
		wantClamped bool
	}{
		{"origin", 0, 0, 0, 0, false},
		{"last cell", 17, 49, 294, 204, false},
		{"row overflow", 31, 0, 0, 204, true},
		{"column overflow", 0, 63, 294, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			left, top, clamped := TileOrigin(tc.row, tc.column)
			if left != tc.wantLeft || top != tc.wantTop || clamped != tc.wantClamped {
				t.Errorf("TileOrigin(%d,%d) = (%d,%d,%v), want (%d,%d,%v)",
					tc.row, tc.column, left, top, clamped, tc.wantLeft, tc.wantTop, tc.wantClamped)
			}

			c := New()
			var rows [subcode.TileHeight]uint8
			for i := range rows {
				rows[i] = 0x3F
			}
			c.DrawTile(subcode.TileBlock{Color1: 7, Row: tc.row, Column: tc.column, Rows: rows})
			if got := c.At(tc.wantLeft+5, tc.wantTop+11); got != 7 {
				t.Errorf("bottom-right tile pixel = %d, want 7", got)
			}
		})
	}
}

func TestScrollCopyRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		forward  subcode.Scroll
		backward subcode.Scroll
	}{
		{"right then left", subcode.Scroll{HCmd: subcode.ScrollRight, Copy: true}, subcode.Scroll{HCmd: subcode.ScrollLeft, Copy: true}},
		{"left then right", subcode.Scroll{HCmd: subcode.ScrollLeft, Copy: true}, subcode.Scroll{HCmd: subcode.ScrollRight, Copy: true}},
		{"down then up", subcode.Scroll{VCmd: subcode.ScrollDown, Copy: true}, subcode.Scroll{VCmd: subcode.ScrollUp, Copy: true}},
		{"diagonal", subcode.Scroll{HCmd: subcode.ScrollRight, VCmd: subcode.ScrollUp, Copy: true}, subcode.Scroll{HCmd: subcode.ScrollLeft, VCmd: subcode.ScrollDown, Copy: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := New()
			fillPattern(c)
			before := c.pix

			if !c.Scroll(tc.forward) {
				t.Fatal("scroll reported no change")
			}
			if c.pix == before {
				t.Fatal("scroll did not move pixels")
			}
			c.Scroll(tc.backward)
			if c.pix != before {
				t.Error("inverse copy scroll should restore the canvas")
			}
		})
	}
}

func TestScrollCopyWraps(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(299, 0, 5)
	c.Set(0, 215, 6)

	c.Scroll(subcode.Scroll{HCmd: subcode.ScrollRight, Copy: true})
	if got := c.At(5, 0); got != 5 {
		t.Errorf("wrapped pixel at (5,0) = %d, want 5", got)
	}
	if got := c.At(6, 215); got != 6 {
		t.Errorf("shifted pixel at (6,215) = %d, want 6", got)
	}

	c.Scroll(subcode.Scroll{VCmd: subcode.ScrollDown, Copy: true})
	if got := c.At(6, 11); got != 6 {
		t.Errorf("wrapped pixel at (6,11) = %d, want 6", got)
	}
}

func TestScrollPresetFillsVacatedBand(t *testing.T) {
	t.Parallel()
	c := New()
	c.Fill(1)

	c.Scroll(subcode.Scroll{Color: 8, HCmd: subcode.ScrollLeft})
	for y := 0; y < Height; y++ {
		for x := 294; x < Width; x++ {
			if got := c.At(x, y); got != 8 {
				t.Fatalf("vacated pixel (%d,%d) = %d, want 8", x, y, got)
			}
		}
		if got := c.At(293, y); got != 1 {
			t.Fatalf("kept pixel (293,%d) = %d, want 1", y, got)
		}
	}

	c.Scroll(subcode.Scroll{Color: 9, VCmd: subcode.ScrollDown})
	for x := 0; x < Width; x++ {
		if got := c.At(x, 11); got != 9 {
			t.Fatalf("vacated pixel (%d,11) = %d, want 9", x, got)
		}
	}
	if got := c.At(0, 12); got != 1 {
		t.Errorf("shifted pixel (0,12) = %d, want 1", got)
	}
}

func TestScrollOffsets(t *testing.T) {
	t.Parallel()
	c := New()
	if c.Scroll(subcode.Scroll{}) {
		t.Error("no-op scroll reported a change")
	}
	if !c.Scroll(subcode.Scroll{HOffset: 7, VOffset: 15}) {
		t.Error("offset change should be reported")
	}
	h, v := c.Offset()
	if h != 5 || v != 11 {
		t.Errorf("Offset = (%d,%d), want clamped (5,11)", h, v)
	}
	if c.Scroll(subcode.Scroll{HOffset: 5, VOffset: 11}) {
		t.Error("unchanged offset should not be reported")
	}
}

func TestSetColor(t *testing.T) {
	t.Parallel()
	c := New()
	red := subcode.RGB{R: 255}
	if !c.SetColor(3, red) {
		t.Error("first write should report change")
	}
	if c.SetColor(3, red) {
		t.Error("identical write should not report change")
	}
	if c.SetColor(16, red) || c.SetColor(-1, red) {
		t.Error("out-of-range palette writes should be ignored")
	}
	if c.Color(3) != red {
		t.Errorf("Color(3) = %+v", c.Color(3))
	}
}

func TestRenderSafeAreaUsesOffset(t *testing.T) {
	t.Parallel()
	c := New()
	c.SetColor(1, subcode.RGB{R: 255, G: 255, B: 255})
	c.Set(BorderLeft, BorderTop, 1)
	c.Set(BorderLeft+3, BorderTop+2, 1)

	dst := make([]byte, media.FrameSize)
	c.RenderSafeArea(dst)
	f := &media.Frame{Pix: dst}
	if f.RGB565At(0, 0) != 0xFFFF {
		t.Errorf("origin pixel = 0x%04X, want white", f.RGB565At(0, 0))
	}

	c.Scroll(subcode.Scroll{HOffset: 3, VOffset: 2})
	c.RenderSafeArea(dst)
	if f.RGB565At(0, 0) != 0xFFFF {
		t.Errorf("offset origin pixel = 0x%04X, want white", f.RGB565At(0, 0))
	}
	if f.RGB565At(1, 0) != 0 {
		t.Errorf("pixel next to offset origin = 0x%04X, want black", f.RGB565At(1, 0))
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	c := New()
	c.Fill(4)
	c.SetColor(0, subcode.RGB{G: 17})
	c.Scroll(subcode.Scroll{HOffset: 2})
	c.Reset()

	if c.At(10, 10) != 0 || c.Color(0) != (subcode.RGB{}) {
		t.Error("Reset should clear pixels and palette")
	}
	if h, v := c.Offset(); h != 0 || v != 0 {
		t.Errorf("Offset after Reset = (%d,%d)", h, v)
	}
}
