package timeline

import (
	"errors"
	"testing"

	"github.com/zsiec/cdg/internal/canvas"
	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/media"
)

func TestTickCadence(t *testing.T) {
	t.Parallel()
	tl := New(nil)
	var samples []int64
	for i := 0; i < 60; i++ {
		if tl.Tick() {
			samples = append(samples, tl.Packets())
		}
	}
	want := []int64{12, 24, 36, 48, 60}
	if len(samples) != len(want) {
		t.Fatalf("samples = %v, want %v", samples, want)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d at packet %d, want %d", i, samples[i], want[i])
		}
	}
	if tl.PositionMs() != 200 {
		t.Errorf("PositionMs = %d, want 200", tl.PositionMs())
	}
}

func TestPacketsToMs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		packets int64
		want    int64
	}{
		{0, 0}, {1, 3}, {3, 10}, {12, 40}, {300, 1000}, {301, 1003},
	}
	for _, tc := range tests {
		if got := PacketsToMs(tc.packets); got != tc.want {
			t.Errorf("PacketsToMs(%d) = %d, want %d", tc.packets, got, tc.want)
		}
	}
}

func TestCaptureSharesUnchangedFrames(t *testing.T) {
	t.Parallel()
	for _, tc := range storeCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tl := New(NewStore(tc.codec, tc.level))
			c := canvas.New()
			c.SetColor(2, subcode.RGB{R: 255})

			c.Fill(2)
			if err := tl.Capture(c, true); err != nil {
				t.Fatal(err)
			}
			if err := tl.Capture(c, false); err != nil {
				t.Fatal(err)
			}
			c.Fill(0)
			if err := tl.Capture(c, true); err != nil {
				t.Fatal(err)
			}

			if tl.Len() != 3 || tl.Unique() != 2 {
				t.Fatalf("Len=%d Unique=%d, want 3 and 2", tl.Len(), tl.Unique())
			}
			f0, _ := tl.Frame(0)
			f1, _ := tl.Frame(1)
			f2, _ := tl.Frame(2)
			red := media.PackRGB565(255, 0, 0)
			if f0.RGB565At(100, 100) != red || f1.RGB565At(100, 100) != red {
				t.Error("frames 0 and 1 should be red")
			}
			if !f2.IsBlank() {
				t.Error("frame 2 should be black")
			}
			if f1.Index != 1 {
				t.Errorf("f1.Index = %d", f1.Index)
			}
		})
	}
}

func TestFirstCaptureRendersEvenWhenClean(t *testing.T) {
	t.Parallel()
	tl := New(nil)
	if err := tl.Capture(canvas.New(), false); err != nil {
		t.Fatal(err)
	}
	if tl.Len() != 1 || tl.Unique() != 1 {
		t.Errorf("Len=%d Unique=%d, want 1 and 1", tl.Len(), tl.Unique())
	}
}

func TestFrameOutOfRangeIsBlank(t *testing.T) {
	t.Parallel()
	tl := New(nil)
	c := canvas.New()
	c.SetColor(0, subcode.RGB{G: 255})
	tl.Capture(c, true)

	for _, i := range []int{1, 50, -1} {
		f, err := tl.Frame(i)
		if err != nil {
			t.Fatalf("Frame(%d): %v", i, err)
		}
		if len(f.Pix) != media.FrameSize || !f.IsBlank() {
			t.Errorf("Frame(%d) should be a full-size black frame", i)
		}
	}
}

func TestCountAndIndexWithTempo(t *testing.T) {
	t.Parallel()
	tl := New(nil)
	c := canvas.New()
	for i := 0; i < 25; i++ {
		tl.Capture(c, false)
	}

	tests := []struct {
		tempo int
		want  int
	}{
		{100, 25}, {200, 13}, {50, 50}, {150, 17}, {0, 25}, {-10, 25},
	}
	for _, tc := range tests {
		if got := tl.Count(tc.tempo); got != tc.want {
			t.Errorf("Count(%d) = %d, want %d", tc.tempo, got, tc.want)
		}
	}

	idx := []struct {
		ms    int64
		tempo int
		want  int
	}{
		{0, 100, 0}, {39, 100, 0}, {40, 100, 1}, {1000, 100, 25},
		{1000, 200, 50}, {1000, 50, 12}, {-5, 100, 0},
	}
	for _, tc := range idx {
		if got := IndexAt(tc.ms, tc.tempo); got != tc.want {
			t.Errorf("IndexAt(%d, %d) = %d, want %d", tc.ms, tc.tempo, got, tc.want)
		}
	}
}

type failingStore struct {
	rawStore
	failPut bool
	failGet bool
}

func (s *failingStore) Put(pix []byte) (int, error) {
	if s.failPut {
		return -1, errors.New("put failed")
	}
	return s.rawStore.Put(pix)
}

func (s *failingStore) Get(slot int) ([]byte, error) {
	if s.failGet {
		return nil, errors.New("get failed")
	}
	return s.rawStore.Get(slot)
}

func TestCaptureFailureFallsBack(t *testing.T) {
	t.Parallel()
	fs := &failingStore{failPut: true}
	tl := New(fs)
	c := canvas.New()
	c.SetColor(0, subcode.RGB{B: 255})

	if err := tl.Capture(c, true); err == nil {
		t.Fatal("expected capture error")
	}
	f, err := tl.Frame(0)
	if err != nil || !f.IsBlank() {
		t.Error("failed first capture should read back as black")
	}

	fs.failPut = false
	tl.Capture(c, true)
	fs.failPut = true
	tl.Capture(c, true)
	if tl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tl.Len())
	}
	f, _ = tl.Frame(2)
	if f.IsBlank() {
		t.Error("failed capture should fall back to the previous frame")
	}

	fs.failGet = true
	f, err = tl.Frame(1)
	if err == nil || !f.IsBlank() {
		t.Error("failed decode should return black with an error")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	tl := New(NewStore(CodecZlib, 3))
	tl.Tick()
	tl.Capture(canvas.New(), true)
	tl.Reset()
	if tl.Len() != 0 || tl.Unique() != 0 || tl.Packets() != 0 || tl.StoredBytes() != 0 {
		t.Error("Reset should clear frames, store and counters")
	}
}
