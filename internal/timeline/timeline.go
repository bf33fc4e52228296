package timeline

import (
	"github.com/zsiec/cdg/internal/canvas"
	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/media"
)

// FrameIntervalMs is the spacing of sampled frames (25 fps).
const FrameIntervalMs = 40

// DefaultTempo is the unscaled playback speed in percent.
const DefaultTempo = 100

// blankSlot marks a frame whose capture failed and that has no earlier
// frame to fall back to.
const blankSlot = -1

// PacketsToMs converts a packet count to elapsed milliseconds at the
// nominal subcode rate.
func PacketsToMs(packets int64) int64 {
	return packets * 1000 / subcode.PacketsPerSecond
}

// Timeline is an append-only sequence of sampled frames. Once a frame has
// been captured it is never modified.
type Timeline struct {
	store   Store
	slots   []int
	packets int64
	scratch []byte
}

// New returns an empty Timeline backed by store. A nil store keeps frames
// uncompressed.
func New(store Store) *Timeline {
	if store == nil {
		store = &rawStore{}
	}
	return &Timeline{
		store:   store,
		scratch: make([]byte, media.FrameSize),
	}
}

// Tick advances the elapsed-packet counter by one and reports whether the
// new position lands on a frame boundary.
func (t *Timeline) Tick() bool {
	t.packets++
	return PacketsToMs(t.packets)%FrameIntervalMs == 0
}

// Packets returns the number of packets ticked so far.
func (t *Timeline) Packets() int64 {
	return t.packets
}

// PositionMs returns the elapsed time of the packets ticked so far.
func (t *Timeline) PositionMs() int64 {
	return PacketsToMs(t.packets)
}

// Capture appends the canvas safe area as the next frame. When changed is
// false and a previous frame exists, the new frame shares its storage. On a
// store failure the frame falls back to the previous one (or black) and the
// error is returned for the caller to report.
func (t *Timeline) Capture(c *canvas.Canvas, changed bool) error {
	n := len(t.slots)
	if !changed && n > 0 {
		t.slots = append(t.slots, t.slots[n-1])
		return nil
	}
	c.RenderSafeArea(t.scratch)
	slot, err := t.store.Put(t.scratch)
	if err != nil {
		fallback := blankSlot
		if n > 0 {
			fallback = t.slots[n-1]
		}
		t.slots = append(t.slots, fallback)
		return err
	}
	t.slots = append(t.slots, slot)
	return nil
}

// Len returns the number of captured frames.
func (t *Timeline) Len() int {
	return len(t.slots)
}

// Unique returns how many distinct frame buffers are stored.
func (t *Timeline) Unique() int {
	return t.store.Len()
}

// StoredBytes returns the store's encoded size.
func (t *Timeline) StoredBytes() int64 {
	return t.store.Size()
}

// Count returns the frame count scaled by tempo: count / (tempo/100),
// rounded up. A non-positive tempo is treated as 100.
func (t *Timeline) Count(tempo int) int {
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	n := int64(len(t.slots)) * DefaultTempo
	return int((n + int64(tempo) - 1) / int64(tempo))
}

// IndexAt maps a playback time to a frame index under tempo.
func IndexAt(ms int64, tempo int) int {
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	if ms < 0 {
		return 0
	}
	return int(ms * int64(tempo) / DefaultTempo / FrameIntervalMs)
}

// Frame returns frame i. Indexes outside the captured range yield a black
// frame; a failed decode also yields black, together with the error.
func (t *Timeline) Frame(i int) (*media.Frame, error) {
	if i < 0 || i >= len(t.slots) || t.slots[i] == blankSlot {
		return media.BlankFrame(i), nil
	}
	pix, err := t.store.Get(t.slots[i])
	if err != nil {
		return media.BlankFrame(i), err
	}
	return &media.Frame{Index: i, Format: media.PixelFormatRGB565, Pix: pix}, nil
}

// FrameAt returns the frame shown at playback time ms under tempo.
func (t *Timeline) FrameAt(ms int64, tempo int) (*media.Frame, error) {
	return t.Frame(IndexAt(ms, tempo))
}

// Reset discards all frames and the packet counter.
func (t *Timeline) Reset() {
	t.store.Reset()
	t.slots = nil
	t.packets = 0
}
