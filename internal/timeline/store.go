package timeline

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrSlot is returned by Store.Get for a slot that was never stored.
var ErrSlot = errors.New("timeline: no such slot")

// Store holds encoded frame buffers in append order.
type Store interface {
	// Put stores a copy of pix and returns its slot.
	Put(pix []byte) (int, error)
	// Get returns a private copy of the bytes stored in slot.
	Get(slot int) ([]byte, error)
	// Len returns the number of stored slots.
	Len() int
	// Size returns the number of bytes held, after encoding.
	Size() int64
	// Reset discards all slots.
	Reset()
}

// Codec selects the compression used by NewStore.
type Codec string

// Supported codecs.
const (
	CodecZlib Codec = "zlib"
	CodecZstd Codec = "zstd"
)

// Compression level bounds. Level 0 stores frames uncompressed.
const (
	LevelNone = 0
	LevelMax  = 9
)

// ParseCodec validates a codec name. The empty string selects zlib.
func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecZlib:
		return CodecZlib, nil
	case CodecZstd:
		return CodecZstd, nil
	default:
		return "", fmt.Errorf("timeline: unknown codec %q", s)
	}
}

// ClampLevel bounds a compression level to 0..9.
func ClampLevel(level int) int {
	return min(max(level, LevelNone), LevelMax)
}

// NewStore returns the store for a codec and compression level. Level 0
// returns an uncompressed store regardless of codec.
func NewStore(codec Codec, level int) Store {
	level = ClampLevel(level)
	if level == LevelNone {
		return &rawStore{}
	}
	if codec == CodecZstd {
		return newZstdStore(level)
	}
	return newZlibStore(level)
}

type rawStore struct {
	frames [][]byte
	size   int64
}

func (s *rawStore) Put(pix []byte) (int, error) {
	buf := make([]byte, len(pix))
	copy(buf, pix)
	s.frames = append(s.frames, buf)
	s.size += int64(len(buf))
	return len(s.frames) - 1, nil
}

func (s *rawStore) Get(slot int) ([]byte, error) {
	if slot < 0 || slot >= len(s.frames) {
		return nil, ErrSlot
	}
	return bytes.Clone(s.frames[slot]), nil
}

func (s *rawStore) Len() int    { return len(s.frames) }
func (s *rawStore) Size() int64 { return s.size }

func (s *rawStore) Reset() {
	s.frames = nil
	s.size = 0
}
