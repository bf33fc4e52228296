package timeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

type compressedStore struct {
	blobs   [][]byte
	lengths []int
	size    int64
	encode  func(dst *bytes.Buffer, src []byte) error
	decode  func(src []byte, n int) ([]byte, error)
}

func (s *compressedStore) Put(pix []byte) (int, error) {
	var buf bytes.Buffer
	if err := s.encode(&buf, pix); err != nil {
		return -1, err
	}
	blob := bytes.Clone(buf.Bytes())
	s.blobs = append(s.blobs, blob)
	s.lengths = append(s.lengths, len(pix))
	s.size += int64(len(blob))
	return len(s.blobs) - 1, nil
}

func (s *compressedStore) Get(slot int) ([]byte, error) {
	if slot < 0 || slot >= len(s.blobs) {
		return nil, ErrSlot
	}
	pix, err := s.decode(s.blobs[slot], s.lengths[slot])
	if err != nil {
		return nil, err
	}
	if len(pix) != s.lengths[slot] {
		return nil, fmt.Errorf("timeline: slot %d decoded to %d bytes, want %d", slot, len(pix), s.lengths[slot])
	}
	return pix, nil
}

func (s *compressedStore) Len() int    { return len(s.blobs) }
func (s *compressedStore) Size() int64 { return s.size }

func (s *compressedStore) Reset() {
	s.blobs = nil
	s.lengths = nil
	s.size = 0
}

func newZlibStore(level int) *compressedStore {
	return &compressedStore{
		encode: func(dst *bytes.Buffer, src []byte) error {
			w, err := zlib.NewWriterLevel(dst, level)
			if err != nil {
				return fmt.Errorf("timeline: zlib writer: %w", err)
			}
			if _, err := w.Write(src); err != nil {
				_ = w.Close()
				return fmt.Errorf("timeline: zlib encode: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("timeline: zlib encode: %w", err)
			}
			return nil
		},
		decode: func(src []byte, n int) ([]byte, error) {
			r, err := zlib.NewReader(bytes.NewReader(src))
			if err != nil {
				return nil, fmt.Errorf("timeline: zlib reader: %w", err)
			}
			defer r.Close()
			out := make([]byte, n)
			if _, err := io.ReadFull(r, out); err != nil {
				return nil, fmt.Errorf("timeline: zlib decode: %w", err)
			}
			return out, nil
		},
	}
}

// zstdDecoder is shared by every zstd store; DecodeAll is safe for
// concurrent use.
var zstdDecoder, _ = zstd.NewReader(nil)

func newZstdStore(level int) *compressedStore {
	var enc *zstd.Encoder
	return &compressedStore{
		encode: func(dst *bytes.Buffer, src []byte) error {
			if enc == nil {
				var err error
				enc, err = zstd.NewWriter(nil,
					zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
					zstd.WithEncoderConcurrency(1),
				)
				if err != nil {
					return fmt.Errorf("timeline: zstd writer: %w", err)
				}
			}
			dst.Write(enc.EncodeAll(src, nil))
			return nil
		},
		decode: func(src []byte, n int) ([]byte, error) {
			out, err := zstdDecoder.DecodeAll(src, make([]byte, 0, n))
			if err != nil {
				return nil, fmt.Errorf("timeline: zstd decode: %w", err)
			}
			return out, nil
		},
	}
}
