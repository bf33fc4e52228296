package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zsiec/cdg/media"
)

// PNGSink writes each frame to <dir>/<prefix>_<index>.png.
type PNGSink struct {
	dir    string
	prefix string
	opts   StillOptions
}

// NewPNGSink creates dir if needed and returns a sink writing into it.
func NewPNGSink(dir, prefix string, opts StillOptions) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create %s: %w", dir, err)
	}
	if prefix == "" {
		prefix = "frame"
	}
	return &PNGSink{dir: dir, prefix: prefix, opts: opts}, nil
}

// Path returns the file a frame index is written to.
func (s *PNGSink) Path(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%06d.png", s.prefix, index))
}

// WriteFrame implements FrameSink.
func (s *PNGSink) WriteFrame(ctx context.Context, index int, ms int64, f *media.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := os.Create(s.Path(index))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	if err := EncodePNG(bw, f, ms, s.opts); err != nil {
		out.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
