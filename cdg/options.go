package cdg

import (
	"log/slog"

	"github.com/zsiec/cdg/internal/timeline"
)

// Codec selects the compression applied to stored frames.
type Codec = timeline.Codec

// Frame store codecs.
const (
	CodecZlib = timeline.CodecZlib
	CodecZstd = timeline.CodecZstd
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithCompression sets the frame store codec and level (0 stores frames
// uncompressed, 1-9 trade CPU for memory).
func WithCompression(codec Codec, level int) Option {
	return func(p *Parser) {
		p.codec = codec
		p.level = timeline.ClampLevel(level)
	}
}

// WithTempo sets the initial playback tempo in percent.
func WithTempo(pct int) Option {
	return func(p *Parser) {
		p.SetTempo(pct)
	}
}
