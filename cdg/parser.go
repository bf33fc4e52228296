package cdg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/zsiec/cdg/internal/canvas"
	"github.com/zsiec/cdg/internal/subcode"
	"github.com/zsiec/cdg/internal/timeline"
	"github.com/zsiec/cdg/media"
)

// ErrEmptyInput is returned by OpenFile when the file holds no data.
var ErrEmptyInput = errors.New("cdg: empty input")

// State is the lifecycle position of a Parser.
type State int

// Parser states.
const (
	StateEmpty State = iota
	StateOpening
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// CommandStats counts the packets and commands seen by the last decode.
type CommandStats = canvas.Stats

// Stats summarizes a decoded stream.
type Stats struct {
	Commands     CommandStats `json:"commands"`
	DurationMs   int64        `json:"durationMs"`
	Frames       int          `json:"frames"`
	UniqueFrames int          `json:"uniqueFrames"`
	StoredBytes  int64        `json:"storedBytes"`
	Codec        Codec        `json:"codec"`
	Level        int          `json:"compressionLevel"`
}

// Parser decodes a CD+G buffer into frames. The zero value is not usable;
// call NewParser.
type Parser struct {
	log      *slog.Logger
	data     []byte
	state    State
	preserve bool
	interp   *canvas.Interpreter
	frames   *timeline.Timeline
	codec    Codec
	level    int
	tempo    atomic.Int32

	durationMs   int64
	lastUpdateMs int64
}

// NewParser returns an empty Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		log:    slog.Default(),
		interp: canvas.NewInterpreter(nil),
		codec:  CodecZlib,
	}
	p.tempo.Store(timeline.DefaultTempo)
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "cdg")
	p.frames = timeline.New(timeline.NewStore(p.codec, p.level))
	return p
}

// Open loads a complete CD+G buffer, resetting any previous state. It
// returns false and leaves the Parser empty when data is empty. The buffer
// is retained until Process and must not be modified meanwhile.
func (p *Parser) Open(data []byte) bool {
	return p.OpenBytes(data, false)
}

// OpenBytes is Open with control over the reset. With bypassReset set, the
// canvas (pixels, palette and scroll position) survives and Process draws
// the new buffer on top of it; the buffer is then kept so that Process may
// be repeated, each run decoding again from the first packet.
func (p *Parser) OpenBytes(data []byte, bypassReset bool) bool {
	if !bypassReset {
		p.Reset()
	}
	if len(data) == 0 {
		p.log.Debug("open with empty buffer")
		return false
	}
	p.data = data
	p.preserve = bypassReset
	p.state = StateOpening
	p.durationMs = timeline.PacketsToMs(int64(len(data) / subcode.PacketSize))
	return true
}

// OpenFile reads path and opens its contents. No parsing happens until
// Process.
func (p *Parser) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cdg: read %s: %w", path, err)
	}
	if !p.Open(data) {
		return fmt.Errorf("cdg: open %s: %w", path, ErrEmptyInput)
	}
	return nil
}

// Process decodes the opened buffer to completion, building the frame
// timeline. It reports false, doing nothing, unless a buffer is open.
func (p *Parser) Process() bool {
	if p.data == nil || p.state == StateEmpty {
		return false
	}
	start := time.Now()

	p.interp.Reset(p.preserve)
	p.frames.Reset()
	p.lastUpdateMs = 0

	r := subcode.NewReader(p.data)
	for {
		pkt, ok := r.Next()
		if !ok {
			break
		}
		at := p.frames.PositionMs()
		if p.interp.Handle(&pkt) {
			p.lastUpdateMs = at
		}
		if !p.frames.Tick() {
			continue
		}
		if err := p.frames.Capture(p.interp.Canvas(), p.interp.Dirty()); err != nil {
			p.log.Warn("frame capture failed", "frame", p.frames.Len()-1, "error", err)
		}
		p.interp.ClearDirty()
	}

	if !p.preserve {
		p.data = nil
	}
	p.state = StateReady

	st := p.interp.Stats()
	p.log.Debug("decode complete",
		"packets", st.Packets,
		"frames", p.frames.Len(),
		"unique_frames", p.frames.Unique(),
		"stored_bytes", p.frames.StoredBytes(),
		"duration_ms", p.durationMs,
		"elapsed", time.Since(start),
	)
	return true
}

// Reset returns the Parser to the empty state, dropping all frames.
func (p *Parser) Reset() {
	p.interp.Reset(false)
	p.frames.Reset()
	p.data = nil
	p.preserve = false
	p.state = StateEmpty
	p.durationMs = 0
	p.lastUpdateMs = 0
}

// State returns the lifecycle state.
func (p *Parser) State() State {
	return p.state
}

// IsOpen reports whether a decoded timeline is available.
func (p *Parser) IsOpen() bool {
	return p.state == StateReady
}

// SetCompressionLevel changes the frame store level. It has no effect once
// a timeline has been decoded, until the next Reset.
func (p *Parser) SetCompressionLevel(level int) {
	if p.state == StateReady {
		p.log.Debug("ignoring compression change on decoded timeline", "level", level)
		return
	}
	p.level = timeline.ClampLevel(level)
	p.frames = timeline.New(timeline.NewStore(p.codec, p.level))
}

// SetCodec changes the frame store codec, with the same restriction as
// SetCompressionLevel.
func (p *Parser) SetCodec(codec Codec) {
	if p.state == StateReady {
		return
	}
	p.codec = codec
	p.frames = timeline.New(timeline.NewStore(p.codec, p.level))
}

// SetTempo sets the playback tempo in percent. Non-positive values are
// ignored and reported as false.
func (p *Parser) SetTempo(pct int) bool {
	if pct <= 0 {
		return false
	}
	p.tempo.Store(int32(pct))
	return true
}

// Tempo returns the playback tempo in percent.
func (p *Parser) Tempo() int {
	return int(p.tempo.Load())
}

// Duration returns the stream length in milliseconds.
func (p *Parser) Duration() int64 {
	return p.durationMs
}

// Position returns the decode cursor in milliseconds.
func (p *Parser) Position() int64 {
	return p.frames.PositionMs()
}

// LastUpdate returns the time in milliseconds of the most recent command
// that changed the canvas.
func (p *Parser) LastUpdate() int64 {
	return p.lastUpdateMs
}

// FrameCount returns the number of frames scaled by the current tempo.
func (p *Parser) FrameCount() int {
	return p.frames.Count(p.Tempo())
}

// FrameByIndex returns frame i, or a black frame past the end.
func (p *Parser) FrameByIndex(i int) *media.Frame {
	f, err := p.frames.Frame(i)
	if err != nil {
		p.log.Warn("frame decode failed", "frame", i, "error", err)
	}
	return f
}

// FrameByTime returns the frame shown ms milliseconds into playback at the
// current tempo.
func (p *Parser) FrameByTime(ms int64) *media.Frame {
	return p.FrameByIndex(timeline.IndexAt(ms, p.Tempo()))
}

// FrameHash returns the MD5 of the frame shown at ms.
func (p *Parser) FrameHash(ms int64) string {
	return p.FrameByTime(ms).MD5()
}

// Stats summarizes the last decode.
func (p *Parser) Stats() Stats {
	return Stats{
		Commands:     p.interp.Stats(),
		DurationMs:   p.durationMs,
		Frames:       p.frames.Len(),
		UniqueFrames: p.frames.Unique(),
		StoredBytes:  p.frames.StoredBytes(),
		Codec:        p.codec,
		Level:        p.level,
	}
}
