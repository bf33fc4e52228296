package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cdg/internal/timeline"
	"github.com/zsiec/cdg/media"
)

// Source is the subset of cdg.Parser the pipeline reads from. Accepting an
// interface keeps the pipeline testable with stub timelines.
type Source interface {
	FrameCount() int
	FrameByIndex(i int) *media.Frame
	Tempo() int
}

// FrameSink receives rendered frames. WriteFrame is called concurrently
// from up to Options.Workers goroutines.
type FrameSink interface {
	WriteFrame(ctx context.Context, index int, ms int64, f *media.Frame) error
}

// Options controls which frames are rendered.
type Options struct {
	// Every writes one frame out of every N. Values below 1 mean 1.
	Every int
	// Start and End bound the frame range; End <= 0 means the last frame.
	Start, End int
	// Workers bounds concurrent WriteFrame calls. Values below 1 mean 1.
	Workers int
}

// Result summarizes a completed run.
type Result struct {
	Written int64         `json:"written"`
	Frames  int           `json:"frames"`
	Elapsed time.Duration `json:"elapsed"`
}

// Pipeline bridges a decoded timeline and a sink.
type Pipeline struct {
	log  *slog.Logger
	src  Source
	sink FrameSink
	opts Options

	written atomic.Int64
}

// New creates a Pipeline. If log is nil, slog.Default() is used.
func New(log *slog.Logger, src Source, sink FrameSink, opts Options) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if opts.Every < 1 {
		opts.Every = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		log:  log.With("component", "pipeline"),
		src:  src,
		sink: sink,
		opts: opts,
	}
}

// Written returns the number of frames delivered so far.
func (p *Pipeline) Written() int64 {
	return p.written.Load()
}

// Run renders the selected frames. It stops at the first sink error or
// when ctx is cancelled, returning that error.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	count := p.src.FrameCount()
	end := p.opts.End
	if end <= 0 || end > count {
		end = count
	}
	tempo := p.src.Tempo()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	p.log.Info("render starting", "frames", count, "start", p.opts.Start, "end", end,
		"every", p.opts.Every, "workers", p.opts.Workers)

	for i := max(p.opts.Start, 0); i < end; i += p.opts.Every {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := p.src.FrameByIndex(i)
			if err := p.sink.WriteFrame(gctx, i, FrameTime(i, tempo), f); err != nil {
				return fmt.Errorf("pipeline: frame %d: %w", i, err)
			}
			p.written.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res := Result{Written: p.written.Load(), Frames: count, Elapsed: time.Since(start)}
	if err != nil {
		p.log.Warn("render stopped", "written", res.Written, "error", err)
		return res, err
	}
	p.log.Info("render complete", "written", res.Written, "elapsed", res.Elapsed)
	return res, nil
}

// FrameTime returns the playback time in milliseconds at which frame i is
// shown under tempo.
func FrameTime(i, tempo int) int64 {
	if tempo <= 0 {
		tempo = timeline.DefaultTempo
	}
	return int64(i) * timeline.FrameIntervalMs * timeline.DefaultTempo / int64(tempo)
}
