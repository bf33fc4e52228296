// Package library keeps decoded karaoke tracks in memory, keyed by name, for
// the frame server and other long-lived consumers.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cdg/cdg"
	"github.com/zsiec/cdg/internal/archive"
)

// Sentinel errors returned by Manager.
var (
	ErrNotFound = errors.New("library: track not found")
	ErrExists   = errors.New("library: track already loaded")
)

// Track is a fully decoded CD+G stream. Its Parser is only read after
// publication, so lookups from many goroutines are safe.
type Track struct {
	Key      string
	Source   archive.Source
	LoadedAt time.Time
	Parser   *cdg.Parser
}

// Manager owns the set of loaded tracks.
type Manager struct {
	log     *slog.Logger
	opts    []cdg.Option
	mu      sync.RWMutex
	tracks  map[string]*Track
	loading map[string]struct{}
}

// NewManager creates an empty library. Every track is decoded with opts. If
// log is nil, slog.Default() is used.
func NewManager(log *slog.Logger, opts ...cdg.Option) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:     log.With("component", "library"),
		opts:    append([]cdg.Option{cdg.WithLogger(log)}, opts...),
		tracks:  make(map[string]*Track),
		loading: make(map[string]struct{}),
	}
}

// Load reads and decodes ref (see archive.Load) and registers it under
// key. An empty key uses the source's base name.
func (m *Manager) Load(key, ref string) (*Track, error) {
	data, src, err := archive.Load(ref)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = src.Name()
	}

	if err := m.reserve(key); err != nil {
		return nil, err
	}
	defer m.release(key)

	p := cdg.NewParser(m.opts...)
	if !p.Open(data) {
		return nil, fmt.Errorf("library: %s: %w", src, cdg.ErrEmptyInput)
	}
	p.Process()

	t := &Track{
		Key:      key,
		Source:   src,
		LoadedAt: time.Now(),
		Parser:   p,
	}
	m.mu.Lock()
	m.tracks[key] = t
	m.mu.Unlock()

	m.log.Info("track loaded", "key", key, "source", src.String(),
		"duration_ms", p.Duration(), "frames", p.FrameCount())
	return t, nil
}

func (m *Manager) reserve(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, loaded := m.tracks[key]
	_, pending := m.loading[key]
	if loaded || pending {
		m.log.Warn("track already exists, rejecting duplicate", "key", key)
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	m.loading[key] = struct{}{}
	return nil
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	delete(m.loading, key)
	m.mu.Unlock()
}

// Scan loads every .cdg file and .zip archive directly inside dir, using up
// to workers goroutines. Files that fail to load are logged and skipped;
// the number of tracks loaded is returned.
func (m *Manager) Scan(ctx context.Context, dir string, workers int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("library: scan %s: %w", dir, err)
	}
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		loaded int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(archive.IsCDG(name) || archive.IsZip(name)) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(dir, name)
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if _, err := m.Load("", path); err != nil {
				m.log.Warn("skipping track", "path", path, "error", err)
				return nil
			}
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	return loaded, err
}

// Get returns the track for key.
func (m *Manager) Get(key string) (*Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tracks[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return t, nil
}

// Remove drops a track. It reports whether the key was present.
func (m *Manager) Remove(key string) bool {
	m.mu.Lock()
	_, ok := m.tracks[key]
	delete(m.tracks, key)
	m.mu.Unlock()

	if ok {
		m.log.Info("track removed", "key", key)
	}
	return ok
}

// List returns all tracks ordered by key.
func (m *Manager) List() []*Track {
	m.mu.RLock()
	tracks := make([]*Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		tracks = append(tracks, t)
	}
	m.mu.RUnlock()

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Key < tracks[j].Key })
	return tracks
}
