package distribution

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/zsiec/cdg/cdg"
	"github.com/zsiec/cdg/internal/certs"
	"github.com/zsiec/cdg/internal/library"
	"github.com/zsiec/cdg/internal/pipeline"
	"github.com/zsiec/cdg/internal/timeline"
	"github.com/zsiec/cdg/media"
)

// TrackStore is the subset of library.Manager the server reads from.
type TrackStore interface {
	Get(key string) (*library.Track, error)
	List() []*library.Track
}

// TrackInfo is the JSON summary of a loaded track, returned by the
// /api/tracks list endpoint.
type TrackInfo struct {
	Key          string `json:"key"`
	Source       string `json:"source"`
	DurationMs   int64  `json:"durationMs"`
	Frames       int    `json:"frames"`
	UniqueFrames int    `json:"uniqueFrames"`
	LoadedAt     int64  `json:"loadedAt"`
}

// TrackDetail is the JSON response for /api/tracks/{key}.
type TrackDetail struct {
	TrackInfo
	Tempo        int       `json:"tempo"`
	LastUpdateMs int64     `json:"lastUpdateMs"`
	Stats        cdg.Stats `json:"stats"`
}

type frameHashResponse struct {
	TimeMs int64  `json:"t"`
	Tempo  int    `json:"tempo"`
	Index  int    `json:"index"`
	Hash   string `json:"hash"`
}

type certHashResponse struct {
	Hash string `json:"hash"`
	Addr string `json:"addr"`
}

// ServerConfig holds the configuration for the frame Server.
type ServerConfig struct {
	Addr    string
	Cert    *certs.CertInfo
	Tracks  TrackStore
	Log     *slog.Logger
	NoCache bool
}

// Server is the HTTP/3 frame server.
type Server struct {
	config ServerConfig
	log    *slog.Logger
	h3     *http3.Server
}

// NewServer creates a frame Server. It returns an error if required fields
// are missing.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Cert == nil {
		return nil, errors.New("distribution: Cert is required")
	}
	if config.Addr == "" {
		return nil, errors.New("distribution: Addr is required")
	}
	if config.Tracks == nil {
		return nil, errors.New("distribution: Tracks is required")
	}
	log := config.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{config: config, log: log.With("component", "distribution")}, nil
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tracks", s.handleListTracks)
	mux.HandleFunc("GET /api/tracks/{key}", s.handleTrack)
	mux.HandleFunc("GET /api/tracks/{key}/frames/{index}", s.handleFrameByIndex)
	mux.HandleFunc("GET /api/tracks/{key}/frame", s.handleFrameByTime)
	mux.HandleFunc("GET /api/tracks/{key}/hash", s.handleFrameHash)
	mux.HandleFunc("GET /api/cert-hash", s.handleCertHash)
}

// APIHandler returns an http.Handler for the REST API.
func (s *Server) APIHandler() http.Handler {
	mux := http.NewServeMux()
	s.registerAPIRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// Start launches the HTTP/3 server and blocks until the context is
// cancelled or a fatal error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.h3 = &http3.Server{
		Addr:    s.config.Addr,
		Handler: s.APIHandler(),
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{s.config.Cert.TLSCert},
		},
		QUICConfig: &quic.Config{
			MaxIdleTimeout: 30 * time.Second,
			Allow0RTT:      true,
		},
	}

	s.log.Info("HTTP/3 server listening", "addr", s.config.Addr)

	stop := context.AfterFunc(ctx, func() { s.h3.Close() })
	defer stop()

	err := s.h3.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func trackInfo(t *library.Track) TrackInfo {
	st := t.Parser.Stats()
	return TrackInfo{
		Key:          t.Key,
		Source:       t.Source.String(),
		DurationMs:   t.Parser.Duration(),
		Frames:       t.Parser.FrameCount(),
		UniqueFrames: st.UniqueFrames,
		LoadedAt:     t.LoadedAt.UnixMilli(),
	}
}

func (s *Server) handleListTracks(w http.ResponseWriter, _ *http.Request) {
	tracks := s.config.Tracks.List()
	resp := make([]TrackInfo, len(tracks))
	for i, t := range tracks {
		resp[i] = trackInfo(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*library.Track, bool) {
	t, err := s.config.Tracks.Get(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, "track not found")
		return nil, false
	}
	return t, true
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, TrackDetail{
		TrackInfo:    trackInfo(t),
		Tempo:        t.Parser.Tempo(),
		LastUpdateMs: t.Parser.LastUpdate(),
		Stats:        t.Parser.Stats(),
	})
}

func (s *Server) handleFrameByIndex(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}
	tempo := t.Parser.Tempo()
	s.writeFrame(w, r, t.Parser.FrameByIndex(index), pipeline.FrameTime(index, tempo))
}

// timeQuery parses the t (milliseconds) and optional tempo parameters.
// Requests may override the track tempo without changing it.
func timeQuery(r *http.Request, fallbackTempo int) (ms int64, tempo int, err error) {
	q := r.URL.Query()
	ms, err = strconv.ParseInt(q.Get("t"), 10, 64)
	if err != nil || ms < 0 {
		return 0, 0, errors.New("t must be a non-negative millisecond offset")
	}
	tempo = fallbackTempo
	if v := q.Get("tempo"); v != "" {
		tempo, err = strconv.Atoi(v)
		if err != nil || tempo <= 0 {
			return 0, 0, errors.New("tempo must be a positive percentage")
		}
	}
	return ms, tempo, nil
}

func (s *Server) handleFrameByTime(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ms, tempo, err := timeQuery(r, t.Parser.Tempo())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeFrame(w, r, t.Parser.FrameByIndex(timeline.IndexAt(ms, tempo)), ms)
}

func (s *Server) handleFrameHash(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ms, tempo, err := timeQuery(r, t.Parser.Tempo())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	index := timeline.IndexAt(ms, tempo)
	writeJSON(w, http.StatusOK, frameHashResponse{
		TimeMs: ms,
		Tempo:  tempo,
		Index:  index,
		Hash:   t.Parser.FrameByIndex(index).MD5(),
	})
}

// writeFrame encodes f as PNG. The optional scale and stamp query
// parameters are passed to pipeline.Still.
func (s *Server) writeFrame(w http.ResponseWriter, r *http.Request, f *media.Frame, ms int64) {
	opts := pipeline.StillOptions{Scale: 1}
	q := r.URL.Query()
	if v := q.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pipeline.MaxScale {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("scale must be between 1 and %d", pipeline.MaxScale))
			return
		}
		opts.Scale = n
	}
	opts.Stamp, _ = strconv.ParseBool(q.Get("stamp"))

	tag := fmt.Sprintf("%s-x%d", f.MD5(), opts.Scale)
	if opts.Stamp {
		tag += fmt.Sprintf("-t%d", ms)
	}
	etag := strconv.Quote(tag)
	h := w.Header()
	h.Set("X-Frame-Index", strconv.Itoa(f.Index))
	if s.config.NoCache {
		h.Set("Cache-Control", "no-store")
	} else {
		h.Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	h.Set("Content-Type", "image/png")
	if err := pipeline.EncodePNG(w, f, ms, opts); err != nil {
		s.log.Warn("frame encode failed", "index", f.Index, "error", err)
	}
}

func (s *Server) handleCertHash(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, certHashResponse{
		Hash: s.config.Cert.FingerprintBase64(),
		Addr: s.config.Addr,
	})
}
