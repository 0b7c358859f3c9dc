// Package server exposes flame renders over HTTP: cached on-demand renders,
// a websocket stream of progressive snapshots, the gallery archive and a
// status endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
)

type RenderServerConfig struct {
	CacheDir     string
	CacheControl string
	Options      pipeline.Options

	MaxConcurrentRenders int
	RenderTimeout        time.Duration
	DisableCache         bool
}

type RenderServer struct {
	renderer *pipeline.Renderer
	logger   *slog.Logger
	sem      chan struct{}
	locks    sync.Map
	cfg      RenderServerConfig

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	currentRenders sync.Map // preset name -> start time

	// Renders waiting for the semaphore.
	queuedRenders atomic.Int32
	queuedPresets sync.Map

	activeStreams atomic.Int32
}

// Status represents the current state of the render server.
type Status struct {
	Render RenderStatus `json:"render"`
	Stream StreamStatus `json:"stream"`
}

// RenderStatus contains current render operation status.
type RenderStatus struct {
	ActiveRenders  int      `json:"active_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	CurrentPresets []string `json:"current_presets"`
	MaxConcurrent  int      `json:"max_concurrent"`
	QueuedRenders  int      `json:"queued_renders"`
	QueuedPresets  []string `json:"queued_presets"`
}

type StreamStatus struct {
	ActiveStreams int `json:"active_streams"`
}

func NewRenderServer(cfg RenderServerConfig, logger *slog.Logger) (*RenderServer, error) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = "./renders"
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 2 * time.Minute
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	if cfg.Options.Width == 0 && cfg.Options.Height == 0 {
		cfg.Options = pipeline.DefaultOptions()
	}
	// Frames are a CLI concern; concurrent requests would overwrite each other.
	cfg.Options.FramesDir = ""

	renderer, err := pipeline.NewRenderer(cfg.CacheDir, cfg.Options, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init renderer: %w", err)
	}
	cfg.Options = renderer.Options()

	return &RenderServer{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		sem:      make(chan struct{}, cfg.MaxConcurrentRenders),
	}, nil
}

// Status returns the current status of the render server.
func (s *RenderServer) Status() Status {
	return Status{
		Render: RenderStatus{
			ActiveRenders:  int(s.activeRenders.Load()),
			TotalRendered:  s.totalRendered.Load(),
			TotalFailed:    s.totalFailed.Load(),
			CurrentPresets: syncMapKeys(&s.currentRenders),
			MaxConcurrent:  s.cfg.MaxConcurrentRenders,
			QueuedRenders:  int(s.queuedRenders.Load()),
			QueuedPresets:  syncMapKeys(&s.queuedPresets),
		},
		Stream: StreamStatus{
			ActiveStreams: int(s.activeStreams.Load()),
		},
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (s *RenderServer) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, s.Status(), s.log())
	})
}

// StatusStreamHandler pushes the status as Server-Sent Events every 250ms.
func (s *RenderServer) StatusStreamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		s.sendStatusEvent(w, flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				s.sendStatusEvent(w, flusher)
			}
		}
	})
}

func (s *RenderServer) sendStatusEvent(w http.ResponseWriter, flusher http.Flusher) {
	data, err := json.Marshal(s.Status())
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Handler serves GET /renders/{file}, e.g. /renders/color.png. Renders are
// produced on first request and cached on disk.
func (s *RenderServer) Handler() http.Handler {
	return http.HandlerFunc(s.serveRender)
}

func (s *RenderServer) serveRender(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := parseRenderPath(chi.URLParam(r, "file"))
	if !ok || ext != s.cfg.Options.Format.Ext() {
		http.NotFound(w, r)
		return
	}
	p, err := preset.Lookup(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	fullPath := s.renderer.OutputPath(p.Name)
	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Type", s.cfg.Options.Format.ContentType())

	if !s.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	mu := s.getLock(p.Name)
	mu.Lock()
	defer mu.Unlock()

	if !s.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	release, err := s.acquire(r.Context(), p.Name)
	if err != nil {
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	s.activeRenders.Add(1)
	s.currentRenders.Store(p.Name, start)

	_, err = s.renderer.Generate(ctx, p, s.cfg.DisableCache, nil)

	s.activeRenders.Add(-1)
	s.currentRenders.Delete(p.Name)

	if err != nil {
		s.totalFailed.Add(1)
		s.log().Error("failed to render preset", "preset", p.Name, "error", err)
		http.Error(w, fmt.Sprintf("failed to render %s: %v", p.Name, err), http.StatusInternalServerError)
		return
	}
	s.totalRendered.Add(1)
	s.log().Info("rendered on-demand", "preset", p.Name, "ms", time.Since(start).Milliseconds())

	if !fileExists(fullPath) {
		http.Error(w, "render completed but file missing on disk", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, fullPath)
}

// acquire waits for a render slot, tracking the preset as queued meanwhile.
func (s *RenderServer) acquire(ctx context.Context, name string) (func(), error) {
	s.queuedRenders.Add(1)
	s.queuedPresets.Store(name, time.Now())
	defer func() {
		s.queuedRenders.Add(-1)
		s.queuedPresets.Delete(name)
	}()

	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *RenderServer) getLock(key string) *sync.Mutex {
	if v, ok := s.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	actual, _ := s.locks.LoadOrStore(key, mu)
	return actual.(*sync.Mutex)
}

func (s *RenderServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// parseRenderPath splits "color.png" into ("color", "png").
func parseRenderPath(file string) (string, string, bool) {
	base := path.Base(file)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" || ext == "" || base != file {
		return "", "", false
	}
	return name, strings.ToLower(strings.TrimPrefix(ext, ".")), true
}

func syncMapKeys(m *sync.Map) []string {
	keys := []string{}
	m.Range(func(key, _ any) bool {
		keys = append(keys, key.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	if err != nil {
		return false
	}
	return !st.IsDir()
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
