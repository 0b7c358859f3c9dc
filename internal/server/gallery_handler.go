package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MeKo-Tech/flamecanvas/internal/gallery"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
)

// GalleryHandler serves archived renders from a gallery database.
type GalleryHandler struct {
	reader       *gallery.Reader
	logger       *slog.Logger
	cacheControl string
}

// GalleryConfig configures the gallery handler.
type GalleryConfig struct {
	Path         string
	CacheControl string
}

// GalleryItem is the JSON listing form of a gallery entry.
type GalleryItem struct {
	ID         string    `json:"id"`
	Preset     string    `json:"preset"`
	Format     string    `json:"format"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Iterations int       `json:"iterations"`
	Plotted    uint64    `json:"plotted"`
	Seed       uint64    `json:"seed"`
	CreatedAt  time.Time `json:"created_at"`
	URL        string    `json:"url"`
}

// NewGalleryHandler opens the gallery at cfg.Path read-only.
func NewGalleryHandler(cfg GalleryConfig, logger *slog.Logger) (*GalleryHandler, error) {
	reader, err := gallery.OpenReader(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gallery: %w", err)
	}
	if cfg.CacheControl == "" {
		// Entries are immutable once written.
		cfg.CacheControl = "public, max-age=86400"
	}

	return &GalleryHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// List serves GET /gallery, optionally filtered by ?preset=.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reader.List(r.URL.Query().Get("preset"))
	if err != nil {
		h.log().Error("Failed to list gallery", "error", err)
		http.Error(w, "failed to list gallery", http.StatusInternalServerError)
		return
	}

	items := make([]GalleryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, GalleryItem{
			ID:         e.ID,
			Preset:     e.Preset,
			Format:     e.Format,
			Width:      e.Width,
			Height:     e.Height,
			Iterations: e.Iterations,
			Plotted:    e.Plotted,
			Seed:       e.Seed,
			CreatedAt:  e.CreatedAt,
			URL:        "/gallery/" + e.ID,
		})
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, items, h.log())
}

// Image serves GET /gallery/{id} as the stored encoded image.
func (h *GalleryHandler) Image(w http.ResponseWriter, r *http.Request) {
	e, ok := h.read(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", pipeline.Format(e.Format).ContentType())
	if _, err := w.Write(e.Data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

// Params serves GET /gallery/{id}/params as the flame file the entry was rendered from.
func (h *GalleryHandler) Params(w http.ResponseWriter, r *http.Request) {
	e, ok := h.read(w, r)
	if !ok {
		return
	}
	if e.Params == "" {
		http.Error(w, "render has no stored parameters", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write([]byte(e.Params)); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

func (h *GalleryHandler) read(w http.ResponseWriter, r *http.Request) (gallery.Entry, bool) {
	id := chi.URLParam(r, "id")
	e, err := h.reader.Read(id)
	if errors.Is(err, gallery.ErrNotFound) {
		http.Error(w, "render not found", http.StatusNotFound)
		return gallery.Entry{}, false
	}
	if err != nil {
		h.log().Error("Failed to read render", "id", id, "error", err)
		http.Error(w, "failed to read render", http.StatusInternalServerError)
		return gallery.Entry{}, false
	}
	return e, true
}

// Close closes the gallery reader.
func (h *GalleryHandler) Close() error {
	return h.reader.Close()
}

func (h *GalleryHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
