package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MeKo-Tech/flamecanvas/internal/preset"
)

// PresetInfo is the JSON listing form of a preset.
type PresetInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Mode        string  `json:"mode"`
	Quality     float64 `json:"quality"`
	Transforms  int     `json:"transforms"`
	Final       bool    `json:"final"`
	RenderURL   string  `json:"render_url"`
	StreamURL   string  `json:"stream_url"`
}

// NewRouter wires all endpoints. gallery may be nil when no archive is served.
func NewRouter(renders *RenderServer, gallery *GalleryHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(renders.log()))
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/presets", renders.listPresets)
	r.Get("/presets/{preset}", renders.presetFile)
	r.Method(http.MethodGet, "/renders/{file}", renders.Handler())
	r.Method(http.MethodGet, "/stream/{preset}", renders.StreamHandler())
	r.Method(http.MethodGet, "/status", renders.StatusHandler())
	r.Method(http.MethodGet, "/status/stream", renders.StatusStreamHandler())

	if gallery != nil {
		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", gallery.List)
			r.Get("/{id}", gallery.Image)
			r.Get("/{id}/params", gallery.Params)
		})
	}

	return r
}

func (s *RenderServer) listPresets(w http.ResponseWriter, _ *http.Request) {
	ext := s.cfg.Options.Format.Ext()
	all := preset.All()
	infos := make([]PresetInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, PresetInfo{
			Name:        p.Name,
			Description: p.Description,
			Mode:        p.Mode.String(),
			Quality:     p.Quality,
			Transforms:  len(p.Transforms),
			Final:       p.Final != nil,
			RenderURL:   "/renders/" + p.Name + "." + ext,
			StreamURL:   "/stream/" + p.Name,
		})
	}
	writeJSON(w, infos, s.log())
}

// presetFile serves the preset as a YAML flame file.
func (s *RenderServer) presetFile(w http.ResponseWriter, r *http.Request) {
	p, err := preset.Lookup(chi.URLParam(r, "preset"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	if err := preset.ToFile(p).Encode(w, preset.FormatYAML); err != nil {
		s.log().Error("failed to encode preset", "preset", p.Name, "error", err)
	}
}

// cors allows browser-based viewers on other origins to fetch renders.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
