package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
)

// Stream message types. Every "snapshot" and "result" message is followed
// by one binary message carrying the PNG image.
const (
	MessageSnapshot = "snapshot"
	MessageResult   = "result"
	MessageError    = "error"
)

// StreamMessage is the JSON text frame sent over /stream/{preset}.
type StreamMessage struct {
	Type      string  `json:"type"`
	Preset    string  `json:"preset"`
	Iteration int     `json:"iteration,omitempty"`
	Total     int     `json:"total,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Done      bool    `json:"done,omitempty"`
	Plotted   uint64  `json:"plotted,omitempty"`
	Dropped   uint64  `json:"dropped,omitempty"`
	ElapsedMS int64   `json:"elapsed_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// StreamHandler upgrades to a websocket and streams every checkpoint of a
// fresh render, followed by the post-processed result. The query parameters
// step and seed override the server defaults.
func (s *RenderServer) StreamHandler() http.Handler {
	return http.HandlerFunc(s.serveStream)
}

func (s *RenderServer) serveStream(w http.ResponseWriter, r *http.Request) {
	p, err := preset.Lookup(chi.URLParam(r, "preset"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	opts, err := s.streamOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	renderer, err := pipeline.NewRenderer(s.cfg.CacheDir, opts, s.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log().Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	s.activeStreams.Add(1)
	defer s.activeStreams.Add(-1)

	// CloseRead cancels ctx once the client goes away.
	ctx := c.CloseRead(r.Context())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	release, err := s.acquire(ctx, p.Name)
	if err != nil {
		c.Close(websocket.StatusTryAgainLater, "cancelled while queued")
		return
	}
	defer release()

	s.activeRenders.Add(1)
	s.currentRenders.Store(p.Name, time.Now())
	defer func() {
		s.activeRenders.Add(-1)
		s.currentRenders.Delete(p.Name)
	}()

	res, err := renderer.Render(ctx, p, func(snap chaos.Snapshot) error {
		msg := StreamMessage{
			Type:      MessageSnapshot,
			Preset:    p.Name,
			Iteration: snap.Iteration,
			Total:     snap.Total,
			Progress:  snap.Progress(),
			Done:      snap.Done,
			Plotted:   snap.Plotted,
		}
		return sendFrame(ctx, c, msg, snap.Image)
	})
	if err != nil {
		s.totalFailed.Add(1)
		if errors.Is(err, context.Canceled) {
			s.log().Info("stream closed by client", "preset", p.Name)
			return
		}
		s.log().Error("stream render failed", "preset", p.Name, "error", err)
		_ = wsjson.Write(ctx, c, StreamMessage{Type: MessageError, Preset: p.Name, Error: err.Error()})
		c.Close(websocket.StatusInternalError, "render failed")
		return
	}
	s.totalRendered.Add(1)

	msg := StreamMessage{
		Type:      MessageResult,
		Preset:    p.Name,
		Iteration: res.Iterations,
		Total:     res.Iterations,
		Progress:  1,
		Done:      true,
		Plotted:   res.Plotted,
		Dropped:   res.Dropped,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	if err := sendFrame(ctx, c, msg, res.Image); err != nil {
		s.log().Warn("failed to send result", "preset", p.Name, "error", err)
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
}

func (s *RenderServer) streamOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Options
	q := r.URL.Query()
	if v := q.Get("step"); v != "" {
		step, err := strconv.Atoi(v)
		if err != nil || step <= 0 {
			return opts, errors.New("step must be a positive integer")
		}
		opts.Step = step
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New("seed must be an unsigned integer")
		}
		opts.Seed = seed
	}
	return opts, nil
}

func sendFrame(ctx context.Context, c *websocket.Conn, msg StreamMessage, img image.Image) error {
	if err := wsjson.Write(ctx, c, msg); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pipeline.Encode(&buf, img, pipeline.FormatPNG); err != nil {
		return err
	}
	return c.Write(ctx, websocket.MessageBinary, buf.Bytes())
}
