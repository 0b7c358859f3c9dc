package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/flamecanvas/internal/gallery"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
)

func testServer(t *testing.T) (*RenderServer, string) {
	t.Helper()
	opts := pipeline.DefaultOptions()
	opts.Width = 32
	opts.Height = 32
	opts.Quality = 1
	opts.Step = 256

	dir := t.TempDir()
	s, err := NewRenderServer(RenderServerConfig{
		CacheDir: dir,
		Options:  opts,
	}, nil)
	require.NoError(t, err)
	return s, dir
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestParseRenderPath(t *testing.T) {
	t.Run("preset with extension", func(t *testing.T) {
		name, ext, ok := parseRenderPath("color.png")
		if !ok {
			t.Fatalf("expected ok")
		}
		if name != "color" || ext != "png" {
			t.Fatalf("unexpected split: %q %q", name, ext)
		}
	})

	t.Run("extension is lowercased", func(t *testing.T) {
		_, ext, ok := parseRenderPath("solo1.TIFF")
		if !ok || ext != "tiff" {
			t.Fatalf("expected tiff, got %q (ok=%v)", ext, ok)
		}
	})

	t.Run("reject missing extension", func(t *testing.T) {
		if _, _, ok := parseRenderPath("color"); ok {
			t.Fatalf("expected not ok")
		}
	})

	t.Run("reject nested path", func(t *testing.T) {
		if _, _, ok := parseRenderPath("../color.png"); ok {
			t.Fatalf("expected not ok")
		}
	})
}

func TestRenderOnDemandAndCache(t *testing.T) {
	s, dir := testServer(t)
	router := NewRouter(s, nil)

	rec := get(t, router, "/renders/gasket.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	_, err = os.Stat(filepath.Join(dir, "gasket.png"))
	require.NoError(t, err, "render is cached on disk")

	rec = get(t, router, "/renders/GASKET.png")
	require.Equal(t, http.StatusOK, rec.Code)

	status := s.Status()
	assert.Equal(t, int64(1), status.Render.TotalRendered, "second request is served from cache")
	assert.Equal(t, 0, status.Render.ActiveRenders)
	assert.Empty(t, status.Render.QueuedPresets)
}

func TestRenderDisableCache(t *testing.T) {
	s, _ := testServer(t)
	s.cfg.DisableCache = true
	router := NewRouter(s, nil)

	for range 2 {
		rec := get(t, router, "/renders/gasket.png")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int64(2), s.Status().Render.TotalRendered)
}

func TestRenderNotFound(t *testing.T) {
	s, _ := testServer(t)
	router := NewRouter(s, nil)

	tests := []string{
		"/renders/nosuchflame.png",
		"/renders/gasket.bmp",
		"/renders/gasket",
		"/stream/nosuchflame",
		"/presets/nosuchflame",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := get(t, router, target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
	assert.Equal(t, int64(0), s.Status().Render.TotalRendered)
}

func TestPresetsEndpoints(t *testing.T) {
	s, _ := testServer(t)
	router := NewRouter(s, nil)

	rec := get(t, router, "/presets")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []PresetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.NotEmpty(t, infos)

	byName := map[string]PresetInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	gasket, ok := byName["gasket"]
	require.True(t, ok)
	assert.Equal(t, "/renders/gasket.png", gasket.RenderURL)
	assert.Equal(t, "/stream/gasket", gasket.StreamURL)
	assert.Equal(t, 3, gasket.Transforms)
	assert.True(t, byName["final"].Final)

	rec = get(t, router, "/presets/color")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "name: color")
}

func TestStatusAndHealth(t *testing.T) {
	s, _ := testServer(t)
	router := NewRouter(s, nil)

	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = get(t, router, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 1, status.Render.MaxConcurrent)
	assert.Equal(t, 0, status.Stream.ActiveStreams)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := testServer(t)
	router := NewRouter(s, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/renders/gasket.png", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestStreamSnapshots(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(NewRouter(s, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream/gasket?step=300&seed=7"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.CloseNow()
	c.SetReadLimit(1 << 20)

	var (
		snapshots []StreamMessage
		result    *StreamMessage
	)
	for result == nil {
		typ, data, err := c.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, websocket.MessageText, typ)

		var msg StreamMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		require.NotEqual(t, MessageError, msg.Type, msg.Error)

		typ, data, err = c.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, websocket.MessageBinary, typ)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())

		switch msg.Type {
		case MessageSnapshot:
			snapshots = append(snapshots, msg)
		case MessageResult:
			result = &msg
		}
	}

	require.GreaterOrEqual(t, len(snapshots), 2)
	assert.Equal(t, 1, snapshots[0].Iteration)
	for i := 1; i < len(snapshots); i++ {
		assert.Greater(t, snapshots[i].Iteration, snapshots[i-1].Iteration)
	}
	last := snapshots[len(snapshots)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 1024, last.Total)
	assert.Equal(t, 1024, result.Iteration)
	assert.Equal(t, "gasket", result.Preset)

	_, _, err = c.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	assert.Equal(t, int64(1), s.Status().Render.TotalRendered)
}

func TestStreamRejectsBadStep(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, NewRouter(s, nil), "/stream/gasket?step=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGalleryEndpoints(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gallery.db")
	w, err := gallery.New(dbPath, gallery.Metadata{Name: "test"})
	require.NoError(t, err)
	id, err := w.Add(gallery.Entry{
		Preset: "color",
		Format: "png",
		Width:  8,
		Height: 8,
		Params: "name: color\n",
		Data:   []byte("png bytes"),
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	gh, err := NewGalleryHandler(GalleryConfig{Path: dbPath}, nil)
	require.NoError(t, err)
	defer gh.Close()

	s, _ := testServer(t)
	router := NewRouter(s, gh)

	rec := get(t, router, "/gallery")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []GalleryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "/gallery/"+id, items[0].URL)

	rec = get(t, router, "/gallery?preset=gasket")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Empty(t, items)

	rec = get(t, router, "/gallery/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png bytes", rec.Body.String())

	rec = get(t, router, "/gallery/"+id+"/params")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "name: color\n", rec.Body.String())

	rec = get(t, router, "/gallery/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGalleryRoutesAbsentWithoutArchive(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, NewRouter(s, nil), "/gallery")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
