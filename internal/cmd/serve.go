package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve renders over HTTP with live progress streaming",
	Long: `Serve preset renders over HTTP.

Endpoints:
  GET /presets                 preset list (JSON)
  GET /presets/{name}          preset as a YAML flame file
  GET /renders/{name}.{format} render, cached on disk
  GET /stream/{name}           websocket stream of progress snapshots
  GET /status                  render status (JSON), /status/stream as SSE
  GET /gallery[/{id}]          archived renders (with --gallery)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("cache-dir", "", "Directory for cached renders (defaults to --output-dir)")
	serveCmd.Flags().String("gallery", "", "Gallery database to serve under /gallery")
	serveCmd.Flags().Bool("disable-cache", false, "Always re-render (still writes to disk)")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent renders (default: number of CPUs)")
	serveCmd.Flags().Duration("render-timeout", 2*time.Minute, "Timeout per render")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served renders")
	addRenderFlags(serveCmd, "serve")

	mustBindFlags(serveCmd, "serve", "addr", "cache-dir", "gallery", "disable-cache",
		"max-concurrent-renders", "render-timeout", "cache-control")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	cacheDir := viper.GetString("serve.cache_dir")
	if cacheDir == "" {
		cacheDir = viper.GetString("output-dir")
	}
	galleryPath := viper.GetString("serve.gallery")
	maxConc := viper.GetInt("serve.max_concurrent_renders")

	opts, err := renderOptions("serve")
	if err != nil {
		return err
	}

	rs, err := server.NewRenderServer(server.RenderServerConfig{
		CacheDir:             cacheDir,
		CacheControl:         viper.GetString("serve.cache_control"),
		Options:              opts,
		MaxConcurrentRenders: maxConc,
		RenderTimeout:        viper.GetDuration("serve.render_timeout"),
		DisableCache:         viper.GetBool("serve.disable_cache"),
	}, logger)
	if err != nil {
		return err
	}

	var gh *server.GalleryHandler
	if galleryPath != "" {
		gh, err = server.NewGalleryHandler(server.GalleryConfig{Path: galleryPath}, logger)
		if err != nil {
			return err
		}
		defer gh.Close()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(rs, gh),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("render server listening",
		"addr", addr,
		"cache_dir", cacheDir,
		"gallery", galleryPath,
		"max_concurrent_renders", maxConc,
		"size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
