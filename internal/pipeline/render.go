// Package pipeline turns presets into finished images: it runs the chaos game,
// post-processes the tone-mapped result and writes it to disk.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/flamecanvas/internal/accum"
	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

// Options control image size, iteration budget and output encoding.
type Options struct {
	Width, Height int
	// Quality overrides the preset quality when positive.
	Quality float64
	Step    int
	Seed    uint64

	Format   Format
	Backdrop string
	Post     tonemap.PostOptions

	// FramesDir, when set, receives every checkpoint snapshot as frame_NNNN.png.
	FramesDir string
}

// DefaultOptions returns square 600px PNG output.
func DefaultOptions() Options {
	return Options{
		Width:    600,
		Height:   600,
		Step:     chaos.DefaultStep,
		Seed:     1,
		Format:   FormatPNG,
		Backdrop: BackdropNone,
	}
}

// Result is a finished render.
type Result struct {
	Preset     string
	Image      *image.NRGBA
	Histogram  *accum.Histogram
	Iterations int
	Plotted    uint64
	Dropped    uint64
	Elapsed    time.Duration
}

// SnapshotFunc observes progress snapshots. The image is at render
// resolution, before post-processing.
type SnapshotFunc func(chaos.Snapshot) error

// Renderer runs presets through the chaos game and writes the results.
type Renderer struct {
	logger    *slog.Logger
	outputDir string
	opts      Options
}

// NewRenderer validates opts and prepares a renderer writing into outputDir.
func NewRenderer(outputDir string, opts Options, logger *slog.Logger) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.Post.Supersample < 0 {
		return nil, fmt.Errorf("supersample must not be negative")
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	backdrop, err := ParseBackdrop(opts.Backdrop)
	if err != nil {
		return nil, err
	}
	opts.Backdrop = backdrop

	return &Renderer{
		outputDir: outputDir,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Options returns the renderer's effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render runs p to completion and returns the post-processed image.
// onSnapshot, when non-nil, is called for every checkpoint.
func (r *Renderer) Render(ctx context.Context, p preset.Preset, onSnapshot SnapshotFunc) (*Result, error) {
	ss := max(1, r.opts.Post.Supersample)
	cfg, err := p.Config(r.opts.Width*ss, r.opts.Height*ss)
	if err != nil {
		return nil, err
	}
	if r.opts.Quality > 0 {
		cfg.Quality = r.opts.Quality
	}
	cfg.Step = r.opts.Step

	rng := rand.New(rand.NewPCG(r.opts.Seed, r.opts.Seed^0x9e3779b97f4a7c15))
	game, err := chaos.New(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	if r.opts.FramesDir != "" {
		if err := os.MkdirAll(r.opts.FramesDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create frames dir: %w", err)
		}
	}

	r.log().Info("Rendering", "preset", p.Name, "mode", cfg.Mode.String(),
		"width", cfg.Width, "height", cfg.Height, "iterations", game.Total())

	start := time.Now()
	frame := 0
	var last chaos.Snapshot
	err = game.Run(ctx, func(s chaos.Snapshot) error {
		last = s
		r.log().Debug("Checkpoint", "preset", p.Name, "iteration", s.Iteration, "total", s.Total)
		if r.opts.FramesDir != "" {
			path := filepath.Join(r.opts.FramesDir, fmt.Sprintf("frame_%04d.png", frame))
			if err := WriteFile(path, s.Image, FormatPNG); err != nil {
				return fmt.Errorf("failed to write frame %d: %w", frame, err)
			}
		}
		frame++
		if onSnapshot != nil {
			return onSnapshot(s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	img := tonemap.PostProcess(last.Image, r.opts.Post)
	img = Composite(img, r.opts.Backdrop, int64(r.opts.Seed))

	plotted, dropped := game.Stats()
	res := &Result{
		Preset:     p.Name,
		Image:      img,
		Histogram:  game.Histogram(),
		Iterations: game.Iteration(),
		Plotted:    plotted,
		Dropped:    dropped,
		Elapsed:    time.Since(start),
	}
	r.log().Info("Rendered", "preset", p.Name, "plotted", plotted, "dropped", dropped,
		"frames", frame, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// OutputPath is where Generate writes the named preset.
func (r *Renderer) OutputPath(name string) string {
	return filepath.Join(r.outputDir, name+"."+r.opts.Format.Ext())
}

// Generate renders p and writes it into the output directory. An existing
// output is kept unless force is set. onSnapshot is passed to Render.
func (r *Renderer) Generate(ctx context.Context, p preset.Preset, force bool, onSnapshot SnapshotFunc) (string, error) {
	finalPath := r.OutputPath(p.Name)
	if !force {
		if _, err := os.Stat(finalPath); err == nil {
			r.log().Info("Render already exists; skipping", "preset", p.Name, "path", finalPath)
			return finalPath, nil
		}
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	res, err := r.Render(ctx, p, onSnapshot)
	if err != nil {
		return "", err
	}

	r.log().Info("Writing render", "preset", p.Name, "path", finalPath)
	if err := WriteFile(finalPath, res.Image, r.opts.Format); err != nil {
		return "", err
	}
	return finalPath, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
