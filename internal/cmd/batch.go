package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/gallery"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
	"github.com/MeKo-Tech/flamecanvas/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch [preset...]",
	Short: "Render many flames in parallel",
	Long: `Render several presets and flame files in parallel.

With no arguments and no --files every built-in preset is rendered. Output
goes to --output-dir, or into a gallery archive when --gallery is set.`,
	Example: `  flamecanvas batch --workers 4
  flamecanvas batch color solo1 solo2 solo3 --gallery flames.db
  flamecanvas batch --files 'flames/*.yaml' --progress=false`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringSlice("files", nil, "Flame files or glob patterns to render")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some renders fail")
	batchCmd.Flags().Bool("force", false, "Re-render outputs that already exist")
	batchCmd.Flags().String("gallery", "", "Archive renders into this gallery database instead of files")
	addRenderFlags(batchCmd, "batch")

	mustBindFlags(batchCmd, "batch", "files", "workers", "progress", "allow-failures", "force", "gallery")
}

func runBatch(cmd *cobra.Command, args []string) error {
	files := viper.GetStringSlice("batch.files")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")
	force := viper.GetBool("batch.force")
	galleryPath := viper.GetString("batch.gallery")
	outputDir := viper.GetString("output-dir")

	if logger == nil {
		initLogging()
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	opts, err := renderOptions("batch")
	if err != nil {
		return err
	}
	tasks, err := buildTasks(args, files, force)
	if err != nil {
		return err
	}

	r, err := pipeline.NewRenderer(outputDir, opts, logger)
	if err != nil {
		return err
	}
	br := &batchRenderer{renderer: r}

	if galleryPath != "" {
		w, err := gallery.New(galleryPath, gallery.Metadata{
			Name:        "FlameCanvas gallery",
			Description: "Fractal flame renders",
			Version:     "1.0",
			Generator:   "flamecanvas",
		})
		if err != nil {
			return fmt.Errorf("failed to open gallery: %w", err)
		}
		defer w.Close()
		br.gallery = w
	}

	logger.Info("Starting batch render",
		"renders", len(tasks),
		"workers", workers,
		"width", opts.Width,
		"height", opts.Height,
		"output_dir", outputDir,
		"gallery", galleryPath,
	)

	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers:      workers,
		Renderer:     br,
		OnProgress:   progress.Update,
		OnCheckpoint: progress.Checkpoint,
	})

	results := pool.Run(cmd.Context(), tasks)
	progress.Done()

	var failedCount int
	for _, res := range results {
		if res.Err != nil {
			failedCount++
			logger.Error("Render failed", "preset", res.Task.Preset, "source", res.Task.Source, "error", res.Err)
			continue
		}
		logger.Debug("Render finished", "preset", res.Task.Preset, "output", res.Output, "elapsed", res.Elapsed)
	}

	logger.Info(progress.Summary())

	if br.gallery != nil {
		if err := br.gallery.Flush(); err != nil {
			return fmt.Errorf("failed to flush gallery: %w", err)
		}
		logger.Info("Gallery updated", "path", galleryPath)
	}

	if failedCount > 0 {
		if !allowFailures {
			return fmt.Errorf("%d renders failed", failedCount)
		}
		logger.Warn("Some renders failed, but continuing due to --allow-failures flag", "failed_count", failedCount)
	}
	return nil
}

// buildTasks turns preset names and flame file patterns into tasks. With
// neither, every built-in preset is scheduled.
func buildTasks(names, patterns []string, force bool) ([]worker.Task, error) {
	var tasks []worker.Task
	for _, name := range names {
		p, err := preset.Lookup(name)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, worker.Task{Preset: p.Name, Force: force})
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no flame files match %q", pattern)
		}
		for _, path := range matches {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			tasks = append(tasks, worker.Task{Preset: name, Source: path, Force: force})
		}
	}

	if len(names) == 0 && len(patterns) == 0 {
		for _, name := range preset.Names() {
			tasks = append(tasks, worker.Task{Preset: name, Force: force})
		}
	}
	return tasks, nil
}

// batchRenderer renders tasks to files, or into a gallery when one is set.
type batchRenderer struct {
	renderer *pipeline.Renderer
	gallery  *gallery.Writer
}

func (b *batchRenderer) Generate(ctx context.Context, task worker.Task, report func(chaos.Snapshot)) (string, error) {
	p, err := resolvePreset(task.Preset, task.Source)
	if err != nil {
		return "", err
	}
	onSnapshot := func(s chaos.Snapshot) error {
		report(s)
		return nil
	}
	if b.gallery == nil {
		return b.renderer.Generate(ctx, p, task.Force, onSnapshot)
	}

	res, err := b.renderer.Render(ctx, p, onSnapshot)
	if err != nil {
		return "", err
	}

	opts := b.renderer.Options()
	var buf bytes.Buffer
	if err := pipeline.Encode(&buf, res.Image, opts.Format); err != nil {
		return "", err
	}
	params, err := preset.ToFile(p).Marshal(preset.FormatYAML)
	if err != nil {
		return "", err
	}

	bounds := res.Image.Bounds()
	return b.gallery.Add(gallery.Entry{
		Preset:     p.Name,
		Format:     opts.Format.Ext(),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Iterations: res.Iterations,
		Plotted:    res.Plotted,
		Seed:       opts.Seed,
		Params:     string(params),
		Data:       buf.Bytes(),
	})
}
