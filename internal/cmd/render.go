package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a single flame",
	Long: `Render a built-in preset or a YAML/TOML flame file to an image.

Without --output the image is written to <output-dir>/<name>.<format> and an
existing file is kept unless --force is given.`,
	Example: `  flamecanvas render --preset color --width 1024 --height 1024
  flamecanvas render --file flames/spiral.yaml --supersample 2 --gamma 2.2 -o spiral.png
  flamecanvas render --preset logarithmic --frames-dir frames/`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("preset", "p", "color", "Built-in preset name (see 'flamecanvas presets')")
	renderCmd.Flags().StringP("file", "f", "", "Flame file (.yaml, .yml or .toml) instead of a preset")
	renderCmd.Flags().StringP("output", "o", "", "Output image path (overrides --output-dir)")
	renderCmd.Flags().String("frames-dir", "", "Write every progress snapshot as frame_NNNN.png into this directory")
	renderCmd.Flags().Bool("force", false, "Re-render even if the output exists")
	addRenderFlags(renderCmd, "render")

	mustBindFlags(renderCmd, "render", "preset", "file", "output", "frames-dir", "force")
}

func runRender(cmd *cobra.Command, args []string) error {
	name := viper.GetString("render.preset")
	file := viper.GetString("render.file")
	output := viper.GetString("render.output")
	force := viper.GetBool("render.force")
	outputDir := viper.GetString("output-dir")

	if logger == nil {
		initLogging()
	}

	p, err := resolvePreset(name, file)
	if err != nil {
		return err
	}
	opts, err := renderOptions("render")
	if err != nil {
		return err
	}
	opts.FramesDir = viper.GetString("render.frames_dir")

	if output != "" {
		format, err := pipeline.ParseFormat(filepath.Ext(output))
		if err != nil {
			return err
		}
		opts.Format = format
		outputDir = filepath.Dir(output)
	}

	r, err := pipeline.NewRenderer(outputDir, opts, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting render",
		"preset", p.Name,
		"mode", p.Mode.String(),
		"width", opts.Width,
		"height", opts.Height,
		"seed", opts.Seed,
		"format", opts.Format,
	)

	if output == "" {
		path, err := r.Generate(cmd.Context(), p, force, nil)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", p.Name, err)
		}
		logger.Info("Render written", "preset", p.Name, "path", path)
		return nil
	}

	res, err := r.Render(cmd.Context(), p, func(s chaos.Snapshot) error {
		logger.Debug("Progress", "preset", p.Name, "percent", fmt.Sprintf("%.1f", 100*s.Progress()))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", p.Name, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := pipeline.WriteFile(output, res.Image, opts.Format); err != nil {
		return err
	}
	logger.Info("Render written",
		"preset", p.Name,
		"path", output,
		"plotted", res.Plotted,
		"dropped", res.Dropped,
		"elapsed", res.Elapsed,
	)
	return nil
}
