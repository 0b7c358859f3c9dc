package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/chaos"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
	"github.com/MeKo-Tech/flamecanvas/internal/tonemap"
)

var renderFlagNames = []string{
	"width", "height", "quality", "step", "seed", "format",
	"gamma", "blur", "supersample", "backdrop",
}

// addRenderFlags registers the image and post-processing flags shared by
// render, batch, serve and density, bound under prefix.
func addRenderFlags(cmd *cobra.Command, prefix string) {
	defaults := pipeline.DefaultOptions()

	cmd.Flags().Int("width", defaults.Width, "Image width in pixels")
	cmd.Flags().Int("height", defaults.Height, "Image height in pixels")
	cmd.Flags().Float64("quality", 0, "Iterations per pixel (0 keeps the preset's quality)")
	cmd.Flags().Int("step", chaos.DefaultStep, "Iterations between progress snapshots")
	cmd.Flags().Uint64("seed", defaults.Seed, "Random seed")
	cmd.Flags().String("format", string(defaults.Format), "Image format: png, bmp or tiff")
	cmd.Flags().Float32("gamma", 0, "Gamma correction applied after tone mapping (0 disables)")
	cmd.Flags().Float32("blur", 0, "Gaussian blur sigma applied after tone mapping (0 disables)")
	cmd.Flags().Int("supersample", 1, "Render at N times the size and downscale")
	cmd.Flags().String("backdrop", pipeline.BackdropNone, "Backdrop: none, white, black or paper")

	mustBindFlags(cmd, prefix, renderFlagNames...)
}

// renderOptions reads the shared render flags bound under prefix.
func renderOptions(prefix string) (pipeline.Options, error) {
	key := func(name string) string { return prefix + "." + name }

	format, err := pipeline.ParseFormat(viper.GetString(key("format")))
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Width:    viper.GetInt(key("width")),
		Height:   viper.GetInt(key("height")),
		Quality:  viper.GetFloat64(key("quality")),
		Step:     viper.GetInt(key("step")),
		Seed:     viper.GetUint64(key("seed")),
		Format:   format,
		Backdrop: viper.GetString(key("backdrop")),
		Post: tonemap.PostOptions{
			Gamma:       float32(viper.GetFloat64(key("gamma"))),
			Blur:        float32(viper.GetFloat64(key("blur"))),
			Supersample: viper.GetInt(key("supersample")),
		},
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return pipeline.Options{}, fmt.Errorf("width and height must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.Quality < 0 {
		return pipeline.Options{}, fmt.Errorf("quality must not be negative")
	}
	if opts.Step <= 0 {
		return pipeline.Options{}, fmt.Errorf("step must be positive")
	}
	if opts.Post.Supersample < 1 {
		return pipeline.Options{}, fmt.Errorf("supersample must be at least 1")
	}
	return opts, nil
}

// resolvePreset loads a flame file when file is set and a built-in preset otherwise.
func resolvePreset(name, file string) (preset.Preset, error) {
	if file != "" {
		p, err := preset.Load(file)
		if err != nil {
			return preset.Preset{}, fmt.Errorf("failed to load flame file: %w", err)
		}
		return p, nil
	}
	if name == "" {
		return preset.Preset{}, fmt.Errorf("either --preset or --file is required")
	}
	return preset.Lookup(name)
}
