package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/palette"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Write a palette swatch image",
	Long:  "Render a palette as a horizontal gradient strip, from a built-in palette or a file of hex colors.",
	RunE:  runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)

	paletteCmd.Flags().String("name", "reference", "Built-in palette: reference or classic")
	paletteCmd.Flags().String("hex-file", "", "File with concatenated RRGGBB colors (whitespace ignored)")
	paletteCmd.Flags().Int("width", 512, "Swatch width in pixels")
	paletteCmd.Flags().Int("height", 64, "Swatch height in pixels")
	paletteCmd.Flags().StringP("output", "o", "", "Output image (default <output-dir>/palette_<name>.png)")

	mustBindFlags(paletteCmd, "palette", "name", "hex-file", "width", "height", "output")
}

func runPalette(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("palette.name")
	hexFile := viper.GetString("palette.hex_file")
	width := viper.GetInt("palette.width")
	height := viper.GetInt("palette.height")
	output := viper.GetString("palette.output")

	if width <= 0 || height <= 0 {
		return fmt.Errorf("swatch size must be positive")
	}

	pal, err := loadPalette(name, hexFile)
	if err != nil {
		return err
	}
	if hexFile != "" {
		name = strings.TrimSuffix(filepath.Base(hexFile), filepath.Ext(hexFile))
	}
	if output == "" {
		output = filepath.Join(viper.GetString("output-dir"), "palette_"+name+".png")
	}

	format, err := pipeline.ParseFormat(filepath.Ext(output))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := pipeline.WriteFile(output, pal.Swatch(width, height), format); err != nil {
		return err
	}

	logger.Info("Palette swatch written", "palette", name, "colors", len(pal), "path", output)
	return nil
}

func loadPalette(name, hexFile string) (palette.Palette, error) {
	if hexFile == "" {
		return palette.Named(name)
	}
	data, err := os.ReadFile(hexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}
	pal, err := palette.FromHex(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", hexFile, err)
	}
	return pal, nil
}
