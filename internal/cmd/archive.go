package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/gallery"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
	"github.com/MeKo-Tech/flamecanvas/internal/preset"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export gallery renders to image files",
	Long:  `Write renders stored in a gallery database back out as image files.`,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import rendered images into a gallery",
	Long: `Import a folder of rendered images (<name>.png, .bmp or .tiff) into a
gallery database. A sibling <name>.yaml flame file is stored as parameters.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().String("gallery", "", "Gallery database to read (required)")
	exportCmd.Flags().String("preset", "", "Only export renders of this preset")
	exportCmd.Flags().Bool("params", false, "Also write each render's flame file next to the image")
	mustBindFlags(exportCmd, "export", "gallery", "preset", "params")

	importCmd.Flags().String("input-dir", "./renders", "Directory containing rendered images")
	importCmd.Flags().String("gallery", "", "Gallery database to write (required)")
	importCmd.Flags().String("name", "FlameCanvas gallery", "Gallery name")
	importCmd.Flags().String("description", "Fractal flame renders", "Gallery description")
	mustBindFlags(importCmd, "import", "input-dir", "gallery", "name", "description")
}

func runExport(cmd *cobra.Command, args []string) error {
	galleryPath := viper.GetString("export.gallery")
	presetName := viper.GetString("export.preset")
	withParams := viper.GetBool("export.params")
	outputDir := viper.GetString("output-dir")

	if logger == nil {
		initLogging()
	}
	if galleryPath == "" {
		return fmt.Errorf("--gallery is required")
	}

	r, err := gallery.OpenReader(galleryPath)
	if err != nil {
		return err
	}
	defer r.Close()

	written, err := exportGallery(r, outputDir, presetName, withParams)
	if err != nil {
		return err
	}
	logger.Info("Export complete", "output_dir", outputDir, "renders", written)
	return nil
}

// exportGallery writes every matching entry into dir and returns the count.
func exportGallery(r *gallery.Reader, dir, presetName string, withParams bool) (int, error) {
	entries, err := r.List(presetName)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no renders found in gallery")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	for i, listed := range entries {
		e, err := r.Read(listed.ID)
		if err != nil {
			return i, err
		}
		path := filepath.Join(dir, e.Filename())
		if err := os.WriteFile(path, e.Data, 0644); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if withParams && e.Params != "" {
			paramsPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
			if err := os.WriteFile(paramsPath, []byte(e.Params), 0644); err != nil {
				return i, fmt.Errorf("failed to write %s: %w", paramsPath, err)
			}
		}
		logger.Debug("Exported render", "id", e.ID, "path", path)
	}
	return len(entries), nil
}

func runImport(cmd *cobra.Command, args []string) error {
	inputDir := viper.GetString("import.input_dir")
	galleryPath := viper.GetString("import.gallery")

	if logger == nil {
		initLogging()
	}
	if galleryPath == "" {
		return fmt.Errorf("--gallery is required")
	}
	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		return fmt.Errorf("input directory does not exist: %s", inputDir)
	}

	renders, err := scanRendersDirectory(inputDir)
	if err != nil {
		return fmt.Errorf("failed to scan renders directory: %w", err)
	}
	if len(renders) == 0 {
		return fmt.Errorf("no renders found in %s", inputDir)
	}
	logger.Info("Found renders", "count", len(renders))

	w, err := gallery.New(galleryPath, gallery.Metadata{
		Name:        viper.GetString("import.name"),
		Description: viper.GetString("import.description"),
		Version:     "1.0",
		Generator:   "flamecanvas",
	})
	if err != nil {
		return fmt.Errorf("failed to create gallery writer: %w", err)
	}
	defer w.Close()

	imported := 0
	for _, path := range renders {
		entry, err := readRenderFile(path)
		if err != nil {
			logger.Error("Failed to read render", "path", path, "error", err)
			continue
		}
		if _, err := w.Add(entry); err != nil {
			logger.Error("Failed to add render", "path", path, "error", err)
			continue
		}
		imported++
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush renders: %w", err)
	}
	logger.Info("Import complete", "gallery", galleryPath, "renders", imported)
	return nil
}

var (
	renderFilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.(png|bmp|tiff?)$`)
	// exportSuffix matches the short entry ID appended by Entry.Filename.
	exportSuffix = regexp.MustCompile(`_[0-9a-f]{8}$`)
)

// scanRendersDirectory returns the image files in dir, without recursion.
func scanRendersDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !renderFilePattern.MatchString(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// readRenderFile builds a gallery entry from an image file and its optional
// sibling flame file.
func readRenderFile(path string) (gallery.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gallery.Entry{}, err
	}
	img, format, err := pipeline.Decode(bytes.NewReader(data))
	if err != nil {
		return gallery.Entry{}, err
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	entry := gallery.Entry{
		Preset: exportSuffix.ReplaceAllString(filepath.Base(base), ""),
		Format: format.Ext(),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Data:   data,
	}
	params, err := os.ReadFile(base + ".yaml")
	if err != nil {
		return entry, nil
	}
	entry.Params = string(params)
	f, err := preset.Decode(params, preset.FormatYAML)
	if err != nil {
		return gallery.Entry{}, fmt.Errorf("%s.yaml: %w", base, err)
	}
	if f.Name != "" {
		entry.Preset = f.Name
	}
	return entry, nil
}
