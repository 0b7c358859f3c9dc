package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/flamecanvas/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		printPresets(cmd.OutOrStdout(), preset.All())
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset as a flame file",
	Long: `Print a built-in preset as a YAML or TOML flame file. The output can be
edited and rendered with 'flamecanvas render --file'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetsShow,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsShowCmd)

	presetsShowCmd.Flags().String("format", string(preset.FormatYAML), "Flame file format: yaml or toml")
}

func printPresets(w io.Writer, presets []preset.Preset) {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		final := ""
		if p.Final != nil {
			final = "yes"
		}
		rows = append(rows, []string{
			p.Name,
			p.Mode.String(),
			strconv.FormatFloat(p.Quality, 'g', -1, 64),
			strconv.Itoa(len(p.Transforms)),
			final,
			p.Description,
		})
	}
	printTitle(w, fmt.Sprintf("%d presets", len(presets)))
	fmt.Fprintln(w, renderTable([]string{"Name", "Mode", "Quality", "Transforms", "Final", "Description"}, rows))
}

func runPresetsShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != string(preset.FormatYAML) && format != string(preset.FormatTOML) {
		return fmt.Errorf("invalid format %q: must be 'yaml' or 'toml'", format)
	}
	p, err := preset.Lookup(args[0])
	if err != nil {
		return err
	}
	return preset.ToFile(p).Encode(cmd.OutOrStdout(), preset.Format(format))
}
