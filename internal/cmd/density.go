package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/flamecanvas/internal/accum"
	"github.com/MeKo-Tech/flamecanvas/internal/pipeline"
)

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Show how visit counts are distributed over the image",
	Long: `Run a flame and print the distribution of per-pixel visit counts.

Pixels are bucketed by the bit length of their count, so bucket b holds
counts in [2^(b-1), 2^b). This is the spread the logarithmic tone map has to
compress into 256 levels.`,
	RunE: runDensity,
}

func init() {
	rootCmd.AddCommand(densityCmd)

	densityCmd.Flags().StringP("preset", "p", "logarithmic", "Built-in preset name")
	densityCmd.Flags().StringP("file", "f", "", "Flame file instead of a preset")
	densityCmd.Flags().Int("graph-height", 12, "Chart height in lines")
	addRenderFlags(densityCmd, "density")

	mustBindFlags(densityCmd, "density", "preset", "file", "graph-height")
}

func runDensity(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	p, err := resolvePreset(viper.GetString("density.preset"), viper.GetString("density.file"))
	if err != nil {
		return err
	}
	opts, err := renderOptions("density")
	if err != nil {
		return err
	}

	r, err := pipeline.NewRenderer("", opts, logger)
	if err != nil {
		return err
	}
	res, err := r.Render(cmd.Context(), p, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printTitle(w, "Density of "+p.Name)
	printKeyValue(w, "size", fmt.Sprintf("%dx%d", res.Histogram.Width, res.Histogram.Height))
	printKeyValue(w, "iterations", strconv.Itoa(res.Iterations))
	printKeyValue(w, "plotted", strconv.FormatUint(res.Plotted, 10))
	printKeyValue(w, "dropped", strconv.FormatUint(res.Dropped, 10))
	printKeyValue(w, "max count", strconv.FormatUint(res.Histogram.Max(), 10))
	fmt.Fprintln(w)
	printDensity(w, res.Histogram.Distribution(), viper.GetInt("density.graph_height"))
	return nil
}

// printDensity writes the bucket table followed by a chart of log10(1+pixels).
func printDensity(w io.Writer, buckets []accum.Bucket, height int) {
	rows := make([][]string, 0, len(buckets))
	series := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		counts := "0"
		if b.Bits > 0 {
			counts = fmt.Sprintf("%d-%d", b.Low, b.High)
		}
		rows = append(rows, []string{strconv.Itoa(b.Bits), counts, strconv.Itoa(b.Pixels)})
		series = append(series, math.Log10(1+float64(b.Pixels)))
	}
	fmt.Fprintln(w, renderTable([]string{"Bits", "Counts", "Pixels"}, rows))

	if len(series) < 2 {
		return
	}
	fmt.Fprintln(w, asciigraph.Plot(series,
		asciigraph.Height(max(2, height)),
		asciigraph.Caption("log10(1 + pixels) per bit-length bucket"),
	))
}
