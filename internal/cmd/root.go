package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flamecanvas",
	Short: "A fractal flame renderer",
	Long: `FlameCanvas renders fractal flames with the chaos game.

It runs built-in presets or YAML/TOML flame files, tone-maps the resulting
density histogram and writes PNG, BMP or TIFF images. Renders can be batched
into a gallery archive or served over HTTP with live progress streaming.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// Execute runs the root command. Cancelling ctx aborts running renders.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "./renders", "Output directory for rendered images")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	if err := viper.BindPFlag("output-dir", rootCmd.PersistentFlags().Lookup("output-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("FLAMECANVAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// initLogging installs a charmbracelet logger as the slog handler.
func initLogging() {
	level := charmlog.InfoLevel
	if viper.GetBool("verbose") {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func mustBindFlags(cmd *cobra.Command, prefix string, flags ...string) {
	for _, name := range flags {
		key := prefix + "." + flagKey(name)
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

// flagKey maps a flag name to its config key: "frames-dir" -> "frames_dir".
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
