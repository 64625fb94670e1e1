package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ofekfell/mediaflow/internal/config"
	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mediaflow",
	Short: "mediaflow compiles media editing workflows into a single ffmpeg run",
	Long: `mediaflow takes a tree of editing actions (trim, scale, concat, crossfade...)
and renders it with one ffmpeg filter graph.

A workflow is given as a JSON or YAML document, "-" for stdin, a media
file or URL, or a result_stream token produced by the builder tools.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			loaded.LogFormat, _ = cmd.Flags().GetString("log-format")
		}
		cfg = loaded
		logger = logging.NewWithFormat(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
