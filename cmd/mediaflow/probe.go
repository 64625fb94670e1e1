package main

import (
	"context"
	"encoding/json"

	"github.com/ofekfell/mediaflow/internal/cli"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file-or-url>",
	Short: "Print media information as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		info, err := engine.Probe(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
