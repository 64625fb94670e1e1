package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ofekfell/mediaflow/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <workflow>",
	Short: "Render a workflow and print the output path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
			cfg.OutputDir = dir
		}
		if noProbe, _ := cmd.Flags().GetBool("no-probe"); noProbe {
			cfg.Probe = false
		}

		root, err := cli.ReadWorkflow(args[0], os.Stdin)
		if err != nil {
			return err
		}

		engine, closeFn, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path, err := engine.Render(ctx, root)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("output-dir", "o", "", "Directory for the rendered file")
	renderCmd.Flags().Bool("no-probe", false, "Do not probe inputs for missing audio")
}
