package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ofekfell/mediaflow/internal/cli"
	"github.com/ofekfell/mediaflow/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var explainCmd = &cobra.Command{
	Use:   "explain <workflow>",
	Short: "Show the compiled filter graph and ffmpeg command without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := cli.ReadWorkflow(args[0], os.Stdin)
		if err != nil {
			return err
		}

		engine, closeFn, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		plan, err := engine.Plan(context.Background(), root)
		if err != nil {
			return err
		}

		md := tui.Explain(root, plan)
		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
