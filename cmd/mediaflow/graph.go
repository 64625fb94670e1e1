package main

import (
	"fmt"
	"os"

	"github.com/ofekfell/mediaflow/internal/cli"
	"github.com/ofekfell/mediaflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <workflow>",
	Short: "Export the workflow as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR) of the workflow tree. Inputs used more than once are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := cli.ReadWorkflow(args[0], os.Stdin)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(root, &graph.Overlay{Usage: graph.Usage(root)}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
