package main

import (
	"fmt"
	"os"

	"github.com/ofekfell/mediaflow/internal/cli"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow>",
	Short: "Check a workflow without rendering it",
	Long:  `Decodes the workflow, checks every action's parameters and arity, and reports all problems found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := cli.ReadWorkflow(args[0], os.Stdin)
		if err == nil {
			err = dsl.Validate(root)
		}
		if err != nil {
			errs := schema.Errors(err)
			if errs == nil {
				errs = []error{err}
			}
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
			}
			return fmt.Errorf("workflow is invalid")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Workflow is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
