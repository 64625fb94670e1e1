package main

import (
	"fmt"
	"strings"

	"github.com/ofekfell/mediaflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mediaflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mediaflow version %s\n", strings.TrimSpace(mediaflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
