package main

import (
	"fmt"

	"github.com/mygenetics/reportnav/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-file]",
	Short: "Check a navigation graph for consistency",
	Long: `Loads a YAML graph (or the built-in report) and reports dangling targets,
unknown screen kinds and screens that cannot be reached from the entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("graph")
		if len(args) > 0 {
			path = args[0]
		}

		graph, err := cli.LoadGraph(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		source := path
		if source == "" {
			source = "built-in report"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Graph %s is valid! ✅ (%d screens, entry %s)\n",
			source, graph.Registry.Len(), graph.Table.Entry())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
