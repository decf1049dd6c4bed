package main

import (
	"fmt"

	"github.com/mygenetics/reportnav/internal/cli"
	"github.com/mygenetics/reportnav/internal/presentation/graph"
	"github.com/mygenetics/reportnav/pkg/adapters/graphfile"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [graph-file]",
	Short: "Export the navigation graph",
	Long: `Outputs a Mermaid diagram (graph TD) of the navigation graph, or the graph
as YAML with --format yaml. The YAML export can be edited and loaded with --graph.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("graph")
		if len(args) > 0 {
			path = args[0]
		}
		format, _ := cmd.Flags().GetString("format")

		g, err := cli.LoadGraph(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(g.Table, nil))
		case "yaml":
			data, err := graphfile.Marshal(g)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		default:
			return fmt.Errorf("unknown format %q (expected mermaid or yaml)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or yaml")
}
