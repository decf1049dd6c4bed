package main

import (
	"fmt"
	"strings"

	"github.com/mygenetics/reportnav"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of reportnav",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reportnav version %s\n", strings.TrimSpace(reportnav.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
