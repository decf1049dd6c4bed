package main

import (
	"fmt"
	"os"

	"github.com/mygenetics/reportnav/internal/config"
	"github.com/mygenetics/reportnav/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportnav",
	Short: "reportnav is a menu navigator for genetic report chat bots",
	Long: `reportnav drives button-based conversations over a genetic report.
It serves the navigator over HTTP, runs it in the terminal and inspects navigation graphs.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Env file to load (default .env when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("graph", "", "YAML graph file replacing the built-in report")
}

// setup loads configuration and applies command-line overrides.
// defaultLevel is used when neither the flag nor the environment sets a level.
func setup(cmd *cobra.Command, defaultLevel string) (*config.Config, zerolog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLevel
	}
	if graph, _ := cmd.Flags().GetString("graph"); graph != "" {
		cfg.GraphFile = graph
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}
