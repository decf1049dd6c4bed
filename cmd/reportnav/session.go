package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/cli"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect and remove the sessions kept by the configured session backend.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBot(cmd, func(bot *reportnav.Bot) error {
			users, err := bot.ActiveUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No active sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Active Sessions:")
			for _, u := range users {
				fmt.Fprintln(out, "- "+u)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Inspect the session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBot(cmd, func(bot *reportnav.Bot) error {
			sess, err := bot.Session(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("no session for '%s'", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", args[0], err)
			}

			data, err := json.MarshalIndent(sess, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <user-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBot(cmd, func(bot *reportnav.Bot) error {
			var errs []error
			for _, user := range args {
				if err := bot.Reset(cmd.Context(), user); err != nil {
					errs = append(errs, fmt.Errorf("failed to remove '%s': %w", user, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", user)
			}
			return errors.Join(errs...)
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// withBot builds a bot from the configuration and releases it after fn.
func withBot(cmd *cobra.Command, fn func(bot *reportnav.Bot) error) error {
	cfg, logger, err := setup(cmd, "warn")
	if err != nil {
		return err
	}
	bot, res, err := cli.BuildBot(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer res.Close()
	return fn(bot)
}
