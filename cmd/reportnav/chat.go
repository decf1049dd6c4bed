package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/cli"
	"github.com/mygenetics/reportnav/internal/presentation/tui"
	"github.com/spf13/cobra"
)

const defaultUser = "local"

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Navigate the report in the terminal",
	Long:  `Starts an interactive session. Type a button number to press it, or type a question on input screens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, "warn")
		if err != nil {
			return err
		}
		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			user = defaultUser
		}
		fresh, _ := cmd.Flags().GetBool("fresh")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		bot, res, err := cli.BuildBot(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer res.Close()

		tui.PrintBanner(os.Stdout, strings.TrimSpace(reportnav.Version))
		chat := &cli.Chat{
			Input:    os.Stdin,
			Output:   os.Stdout,
			Renderer: tui.RendererFor(os.Stdout),
			UserID:   user,
			Fresh:    fresh,
		}
		return chat.Run(ctx, bot)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("user", "u", defaultUser, "User ID of the session")
	chatCmd.Flags().Bool("fresh", false, "Start from the entry screen instead of resuming")

	rootCmd.RunE = chatCmd.RunE
}
