package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/presentation/tui"
	"github.com/mygenetics/reportnav/pkg/domain"
)

// ChatBot is the part of the bot the terminal chat drives.
type ChatBot interface {
	Start(ctx context.Context, userID string) (*reportnav.Reply, error)
	Current(ctx context.Context, userID string) (*reportnav.Reply, error)
	Handle(ctx context.Context, in domain.Inbound) (*reportnav.Reply, error)
}

// Chat runs an interactive session in a terminal.
// Buttons are pressed by typing their number; anything else is sent as text.
type Chat struct {
	Input    io.Reader
	Output   io.Writer
	Renderer tui.Renderer
	UserID   string

	// Fresh restarts the session instead of resuming it.
	Fresh bool
}

// Run executes the chat loop until the input ends, the user quits or ctx is canceled.
func (c *Chat) Run(ctx context.Context, bot ChatBot) error {
	if c.Input == nil || c.Output == nil {
		return fmt.Errorf("chat input and output must be set")
	}
	if c.Renderer == nil {
		c.Renderer = tui.Plain
	}
	lines := bufio.NewReader(c.Input)

	var (
		reply *reportnav.Reply
		err   error
	)
	if c.Fresh {
		reply, err = bot.Start(ctx, c.UserID)
	} else {
		reply, err = bot.Current(ctx, c.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	show := true
	for {
		if show {
			c.show(reply)
		}
		show = true

		fmt.Fprint(c.Output, "> ")
		line, err := lines.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return handleExecutionError(err)
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			show = false
			continue
		case "/quit", "quit", "exit":
			fmt.Fprintln(c.Output, "Bye!")
			return nil
		case "/restart":
			reply, err = bot.Start(ctx, c.UserID)
		default:
			next, err := bot.Handle(ctx, c.inbound(input, reply))
			if errors.Is(err, reportnav.ErrInvalidEvent) {
				printSystemMessage(c.Output, "Message rejected: %v", err)
				show = false
				continue
			}
			if err != nil {
				return handleExecutionError(err)
			}
			reply = next
			continue
		}
		if err != nil {
			return handleExecutionError(err)
		}
	}
}

// inbound maps a typed line to a button press or a text message.
func (c *Chat) inbound(input string, last *reportnav.Reply) domain.Inbound {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(last.Payload.Buttons) {
		if origin, label, err := domain.DecodeCallback(last.Payload.Buttons[n-1].Data); err == nil {
			return domain.Inbound{UserID: c.UserID, Label: label, Origin: origin}
		}
	}
	return domain.Inbound{UserID: c.UserID, Label: domain.ActionFreeText, Text: input}
}

func (c *Chat) show(reply *reportnav.Reply) {
	if reply.Notice != "" {
		fmt.Fprintln(c.Output, tui.Notice(c.Output, reply.Notice))
	}

	text := reply.Payload.Text
	if rendered, err := c.Renderer(text); err == nil {
		text = rendered
	}
	fmt.Fprintln(c.Output, strings.TrimSpace(text))

	if reply.Degraded {
		printSystemMessage(c.Output, "Service degraded, try again later.")
	}
	for i, b := range reply.Payload.Buttons {
		fmt.Fprintln(c.Output, tui.Button(c.Output, i+1, b.Caption))
	}
}
