package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns Markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer wrapped to width columns.
// A width of zero wraps at 80 columns.
func NewRenderer(width int) (Renderer, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// Plain returns Markdown unchanged. It is used when output is not a terminal.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RendererFor picks a glamour renderer sized to the terminal behind w,
// or Plain when w is not a terminal.
func RendererFor(w io.Writer) Renderer {
	if !IsTerminal(w) {
		return Plain
	}
	width := 80
	if cols, _, err := term.GetSize(int(w.(*os.File).Fd())); err == nil && cols > 0 {
		width = cols - 4
	}
	r, err := NewRenderer(width)
	if err != nil {
		return Plain
	}
	return r
}
