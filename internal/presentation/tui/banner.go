package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner with the release version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   ___                       _   _  _            ", "#34d399"},
		{"  | _ \\___ _ __  ___ _ _| |_| \\| |__ ___ __ ", "#2dd4bf"},
		{"  |   / -_) '_ \\/ _ \\ '_|  _| .` / _` \\ V / ", "#22d3ee"},
		{"  |_|_\\___| .__/\\___/_|  \\__|_|\\_\\__,_|\\_/  ", "#38bdf8"},
		{"          |_|                                ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  genetic report navigator "+version).Faint())
	fmt.Fprintln(w)
}

// Notice formats a short highlighted line shown above a screen.
func Notice(w io.Writer, text string) string {
	out := termenv.NewOutput(w)
	return out.String("! " + text).Foreground(out.Color("#fbbf24")).String()
}

// Button formats a numbered button.
func Button(w io.Writer, n int, caption string) string {
	out := termenv.NewOutput(w)
	return fmt.Sprintf("%s %s", out.String(fmt.Sprintf("[%d]", n)).Bold().Foreground(out.Color("#818cf8")), caption)
}
