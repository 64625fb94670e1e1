package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mediaflow banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"                   _ _        __ _", "#22d3ee"},
		{"  _ __ ___   ___ __| (_) __ _ / _| | _____      __", "#38bdf8"},
		{" | '_ ` _ \\ / _ \\/ _` | |/ _` | |_| |/ _ \\ \\ /\\ / /", "#60a5fa"},
		{" | | | | | |  __/ (_| | | (_| |  _| | (_) \\ V  V /", "#818cf8"},
		{" |_| |_| |_|\\___|\\__,_|_|\\__,_|_| |_|\\___/ \\_/\\_/", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
