package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _                __ _               ", "#34d399"},
	{"  ___| |_ ___ _ __    / _| | _____      __", "#2dd4bf"},
	{" / __| __/ _ \\ '_ \\  | |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
	{" \\__ \\ ||  __/ |_) | |  _| | (_) \\ V  V / ", "#38bdf8"},
	{" |___/\\__\\___| .__/  |_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	{"             |_|                          ", "#818cf8"},
}

// PrintBanner writes the stepflow banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).Profile
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
