package render

import (
	"os"

	"github.com/gookit/color"
	"golang.org/x/term"
)

const DefaultWidth = 80

// TerminalWidth returns the width of the terminal behind f, or DefaultWidth
// when f is not a terminal.
func TerminalWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// UseColor resolves a colour mode (auto, always or never) for output to f.
// "always" forces escape codes even when f is redirected.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		color.ForceOpenColor()
		return true
	case "never":
		return false
	default:
		return IsTerminal(f) && color.SupportColor()
	}
}
