package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// ShowProgress reports whether interactive progress bars should be drawn.
// Progress goes to stderr, so piping stdout (e.g. --json output) keeps the bar.
func ShowProgress() bool {
	return IsTerminal(os.Stderr.Fd()) && !IsQuiet()
}

// TerminalWidth returns the width of stdout, or 80 if it is not a terminal
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
