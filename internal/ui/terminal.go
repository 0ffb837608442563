package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether cw output on stdout should carry ANSI
// colors. Precedence: NO_COLOR (any value disables, per no-color.org),
// then CLICOLOR_FORCE=1 enables even without a TTY, then CLICOLOR=0
// disables, then TTY detection decides.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
