// Package ui holds the terminal styling used by cw output: board names
// get the accent color, card IDs and group labels are muted, and command
// names in help text are light gray.
package ui

import "strconv"

// ANSI256 palette.
const (
	colorAccent = 74  // blue, board and column names
	colorCmd    = 250 // light gray, command names in help
	colorMuted  = 245 // medium gray, IDs and labels
)

var noColor bool

// ForceNoColor disables color output process-wide. cw calls this at
// startup when ShouldUseColor reports false.
func ForceNoColor() {
	noColor = true
}

func render(code int, s string) string {
	if noColor {
		return s
	}
	return "\x1b[38;5;" + strconv.Itoa(code) + "m" + s + "\x1b[0m"
}

// RenderAccent styles s as a heading, e.g. a board name.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted styles s as secondary detail, e.g. a card ID.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand styles s as a command name in help output.
func RenderCommand(s string) string { return render(colorCmd, s) }
