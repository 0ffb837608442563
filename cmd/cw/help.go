package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule rewrites one kind of token in Cobra's plain-text help.
type helpRule struct {
	re    *regexp.Regexp
	style func(match []string) string
}

// helpRules colorizes cobra help output: group headers like "Boards:"
// get the accent color, command names in listings are styled as
// commands, and flag types with their defaults are muted.
var helpRules = []helpRule{
	{
		// Unindented "Boards:" / "Flags:" section headers.
		re:    regexp.MustCompile(`(?m)^([A-Z][^\n]*:)\s*$`),
		style: func(m []string) string { return ui.RenderAccent(strings.TrimSpace(m[0])) },
	},
	{
		// "  create  Create a card" listing rows.
		re:    regexp.MustCompile(`(?m)^(  )(\S+)(  )`),
		style: func(m []string) string { return m[1] + ui.RenderCommand(m[2]) + m[3] },
	},
	{
		// "--board string" flag type annotations.
		re:    regexp.MustCompile(`(--?\S+\s+)(string|int|int32|duration|stringSlice|stringArray)`),
		style: func(m []string) string { return m[1] + ui.RenderMuted(m[2]) },
	},
	{
		// (default "...") values.
		re:    regexp.MustCompile(`\(default "[^"]*"\)`),
		style: func(m []string) string { return ui.RenderMuted(m[0]) },
	},
}

// colorizedHelpFunc wraps Cobra's default help so the usage text gets
// ANSI styling when the terminal supports it.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if !ui.ShouldUseColor() {
			cmd.SetOut(cmd.OutOrStdout())
			_ = cmd.Usage()
			return
		}

		orig := cmd.OutOrStdout()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(orig)

		fmt.Fprint(orig, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, rule := range helpRules {
		s = rule.re.ReplaceAllStringFunc(s, func(match string) string {
			m := rule.re.FindStringSubmatch(match)
			if m == nil {
				return match
			}
			return rule.style(m)
		})
	}
	return s
}
