// Package colors answers the terminal color-capability query and styles
// diagnostic output. Callers query Enabled once and thread the result
// through their configuration instead of re-reading ambient state.
package colors

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/xyproto/env/v2"
	"golang.org/x/term"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Enabled reports whether stderr is a terminal that should receive color.
// NO_COLOR, when set, wins.
func Enabled() bool {
	if env.Str("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// ErrorLabel returns the "error" diagnostic label, red and bold when
// enabled is true.
func ErrorLabel(enabled bool) string {
	if !enabled {
		return "error"
	}
	return errorStyle.Render("error")
}
