package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func (a *app) render(style lipgloss.Style, s string) string {
	if a.cfg != nil && a.cfg.NoColor {
		return s
	}
	return style.Render(s)
}

// failf prints a failure line to w and returns the exit error for it.
func (a *app) failf(w io.Writer, format string, args ...any) error {
	fmt.Fprintln(w, a.render(errorStyle, "✗ ")+fmt.Sprintf(format, args...))
	return &ExitError{Code: ExitFailure}
}

// interrupted prints the cancellation notice and returns exit status 130.
func (a *app) interrupted(w io.Writer, what string) error {
	fmt.Fprintf(w, "\n%s cancelled by user.\n", what)
	return &ExitError{Code: ExitInterrupted}
}
