package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// This file centralizes the lipgloss styles used by the console reports.

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")). // Brand Color
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // Light purple
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // Green
			Bold(true)
	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Amber
)

// DisableColor strips styling from every console report, for piped output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColor matches the console styling to out: plain text when out is
// not a terminal or NO_COLOR is set.
func ConfigureColor(out io.Writer) {
	lipgloss.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
}
