// Package style holds the terminal styles shared by saiten's commands.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette (Ayu).
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#aad94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#8a9199", Dark: "#6c7380"}
)

var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Foreground(ColorMuted)
	Info    = lipgloss.NewStyle().Foreground(ColorAccent)
	Success = lipgloss.NewStyle().Foreground(ColorPass)
	Warning = lipgloss.NewStyle().Foreground(ColorWarn)
	Error   = lipgloss.NewStyle().Foreground(ColorFail).Bold(true)
)

// Line prefixes.
var (
	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// PrintWarning writes a formatted warning line to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", WarningPrefix, fmt.Sprintf(format, args...))
}

// PrintError writes a formatted error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorPrefix, fmt.Sprintf(format, args...))
}

// Judgement colors a pass/fail label: passes green, attendance failures
// red, other failures yellow.
func Judgement(label string, pass, gated bool) string {
	switch {
	case pass:
		return Success.Render(label)
	case gated:
		return Error.Render(label)
	default:
		return Warning.Render(label)
	}
}
