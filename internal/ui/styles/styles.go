// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Text hierarchy
	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"} // Hints, help text

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#C7921B", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#2E86DE", Dark: "#54A0FF"}

	// Diff sides
	DiffAdditionColor = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#73F59F"}
	DiffDeletionColor = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF8787"}
	DiffChangeColor   = lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FECA57"}
	DiffContextColor  = TextPrimaryColor

	// Selection indicator color (">" prefix in the picker)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(OverlayTitleColor)
	HelpStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(StatusInfoColor)
)

// DisableColor makes every style render plain text.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorEnabled reports whether styles currently emit color codes.
func ColorEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
