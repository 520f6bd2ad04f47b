package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Adaptive color palette for light and dark terminals. Light mode colors
// are tuned for WCAG AA contrast on white backgrounds.
var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Lifecycle state colors
	ColorStatusActive       = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorStatusSeasonal     = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorStatusDraft        = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorStatusDiscontinued = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#44475A"}
)

// StatusIcon returns the single-cell glyph shown before a category name.
func StatusIcon(s model.Status) string {
	switch s {
	case model.StatusActive:
		return "●"
	case model.StatusSeasonal:
		return "◐"
	case model.StatusDraft:
		return "○"
	case model.StatusDiscontinued:
		return "✕"
	default:
		return "·"
	}
}
