package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so style helpers can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the renderer and every style the console draws with. One
// Theme is built at startup and shared by all views.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Lifecycle states
	Active       lipgloss.AdaptiveColor
	Seasonal     lipgloss.AdaptiveColor
	Draft        lipgloss.AdaptiveColor
	Discontinued lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed styles so views don't allocate per frame.
	MutedText     lipgloss.Style
	InfoText      lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	DangerText    lipgloss.Style
	SuccessText   lipgloss.Style
	DisabledText  lipgloss.Style
	MatchText     lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Active:       ColorStatusActive,
		Seasonal:     ColorStatusSeasonal,
		Draft:        ColorStatusDraft,
		Discontinued: ColorStatusDiscontinued,

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     ColorMuted,
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.InfoText = r.NewStyle().Foreground(ColorInfo)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.DangerText = r.NewStyle().Foreground(ColorDanger)
	t.SuccessText = r.NewStyle().Foreground(ColorSuccess)
	t.DisabledText = r.NewStyle().Foreground(t.Muted).Faint(true)
	t.MatchText = r.NewStyle().Foreground(ColorWarning).Bold(true)

	return t
}

// StatusColor maps a category lifecycle state to its display color.
func (t Theme) StatusColor(s model.Status) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusActive:
		return t.Active
	case model.StatusSeasonal:
		return t.Seasonal
	case model.StatusDraft:
		return t.Draft
	case model.StatusDiscontinued:
		return t.Discontinued
	default:
		return t.Muted
	}
}

// StatusBadge renders a short colored status tag for detail panes.
func (t Theme) StatusBadge(s model.Status) string {
	return t.Renderer.NewStyle().
		Foreground(t.StatusColor(s)).
		Bold(true).
		Render(string(s))
}
