package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
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

// Theme holds the viewer's colors and pre-built styles.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Link      lipgloss.AdaptiveColor

	Base    lipgloss.Style
	Header  lipgloss.Style
	Panel   lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Label   lipgloss.Style
	LinkDot lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    ColorBorder,
		Muted:     ColorMuted,
		Link:      ColorLink,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, SpaceXS)

	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.Error = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.Label = r.NewStyle().Foreground(ColorText)
	t.LinkDot = r.NewStyle().Foreground(t.Link)
	return t
}

// NodeStyle colors a node glyph with its fill; dimmed nodes render faint.
func (t Theme) NodeStyle(fill string, opacity float64) lipgloss.Style {
	s := t.Renderer.NewStyle().Foreground(ThemeFg(fill))
	if opacity < 1 {
		s = s.Faint(true)
	}
	return s
}

// LinkStyle returns the link dot style for the given opacity.
func (t Theme) LinkStyle(opacity float64) lipgloss.Style {
	if opacity < 0.5 {
		return t.LinkDot.Faint(true)
	}
	return t.LinkDot
}

// LabelStyle returns the label style for the given node opacity.
func (t Theme) LabelStyle(opacity float64) lipgloss.Style {
	if opacity < 1 {
		return t.Label.Faint(true)
	}
	return t.Label
}
