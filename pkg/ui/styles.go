package ui

import "github.com/charmbracelet/lipgloss"

// SpaceXS is the panel padding, in characters.
const SpaceXS = 1

// Adaptive colors for light and dark terminals. Light mode colors are tuned
// for a contrast ratio of at least 4.5:1.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// ColorLink is the terminal stand-in for the #999 link stroke.
	ColorLink = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#999999"}
)

// Glyphs drawn on the canvas.
const (
	GlyphNode    = '●'
	GlyphHovered = '◉'
	GlyphPinned  = '◆'
	GlyphLink    = '·'
)
