package console

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSuccess).
			Padding(0, 1)

	bannerDangerStyle = bannerStyle.
				Foreground(colorDanger).
				BorderForeground(colorDanger).
				Bold(true)

	labelStyle   = lipgloss.NewStyle().Width(16).Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	flashStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	confirmStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)
