package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("63")
	colorMuted   = lipgloss.Color("243")
	colorRunning = lipgloss.Color("220")
	colorAwait   = lipgloss.Color("205")
	colorDone    = lipgloss.Color("78")
	colorFailed  = lipgloss.Color("203")
	colorBorder  = lipgloss.Color("240")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func statusStyle(kind string) lipgloss.Style {
	switch kind {
	case "running":
		return lipgloss.NewStyle().Foreground(colorRunning)
	case "awaiting":
		return lipgloss.NewStyle().Foreground(colorAwait).Bold(true)
	case "completed":
		return lipgloss.NewStyle().Foreground(colorDone)
	case "failed":
		return lipgloss.NewStyle().Foreground(colorFailed)
	default:
		return lipgloss.NewStyle()
	}
}
