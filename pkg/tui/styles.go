package tui

import "github.com/charmbracelet/lipgloss"

// --- Styles ---
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#02A6C2")).
			Padding(0, 1).
			Bold(true)
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25F5C"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#02A6C2")).
			Padding(0, 1)
	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Bold(true).
				Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C3C3C"))
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#02A6C2")).
			Bold(true).
			Underline(true)
)
