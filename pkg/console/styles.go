package console

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("205")
	colorBorder  = lipgloss.Color("63")
	colorSubtle  = lipgloss.Color("241")
	colorOK      = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorInfo    = lipgloss.Color("39")

	mainStyle = lipgloss.NewStyle().MarginLeft(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(colorPrimary)

	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtle).Width(28)
	subtleStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorOK)
	infoStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	selectedStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle)

	focusedButtonStyle = buttonStyle.
				BorderForeground(colorPrimary).
				Foreground(colorPrimary).
				Bold(true)

	alertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(1, 3).
			Bold(true)

	logLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)
