package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fanout/internal/ui"
)

// Style variables for the dashboard, rebuilt from the active ui theme by
// initStyles.
var (
	panelStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	pendingStyle  lipgloss.Style
	successStyle  lipgloss.Style
	failureStyle  lipgloss.Style
	columnStyle   lipgloss.Style
	latencyStyle  lipgloss.Style
	cpuStyle      lipgloss.Style
	statusRunning lipgloss.Style
	statusDone    lipgloss.Style
	statusFailed  lipgloss.Style
)

func init() {
	initStyles()
}

// initStyles rebuilds every style from the current ui theme. Run calls it
// again after app.Run has applied -no-color and NO_COLOR.
func initStyles() {
	theme := ui.GetCurrentTheme().Name
	table := ui.GetTableStyles()

	accent := lipgloss.Color("39")
	warn := lipgloss.Color("220")
	if theme == "light" {
		accent = lipgloss.Color("27")
		warn = lipgloss.Color("130")
	}

	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = table.Dim.UnsetPaddingRight()
	valueStyle = lipgloss.NewStyle().Bold(true)
	pendingStyle = table.Dim.UnsetPaddingRight()
	successStyle = table.Success.UnsetPaddingRight()
	failureStyle = table.Failure.UnsetPaddingRight()
	columnStyle = table.Header.UnsetPaddingRight()
	latencyStyle = lipgloss.NewStyle()
	cpuStyle = lipgloss.NewStyle()
	statusRunning = table.Success.UnsetPaddingRight().Bold(true)
	statusDone = lipgloss.NewStyle().Bold(true)
	statusFailed = table.Failure.UnsetPaddingRight().Bold(true)

	if theme == "none" {
		return
	}
	panelStyle = panelStyle.BorderForeground(accent)
	headerStyle = headerStyle.Foreground(accent)
	titleStyle = titleStyle.Foreground(accent)
	valueStyle = valueStyle.Foreground(accent)
	latencyStyle = latencyStyle.Foreground(accent)
	cpuStyle = cpuStyle.Foreground(warn)
	statusDone = statusDone.Foreground(accent)
}
