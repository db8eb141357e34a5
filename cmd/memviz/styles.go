package main

import "github.com/charmbracelet/lipgloss"

// Palette mirrors cmd/hiveexplorer/styles.go's choices, narrowed to what a
// single-pane heap view needs.
var (
	primaryColor = lipgloss.Color("#7D56F4")
	freeColor    = lipgloss.Color("#04B575")
	allocColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#383838")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	freeBlockStyle  = lipgloss.NewStyle().Foreground(freeColor)
	allocBlockStyle = lipgloss.NewStyle().Foreground(allocColor)

	statusStyle = lipgloss.NewStyle().Foreground(mutedColor)
)
