package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Heading marks a section of console output.
	Heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	// Muted is used for summaries and statistics.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	// Warn highlights non-fatal problems.
	Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	// Success confirms a completed side effect.
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)
