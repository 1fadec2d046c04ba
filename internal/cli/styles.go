package cli

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Inline(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)
	faintStyle  = lipgloss.NewStyle().Faint(true).Inline(true)
)
