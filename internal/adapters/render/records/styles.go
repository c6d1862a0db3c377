package records

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	record     lipgloss.Style
	pinned     lipgloss.Style
	improved   lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	key        lipgloss.Style
	meta       lipgloss.Style
	online     lipgloss.Style
	offline    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	high       lipgloss.Style
	medium     lipgloss.Style
	low        lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		record:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		pinned:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		improved:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("120")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		key:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		online:     lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		offline:    lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		high:       lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		medium:     lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		low:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
