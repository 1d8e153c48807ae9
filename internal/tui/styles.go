package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the browser.
type Styles struct {
	Header   lipgloss.Style
	Cursor   lipgloss.Style
	Included lipgloss.Style
	Excluded lipgloss.Style
	Dir      lipgloss.Style
	Size     lipgloss.Style
	Status   lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Included: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Excluded: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dir:      lipgloss.NewStyle().Bold(true),
		Size:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Status:   lipgloss.NewStyle().Faint(true),
	}
}
