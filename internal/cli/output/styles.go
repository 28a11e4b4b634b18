package output

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

// newStyles returns colored styles for a terminal and plain ones otherwise.
func newStyles(isTTY bool) styles {
	if !isTTY {
		plain := lipgloss.NewStyle()
		return styles{header: plain, success: plain, failure: plain, warning: plain, muted: plain}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
