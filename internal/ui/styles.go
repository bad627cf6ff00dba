package ui

import (
	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the approval prompt.
type Styles struct {
	Box   lipgloss.Style
	Title lipgloss.Style
	Desc  lipgloss.Style
	Allow lipgloss.Style
	Deny  lipgloss.Style
	Help  lipgloss.Style
}

// NewStyles builds styles from the configured colors. Empty colors fall back
// to the terminal default.
func NewStyles(cfg config.UIConfig) Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(cfg.ColorPrimary)).
			Padding(0, 1),
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.ColorPrimary)),
		Desc:  lipgloss.NewStyle(),
		Allow: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorSuccess)),
		Deny:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorError)),
		Help:  lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color(cfg.ColorMuted)),
	}
}
