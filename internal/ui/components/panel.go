package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// Panel is a bordered box with an optional title
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}
	style := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	content := p.Content
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(p.Theme.Info)
		content = titleStyle.Render(p.Title) + "\n" + content
	}

	return style.Render(content)
}
