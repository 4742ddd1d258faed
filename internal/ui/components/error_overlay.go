package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// ErrorOverlay is a dismissable box shown over the main view
type ErrorOverlay struct {
	Title   string
	Message string
	Visible bool
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates a hidden overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Theme: th, Width: 60}
}

// SetError shows the overlay with the given text
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
	e.Visible = true
}

// Dismiss hides the overlay
func (e *ErrorOverlay) Dismiss() {
	e.Visible = false
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	if !e.Visible {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(e.Theme.Error).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(e.Theme.Foreground).Width(e.Width - 4)
	hintStyle := lipgloss.NewStyle().Foreground(e.Theme.Metadata).Italic(true)

	content := titleStyle.Render(e.Title) + "\n\n" +
		msgStyle.Render(e.Message) + "\n\n" +
		hintStyle.Render("Esc/Enter: dismiss")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(content)
}
