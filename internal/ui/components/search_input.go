package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// SearchInputMsg is sent when a tree search should run
type SearchInputMsg struct {
	Query string
}

// CloseSearchMsg is sent when search should be closed
type CloseSearchMsg struct{}

// SearchInput is the tree search box. Queries accept "k:" for keys only,
// type prefixes such as "n:" and "!" to negate.
type SearchInput struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Visible bool
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "k:name  s:ada  !draft"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{Input: ti, Theme: th}
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			query := s.Input.Value()
			return s, func() tea.Msg { return SearchInputMsg{Query: query} }
		case "esc":
			return s, func() tea.Msg { return CloseSearchMsg{} }
		}
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	s.Input.Width = max(s.Width-12, 20)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1).
		Width(s.Width)

	labelStyle := lipgloss.NewStyle().Foreground(s.Theme.Info).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(s.Theme.Metadata).Italic(true)

	content := labelStyle.Render("Find") + " " + s.Input.View()
	help := helpStyle.Render("Enter: search │ empty query clears │ Esc: close")

	return boxStyle.Render(content + "\n" + help)
}
