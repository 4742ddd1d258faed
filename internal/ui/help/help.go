package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title    string
	Bindings []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"m", "Cycle view mode (input → tree → table)"},
		{"1 / 2 / 3", "Input, tree or table mode"},
		{"Ctrl+W", "Write document to --out"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"←/h", "Collapse, parent or column left"},
		{"→/l", "Expand or column right"},
		{"g / G", "First / last"},
		{"Ctrl+U / Ctrl+D", "Page up / down"},
	}
}

// GetDocumentKeys returns key bindings that act on the selected value
func GetDocumentKeys() []KeyBinding {
	return []KeyBinding{
		{"e", "Edit value (raw text in input mode)"},
		{"Ctrl+S", "Apply raw text"},
		{"o", "Open value in a subview"},
		{"Esc", "Close subview and merge it back"},
		{"y", "Copy value"},
		{"Y", "Copy value with quotes"},
		{"P", "Copy PostgreSQL path (#> '{a,0}')"},
		{"p", "Toggle preview"},
		{"/", "Search the tree, or jump to a $.a[0] path"},
		{"E / C", "Expand / collapse all"},
	}
}

// GetPaginationKeys returns pagination key bindings
func GetPaginationKeys() []KeyBinding {
	return []KeyBinding{
		{"] / [", "Next / previous page"},
		{"+ / -", "More / fewer items per page"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Document", GetDocumentKeys()},
		{"Pagination", GetPaginationKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyjson - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range Sections() {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Bindings {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}
