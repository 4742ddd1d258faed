package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// ValueEditTarget says which value an edit applies to. Node is set for
// tree edits, Row and Col for table edits.
type ValueEditTarget struct {
	Node     models.NodeID
	Row, Col int
	Table    bool
}

// ValueEditedMsg carries the text entered for a target
type ValueEditedMsg struct {
	Target ValueEditTarget
	Text   string
}

// CloseValueEditorMsg is sent when editing is cancelled
type CloseValueEditorMsg struct{}

// ValueEditor is a one-line editor for a single node or cell. Text is
// coerced to the original value's kind by the caller.
type ValueEditor struct {
	Input   textinput.Model
	Target  ValueEditTarget
	Label   string
	Theme   theme.Theme
	Width   int
	Visible bool
}

// NewValueEditor creates a hidden editor
func NewValueEditor(th theme.Theme) *ValueEditor {
	ti := textinput.New()
	ti.CharLimit = 0
	ti.Width = 40
	return &ValueEditor{Input: ti, Theme: th, Width: 60}
}

// Open shows the editor prefilled with text
func (v *ValueEditor) Open(target ValueEditTarget, label, text string) tea.Cmd {
	v.Target = target
	v.Label = label
	v.Input.SetValue(text)
	v.Input.CursorEnd()
	v.Visible = true
	return v.Input.Focus()
}

// Close hides the editor
func (v *ValueEditor) Close() {
	v.Visible = false
	v.Input.Blur()
}

// Update handles messages
func (v *ValueEditor) Update(msg tea.Msg) (*ValueEditor, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			edited := ValueEditedMsg{Target: v.Target, Text: v.Input.Value()}
			return v, func() tea.Msg { return edited }
		case "esc":
			return v, func() tea.Msg { return CloseValueEditorMsg{} }
		}
	}

	var cmd tea.Cmd
	v.Input, cmd = v.Input.Update(msg)
	return v, cmd
}

// View renders the editor
func (v *ValueEditor) View() string {
	if !v.Visible {
		return ""
	}
	v.Input.Width = max(v.Width-8, 20)

	labelStyle := lipgloss.NewStyle().Foreground(v.Theme.JSONKey).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(v.Theme.Metadata).Italic(true)

	content := labelStyle.Render("Edit "+v.Label) + "\n" + v.Input.View() + "\n" +
		helpStyle.Render("Enter: apply │ Esc: cancel")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(v.Theme.BorderFocused).
		Padding(0, 1).
		Width(v.Width).
		Render(content)
}
