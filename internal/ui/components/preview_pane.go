package components

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// PreviewPane displays the full text of the selected node or cell
type PreviewPane struct {
	Width     int
	MaxHeight int
	Content   string // Canonical text of the value
	Title     string // Path of the value

	Visible bool

	scrollY      int
	contentLines []string

	Theme theme.Theme
	style lipgloss.Style
}

// NewPreviewPane creates a hidden preview pane
func NewPreviewPane(th theme.Theme) *PreviewPane {
	return &PreviewPane{
		Width:     80,
		MaxHeight: 10,
		Theme:     th,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// SetContent sets the value to display
func (p *PreviewPane) SetContent(content, title string) {
	if p.Content == content && p.Title == title {
		return
	}
	p.Content = content
	p.Title = title
	p.scrollY = 0
	p.contentLines = nil
}

// formatContent pretty-prints containers and wraps lines to the pane width
func (p *PreviewPane) formatContent() {
	if p.Content == "" {
		p.contentLines = []string{}
		return
	}

	contentWidth := max(p.Width-p.style.GetHorizontalFrameSize(), 10)

	formatted := p.Content
	if jsonb.IsContainerText(p.Content) {
		if pretty, err := jsonb.Format(p.Content); err == nil {
			formatted = pretty
		}
	}
	p.contentLines = wrapText(formatted, contentWidth)
}

// wrapText wraps text to fit within maxWidth display cells
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if currentWidth+w > maxWidth {
				result = append(result, current.String())
				current.Reset()
				currentWidth = 0
			}
			current.WriteRune(r)
			currentWidth += w
		}
		if current.Len() > 0 {
			result = append(result, current.String())
		}
	}
	return result
}

// Toggle shows or hides the pane
func (p *PreviewPane) Toggle() {
	p.Visible = !p.Visible
	if !p.Visible {
		p.contentLines = nil
	}
}

// Height returns the rendered height, 0 when hidden
func (p *PreviewPane) Height() int {
	if !p.Visible {
		return 0
	}
	return p.MaxHeight
}

func (p *PreviewPane) linesShown() int {
	// Header and footer
	return max(p.MaxHeight-p.style.GetVerticalFrameSize()-2, 1)
}

// IsScrollable returns true if content exceeds the visible area
func (p *PreviewPane) IsScrollable() bool {
	return len(p.contentLines) > p.linesShown()
}

// ScrollUp scrolls content up
func (p *PreviewPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *PreviewPane) ScrollDown() {
	if p.scrollY < max(len(p.contentLines)-p.linesShown(), 0) {
		p.scrollY++
	}
}

// CopyContent copies the previewed value to the clipboard
func (p *PreviewPane) CopyContent() error {
	return clipboard.WriteAll(p.Content)
}

// View renders the preview pane
func (p *PreviewPane) View() string {
	if !p.Visible {
		return ""
	}
	if p.contentLines == nil {
		p.formatContent()
	}

	contentWidth := p.Width - p.style.GetHorizontalFrameSize()

	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	header := "Preview"
	if p.Title != "" {
		header = "Preview: " + p.Title
	}
	if runewidth.StringWidth(header) > contentWidth-4 {
		header = runewidth.Truncate(header, contentWidth-4, "…")
	}

	parts := []string{titleStyle.Render(header)}

	contentStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	end := min(p.scrollY+p.linesShown(), len(p.contentLines))
	for i := p.scrollY; i < end; i++ {
		parts = append(parts, contentStyle.Render(p.contentLines[i]))
	}

	var help []string
	if p.IsScrollable() {
		help = append(help, "↑↓: Scroll")
	}
	help = append(help, "y: Copy", "p: Toggle")
	if jsonb.IsContainerText(p.Content) {
		help = append(help, "o: Open")
	}
	helpText := strings.Join(help, " │ ")
	helpStyle := lipgloss.NewStyle().Foreground(p.Theme.Metadata).Italic(true)
	padding := max(contentWidth-runewidth.StringWidth(helpText), 0)
	parts = append(parts, strings.Repeat(" ", padding)+helpStyle.Render(helpText))

	innerHeight := max(p.MaxHeight-p.style.GetVerticalFrameSize(), 3)
	return p.style.
		Width(contentWidth).
		Height(innerHeight).
		MaxHeight(innerHeight).
		Render(strings.Join(parts, "\n"))
}
