package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/pagination"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// RenderPaginationBar renders "Page n/m · 50 docs / page · 57 documents"
// with navigation hints. Nothing is rendered without a pager.
func RenderPaginationBar(p *pagination.Pagination, countLabel string, th theme.Theme) string {
	if p == nil {
		return ""
	}

	parts := []string{p.Label(), p.PerPageLabel()}
	if countLabel != "" {
		parts = append(parts, countLabel)
	}

	var nav []string
	if p.PageNumber() > 1 {
		nav = append(nav, "[ prev")
	}
	if p.PageNumber() < p.TotalPages() {
		nav = append(nav, "] next")
	}

	text := lipgloss.NewStyle().Foreground(th.Info).Render(strings.Join(parts, " · "))
	if len(nav) > 0 {
		text += "  " + lipgloss.NewStyle().Foreground(th.Metadata).Italic(true).Render(strings.Join(nav, "  "))
	}
	return text
}
