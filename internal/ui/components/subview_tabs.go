package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// MaxSubviewDepth bounds how many subviews can be stacked
const MaxSubviewDepth = 16

// SubviewTab is one entry in the subview breadcrumb
type SubviewTab struct {
	Title  string
	Detail string // e.g. "tree · 57 items"
}

// SubviewTabs renders the stack of open subviews, root first. The last
// tab is the active one.
type SubviewTabs struct {
	tabs  []SubviewTab
	Theme theme.Theme
}

// NewSubviewTabs creates an empty breadcrumb
func NewSubviewTabs(th theme.Theme) *SubviewTabs {
	return &SubviewTabs{Theme: th}
}

// Push adds a tab and reports false when the stack is full
func (st *SubviewTabs) Push(tab SubviewTab) bool {
	if len(st.tabs) >= MaxSubviewDepth {
		return false
	}
	st.tabs = append(st.tabs, tab)
	return true
}

// Pop removes the active tab
func (st *SubviewTabs) Pop() {
	if len(st.tabs) > 0 {
		st.tabs = st.tabs[:len(st.tabs)-1]
	}
}

// SetActive replaces the active tab
func (st *SubviewTabs) SetActive(tab SubviewTab) {
	if len(st.tabs) > 0 {
		st.tabs[len(st.tabs)-1] = tab
	}
}

// Len returns the number of tabs
func (st *SubviewTabs) Len() int { return len(st.tabs) }

// RenderTabBar renders the breadcrumb. Ancestors are shortened first when
// the bar does not fit.
func (st *SubviewTabs) RenderTabBar(width int) string {
	if len(st.tabs) == 0 {
		return ""
	}

	active := lipgloss.NewStyle().
		Foreground(st.Theme.Background).
		Background(st.Theme.Info).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(st.Theme.Foreground).
		Background(st.Theme.Selection).
		Padding(0, 1)
	sep := lipgloss.NewStyle().Foreground(st.Theme.Metadata).Render(" › ")

	maxLabel := max(width/len(st.tabs)-4, 8)

	var out string
	for i, tab := range st.tabs {
		last := i == len(st.tabs)-1
		label := tab.Title
		if last && tab.Detail != "" {
			label = fmt.Sprintf("%s (%s)", tab.Title, tab.Detail)
		}
		if !last && runewidth.StringWidth(label) > maxLabel {
			label = runewidth.Truncate(label, maxLabel, "…")
		}

		if i > 0 {
			out += sep
		}
		if last {
			out += active.Render(label)
		} else {
			out += inactive.Render(label)
		}
	}
	return out
}
