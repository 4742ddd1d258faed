package components

// TreeView renders a models.Tree built from a JSON document with keyboard
// navigation, expand/collapse and viewport scrolling.
//
// Each line shows the node label (object key or [index]) in a key column
// wide enough for the deepest visible label, followed by the node value
// formatted for display. Containers show their abbreviated JSON text while
// collapsed and their size while expanded.
//
// Usage:
//
//	tv := components.NewTreeView(panel.Tree(), theme)
//	tv.Width, tv.Height = 60, 20
//
//	// In your Update method:
//	tv, cmd := tv.Update(msg)
//
//	// In your View method:
//	content := tv.View()

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// TreeView represents a visual tree component for a JSON tree
type TreeView struct {
	Tree         *models.Tree
	CursorIndex  int // Current cursor position in the flattened list
	Width        int
	Height       int
	Theme        theme.Theme
	ScrollOffset int

	// Matches highlights nodes found by a search
	Matches map[models.NodeID]bool
}

// TreeNodeSelectedMsg is sent when a node is selected (Enter key)
type TreeNodeSelectedMsg struct {
	ID models.NodeID
}

// TreeNodeExpandedMsg is sent when a node is expanded/collapsed
type TreeNodeExpandedMsg struct {
	ID       models.NodeID
	Expanded bool
}

// NewTreeView creates a new tree view component
func NewTreeView(tree *models.Tree, theme theme.Theme) *TreeView {
	return &TreeView{
		Tree:   tree,
		Width:  40,
		Height: 20,
		Theme:  theme,
	}
}

// SetTree swaps in a rebuilt tree, keeping the cursor on the same row
func (tv *TreeView) SetTree(tree *models.Tree) {
	tv.Tree = tree
	tv.Matches = nil
	tv.clampCursor(len(tv.visible()))
}

func (tv *TreeView) visible() []models.NodeID {
	if tv.Tree == nil {
		return nil
	}
	return tv.Tree.Flatten()
}

func (tv *TreeView) clampCursor(n int) {
	if tv.CursorIndex >= n {
		tv.CursorIndex = n - 1
	}
	if tv.CursorIndex < 0 {
		tv.CursorIndex = 0
	}
}

// View renders the tree as a string
func (tv *TreeView) View() string {
	visibleNodes := tv.visible()
	if len(visibleNodes) == 0 {
		return tv.emptyState()
	}
	tv.clampCursor(len(visibleNodes))

	viewHeight := tv.Height
	if viewHeight < 1 {
		viewHeight = 1
	}
	tv.adjustScrollOffset(len(visibleNodes), viewHeight)

	startIdx := tv.ScrollOffset
	endIdx := tv.ScrollOffset + viewHeight
	if endIdx > len(visibleNodes) {
		endIdx = len(visibleNodes)
	}

	keyWidth := tv.keyColumnWidth(visibleNodes[startIdx:endIdx])

	var lines []string
	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, tv.renderNode(visibleNodes[i], keyWidth, i == tv.CursorIndex))
	}
	for len(lines) < viewHeight {
		lines = append(lines, "")
	}

	if tv.ScrollOffset > 0 || endIdx < len(visibleNodes) {
		tv.addScrollIndicators(lines, startIdx, endIdx, len(visibleNodes))
	}
	return strings.Join(lines, "\n")
}

// Update handles keyboard input for tree navigation
func (tv *TreeView) Update(msg tea.KeyMsg) (*TreeView, tea.Cmd) {
	visibleNodes := tv.visible()
	if len(visibleNodes) == 0 {
		return tv, nil
	}
	tv.clampCursor(len(visibleNodes))
	current := visibleNodes[tv.CursorIndex]

	var cmd tea.Cmd

	switch msg.String() {
	case "up", "k":
		if tv.CursorIndex > 0 {
			tv.CursorIndex--
		}

	case "down", "j":
		if tv.CursorIndex < len(visibleNodes)-1 {
			tv.CursorIndex++
		}

	case "g", "home":
		tv.CursorIndex = 0
		tv.ScrollOffset = 0

	case "G", "end":
		tv.CursorIndex = len(visibleNodes) - 1

	case "pgup", "ctrl+u":
		tv.CursorIndex -= tv.pageSize()
		tv.clampCursor(len(visibleNodes))

	case "pgdown", "ctrl+d":
		tv.CursorIndex += tv.pageSize()
		tv.clampCursor(len(visibleNodes))

	case "right", "l", " ":
		node := tv.Tree.Node(current)
		if node.HasChildren() {
			wasExpanded := node.Expanded
			tv.Tree.Toggle(current)
			if node.Expanded != wasExpanded {
				cmd = expandedCmd(current, node.Expanded)
			}
		}

	case "left", "h":
		node := tv.Tree.Node(current)
		if node.Expanded {
			tv.Tree.Toggle(current)
			cmd = expandedCmd(current, false)
		} else if node.Parent != tv.Tree.Root() {
			if idx := tv.findNodeIndex(visibleNodes, node.Parent); idx >= 0 {
				tv.CursorIndex = idx
			}
		}

	case "enter":
		cmd = func() tea.Msg {
			return TreeNodeSelectedMsg{ID: current}
		}
	}

	return tv, cmd
}

func expandedCmd(id models.NodeID, expanded bool) tea.Cmd {
	return func() tea.Msg {
		return TreeNodeExpandedMsg{ID: id, Expanded: expanded}
	}
}

func (tv *TreeView) pageSize() int {
	if tv.Height > 1 {
		return tv.Height - 1
	}
	return 1
}

// keyColumnWidth is the widest indent plus label among the given nodes, so
// values line up in one column.
func (tv *TreeView) keyColumnWidth(ids []models.NodeID) int {
	width := 0
	for _, id := range ids {
		w := tv.indentWidth(id) + 2 + runewidth.StringWidth(tv.Tree.Node(id).Label())
		if w > width {
			width = w
		}
	}
	return width
}

func (tv *TreeView) indentWidth(id models.NodeID) int {
	// Root is depth 0 and never rendered
	return 2 * (tv.Tree.Depth(id) - 1)
}

// renderNode renders a single tree node with appropriate styling
func (tv *TreeView) renderNode(id models.NodeID, keyWidth int, selected bool) string {
	node := tv.Tree.Node(id)
	d := node.Descriptor

	indent := strings.Repeat(" ", tv.indentWidth(id))
	icon := tv.getNodeIcon(node)
	label := node.Label()

	labelColor := tv.Theme.JSONKey
	if !d.IsKey() {
		labelColor = tv.Theme.JSONIndex
	}

	head := indent + icon + " " + label
	pad := keyWidth - runewidth.StringWidth(head)
	if pad < 0 {
		pad = 0
	}

	maxWidth := tv.Width - 1
	if maxWidth < 10 {
		maxWidth = 10
	}
	valueWidth := maxWidth - keyWidth - 1
	value := tv.valueText(node)
	if valueWidth < 1 {
		value = ""
	} else if runewidth.StringWidth(value) > valueWidth {
		value = runewidth.Truncate(value, valueWidth, "…")
	}

	labelStyle := lipgloss.NewStyle().Foreground(labelColor)
	if tv.Matches[id] {
		labelStyle = labelStyle.Underline(true).Bold(true)
	}
	valueStyle := lipgloss.NewStyle().Foreground(KindColor(tv.Theme, d.Kind()))
	if node.Expanded {
		valueStyle = lipgloss.NewStyle().Foreground(tv.Theme.Metadata)
	}

	iconStyle := lipgloss.NewStyle().Foreground(tv.Theme.JSONBracket)
	line := indent + iconStyle.Render(icon) + " " + labelStyle.Render(label) +
		strings.Repeat(" ", pad+1) + valueStyle.Render(value)

	style := lipgloss.NewStyle().Width(maxWidth)
	if selected {
		style = style.Background(tv.Theme.Selection).Bold(true)
	}
	return style.Render(line)
}

func (tv *TreeView) valueText(node *models.TreeNode) string {
	d := node.Descriptor
	if !node.Expanded {
		return d.Format()
	}
	n := int64(d.Value().Len())
	if d.Kind() == jsonb.KindObject {
		return fmt.Sprintf("{%s keys}", formatNumber(n))
	}
	return fmt.Sprintf("[%s items]", formatNumber(n))
}

// getNodeIcon returns the appropriate icon for a node
func (tv *TreeView) getNodeIcon(node *models.TreeNode) string {
	if !node.Descriptor.Kind().IsContainer() {
		return "•"
	}
	if node.Expanded {
		return "▾"
	}
	return "▸"
}

// adjustScrollOffset adjusts the scroll offset to keep the cursor visible
func (tv *TreeView) adjustScrollOffset(totalNodes, viewHeight int) {
	if tv.CursorIndex < tv.ScrollOffset {
		tv.ScrollOffset = tv.CursorIndex
	}
	if tv.CursorIndex >= tv.ScrollOffset+viewHeight {
		tv.ScrollOffset = tv.CursorIndex - viewHeight + 1
	}

	if tv.ScrollOffset < 0 {
		tv.ScrollOffset = 0
	}
	maxScroll := totalNodes - viewHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if tv.ScrollOffset > maxScroll {
		tv.ScrollOffset = maxScroll
	}
}

// addScrollIndicators marks the first and last line when more nodes are
// hidden above or below
func (tv *TreeView) addScrollIndicators(lines []string, startIdx, endIdx, total int) {
	indicator := lipgloss.NewStyle().Foreground(tv.Theme.Info)
	if startIdx > 0 {
		lines[0] = indicator.Render("↑") + lines[0]
	}
	if endIdx < total {
		last := len(lines) - 1
		lines[last] = indicator.Render("↓") + lines[last]
	}
}

// emptyState returns the empty state view
func (tv *TreeView) emptyState() string {
	width := tv.Width - 2
	if width < 1 {
		width = 1
	}
	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Width(width).
		Align(lipgloss.Center)

	return style.Render("Empty document")
}

// findNodeIndex finds the index of a node in the flattened list
func (tv *TreeView) findNodeIndex(nodes []models.NodeID, target models.NodeID) int {
	for i, id := range nodes {
		if id == target {
			return i
		}
	}
	return -1
}

// formatNumber formats a count compactly for readability
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 10000 {
		// For 1k-10k, show one decimal place unless it's a round number
		k := float64(n) / 1000.0
		if k == float64(int(k)) {
			return fmt.Sprintf("%.0fk", k)
		}
		return fmt.Sprintf("%.1fk", k)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.0fk", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}

// GetCurrentNode returns the node under the cursor, or models.NoNode
func (tv *TreeView) GetCurrentNode() models.NodeID {
	visibleNodes := tv.visible()
	if tv.CursorIndex < 0 || tv.CursorIndex >= len(visibleNodes) {
		return models.NoNode
	}
	return visibleNodes[tv.CursorIndex]
}

// SetCursorToNode moves the cursor to a visible node
func (tv *TreeView) SetCursorToNode(id models.NodeID) bool {
	for i, visible := range tv.visible() {
		if visible == id {
			tv.CursorIndex = i
			return true
		}
	}
	return false
}

// KindColor returns the theme color for values of kind k
func KindColor(th theme.Theme, k jsonb.Kind) lipgloss.Color {
	switch k {
	case jsonb.KindNull:
		return th.JSONNull
	case jsonb.KindBool:
		return th.JSONBoolean
	case jsonb.KindInt, jsonb.KindLong, jsonb.KindDouble:
		return th.JSONNumber
	case jsonb.KindString:
		return th.JSONString
	case jsonb.KindDate:
		return th.JSONDate
	default:
		return th.JSONBracket
	}
}
