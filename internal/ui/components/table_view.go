package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/table"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 40
)

// TableView displays a table projection with row and column selection
type TableView struct {
	Table  *table.Table
	Width  int
	Height int
	Theme  theme.Theme

	// Virtual scrolling state
	TopRow      int
	LeftCol     int
	VisibleRows int
	SelectedRow int
	SelectedCol int

	// Column widths (calculated), index 0 is the row label column
	ColumnWidths []int
}

// CellSelectedMsg is sent when a cell is chosen with Enter
type CellSelectedMsg struct {
	Row, Col int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{Theme: th, Width: 80, Height: 20}
}

// SetTable swaps in a new projection, keeping the selection in range
func (tv *TableView) SetTable(t *table.Table) {
	tv.Table = t
	tv.calculateColumnWidths()
	tv.MoveSelection(0)
	tv.MoveColumn(0)
}

func (tv *TableView) rowCount() int {
	if tv.Table == nil {
		return 0
	}
	return tv.Table.RowCount()
}

func (tv *TableView) colCount() int {
	if tv.Table == nil {
		return 0
	}
	return tv.Table.ColumnCount()
}

// calculateColumnWidths sizes each column to its widest cell within bounds
func (tv *TableView) calculateColumnWidths() {
	if tv.Table == nil {
		tv.ColumnWidths = nil
		return
	}

	tv.ColumnWidths = make([]int, tv.colCount()+1)
	for row := 0; row < tv.rowCount(); row++ {
		tv.ColumnWidths[0] = max(tv.ColumnWidths[0], runewidth.StringWidth(tv.Table.RowLabel(row)))
	}

	for col, name := range tv.Table.Columns {
		w := runewidth.StringWidth(name)
		for row := 0; row < tv.rowCount(); row++ {
			w = max(w, runewidth.StringWidth(tv.Table.Text(row, col)))
		}
		tv.ColumnWidths[col+1] = min(max(w, minColumnWidth), maxColumnWidth)
	}
}

// View renders the table
func (tv *TableView) View() string {
	if tv.Table == nil || (tv.colCount() == 0 && tv.rowCount() == 0) {
		return lipgloss.NewStyle().
			Foreground(tv.Theme.Metadata).
			Italic(true).
			Render("No rows")
	}
	if len(tv.ColumnWidths) != tv.colCount()+1 {
		tv.calculateColumnWidths()
	}

	var b strings.Builder

	cols := tv.visibleColumns()
	b.WriteString(tv.renderHeader(cols))
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator(cols))

	// Header + separator + status
	tv.VisibleRows = max(tv.Height-3, 1)
	tv.scrollRows()

	endRow := min(tv.TopRow+tv.VisibleRows, tv.rowCount())
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString("\n")
		b.WriteString(tv.renderRow(i, cols))
	}

	b.WriteString("\n")
	b.WriteString(tv.renderStatus(endRow))

	return b.String()
}

// visibleColumns returns the data columns that fit the width, starting at
// LeftCol
func (tv *TableView) visibleColumns() []int {
	used := tv.ColumnWidths[0] + 2
	var cols []int
	for col := tv.LeftCol; col < tv.colCount(); col++ {
		w := tv.ColumnWidths[col+1] + 3
		if len(cols) > 0 && tv.Width > 0 && used+w > tv.Width {
			break
		}
		used += w
		cols = append(cols, col)
	}
	return cols
}

func (tv *TableView) renderHeader(cols []int) string {
	parts := []string{pad("", tv.ColumnWidths[0])}
	for _, col := range cols {
		parts = append(parts, pad(tv.Table.Columns[col], tv.ColumnWidths[col+1]))
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Background(tv.Theme.Selection)
	return headerStyle.Render(" " + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator(cols []int) string {
	parts := []string{strings.Repeat("─", tv.ColumnWidths[0])}
	for _, col := range cols {
		parts = append(parts, strings.Repeat("─", tv.ColumnWidths[col+1]))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row int, cols []int) string {
	labelStyle := lipgloss.NewStyle().Foreground(tv.Theme.JSONIndex)
	parts := []string{labelStyle.Render(pad(tv.Table.RowLabel(row), tv.ColumnWidths[0]))}

	for _, col := range cols {
		text := pad(tv.Table.Text(row, col), tv.ColumnWidths[col+1])
		style := lipgloss.NewStyle()
		if v, ok := tv.Table.Cell(row, col); ok {
			style = style.Foreground(KindColor(tv.Theme, v.Kind()))
		}
		if row == tv.SelectedRow && col == tv.SelectedCol {
			style = style.Background(tv.Theme.Cursor).Bold(true)
		}
		parts = append(parts, style.Render(text))
	}

	line := " " + strings.Join(parts, " │ ") + " "

	rowStyle := lipgloss.NewStyle()
	switch {
	case row == tv.SelectedRow:
		rowStyle = rowStyle.Background(tv.Theme.TableRowSelected)
	case row%2 == 0:
		rowStyle = rowStyle.Background(tv.Theme.TableRowEven)
	default:
		rowStyle = rowStyle.Background(tv.Theme.TableRowOdd)
	}
	return rowStyle.Render(line)
}

func (tv *TableView) renderStatus(endRow int) string {
	first := tv.TopRow + 1
	if tv.rowCount() == 0 {
		first = 0
	}
	showing := fmt.Sprintf(" %d-%d of %d rows", first, endRow, tv.rowCount())
	if tv.colCount() > 0 {
		showing += fmt.Sprintf(" · column %s", tv.Table.Columns[tv.SelectedCol])
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(showing)
}

// pad fits s into width display cells
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func (tv *TableView) scrollRows() {
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.VisibleRows > 0 && tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
	if tv.TopRow < 0 {
		tv.TopRow = 0
	}
}

// MoveSelection moves the selected row up or down
func (tv *TableView) MoveSelection(delta int) {
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), max(tv.rowCount()-1, 0))
	tv.scrollRows()
}

// MoveColumn moves the selected column left or right
func (tv *TableView) MoveColumn(delta int) {
	tv.SelectedCol = min(max(tv.SelectedCol+delta, 0), max(tv.colCount()-1, 0))
	if tv.SelectedCol < tv.LeftCol {
		tv.LeftCol = tv.SelectedCol
	}
	if len(tv.ColumnWidths) == tv.colCount()+1 {
		for tv.LeftCol < tv.SelectedCol && !contains(tv.visibleColumns(), tv.SelectedCol) {
			tv.LeftCol++
		}
	}
}

func contains(cols []int, col int) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}

// PageUp moves the selection one screen up
func (tv *TableView) PageUp() {
	tv.MoveSelection(-max(tv.VisibleRows, 1))
	tv.TopRow = tv.SelectedRow
}

// PageDown moves the selection one screen down
func (tv *TableView) PageDown() {
	tv.MoveSelection(max(tv.VisibleRows, 1))
}

// Update handles keyboard input for table navigation
func (tv *TableView) Update(msg tea.KeyMsg) (*TableView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		tv.MoveSelection(-1)
	case "down", "j":
		tv.MoveSelection(1)
	case "left", "h":
		tv.MoveColumn(-1)
	case "right", "l":
		tv.MoveColumn(1)
	case "g", "home":
		tv.MoveSelection(-tv.rowCount())
	case "G", "end":
		tv.MoveSelection(tv.rowCount())
	case "pgup", "ctrl+u":
		tv.PageUp()
	case "pgdown", "ctrl+d":
		tv.PageDown()
	case "enter":
		if tv.rowCount() == 0 {
			return tv, nil
		}
		row, col := tv.SelectedRow, tv.SelectedCol
		if tv.colCount() == 0 {
			col = -1
		}
		return tv, func() tea.Msg { return CellSelectedMsg{Row: row, Col: col} }
	}
	return tv, nil
}
