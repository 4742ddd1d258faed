// Package table projects JSON objects into rows and columns.
package table

import (
	"fmt"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// Table is a column-oriented view over objects. Rows alias the projected
// value: SetCell writes into the row objects themselves.
type Table struct {
	Columns []string

	// StartIndex is the document position of row 0
	StartIndex int
	// MaxLength bounds Text output; zero means models.DefaultMaxLength
	MaxLength int

	rows   []*jsonb.Value
	single bool
}

// Project builds a table from an object (one row) or an array (one row per
// element). Columns are the union of member keys in first-seen order; an
// element that is not an object becomes a row without cells.
func Project(v *jsonb.Value) (*Table, error) {
	switch v.Kind() {
	case jsonb.KindObject:
		return &Table{Columns: v.Keys(), rows: []*jsonb.Value{v}, single: true}, nil
	case jsonb.KindArray:
		t := &Table{rows: v.Elements()}
		seen := make(map[string]bool)
		for _, row := range t.rows {
			for _, key := range row.Keys() {
				if !seen[key] {
					seen[key] = true
					t.Columns = append(t.Columns, key)
				}
			}
		}
		return t, nil
	default:
		return nil, apperrors.NewParseError(
			fmt.Sprintf("a %s cannot be shown as a table", v.Kind()), apperrors.ErrNotTabular)
	}
}

// ProjectWindow projects doc[start:end] of an array, keeping StartIndex so
// rows can be mapped back to the document. Objects are projected whole.
func ProjectWindow(doc *jsonb.Value, start, end int) (*Table, error) {
	if !doc.IsArray() {
		return Project(doc)
	}
	start = max(0, min(start, doc.Len()))
	end = max(start, min(end, doc.Len()))

	t, err := Project(jsonb.NewArray(doc.Elements()[start:end]...))
	if err != nil {
		return nil, err
	}
	t.StartIndex = start
	return t, nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int { return len(t.rows) }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.Columns) }

// Row returns the value backing row i
func (t *Table) Row(i int) *jsonb.Value { return t.rows[i] }

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RowLabel renders the document position of row i as "[n]"
func (t *Table) RowLabel(i int) string {
	return fmt.Sprintf("[%d]", t.StartIndex+i)
}

// Cell returns the value at (row, col). A row without that key reports
// false.
func (t *Table) Cell(row, col int) (*jsonb.Value, bool) {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.Columns) {
		return nil, false
	}
	return t.rows[row].Get(t.Columns[col])
}

// Text formats the cell like a tree value; missing cells are empty
func (t *Table) Text(row, col int) string {
	v, ok := t.Cell(row, col)
	if !ok {
		return ""
	}
	maxLen := t.MaxLength
	if maxLen <= 0 {
		maxLen = models.DefaultMaxLength
	}
	return models.FormatValue(v, maxLen)
}

// SetCell stores v at (row, col)
func (t *Table) SetCell(row, col int, v *jsonb.Value) error {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.Columns) {
		return apperrors.NewStateError(fmt.Sprintf("cell (%d, %d) is outside the table", row, col), nil)
	}
	target := t.rows[row]
	if !target.IsObject() {
		return apperrors.NewStateError(fmt.Sprintf("row %s is a %s, not an object", t.RowLabel(row), target.Kind()), nil)
	}
	target.Set(t.Columns[col], v)
	return nil
}

// Value reverses the projection: the single object for a table built from
// an object, an array of the rows otherwise.
func (t *Table) Value() *jsonb.Value {
	if t.single {
		return t.rows[0]
	}
	return jsonb.NewArray(t.rows...)
}
