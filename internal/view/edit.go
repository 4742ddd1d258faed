package view

import (
	"fmt"
	"strings"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/jsontree"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
)

// SetRawText replaces the input-mode buffer. It is parsed on the next mode
// switch or Commit.
func (p *Panel) SetRawText(text string) error {
	if p.mode != ModeInput {
		return p.wrongMode("edit raw text")
	}
	p.raw = text
	return nil
}

// UpdateNode parses text into the tree node and writes the result through
// every ancestor into the document. Errors are also sent to the notifier.
func (p *Panel) UpdateNode(id models.NodeID, text string) error {
	if p.mode != ModeTree {
		return p.wrongMode("edit a node")
	}
	if err := jsontree.UpdateNode(p.tree, id, text); err != nil {
		p.report(err)
		return err
	}
	if err := p.writeBackNode(id); err != nil {
		p.report(err)
		return err
	}
	p.logger.Debug("updated node", "path", p.tree.JSONPath(id).String())
	return nil
}

// writeBackNode stores the top-level ancestor of id into the document at
// its key or absolute index.
func (p *Panel) writeBackNode(id models.NodeID) error {
	top := id
	for n := p.tree.Node(top); n.Parent != p.tree.Root(); n = p.tree.Node(top) {
		top = n.Parent
	}

	d := p.tree.Node(top).Descriptor
	v, err := jsonb.Parse(d.Canonical(), p.parseOpts...)
	if err != nil {
		return apperrors.NewInvariantError("canonical text does not re-parse", err)
	}

	switch {
	case d.IsKey() && p.doc.IsObject():
		p.doc.Set(d.Key(), v)
	case !d.IsKey() && p.doc.IsArray() && d.Index() < p.doc.Len():
		p.doc.SetIndex(d.Index(), v)
	default:
		return apperrors.NewInvariantError(
			fmt.Sprintf("node %s does not address the %s document", d.Label(), p.doc.Kind()), nil)
	}
	return nil
}

// UpdateCell parses text into the cell's kind and writes the row back into
// the document. A missing cell is filled in from JSON text.
func (p *Panel) UpdateCell(row, col int, text string) error {
	if p.mode != ModeTable {
		return p.wrongMode("edit a cell")
	}
	if err := p.checkCell(row, col); err != nil {
		p.report(err)
		return err
	}

	current, _ := p.table.Cell(row, col)
	d := models.NewKeyDescriptor(p.table.Columns[col], current)
	d.ParseOptions = p.parseOpts
	if err := d.Set(text); err != nil {
		p.report(err)
		return err
	}
	if err := p.table.SetCell(row, col, d.Value()); err != nil {
		p.report(err)
		return err
	}
	if err := p.writeBackRow(row); err != nil {
		p.report(err)
		return err
	}
	return nil
}

func (p *Panel) checkCell(row, col int) error {
	if row < 0 || row >= p.table.RowCount() || col < 0 || col >= p.table.ColumnCount() {
		return apperrors.NewStateError(fmt.Sprintf("cell (%d, %d) is outside the table", row, col), apperrors.ErrUnknownNode)
	}
	return nil
}

func (p *Panel) writeBackRow(row int) error {
	v, err := jsonb.Parse(p.table.Row(row).String(), p.parseOpts...)
	if err != nil {
		return apperrors.NewInvariantError("canonical text does not re-parse", err)
	}

	if !p.doc.IsArray() {
		p.doc = v
		return nil
	}
	idx := p.table.StartIndex + row
	if idx >= p.doc.Len() {
		return apperrors.NewInvariantError(fmt.Sprintf("row %d is past the end of the document", idx), nil)
	}
	p.doc.SetIndex(idx, v)
	return nil
}

// NodeEditText returns the text an editor for the node starts from
func (p *Panel) NodeEditText(id models.NodeID) (string, error) {
	n, err := p.node(id)
	if err != nil {
		return "", err
	}
	return n.Descriptor.EditText(), nil
}

// CellEditText returns the text an editor for the cell starts from
func (p *Panel) CellEditText(row, col int) (string, error) {
	if p.mode != ModeTable {
		return "", p.wrongMode("edit a cell")
	}
	if err := p.checkCell(row, col); err != nil {
		return "", err
	}
	v, _ := p.table.Cell(row, col)
	return models.NewKeyDescriptor(p.table.Columns[col], v).EditText(), nil
}

func (p *Panel) node(id models.NodeID) (*models.TreeNode, error) {
	if p.mode != ModeTree {
		return nil, p.wrongMode("select a node")
	}
	n := p.tree.Node(id)
	if n == nil || n.IsRoot() {
		return nil, apperrors.NewStateError(fmt.Sprintf("node %d", id), apperrors.ErrUnknownNode)
	}
	return n, nil
}

// CanonicalText returns the canonical JSON of a node for copying. The
// outer quotes of strings are dropped.
func (p *Panel) CanonicalText(id models.NodeID) (string, error) {
	n, err := p.node(id)
	if err != nil {
		return "", err
	}
	return stripQuotes(n.Descriptor.Canonical()), nil
}

// CellText returns the canonical JSON of a cell for copying, or of the
// whole row when col is -1. Missing cells copy as "".
func (p *Panel) CellText(row, col int) (string, error) {
	if p.mode != ModeTable {
		return "", p.wrongMode("copy a cell")
	}
	if col == -1 && row >= 0 && row < p.table.RowCount() {
		return p.table.Row(row).String(), nil
	}
	if err := p.checkCell(row, col); err != nil {
		return "", err
	}
	v, ok := p.table.Cell(row, col)
	if !ok {
		return "", nil
	}
	return stripQuotes(v.String()), nil
}

func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// SetPage shows page n of the top-level array
func (p *Panel) SetPage(n int) error {
	p.buildErr = nil
	p.pages.SetPage(n)
	return p.buildErr
}

// NextPage shows the following page, if any
func (p *Panel) NextPage() error {
	p.buildErr = nil
	p.pages.Next()
	return p.buildErr
}

// PreviousPage shows the preceding page, if any
func (p *Panel) PreviousPage() error {
	p.buildErr = nil
	p.pages.Previous()
	return p.buildErr
}

// SetPageSize changes the page size and returns to page 1
func (p *Panel) SetPageSize(r pagination.ResultsPerPage) error {
	p.pageSize = r
	p.buildErr = nil
	p.pages.SetResultsPerPage(r)
	return p.buildErr
}

// Toggle expands or collapses a tree node
func (p *Panel) Toggle(id models.NodeID) {
	if p.mode == ModeTree && p.tree.Has(id) {
		p.tree.Toggle(id)
	}
}

// ExpandAll expands the whole tree
func (p *Panel) ExpandAll() {
	if p.mode == ModeTree {
		p.tree.ExpandAll()
	}
}

// CollapseAll collapses the whole tree
func (p *Panel) CollapseAll() {
	if p.mode == ModeTree {
		p.tree.CollapseAll()
	}
}

// ExpandToDepth expands the tree down to depth levels
func (p *Panel) ExpandToDepth(depth int) {
	if p.mode == ModeTree {
		p.tree.ExpandToDepth(depth)
	}
}

// Search returns the tree nodes matching query and expands their
// ancestors so each match is visible.
func (p *Panel) Search(query string) []models.NodeID {
	if p.mode != ModeTree {
		return nil
	}
	matches := jsontree.Filter(p.tree, jsontree.ParseSearchQuery(query))
	for _, id := range matches {
		p.tree.ExpandAncestors(id)
	}
	return matches
}
