package view

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/jsontree"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// SubviewHandle identifies a subview opened from a panel
type SubviewHandle uuid.UUID

func (h SubviewHandle) String() string { return uuid.UUID(h).String() }

// origin records where a subview's value came from so it can be merged
// back after the parent has been rebuilt.
type origin struct {
	mode Mode
	node models.NodeID
	path jsonb.Path
}

type subview struct {
	panel  *Panel
	origin origin
}

// OpenSubview opens the array or object held by a tree node in its own
// panel. The subview edits a copy; nothing reaches this panel until the
// subview is closed and merged.
func (p *Panel) OpenSubview(id models.NodeID) (SubviewHandle, *Panel, error) {
	n, err := p.node(id)
	if err != nil {
		return SubviewHandle{}, nil, err
	}
	o := origin{mode: ModeTree, node: id, path: p.tree.JSONPath(id)}
	return p.open(n.Descriptor.Value(), n.Label(), o)
}

// OpenCellSubview opens the array or object held by a table cell
func (p *Panel) OpenCellSubview(row, col int) (SubviewHandle, *Panel, error) {
	if p.mode != ModeTable {
		return SubviewHandle{}, nil, p.wrongMode("open a cell")
	}
	if err := p.checkCell(row, col); err != nil {
		p.report(err)
		return SubviewHandle{}, nil, err
	}

	column := p.table.Columns[col]
	path := jsonb.Path{Parts: []string{column}}
	if p.doc.IsArray() {
		path = jsonb.Path{Parts: []string{strconv.Itoa(p.table.StartIndex + row), column}}
	}
	v, _ := p.table.Cell(row, col)
	return p.open(v, column, origin{mode: ModeTable, node: models.NoNode, path: path})
}

func (p *Panel) open(v *jsonb.Value, title string, o origin) (SubviewHandle, *Panel, error) {
	if !v.Kind().IsContainer() {
		err := apperrors.NewStateError(fmt.Sprintf("%s holds a %s", title, v.Kind()), apperrors.ErrNotContainer)
		p.report(err)
		return SubviewHandle{}, nil, err
	}

	sub, err := New(v.Clone(),
		WithTitle(title),
		WithMode(ModeTree),
		WithNotifier(p.notifier),
		WithLogger(p.logger),
		WithMaxLength(p.maxLength),
		WithExpandDepth(p.expandDepth),
		WithPageSize(p.pageSize),
		WithParseOptions(p.parseOpts...),
	)
	if err != nil {
		p.report(err)
		return SubviewHandle{}, nil, err
	}

	h := SubviewHandle(uuid.New())
	p.subviews[h] = &subview{panel: sub, origin: o}
	p.order = append(p.order, h)
	p.logger.Debug("opened subview", "handle", h, "path", o.path.String())
	return h, sub, nil
}

// Subview returns the panel of an open subview
func (p *Panel) Subview(h SubviewHandle) (*Panel, bool) {
	sv, ok := p.subviews[h]
	if !ok {
		return nil, false
	}
	return sv.panel, true
}

// Subviews lists the open subviews in the order they were opened
func (p *Panel) Subviews() []SubviewHandle {
	return append([]SubviewHandle(nil), p.order...)
}

// CloseSubview closes a subview, first merging any subviews nested in it,
// and returns its final value. The value reaches this panel only through
// MergeSubview.
func (p *Panel) CloseSubview(h SubviewHandle) (*jsonb.Value, error) {
	sv, ok := p.subviews[h]
	if !ok {
		return nil, apperrors.NewStateError(h.String(), apperrors.ErrUnknownSubview)
	}
	if err := sv.panel.closeAll(); err != nil {
		return nil, err
	}

	v, err := sv.panel.canonicalDocument()
	if err != nil {
		sv.panel.report(err)
		return nil, err
	}

	delete(p.subviews, h)
	if i := p.position(h); i < len(p.order) {
		p.order = append(p.order[:i], p.order[i+1:]...)
	}
	p.pending[h] = sv.origin
	p.logger.Debug("closed subview", "handle", h)
	return v, nil
}

// MergeSubview writes the value returned by CloseSubview back where the
// subview was opened from. A failed merge leaves the handle pending so it
// can be retried with another value.
func (p *Panel) MergeSubview(h SubviewHandle, v *jsonb.Value) error {
	o, ok := p.pending[h]
	if !ok {
		err := apperrors.NewStateError(h.String(), apperrors.ErrUnknownSubview)
		p.report(err)
		return err
	}

	if err := p.merge(o, v); err != nil {
		p.report(err)
		return err
	}
	delete(p.pending, h)
	return nil
}

// CloseAndMergeSubview is CloseSubview followed by MergeSubview. When the
// merge fails the subview stays open, with its edits, at its old position.
func (p *Panel) CloseAndMergeSubview(h SubviewHandle) error {
	sv := p.subviews[h]
	pos := p.position(h)

	v, err := p.CloseSubview(h)
	if err != nil {
		return err
	}
	if err := p.MergeSubview(h, v); err != nil {
		delete(p.pending, h)
		p.subviews[h] = sv
		p.order = slices.Insert(p.order, pos, h)
		p.logger.Debug("reopened subview after failed merge", "handle", h)
		return err
	}
	return nil
}

func (p *Panel) position(h SubviewHandle) int {
	for i, open := range p.order {
		if open == h {
			return i
		}
	}
	return len(p.order)
}

func (p *Panel) closeAll() error {
	for len(p.order) > 0 {
		if err := p.CloseAndMergeSubview(p.order[0]); err != nil {
			return err
		}
	}
	return nil
}

// merge routes the value through the same edit path a user edit takes when
// the originating node or cell is still on screen, and writes it into the
// document by path otherwise.
func (p *Panel) merge(o origin, v *jsonb.Value) error {
	switch {
	case p.mode == ModeTree && o.mode == ModeTree && p.tree.Has(o.node) &&
		p.tree.JSONPath(o.node).String() == o.path.String():
		if err := jsontree.ReplaceNode(p.tree, o.node, v); err != nil {
			return err
		}
		return p.writeBackNode(o.node)

	case p.mode == ModeTable && o.mode == ModeTable:
		if row, col, ok := p.cellAt(o.path); ok {
			if err := p.table.SetCell(row, col, v); err != nil {
				return err
			}
			return p.writeBackRow(row)
		}
	}

	if p.mode == ModeInput {
		doc, err := p.canonicalDocument()
		if err != nil {
			return err
		}
		p.doc = doc
	}
	if err := jsonb.SetValueAtPath(p.doc, o.path, v); err != nil {
		return apperrors.NewStateError(fmt.Sprintf("cannot merge into %s", o.path), err)
	}
	return p.refresh()
}

// cellAt finds the on-screen cell addressed by a document path
func (p *Panel) cellAt(path jsonb.Path) (int, int, bool) {
	parts := path.Parts
	row := 0
	if p.doc.IsArray() {
		if len(parts) != 2 {
			return 0, 0, false
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		row = idx - p.table.StartIndex
		parts = parts[1:]
	}
	if len(parts) != 1 || row < 0 || row >= p.table.RowCount() {
		return 0, 0, false
	}
	col := p.table.ColumnIndex(parts[0])
	return row, col, col >= 0
}
