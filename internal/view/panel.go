// Package view coordinates the raw, tree and table presentations of one
// JSON document and the subviews opened from it.
package view

import (
	"fmt"

	"github.com/charmbracelet/log"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/jsontree"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/notify"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
	"github.com/rebeliceyang/lazyjson/internal/table"
)

// DefaultExpandDepth is how many tree levels are expanded after a build
const DefaultExpandDepth = 1

// Panel owns a document and its current presentation. The document is
// authoritative: every edit made through a presentation is written back
// into it before the call returns. A Panel is not safe for concurrent use.
type Panel struct {
	title string
	doc   *jsonb.Value
	mode  Mode

	raw   string
	tree  *models.Tree
	table *table.Table

	pages    *pagination.Pagination
	subviews map[SubviewHandle]*subview
	order    []SubviewHandle
	pending  map[SubviewHandle]origin

	notifier    notify.Notifier
	logger      *log.Logger
	maxLength   int
	expandDepth int
	parseOpts   []jsonb.DecodeOption
	pageSize    pagination.ResultsPerPage

	// buildErr is the result of the last rebuild run by the page listener
	buildErr error
}

// Option configures a Panel
type Option func(*Panel)

// WithTitle sets the title shown above the panel
func WithTitle(title string) Option {
	return func(p *Panel) { p.title = title }
}

// WithNotifier sets where user-facing messages go
func WithNotifier(n notify.Notifier) Option {
	return func(p *Panel) { p.notifier = n }
}

// WithLogger sets the logger for diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(p *Panel) { p.logger = logger }
}

// WithPageSize sets the initial number of array elements per page
func WithPageSize(r pagination.ResultsPerPage) Option {
	return func(p *Panel) { p.pageSize = r }
}

// WithMode sets the initial presentation
func WithMode(m Mode) Option {
	return func(p *Panel) { p.mode = m }
}

// WithMaxLength sets the display width of tree values and table cells
func WithMaxLength(n int) Option {
	return func(p *Panel) { p.maxLength = n }
}

// WithExpandDepth sets how many tree levels are expanded after a build
func WithExpandDepth(depth int) Option {
	return func(p *Panel) { p.expandDepth = depth }
}

// WithParseOptions sets the options used whenever text is decoded
func WithParseOptions(opts ...jsonb.DecodeOption) Option {
	return func(p *Panel) { p.parseOpts = opts }
}

// New creates a panel over doc, starting in input mode unless WithMode
// says otherwise.
func New(doc *jsonb.Value, opts ...Option) (*Panel, error) {
	if doc == nil {
		doc = jsonb.Null()
	}
	p := &Panel{
		doc:         doc,
		mode:        ModeInput,
		subviews:    make(map[SubviewHandle]*subview),
		pending:     make(map[SubviewHandle]origin),
		notifier:    notify.Discard,
		logger:      log.Default(),
		maxLength:   models.DefaultMaxLength,
		expandDepth: DefaultExpandDepth,
		pageSize:    pagination.Fifty,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.pages = pagination.New(pagination.WithResultsPerPage(p.pageSize), pagination.WithLogger(p.logger))
	p.pages.AddListener(p.onPageChange)

	if p.mode == ModeTable {
		if _, err := table.Project(p.doc); err != nil {
			return nil, err
		}
	}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return p, nil
}

// Title returns the panel title
func (p *Panel) Title() string { return p.title }

// Mode returns the current presentation
func (p *Panel) Mode() Mode { return p.mode }

// Document returns the authoritative document. In input mode unparsed
// edits to the raw text are not included; call Commit first.
func (p *Panel) Document() *jsonb.Value { return p.doc }

// Raw returns the input-mode text buffer
func (p *Panel) Raw() string { return p.raw }

// Tree returns the tree presentation, nil outside tree mode
func (p *Panel) Tree() *models.Tree {
	if p.mode != ModeTree {
		return nil
	}
	return p.tree
}

// Table returns the table presentation, nil outside table mode
func (p *Panel) Table() *table.Table {
	if p.mode != ModeTable {
		return nil
	}
	return p.table
}

// Pagination returns the pager over the top-level array
func (p *Panel) Pagination() *pagination.Pagination { return p.pages }

// DocumentCount returns the number of top-level documents: the array
// length, or 1 for anything else.
func (p *Panel) DocumentCount() int {
	if p.doc.IsArray() {
		return p.doc.Len()
	}
	return 1
}

// RowCountLabel renders "N documents"
func (p *Panel) RowCountLabel() string {
	return fmt.Sprintf("%d documents", p.DocumentCount())
}

// refresh sets the pager total. The page listener rebuilds the current
// presentation, and its error is returned here.
func (p *Panel) refresh() error {
	p.buildErr = nil
	p.pages.SetTotal(p.DocumentCount())
	return p.buildErr
}

func (p *Panel) onPageChange(*pagination.Pagination) {
	p.buildErr = p.rebuild()
	if p.buildErr != nil {
		p.report(p.buildErr)
	}
}

// rebuild derives the current presentation from the document, windowed to
// the current page when the document is an array.
func (p *Panel) rebuild() error {
	start, end := p.pages.Window()

	switch p.mode {
	case ModeInput:
		text, err := jsonb.Format(p.doc)
		if err != nil {
			return apperrors.NewInvariantError("document cannot be formatted", err)
		}
		p.raw, p.tree, p.table = text, nil, nil
	case ModeTree:
		t := models.NewTree()
		t.MaxLength = p.maxLength
		t.ParseOptions = p.parseOpts
		jsontree.BuildWindow(t, p.doc, t.Root(), start, end)
		t.ExpandToDepth(p.expandDepth)
		p.tree, p.table = t, nil
	case ModeTable:
		tbl, err := table.ProjectWindow(p.doc, start, end)
		if err != nil {
			return err
		}
		tbl.MaxLength = p.maxLength
		p.table, p.tree = tbl, nil
	default:
		panic(fmt.Sprintf("view: unknown mode %s", p.mode))
	}

	p.logger.Debug("rebuilt view", "mode", p.mode, "start", start, "end", end)
	return nil
}

// viewValue returns the document as the current presentation holds it. The
// tree and table only cover the current page, so their value is spliced
// into the rest of the document.
func (p *Panel) viewValue() (*jsonb.Value, error) {
	switch p.mode {
	case ModeInput:
		return jsonb.Parse(p.raw, p.parseOpts...)
	case ModeTree:
		if !p.tree.Node(p.tree.Root()).HasChildren() {
			return p.doc, nil
		}
		v, err := jsontree.Value(p.tree, p.tree.Root())
		if err != nil {
			return nil, err
		}
		return p.splice(v), nil
	case ModeTable:
		if p.table.RowCount() == 0 {
			return p.doc, nil
		}
		return p.splice(p.table.Value()), nil
	default:
		panic(fmt.Sprintf("view: unknown mode %s", p.mode))
	}
}

func (p *Panel) splice(window *jsonb.Value) *jsonb.Value {
	if !p.doc.IsArray() || !window.IsArray() {
		return window
	}

	start, end := p.pages.Window()
	elems := make([]*jsonb.Value, 0, p.doc.Len())
	elems = append(elems, p.doc.Elements()[:start]...)
	elems = append(elems, window.Elements()...)
	elems = append(elems, p.doc.Elements()[end:]...)
	return jsonb.NewArray(elems...)
}

// canonicalDocument serializes the current presentation and parses the
// text back. This round trip is the only way one presentation feeds
// another.
func (p *Panel) canonicalDocument() (*jsonb.Value, error) {
	v, err := p.viewValue()
	if err != nil {
		return nil, err
	}
	doc, err := jsonb.Parse(v.String(), p.parseOpts...)
	if err != nil {
		return nil, apperrors.NewInvariantError("canonical text does not re-parse", err)
	}
	return doc, nil
}

// SetViewMode switches presentation. The outgoing presentation is
// serialized, re-parsed and used to build the new one; on error nothing
// changes.
func (p *Panel) SetViewMode(mode Mode) error {
	if mode == p.mode {
		return nil
	}

	doc, err := p.canonicalDocument()
	if err != nil {
		p.report(err)
		return err
	}
	if mode == ModeTable {
		if _, err := table.Project(doc); err != nil {
			p.report(err)
			return err
		}
	}

	prev := p.mode
	p.doc, p.mode = doc, mode
	if err := p.refresh(); err != nil {
		p.mode = prev
		_ = p.refresh()
		return err
	}

	p.logger.Debug("switched view mode", "from", prev, "to", mode, "documents", p.DocumentCount())
	return nil
}

// Commit parses the current presentation into the document and rebuilds
// it. In input mode this also reformats the raw text.
func (p *Panel) Commit() error {
	doc, err := p.canonicalDocument()
	if err != nil {
		p.report(err)
		return err
	}
	p.doc = doc
	return p.refresh()
}

// Text returns the canonical JSON of the document as currently presented
func (p *Panel) Text() (string, error) {
	doc, err := p.canonicalDocument()
	if err != nil {
		return "", err
	}
	return doc.String(), nil
}

// PrettyText returns the indented JSON of the document as currently
// presented
func (p *Panel) PrettyText() (string, error) {
	doc, err := p.canonicalDocument()
	if err != nil {
		return "", err
	}
	return jsonb.Format(doc)
}

func (p *Panel) report(err error) {
	if apperrors.IsFatal(err) {
		p.logger.Error("view consistency broken", "title", p.title, "err", err)
	}
	p.notifier.Error(apperrors.UserFriendlyError(err))
}

func (p *Panel) wrongMode(op string) error {
	err := apperrors.NewStateError(fmt.Sprintf("cannot %s in %s mode", op, p.mode), apperrors.ErrWrongMode)
	p.report(err)
	return err
}
