// Package pagination windows a top-level array into pages.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ResultsPerPage is one of the fixed page sizes, or All
type ResultsPerPage int

const (
	Ten ResultsPerPage = iota
	TwentyFive
	Fifty
	Hundred
	All
)

// Choices lists the page sizes in menu order
var Choices = []ResultsPerPage{Ten, TwentyFive, Fifty, Hundred, All}

// Count returns the page size, 0 for All
func (r ResultsPerPage) Count() int {
	switch r {
	case Ten:
		return 10
	case TwentyFive:
		return 25
	case Fifty:
		return 50
	case Hundred:
		return 100
	case All:
		return 0
	default:
		panic(fmt.Sprintf("pagination: unknown page size %d", int(r)))
	}
}

// Label returns the menu text of the page size
func (r ResultsPerPage) Label() string {
	if r == All {
		return "All"
	}
	return strconv.Itoa(r.Count())
}

// ParseResultsPerPage accepts "10", "25", "50", "100" or "all"
func ParseResultsPerPage(s string) (ResultsPerPage, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, r := range Choices {
		if s == strings.ToLower(r.Label()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid page size %q: expected 10, 25, 50, 100 or all", s)
}

// Listener is notified after every state change
type Listener func(p *Pagination)

// Pagination holds the current page, page size and total count. Listeners
// run synchronously in registration order and must not call setters.
type Pagination struct {
	pageNumber     int
	totalPages     int
	resultsPerPage ResultsPerPage
	total          int

	listeners []Listener
	notifying bool
	logger    *log.Logger
}

// Option configures a Pagination
type Option func(*Pagination)

// WithResultsPerPage sets the initial page size
func WithResultsPerPage(r ResultsPerPage) Option {
	return func(p *Pagination) { p.resultsPerPage = r }
}

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(p *Pagination) { p.logger = logger }
}

// New starts on page 1 showing Fifty results per page
func New(opts ...Option) *Pagination {
	p := &Pagination{
		pageNumber:     1,
		totalPages:     1,
		resultsPerPage: Fifty,
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddListener registers l to run after every state change
func (p *Pagination) AddListener(l Listener) {
	p.listeners = append(p.listeners, l)
}

// SetPage moves to page n, clamped into range
func (p *Pagination) SetPage(n int) {
	p.update(func() { p.pageNumber = n })
}

// SetResultsPerPage changes the page size and resets to page 1
func (p *Pagination) SetResultsPerPage(r ResultsPerPage) {
	p.update(func() {
		p.resultsPerPage = r
		p.pageNumber = 1
	})
}

// SetTotal sets the number of elements being paged
func (p *Pagination) SetTotal(n int) {
	p.update(func() {
		if n < 0 {
			n = 0
		}
		p.total = n
	})
}

// Next moves one page forward if possible
func (p *Pagination) Next() {
	if p.pageNumber < p.totalPages {
		p.SetPage(p.pageNumber + 1)
	}
}

// Previous moves one page back if possible
func (p *Pagination) Previous() {
	if p.pageNumber > 1 {
		p.SetPage(p.pageNumber - 1)
	}
}

func (p *Pagination) update(mutate func()) {
	if p.notifying {
		p.logger.Debug("ignoring pagination change from a listener", "page", p.pageNumber, "size", p.resultsPerPage.Label())
		return
	}

	mutate()
	p.recompute()

	p.notifying = true
	defer func() { p.notifying = false }()
	for _, l := range p.listeners {
		l(p)
	}
}

func (p *Pagination) recompute() {
	size := p.resultsPerPage.Count()
	if size == 0 {
		p.totalPages = 1
	} else {
		p.totalPages = (p.total + size - 1) / size
		if p.totalPages < 1 {
			p.totalPages = 1
		}
	}

	if p.pageNumber < 1 {
		p.pageNumber = 1
	}
	if p.pageNumber > p.totalPages {
		p.pageNumber = p.totalPages
	}
}

// PageNumber returns the 1-based current page
func (p *Pagination) PageNumber() int { return p.pageNumber }

// TotalPages returns the number of pages, at least 1
func (p *Pagination) TotalPages() int { return p.totalPages }

// ResultsPerPage returns the page size choice
func (p *Pagination) ResultsPerPage() ResultsPerPage { return p.resultsPerPage }

// Total returns the number of elements being paged
func (p *Pagination) Total() int { return p.total }

// StartIndex returns the index of the first element on the current page
func (p *Pagination) StartIndex() int {
	size := p.resultsPerPage.Count()
	if size == 0 {
		return 0
	}
	return (p.pageNumber - 1) * size
}

// EndIndex returns one past the last element on the current page
func (p *Pagination) EndIndex() int {
	size := p.resultsPerPage.Count()
	if size == 0 {
		return p.total
	}
	return min(p.StartIndex()+size, p.total)
}

// Window returns the half-open range [start, end) of the current page
func (p *Pagination) Window() (int, int) {
	return p.StartIndex(), p.EndIndex()
}

// Label renders "Page n/m"
func (p *Pagination) Label() string {
	return fmt.Sprintf("Page %d/%d", p.pageNumber, p.totalPages)
}

// PerPageLabel renders "50 docs / page", or "All docs"
func (p *Pagination) PerPageLabel() string {
	return PerPageLabel(p.resultsPerPage)
}

// PerPageLabel renders the menu entry for r
func PerPageLabel(r ResultsPerPage) string {
	if r == All {
		return "All docs"
	}
	return fmt.Sprintf("%s docs / page", r.Label())
}
