package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowing(t *testing.T) {
	p := New()
	p.SetResultsPerPage(TwentyFive)
	p.SetTotal(57)

	tests := []struct {
		page       int
		start, end int
	}{
		{1, 0, 25},
		{2, 25, 50},
		{3, 50, 57},
	}
	for _, tt := range tests {
		p.SetPage(tt.page)
		start, end := p.Window()
		assert.Equal(t, tt.start, start, "page %d start", tt.page)
		assert.Equal(t, tt.end, end, "page %d end", tt.page)
	}
	assert.Equal(t, 3, p.TotalPages())
}

func TestUnknownPageSizePanics(t *testing.T) {
	assert.Panics(t, func() { ResultsPerPage(42).Count() })
}

func TestClamping(t *testing.T) {
	p := New(WithResultsPerPage(Ten))
	p.SetTotal(35)

	p.SetPage(99)
	assert.Equal(t, 4, p.PageNumber())
	assert.Equal(t, "Page 4/4", p.Label())

	p.SetPage(-3)
	assert.Equal(t, 1, p.PageNumber())

	p.SetPage(4)
	p.SetTotal(12)
	assert.Equal(t, 2, p.PageNumber())

	p.SetTotal(0)
	assert.Equal(t, 1, p.PageNumber())
	assert.Equal(t, 1, p.TotalPages())
}

func TestPageSizeResetsPage(t *testing.T) {
	p := New(WithResultsPerPage(Ten))
	p.SetTotal(100)
	p.SetPage(5)

	p.SetResultsPerPage(TwentyFive)
	assert.Equal(t, 1, p.PageNumber())
	assert.Equal(t, 4, p.TotalPages())
}

func TestAllIsOnePage(t *testing.T) {
	p := New()
	p.SetTotal(1234)
	p.SetResultsPerPage(All)

	assert.Equal(t, 1, p.TotalPages())
	start, end := p.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 1234, end)
	assert.Equal(t, "All docs", p.PerPageLabel())
}

func TestNextPrevious(t *testing.T) {
	p := New(WithResultsPerPage(Ten))
	p.SetTotal(25)

	p.Previous()
	assert.Equal(t, 1, p.PageNumber())
	p.Next()
	p.Next()
	p.Next()
	assert.Equal(t, 3, p.PageNumber())
	p.Previous()
	assert.Equal(t, 2, p.PageNumber())
}

func TestListeners(t *testing.T) {
	p := New(WithResultsPerPage(Ten))

	var calls []string
	p.AddListener(func(p *Pagination) { calls = append(calls, "first:"+p.Label()) })
	p.AddListener(func(p *Pagination) { calls = append(calls, "second:"+p.Label()) })

	p.SetTotal(30)
	p.SetPage(2)
	p.SetResultsPerPage(Fifty)

	assert.Equal(t, []string{
		"first:Page 1/3", "second:Page 1/3",
		"first:Page 2/3", "second:Page 2/3",
		"first:Page 1/1", "second:Page 1/1",
	}, calls)
}

func TestListenerReentryIsIgnored(t *testing.T) {
	p := New(WithResultsPerPage(Ten))
	p.SetTotal(30)

	calls := 0
	p.AddListener(func(p *Pagination) {
		calls++
		p.SetPage(3)
	})

	p.SetPage(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, p.PageNumber())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "50 docs / page", New().PerPageLabel())
	assert.Equal(t, "Page 1/1", New().Label())
	assert.Equal(t, "100", Hundred.Label())

	r, err := ParseResultsPerPage(" ALL ")
	require.NoError(t, err)
	assert.Equal(t, All, r)

	r, err = ParseResultsPerPage("25")
	require.NoError(t, err)
	assert.Equal(t, TwentyFive, r)

	_, err = ParseResultsPerPage("20")
	assert.Error(t, err)
}
