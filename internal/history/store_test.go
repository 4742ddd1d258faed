package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndGetRecent(t *testing.T) {
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Add(Entry{Source: "orders.json", Kind: "file", OpenedAt: base, Duration: 12 * time.Millisecond, Documents: 57, Success: true}))
	require.NoError(t, s.Add(Entry{Source: "app@db.local", Kind: "postgres", OpenedAt: base.Add(time.Minute), Success: false, ErrorMessage: "query failed"}))
	require.NoError(t, s.Add(Entry{Source: "stdin", Kind: "stdin", OpenedAt: base.Add(2 * time.Minute), Documents: 1, Success: true}))

	entries, err := s.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "stdin", entries[0].Source)
	assert.Equal(t, "app@db.local", entries[1].Source)
	assert.False(t, entries[1].Success)
	assert.Equal(t, "query failed", entries[1].ErrorMessage)
	assert.True(t, entries[1].OpenedAt.Equal(base.Add(time.Minute)))

	all, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 57, all[2].Documents)
	assert.Equal(t, 12*time.Millisecond, all[2].Duration)
}

func TestAddDefaultsOpenedAt(t *testing.T) {
	s := newStore(t)
	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Add(Entry{Source: "a.json", Kind: "file", Success: true}))

	entries, err := s.GetRecent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].OpenedAt.After(before))
}

func TestSearch(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"orders.json", "users.json", "orders-2.json"} {
		require.NoError(t, s.Add(Entry{Source: name, Kind: "file", Success: true}))
	}

	found, err := s.Search("orders", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := s.Search("nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(Entry{Source: "a.json", Kind: "file", Success: true}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
