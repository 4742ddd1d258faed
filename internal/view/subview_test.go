package view

import (
	"testing"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubview_EditAndMerge(t *testing.T) {
	p, _ := newPanel(t, `{"user":{"name":"Ada","tags":["a","b"]},"n":1}`, WithMode(ModeTree))

	h, sub, err := p.OpenSubview(nodeAt(t, p, "user"))
	require.NoError(t, err)
	assert.Equal(t, ModeTree, sub.Mode())
	assert.Equal(t, "user", sub.Title())
	assert.Equal(t, []SubviewHandle{h}, p.Subviews())

	require.NoError(t, sub.UpdateNode(nodeAt(t, sub, "name"), "Grace"))
	assert.Equal(t, `{"user":{"name":"Ada","tags":["a","b"]},"n":1}`, p.Document().String(),
		"parent must not see subview edits before merge")

	require.NoError(t, p.CloseAndMergeSubview(h))
	assert.Equal(t, `{"user":{"name":"Grace","tags":["a","b"]},"n":1}`, p.Document().String())
	assert.Empty(t, p.Subviews())

	text, err := p.NodeEditText(nodeAt(t, p, "user", "name"))
	require.NoError(t, err)
	assert.Equal(t, "Grace", text)
}

func TestSubview_CloseReturnsValue(t *testing.T) {
	p, _ := newPanel(t, `{"a":[1,2]}`, WithMode(ModeTree))

	h, sub, err := p.OpenSubview(nodeAt(t, p, "a"))
	require.NoError(t, err)
	require.NoError(t, sub.UpdateNode(nodeAt(t, sub, "[1]"), "3"))

	v, err := p.CloseSubview(h)
	require.NoError(t, err)
	assert.Equal(t, `[1,3]`, v.String())
	_, ok := p.Subview(h)
	assert.False(t, ok)

	require.NoError(t, p.MergeSubview(h, v))
	assert.Equal(t, `{"a":[1,3]}`, p.Document().String())

	err = p.MergeSubview(h, v)
	assert.ErrorIs(t, err, apperrors.ErrUnknownSubview)
}

func TestSubview_FailedMergeKeepsSubviewOpen(t *testing.T) {
	p, _ := newPanel(t, `{"a":{"b":1},"c":{"d":2}}`, WithMode(ModeTree))

	h, sub, err := p.OpenSubview(nodeAt(t, p, "a"))
	require.NoError(t, err)
	other, _, err := p.OpenSubview(nodeAt(t, p, "c"))
	require.NoError(t, err)

	require.NoError(t, sub.SetViewMode(ModeInput))
	require.NoError(t, sub.SetRawText(`[1,2]`))

	err = p.CloseAndMergeSubview(h)
	assert.ErrorIs(t, err, apperrors.Coercion)
	assert.Equal(t, []SubviewHandle{h, other}, p.Subviews())
	reopened, ok := p.Subview(h)
	require.True(t, ok)
	assert.Same(t, sub, reopened)
	assert.Equal(t, `[1,2]`, sub.Raw())
	assert.Equal(t, `{"a":{"b":1},"c":{"d":2}}`, p.Document().String())

	require.NoError(t, sub.SetRawText(`{"b":2}`))
	require.NoError(t, p.CloseAndMergeSubview(h))
	assert.Equal(t, `{"a":{"b":2},"c":{"d":2}}`, p.Document().String())
	assert.Equal(t, []SubviewHandle{other}, p.Subviews())
}

func TestSubview_FailedMergeCanBeRetried(t *testing.T) {
	p, _ := newPanel(t, `{"a":{"b":1}}`, WithMode(ModeTree))

	h, _, err := p.OpenSubview(nodeAt(t, p, "a"))
	require.NoError(t, err)
	v, err := p.CloseSubview(h)
	require.NoError(t, err)

	assert.Error(t, p.MergeSubview(h, jsonb.MustParse(`[1]`)))
	require.NoError(t, p.MergeSubview(h, v))
	assert.Equal(t, `{"a":{"b":1}}`, p.Document().String())
	assert.ErrorIs(t, p.MergeSubview(h, v), apperrors.ErrUnknownSubview)
}

func TestSubview_NestedClosesInward(t *testing.T) {
	p, _ := newPanel(t, `{"a":{"b":{"c":1}}}`, WithMode(ModeTree))

	outer, sub, err := p.OpenSubview(nodeAt(t, p, "a"))
	require.NoError(t, err)
	_, inner, err := sub.OpenSubview(nodeAt(t, sub, "b"))
	require.NoError(t, err)
	require.NoError(t, inner.UpdateNode(nodeAt(t, inner, "c"), "2"))

	require.NoError(t, p.CloseAndMergeSubview(outer))
	assert.Equal(t, `{"a":{"b":{"c":2}}}`, p.Document().String())
}

func TestSubview_RequiresContainer(t *testing.T) {
	p, rec := newPanel(t, `{"a":1}`, WithMode(ModeTree))

	_, _, err := p.OpenSubview(nodeAt(t, p, "a"))
	assert.ErrorIs(t, err, apperrors.ErrNotContainer)
	assert.Len(t, rec.Errors(), 1)
	assert.Empty(t, p.Subviews())
}

func TestSubview_UnknownHandle(t *testing.T) {
	p, _ := newPanel(t, `{"a":{}}`, WithMode(ModeTree))

	_, err := p.CloseSubview(SubviewHandle{})
	assert.ErrorIs(t, err, apperrors.ErrUnknownSubview)
}

func TestSubview_MergeAfterModeSwitch(t *testing.T) {
	p, _ := newPanel(t, `{"a":{"b":1},"c":2}`, WithMode(ModeTree))

	h, sub, err := p.OpenSubview(nodeAt(t, p, "a"))
	require.NoError(t, err)
	require.NoError(t, sub.UpdateNode(nodeAt(t, sub, "b"), "5"))

	require.NoError(t, p.SetViewMode(ModeInput))
	require.NoError(t, p.CloseAndMergeSubview(h))

	assert.Equal(t, `{"a":{"b":5},"c":2}`, p.Document().String())
	assert.Contains(t, p.Raw(), `"b": 5`)
}

func TestSubview_MergeOffPage(t *testing.T) {
	p, _ := newPanel(t, numbered(30), WithMode(ModeTree), WithPageSize(pagination.Ten))

	h, sub, err := p.OpenSubview(nodeAt(t, p, "[3]"))
	require.NoError(t, err)
	require.NoError(t, sub.UpdateNode(nodeAt(t, sub, "i"), "33"))

	require.NoError(t, p.SetPage(2))
	require.NoError(t, p.CloseAndMergeSubview(h))

	got, _ := p.Document().Index(3).Get("i")
	assert.Equal(t, int64(33), got.AsInt())
	assert.Equal(t, 2, p.Pagination().PageNumber())
}

func TestCellSubview(t *testing.T) {
	p, _ := newPanel(t, `[{"id":1,"tags":["x"]},{"id":2,"tags":["y","z"]}]`, WithMode(ModeTable))

	h, sub, err := p.OpenCellSubview(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "tags", sub.Title())
	require.NoError(t, sub.UpdateNode(nodeAt(t, sub, "[0]"), "w"))

	require.NoError(t, p.CloseAndMergeSubview(h))
	assert.Equal(t, `[{"id":1,"tags":["x"]},{"id":2,"tags":["w","z"]}]`, p.Document().String())
	assert.Equal(t, `["w","z"]`, p.Table().Text(1, 1))

	_, _, err = p.OpenCellSubview(0, 0)
	assert.ErrorIs(t, err, apperrors.ErrNotContainer)
}
