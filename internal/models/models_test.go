package models

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbbreviateInCenter(t *testing.T) {
	long := strings.Repeat("a", 100) + strings.Repeat("m", 300) + strings.Repeat("z", 100)

	out := AbbreviateInCenter(long, 50)
	assert.Len(t, []rune(out), 50)
	assert.Equal(t, strings.Repeat("a", 23)+"..."+strings.Repeat("z", 24), out)

	assert.Equal(t, "short", AbbreviateInCenter("short", 50))
	assert.Equal(t, "héllo wörld", AbbreviateInCenter("héllo wörld", 11))
	assert.Equal(t, "hé...ld", AbbreviateInCenter("héllo wörld", 7))
}

func TestDescriptor_Labels(t *testing.T) {
	assert.Equal(t, "name", NewKeyDescriptor("name", jsonb.String("x")).Label())
	assert.Equal(t, "[7]", NewIndexDescriptor(7, jsonb.Int(1)).Label())
	assert.True(t, NewKeyDescriptor("k", nil).IsKey())
	assert.Equal(t, jsonb.KindNull, NewKeyDescriptor("k", nil).Kind())
}

func TestDescriptor_Format(t *testing.T) {
	tests := []struct {
		name  string
		value *jsonb.Value
		want  string
	}{
		{"null", jsonb.Null(), "null"},
		{"bool", jsonb.Bool(true), "true"},
		{"int", jsonb.Int(-4), "-4"},
		{"long", jsonb.Long(1 << 40), "1099511627776"},
		{"double", jsonb.Double(2), "2.0"},
		{"string is unquoted", jsonb.String("hi"), "hi"},
		{"date", jsonb.Date(time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)), "3/1/24, 3:04:05 PM UTC"},
		{"object", jsonb.MustParse(`{"a":[1,2]}`), `{"a":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewKeyDescriptor("k", tt.value).Format())
		})
	}

	d := NewIndexDescriptor(0, jsonb.String(strings.Repeat("x", 500)))
	assert.Len(t, d.Format(), 50)
	d.MaxLength = 10
	assert.Equal(t, "xxx...xxxx", d.Format())
}

func TestDescriptor_SetCoerces(t *testing.T) {
	tests := []struct {
		name  string
		value *jsonb.Value
		input string
		want  string
	}{
		{"bool", jsonb.Bool(true), "false", "false"},
		{"int", jsonb.Int(1), " 42 ", "42"},
		{"long", jsonb.Long(1), "9000000000", "9000000000"},
		{"double", jsonb.Double(1), "2.5", "2.5"},
		{"double from integer text", jsonb.Double(1), "3", "3.0"},
		{"string keeps text", jsonb.String("a"), " padded ", `" padded "`},
		{"date", jsonb.Date(time.Unix(0, 0)), "2024-01-02", `"2024-01-02T00:00:00Z"`},
		{"null fill-in", jsonb.Null(), `{"a":1}`, `{"a":1}`},
		{"null stays null", jsonb.Null(), "null", "null"},
		{"object", jsonb.MustParse(`{}`), `{"b":true}`, `{"b":true}`},
		{"array", jsonb.MustParse(`[]`), `[1, "x"]`, `[1,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewKeyDescriptor("k", tt.value)
			require.NoError(t, d.Set(tt.input))
			assert.Equal(t, tt.want, d.Canonical())
		})
	}
}

func TestDescriptor_SetRejects(t *testing.T) {
	tests := []struct {
		name  string
		value *jsonb.Value
		input string
	}{
		{"bool", jsonb.Bool(true), "banana"},
		{"int overflow", jsonb.Int(1), "2147483648"},
		{"int fraction", jsonb.Int(1), "1.5"},
		{"long", jsonb.Long(5), "five"},
		{"double", jsonb.Double(1), "NaN"},
		{"date", jsonb.Date(time.Unix(0, 0)), "yesterday"},
		{"null bad json", jsonb.Null(), "{oops"},
		{"object to array", jsonb.MustParse(`{"a":1}`), "[1]"},
		{"array bad json", jsonb.MustParse(`[1]`), "[1,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewKeyDescriptor("k", tt.value)
			before := d.Canonical()

			err := d.Set(tt.input)
			assert.ErrorIs(t, err, apperrors.Coercion)
			assert.Equal(t, before, d.Canonical())
			assert.Equal(t, tt.value.Kind(), d.Kind())
		})
	}
}

func TestDescriptor_EditTextRoundTrips(t *testing.T) {
	for _, v := range []*jsonb.Value{
		jsonb.String(`with "quotes"`),
		jsonb.Double(0.1),
		jsonb.Date(time.Date(2020, 5, 6, 7, 8, 9, 500, time.UTC)),
		jsonb.MustParse(`{"a":[null]}`),
	} {
		d := NewKeyDescriptor("k", v)
		require.NoError(t, d.Set(d.EditText()))
		assert.True(t, v.Equal(d.Value()), "round trip of %s", v)
	}
}

func TestDescriptor_SetKeepsDateLayout(t *testing.T) {
	day := jsonb.DateWithLayout(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), "2006-01-02")

	d := NewKeyDescriptor("d", day)
	assert.Equal(t, "2020-01-02", d.EditText())
	require.NoError(t, d.Set("2021-12-31"))
	assert.Equal(t, `"2021-12-31"`, d.Canonical())

	// a time of day does not fit the old layout
	require.NoError(t, d.Set("2021-12-31T08:00:00Z"))
	assert.Equal(t, `"2021-12-31T08:00:00Z"`, d.Canonical())
}

func TestDescriptor_Replace(t *testing.T) {
	d := NewKeyDescriptor("k", jsonb.MustParse(`[1]`))
	require.NoError(t, d.Replace(jsonb.MustParse(`[2,3]`)))
	assert.Equal(t, "[2,3]", d.Canonical())

	err := d.Replace(jsonb.MustParse(`{}`))
	assert.ErrorIs(t, err, apperrors.Coercion)
	assert.Equal(t, "[2,3]", d.Canonical())
}

func buildSample(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	tree := NewTree()
	ids := map[string]NodeID{}
	ids["a"] = tree.AddChild(tree.Root(), NewKeyDescriptor("a", jsonb.MustParse(`{"b":[1,2]}`)))
	ids["b"] = tree.AddChild(ids["a"], NewKeyDescriptor("b", jsonb.MustParse(`[1,2]`)))
	ids["b0"] = tree.AddChild(ids["b"], NewIndexDescriptor(0, jsonb.Int(1)))
	ids["b1"] = tree.AddChild(ids["b"], NewIndexDescriptor(1, jsonb.Int(2)))
	ids["c"] = tree.AddChild(tree.Root(), NewKeyDescriptor("c", jsonb.Bool(true)))
	return tree, ids
}

func TestTree_Structure(t *testing.T) {
	tree, ids := buildSample(t)

	assert.Equal(t, 5, tree.Len())
	assert.Equal(t, 0, tree.Depth(tree.Root()))
	assert.Equal(t, 3, tree.Depth(ids["b1"]))
	assert.Equal(t, 1, tree.ChildIndex(ids["b1"]))
	assert.Equal(t, 1, tree.ChildIndex(ids["c"]))
	assert.Equal(t, -1, tree.ChildIndex(tree.Root()))
	assert.Equal(t, []string{"a", "b", "[1]"}, tree.Path(ids["b1"]))
	assert.Equal(t, "$.a.b[1]", tree.JSONPath(ids["b1"]).String())
	assert.True(t, tree.IsAncestorOf(ids["a"], ids["b0"]))
	assert.False(t, tree.IsAncestorOf(ids["c"], ids["b0"]))
	assert.Equal(t, RootLabel, tree.Node(tree.Root()).Label())
}

func TestTree_ClearChildrenFreesDescendants(t *testing.T) {
	tree, ids := buildSample(t)

	tree.ClearChildren(ids["a"])
	assert.False(t, tree.Has(ids["b"]))
	assert.False(t, tree.Has(ids["b0"]))
	assert.True(t, tree.Has(ids["a"]))
	assert.Empty(t, tree.Node(ids["a"]).Children)
	assert.Equal(t, 2, tree.Len())

	fresh := tree.AddChild(ids["a"], NewKeyDescriptor("x", jsonb.Null()))
	assert.NotEqual(t, ids["b"], fresh)
}

func TestTree_ClearedSlotsAreReused(t *testing.T) {
	tree, ids := buildSample(t)
	slots := tree.Slots()

	for i := 0; i < 100; i++ {
		tree.ClearChildren(ids["a"])
		b := tree.AddChild(ids["a"], NewKeyDescriptor("b", jsonb.MustParse(`[1,2]`)))
		tree.AddChild(b, NewIndexDescriptor(0, jsonb.Int(1)))
		tree.AddChild(b, NewIndexDescriptor(1, jsonb.Int(2)))
	}
	assert.Equal(t, slots, tree.Slots())
	assert.Equal(t, 5, tree.Len())

	// old IDs do not reach the nodes now living in their slots
	assert.False(t, tree.Has(ids["b"]))
	assert.False(t, tree.Has(ids["b1"]))
	assert.Nil(t, tree.Node(ids["b0"]))
	b := tree.Node(ids["a"]).Children[0]
	assert.Equal(t, "$.a.b", tree.JSONPath(b).String())
}

func TestTree_FlattenAndToggle(t *testing.T) {
	tree, ids := buildSample(t)

	assert.Equal(t, []NodeID{ids["a"], ids["c"]}, tree.Flatten())

	tree.Toggle(ids["a"])
	assert.Equal(t, []NodeID{ids["a"], ids["b"], ids["c"]}, tree.Flatten())

	tree.Toggle(ids["c"])
	assert.False(t, tree.Node(ids["c"]).Expanded, "leaves never expand")

	tree.ExpandAll()
	assert.Len(t, tree.Flatten(), 5)

	tree.CollapseAll()
	assert.Len(t, tree.Flatten(), 2)

	tree.ExpandToDepth(1)
	assert.Equal(t, []NodeID{ids["a"], ids["b"], ids["c"]}, tree.Flatten())
}
