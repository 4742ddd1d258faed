package jsontree

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

func TestParseSearchQuery_Simple(t *testing.T) {
	q := ParseSearchQuery("user")

	if q.Pattern != "user" {
		t.Errorf("expected pattern 'user', got '%s'", q.Pattern)
	}
	if q.Negate {
		t.Error("expected Negate=false")
	}
	if q.TypeFilter != "" {
		t.Errorf("expected empty TypeFilter, got '%s'", q.TypeFilter)
	}
}

func TestParseSearchQuery_Negate(t *testing.T) {
	q := ParseSearchQuery("!test")

	if q.Pattern != "test" {
		t.Errorf("expected pattern 'test', got '%s'", q.Pattern)
	}
	if !q.Negate {
		t.Error("expected Negate=true")
	}
}

func TestParseSearchQuery_TypeShort(t *testing.T) {
	q := ParseSearchQuery("n:age")

	if q.Pattern != "age" {
		t.Errorf("expected pattern 'age', got '%s'", q.Pattern)
	}
	if q.TypeFilter != "number" {
		t.Errorf("expected TypeFilter 'number', got '%s'", q.TypeFilter)
	}
}

func TestParseSearchQuery_KeysWithType(t *testing.T) {
	q := ParseSearchQuery("!k:string:Name")

	if q.Pattern != "Name" {
		t.Errorf("expected pattern 'Name', got '%s'", q.Pattern)
	}
	if !q.Negate || !q.KeysOnly {
		t.Errorf("expected Negate and KeysOnly, got %+v", q)
	}
	if q.TypeFilter != "string" {
		t.Errorf("expected TypeFilter 'string', got '%s'", q.TypeFilter)
	}
}

func TestFuzzyMatch_Subsequence(t *testing.T) {
	match, positions := FuzzyMatch("crt", "created_at")

	if !match {
		t.Error("expected match")
	}
	if len(positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(positions))
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if match, _ := FuzzyMatch("xyz", "created_at"); match {
		t.Error("expected no match")
	}
}

func TestFuzzyMatch_EmptyPattern(t *testing.T) {
	match, positions := FuzzyMatch("", "anything")

	if !match {
		t.Error("empty pattern should match everything")
	}
	if len(positions) != 0 {
		t.Error("empty pattern should have no positions")
	}
}

func createTestTree() *models.Tree {
	return NewTree(jsonb.MustParse(`{
		"user": {"name": "Ada", "age": 36, "admin": true},
		"tags": ["math", "engines"],
		"planet": null
	}`), 0)
}

func labels(tree *models.Tree, ids []models.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = tree.Node(id).Label()
	}
	return out
}

func TestFilter_MatchesLabelsAndValues(t *testing.T) {
	tree := createTestTree()

	got := labels(tree, Filter(tree, ParseSearchQuery("eng")))
	if strings.Join(got, ",") != "[1]" {
		t.Errorf("expected value match on [1], got %v", got)
	}

	got = labels(tree, Filter(tree, ParseSearchQuery("k:eng")))
	if len(got) != 0 {
		t.Errorf("keys-only query should not match values, got %v", got)
	}
}

func TestFilter_TypeFilter(t *testing.T) {
	tree := createTestTree()

	got := labels(tree, Filter(tree, ParseSearchQuery("n:")))
	if strings.Join(got, ",") != "age" {
		t.Errorf("expected only the number node, got %v", got)
	}

	got = labels(tree, Filter(tree, ParseSearchQuery("null:")))
	if strings.Join(got, ",") != "planet" {
		t.Errorf("expected only the null node, got %v", got)
	}
}

func TestFilter_Negate(t *testing.T) {
	tree := createTestTree()

	for _, id := range Filter(tree, ParseSearchQuery("!a")) {
		label := tree.Node(id).Label()
		if strings.Contains(strings.ToLower(label), "a") {
			t.Errorf("negated query should not match '%s'", label)
		}
	}
}

func TestFilter_EmptyQuery(t *testing.T) {
	tree := createTestTree()

	if got := len(Filter(tree, ParseSearchQuery(""))); got != tree.Len() {
		t.Errorf("empty query should return all %d nodes, got %d", tree.Len(), got)
	}
}

func TestFind(t *testing.T) {
	tree := createTestTree()

	tests := []struct {
		path string
		want string
	}{
		{"$", ""},
		{"$.user.name", "name"},
		{"tags[1]", "[1]"},
		{"$.user.missing", "-"},
		{"$.tags[5]", "-"},
	}

	for _, tt := range tests {
		p, err := jsonb.ParsePath(tt.path)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", tt.path, err)
		}
		id := Find(tree, p)
		got := "-"
		if id != models.NoNode {
			got = tree.Node(id).Label()
			if tree.Node(id).IsRoot() {
				got = ""
			}
		}
		if got != tt.want {
			t.Errorf("Find(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
