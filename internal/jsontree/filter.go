package jsontree

import (
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// SearchQuery represents a parsed search query
type SearchQuery struct {
	Pattern    string // The search pattern (after removing prefix/type)
	Negate     bool   // True if query starts with !
	TypeFilter string // Normalized type filter (e.g., "string", "number")
	KeysOnly   bool   // Match the pattern against labels only
}

// Type prefix mappings
var typePrefixes = map[string]string{
	// Short prefixes
	"s:": "string",
	"n:": "number",
	"b:": "boolean",
	"d:": "date",
	"o:": "object",
	"a:": "array",
	// Long prefixes
	"string:":  "string",
	"number:":  "number",
	"bool:":    "boolean",
	"boolean:": "boolean",
	"date:":    "date",
	"object:":  "object",
	"array:":   "array",
	"null:":    "null",
}

// ParseSearchQuery parses a search query string into structured form
// Examples:
//   - "user" → {Pattern: "user"}
//   - "!test" → {Pattern: "test", Negate: true}
//   - "n:age" → {Pattern: "age", TypeFilter: "number"}
//   - "k:id" → {Pattern: "id", KeysOnly: true}
func ParseSearchQuery(query string) SearchQuery {
	q := SearchQuery{}

	if strings.HasPrefix(query, "!") {
		q.Negate = true
		query = query[1:]
	}

	queryLower := strings.ToLower(query)
	for _, prefix := range []string{"k:", "key:"} {
		if strings.HasPrefix(queryLower, prefix) {
			q.KeysOnly = true
			query = query[len(prefix):]
			queryLower = queryLower[len(prefix):]
			break
		}
	}

	for prefix, typeName := range typePrefixes {
		if strings.HasPrefix(queryLower, prefix) {
			q.TypeFilter = typeName
			query = query[len(prefix):]
			break
		}
	}

	q.Pattern = query
	return q
}

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

// NodeMatchesType checks if a node's value matches the given type filter
// Empty filter matches all nodes
func NodeMatchesType(n *models.TreeNode, typeFilter string) bool {
	if typeFilter == "" {
		return true
	}
	if n.Descriptor == nil {
		return false
	}
	return jsonb.Type(n.Descriptor.Value()) == typeFilter
}

func patternMatches(n *models.TreeNode, q SearchQuery) bool {
	if q.Pattern == "" {
		return true
	}
	if ok, _ := FuzzyMatch(q.Pattern, n.Label()); ok {
		return true
	}
	if q.KeysOnly || n.Descriptor.Kind().IsContainer() {
		return false
	}
	ok, _ := FuzzyMatch(q.Pattern, n.Descriptor.Format())
	return ok
}

// Filter returns every node below the root matching the query, in
// depth-first order and regardless of expansion state.
func Filter(t *models.Tree, query SearchQuery) []models.NodeID {
	var matches []models.NodeID

	var traverse func(id models.NodeID)
	traverse = func(id models.NodeID) {
		n := t.Node(id)
		if !n.IsRoot() {
			typeMatches := NodeMatchesType(n, query.TypeFilter)
			textMatches := patternMatches(n, query)

			shouldInclude := false
			if query.Negate {
				if query.TypeFilter != "" && !typeMatches {
					shouldInclude = true
				} else if typeMatches && !textMatches {
					shouldInclude = true
				}
			} else {
				shouldInclude = typeMatches && textMatches
			}

			if shouldInclude {
				matches = append(matches, id)
			}
		}

		for _, child := range n.Children {
			traverse(child)
		}
	}

	traverse(t.Root())
	return matches
}

// Find follows path down from the root. It returns NoNode when a step has
// no matching child, which includes elements outside the current page.
func Find(t *models.Tree, path jsonb.Path) models.NodeID {
	id := t.Root()
	for _, part := range path.Parts {
		next := models.NoNode
		for _, child := range t.Node(id).Children {
			d := t.Node(child).Descriptor
			if (d.IsKey() && d.Key() == part) || (!d.IsKey() && strconv.Itoa(d.Index()) == part) {
				next = child
				break
			}
		}
		if next == models.NoNode {
			return models.NoNode
		}
		id = next
	}
	return id
}
