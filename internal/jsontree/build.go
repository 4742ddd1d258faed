// Package jsontree builds node trees from JSON values, serializes them back
// and propagates edits through the ancestor chain.
package jsontree

import (
	"strings"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// NewTree creates a tree for v. Array elements are labelled from
// startIndex, which lets a page of a larger array keep its true positions.
func NewTree(v *jsonb.Value, startIndex int) *models.Tree {
	t := models.NewTree()
	Build(t, v, t.Root(), startIndex)
	return t
}

// Build replaces the children of parent with one node per object member
// or array element of v. Scalars leave parent without children.
func Build(t *models.Tree, v *jsonb.Value, parent models.NodeID, startIndex int) models.NodeID {
	t.ClearChildren(parent)

	switch v.Kind() {
	case jsonb.KindObject:
		for _, m := range v.Members() {
			id := t.AddChild(parent, t.NewKeyDescriptor(m.Key, m.Value))
			Build(t, m.Value, id, 0)
		}
	case jsonb.KindArray:
		for i, elem := range v.Elements() {
			id := t.AddChild(parent, t.NewIndexDescriptor(startIndex+i, elem))
			Build(t, elem, id, 0)
		}
	}
	return parent
}

// BuildWindow builds the elements doc[start:end] of an array under parent,
// labelled with their positions in doc. Non-array documents are built whole.
func BuildWindow(t *models.Tree, doc *jsonb.Value, parent models.NodeID, start, end int) models.NodeID {
	if !doc.IsArray() {
		return Build(t, doc, parent, 0)
	}

	start = clamp(start, 0, doc.Len())
	end = clamp(end, start, doc.Len())
	return Build(t, jsonb.NewArray(doc.Elements()[start:end]...), parent, start)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Stringify serializes the subtree at id. The root renders as an object
// when its first child is keyed, as an array when it is indexed, and as ""
// when it has no children. Other nodes render their descriptor.
func Stringify(t *models.Tree, id models.NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	if !n.IsRoot() {
		return n.Descriptor.Canonical()
	}
	if len(n.Children) == 0 {
		return ""
	}

	keyed := t.Node(n.Children[0]).Descriptor.IsKey()

	var b strings.Builder
	if keyed {
		b.WriteByte('{')
	} else {
		b.WriteByte('[')
	}
	for i, childID := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		child := t.Node(childID)
		if keyed {
			b.WriteString(jsonb.Quote(child.Descriptor.Key()))
			b.WriteByte(':')
		}
		b.WriteString(child.Descriptor.Canonical())
	}
	if keyed {
		b.WriteByte('}')
	} else {
		b.WriteByte(']')
	}
	return b.String()
}

// Value parses the serialized subtree at id. An empty root yields
// ErrEmptyInput.
func Value(t *models.Tree, id models.NodeID) (*jsonb.Value, error) {
	text := Stringify(t, id)
	if text == "" {
		return nil, apperrors.NewStateError("tree is empty", apperrors.ErrEmptyInput)
	}
	return reparse(t, text)
}

// reparse decodes canonical text produced by the tree itself. Failure means
// the encoder emitted invalid JSON.
func reparse(t *models.Tree, text string) (*jsonb.Value, error) {
	v, err := jsonb.Parse(text, t.ParseOptions...)
	if err != nil {
		return nil, apperrors.NewInvariantError("canonical text does not re-parse", err)
	}
	return v, nil
}
