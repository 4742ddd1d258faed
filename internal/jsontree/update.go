package jsontree

import (
	"fmt"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// UpdateNode parses text into the node's value and propagates the change.
// A CoercionError leaves the tree untouched. An invariant error means the
// tree could not be brought back into a consistent state.
func UpdateNode(t *models.Tree, id models.NodeID, text string) error {
	n, err := editable(t, id)
	if err != nil {
		return err
	}
	if err := n.Descriptor.Set(text); err != nil {
		return err
	}
	return propagate(t, id)
}

// ReplaceNode stores v in the node and propagates the change. v must have
// the node's kind unless the node holds null.
func ReplaceNode(t *models.Tree, id models.NodeID, v *jsonb.Value) error {
	n, err := editable(t, id)
	if err != nil {
		return err
	}
	if err := n.Descriptor.Replace(v); err != nil {
		return err
	}
	return propagate(t, id)
}

func editable(t *models.Tree, id models.NodeID) (*models.TreeNode, error) {
	n := t.Node(id)
	if n == nil {
		return nil, apperrors.NewStateError(fmt.Sprintf("node %d", id), apperrors.ErrUnknownNode)
	}
	if n.IsRoot() {
		return nil, apperrors.NewStateError("the root node cannot be edited", nil)
	}
	return n, nil
}

// propagate rebuilds the subtree of id from its new value, then writes the
// value into the backing container of every ancestor below the root.
func propagate(t *models.Tree, id models.NodeID) error {
	if err := updateChildren(t, id); err != nil {
		return err
	}
	return updateParents(t, id)
}

func updateChildren(t *models.Tree, id models.NodeID) error {
	n := t.Node(id)
	v, err := reparse(t, n.Descriptor.Canonical())
	if err != nil {
		return err
	}

	expanded := n.Expanded
	Build(t, v, id, 0)
	n.Expanded = expanded && n.HasChildren()
	return nil
}

func updateParents(t *models.Tree, id models.NodeID) error {
	child := t.Node(id)
	for {
		parent := t.Node(child.Parent)
		if parent.IsRoot() {
			return nil
		}

		v, err := reparse(t, child.Descriptor.Canonical())
		if err != nil {
			return err
		}

		backing := parent.Descriptor.Value()
		switch backing.Kind() {
		case jsonb.KindObject:
			backing.Set(child.Descriptor.Key(), v)
		case jsonb.KindArray:
			backing.SetIndex(t.ChildIndex(child.ID), v)
		default:
			return apperrors.NewInvariantError(
				fmt.Sprintf("node %s has children but holds %s", parent.Label(), backing.Kind()), nil)
		}
		child = parent
	}
}
