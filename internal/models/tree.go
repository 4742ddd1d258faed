package models

import (
	"fmt"
	"strconv"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
)

// NodeID addresses a node inside a Tree. The low bits select an arena slot
// and the high bits the generation of that slot.
type NodeID int64

const slotBits = 32

func (id NodeID) slot() int          { return int(id & (1<<slotBits - 1)) }
func (id NodeID) generation() uint32 { return uint32(id >> slotBits) }

func makeID(slot int, gen uint32) NodeID { return NodeID(gen)<<slotBits | NodeID(slot) }

// NoNode is the parent of the root and the result of failed lookups
const NoNode NodeID = -1

// RootLabel is the display label of the synthetic root node
const RootLabel = "<root>"

// TreeNode is one entry of the arena. The root has no descriptor.
type TreeNode struct {
	ID         NodeID
	Parent     NodeID
	Children   []NodeID
	Descriptor *Descriptor
	Expanded   bool
}

// IsRoot reports whether the node is the synthetic root
func (n *TreeNode) IsRoot() bool { return n.Parent == NoNode }

// Label returns the key, index label or RootLabel
func (n *TreeNode) Label() string {
	if n.Descriptor == nil {
		return RootLabel
	}
	return n.Descriptor.Label()
}

// HasChildren reports whether the node currently has children
func (n *TreeNode) HasChildren() bool { return len(n.Children) > 0 }

// Tree is an arena of nodes with parent links stored as IDs. Cleared slots
// are reused under a new generation, so a stale ID reads as unknown instead
// of aliasing the node that took its slot.
type Tree struct {
	nodes []*TreeNode
	gens  []uint32
	free  []int
	root  NodeID

	// MaxLength and ParseOptions are handed to every descriptor created
	// through NewKeyDescriptor and NewIndexDescriptor on this tree.
	MaxLength    int
	ParseOptions []jsonb.DecodeOption
}

// NewTree creates a tree holding only the expanded synthetic root
func NewTree() *Tree {
	t := &Tree{}
	t.root = t.alloc(NoNode, nil)
	t.mustNode(t.root).Expanded = true
	return t
}

func (t *Tree) alloc(parent NodeID, d *Descriptor) NodeID {
	var slot int
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		t.gens[slot]++
	} else {
		slot = len(t.nodes)
		t.nodes = append(t.nodes, nil)
		t.gens = append(t.gens, 0)
	}
	id := makeID(slot, t.gens[slot])
	t.nodes[slot] = &TreeNode{ID: id, Parent: parent, Descriptor: d}
	return id
}

func (t *Tree) release(id NodeID) {
	t.nodes[id.slot()] = nil
	t.free = append(t.free, id.slot())
}

// Root returns the ID of the synthetic root
func (t *Tree) Root() NodeID { return t.root }

// Node returns the node for id, or nil when id is unknown or was cleared
func (t *Tree) Node(id NodeID) *TreeNode {
	if id < 0 || id.slot() >= len(t.nodes) || t.gens[id.slot()] != id.generation() {
		return nil
	}
	return t.nodes[id.slot()]
}

// Has reports whether id refers to a live node
func (t *Tree) Has(id NodeID) bool { return t.Node(id) != nil }

func (t *Tree) mustNode(id NodeID) *TreeNode {
	n := t.Node(id)
	if n == nil {
		panic(fmt.Sprintf("models: unknown node %d", id))
	}
	return n
}

// NewKeyDescriptor creates a key descriptor carrying the tree settings
func (t *Tree) NewKeyDescriptor(key string, v *jsonb.Value) *Descriptor {
	d := NewKeyDescriptor(key, v)
	d.MaxLength = t.MaxLength
	d.ParseOptions = t.ParseOptions
	return d
}

// NewIndexDescriptor creates an index descriptor carrying the tree settings
func (t *Tree) NewIndexDescriptor(index int, v *jsonb.Value) *Descriptor {
	d := NewIndexDescriptor(index, v)
	d.MaxLength = t.MaxLength
	d.ParseOptions = t.ParseOptions
	return d
}

// AddChild appends a node holding d under parent and returns its ID
func (t *Tree) AddChild(parent NodeID, d *Descriptor) NodeID {
	p := t.mustNode(parent)
	id := t.alloc(parent, d)
	p.Children = append(p.Children, id)
	return id
}

// ClearChildren detaches and frees every descendant of id. Their slots are
// handed out again by later AddChild calls.
func (t *Tree) ClearChildren(id NodeID) {
	n := t.mustNode(id)
	for _, child := range n.Children {
		t.ClearChildren(child)
		t.release(child)
	}
	n.Children = nil
}

// Slots returns the size of the arena, live and free slots together
func (t *Tree) Slots() int { return len(t.nodes) }

// ChildIndex returns the position of id among its siblings, -1 for the root
func (t *Tree) ChildIndex(id NodeID) int {
	n := t.mustNode(id)
	if n.IsRoot() {
		return -1
	}
	for i, sibling := range t.mustNode(n.Parent).Children {
		if sibling == id {
			return i
		}
	}
	return -1
}

// Depth returns the number of ancestors of id (root = 0)
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for current := t.mustNode(id).Parent; current != NoNode; current = t.mustNode(current).Parent {
		depth++
	}
	return depth
}

// Path returns the labels from the first level below the root down to id
func (t *Tree) Path(id NodeID) []string {
	var path []string
	for current := t.mustNode(id); !current.IsRoot(); current = t.mustNode(current.Parent) {
		path = append([]string{current.Label()}, path...)
	}
	return path
}

// JSONPath returns the document path of id. Index labels carry absolute
// positions, so windowed trees yield paths into the full document.
func (t *Tree) JSONPath(id NodeID) jsonb.Path {
	var parts []string
	for current := t.mustNode(id); !current.IsRoot(); current = t.mustNode(current.Parent) {
		d := current.Descriptor
		part := d.Key()
		if !d.IsKey() {
			part = strconv.Itoa(d.Index())
		}
		parts = append([]string{part}, parts...)
	}
	return jsonb.Path{Parts: parts}
}

// IsAncestorOf checks if ancestor lies on the parent chain of id
func (t *Tree) IsAncestorOf(ancestor, id NodeID) bool {
	for current := t.mustNode(id).Parent; current != NoNode; current = t.mustNode(current).Parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Flatten returns the visible nodes in display order. The root itself is not
// included; its children are always visible.
func (t *Tree) Flatten() []NodeID {
	var result []NodeID
	t.flattenHelper(t.root, &result)
	return result
}

func (t *Tree) flattenHelper(id NodeID, result *[]NodeID) {
	n := t.mustNode(id)
	if !n.IsRoot() {
		*result = append(*result, id)
	}
	if n.Expanded || n.IsRoot() {
		for _, child := range n.Children {
			t.flattenHelper(child, result)
		}
	}
}

// Toggle flips the expanded state of a node that has children
func (t *Tree) Toggle(id NodeID) {
	n := t.mustNode(id)
	if n.IsRoot() || !n.HasChildren() {
		return
	}
	n.Expanded = !n.Expanded
}

// ExpandAll expands every node with children
func (t *Tree) ExpandAll() {
	t.walk(t.root, func(n *TreeNode, _ int) {
		n.Expanded = n.IsRoot() || n.HasChildren()
	})
}

// CollapseAll collapses every node below the root
func (t *Tree) CollapseAll() {
	t.walk(t.root, func(n *TreeNode, _ int) {
		n.Expanded = n.IsRoot()
	})
}

// ExpandToDepth expands nodes at depth 1..depth and collapses the rest.
// ExpandToDepth(0) is CollapseAll.
func (t *Tree) ExpandToDepth(depth int) {
	t.walk(t.root, func(n *TreeNode, d int) {
		n.Expanded = n.IsRoot() || (d <= depth && n.HasChildren())
	})
}

func (t *Tree) walk(id NodeID, fn func(n *TreeNode, depth int)) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		n := t.mustNode(id)
		fn(n, depth)
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	visit(id, 0)
}

// ExpandAncestors expands every ancestor of id so that it becomes visible
func (t *Tree) ExpandAncestors(id NodeID) {
	for current := t.mustNode(id).Parent; current != NoNode; current = t.mustNode(current).Parent {
		t.mustNode(current).Expanded = true
	}
}

// Len returns the number of live nodes below the root
func (t *Tree) Len() int {
	count := -1
	t.walk(t.root, func(*TreeNode, int) { count++ })
	return count
}
