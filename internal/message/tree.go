package message

import (
	"fmt"
	"strings"
)

// Tree is an arena of nodes under one synthetic root. The root represents
// the message object itself: its name is the message identifier, it never
// appears in field paths, and level-0 rows become its children.
type Tree struct {
	nodes []Node
	root  NodeID
}

// NewTree creates a tree whose root is an Object named rootName.
func NewTree(rootName string) *Tree {
	t := &Tree{}
	t.root = t.append(Node{
		Parent: NoNode,
		Kind:   KindObject,
		Name:   rootName,
		Level:  -1,
		Occurs: OccursOne,
	})
	return t
}

func (t *Tree) append(n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	t.nodes = append(t.nodes, n)
	return id
}

// Root returns the synthetic root id.
func (t *Tree) Root() NodeID { return t.root }

// Node returns the arena node for id. The pointer aliases the arena;
// callers treat it as read-only once the tree is built.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the node count, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Add appends n as the last child of parent and returns its id.
func (t *Tree) Add(parent NodeID, n Node) NodeID {
	n.Parent = parent
	id := t.append(n)
	p := t.Node(parent)
	p.Children = append(p.Children, id)
	return id
}

// InsertChild places n as the index-th child of parent.
func (t *Tree) InsertChild(parent NodeID, index int, n Node) NodeID {
	n.Parent = parent
	id := t.append(n)
	p := t.Node(parent)
	p.Children = append(p.Children, NoNode)
	copy(p.Children[index+1:], p.Children[index:])
	p.Children[index] = id
	return id
}

// Graft copies the subtree rooted at each of src's child ids under the
// dst parent, preserving order and re-deriving levels from the new depth.
func (t *Tree) Graft(parent NodeID, src *Tree, children []NodeID) {
	base := t.Node(parent).Level
	for _, cid := range children {
		t.graftNode(parent, src, cid, base+1)
	}
}

func (t *Tree) graftNode(parent NodeID, src *Tree, id NodeID, level int) {
	n := *src.Node(id)
	children := n.Children
	n.Children = nil
	n.Level = level
	newID := t.Add(parent, n)
	for _, cid := range children {
		t.graftNode(newID, src, cid, level+1)
	}
}

// Path returns the dot-joined normalized names from the first real
// ancestor down to id. The synthetic root contributes nothing.
func (t *Tree) Path(id NodeID) string {
	if id == t.root {
		return ""
	}
	var parts []string
	for cur := id; cur != t.root && cur != NoNode; cur = t.Node(cur).Parent {
		parts = append(parts, t.Node(cur).Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Walk visits every node except the root in depth-first sibling order.
// Returning an error stops the walk.
func (t *Tree) Walk(fn func(n *Node) error) error {
	return t.walkChildren(t.root, fn)
}

func (t *Tree) walkChildren(id NodeID, fn func(n *Node) error) error {
	for _, cid := range t.Node(id).Children {
		if err := fn(t.Node(cid)); err != nil {
			return err
		}
		if err := t.walkChildren(cid, fn); err != nil {
			return err
		}
	}
	return nil
}

// SheetRef records one source sheet a model was built from.
type SheetRef struct {
	Sheet string `json:"sheet"`
	Hash  string `json:"hash,omitempty"`
	Rows  int    `json:"rows"`
}

// Model is a complete message definition: the tree plus direction and
// provenance, with a path index for conformance lookups.
type Model struct {
	Type       Type
	Tree       *Tree
	Provenance []SheetRef

	index map[string]NodeID
}

// NewModel finalizes a built tree into a model. Field paths must be
// unique within the message; the builder guarantees this before calling.
func NewModel(typ Type, tree *Tree, prov []SheetRef) (*Model, error) {
	m := &Model{Type: typ, Tree: tree, Provenance: prov, index: make(map[string]NodeID, tree.Len())}
	err := tree.Walk(func(n *Node) error {
		path := tree.Path(n.ID)
		if prev, dup := m.index[path]; dup {
			return fmt.Errorf("duplicate field path %q (nodes %d and %d)", path, prev, n.ID)
		}
		m.index[path] = n.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the message root identifier.
func (m *Model) Name() string { return m.Tree.Node(m.Tree.Root()).Name }

// Lookup resolves a field path to its node.
func (m *Model) Lookup(path string) (*Node, bool) {
	id, ok := m.index[path]
	if !ok {
		return nil, false
	}
	return m.Tree.Node(id), true
}

// Leaves returns the data-bearing nodes in spec order.
func (m *Model) Leaves() []*Node {
	var out []*Node
	m.Tree.Walk(func(n *Node) error { //nolint:errcheck // walk fn never errors
		if n.Leaf() {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// DeclaredLength is the sum of all leaf widths counting every composite
// once, regardless of its occurrence range.
func (m *Model) DeclaredLength() int {
	total := 0
	for _, n := range m.Leaves() {
		total += n.Length.Width()
	}
	return total
}
