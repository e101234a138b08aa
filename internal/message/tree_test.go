package message

import (
	"errors"
	"strings"
	"testing"
)

func leafNode(name string, width int) Node {
	return Node{Kind: KindLeaf, Name: name, RawName: name, Datatype: "string", Length: Length{Min: width, Max: width}}
}

func objectNode(name string) Node {
	return Node{Kind: KindObject, Name: name, RawName: name, Occurs: OccursOne}
}

// --- Tree tests ---

func TestTree_AddAndPath(t *testing.T) {
	tree := NewTree("order")
	a := tree.Add(tree.Root(), objectNode("a"))
	b := tree.Add(a, leafNode("b", 10))

	if got := tree.Path(a); got != "a" {
		t.Errorf("Path(a) = %q, want a", got)
	}
	if got := tree.Path(b); got != "a.b" {
		t.Errorf("Path(b) = %q, want a.b", got)
	}
	if got := tree.Path(tree.Root()); got != "" {
		t.Errorf("Path(root) = %q, want empty", got)
	}
}

func TestTree_WalkOrder(t *testing.T) {
	tree := NewTree("m")
	a := tree.Add(tree.Root(), objectNode("a"))
	tree.Add(a, leafNode("x", 1))
	tree.Add(a, leafNode("y", 1))
	tree.Add(tree.Root(), leafNode("z", 1))

	var visited []string
	tree.Walk(func(n *Node) error {
		visited = append(visited, n.Name)
		return nil
	})
	if got := strings.Join(visited, ","); got != "a,x,y,z" {
		t.Errorf("walk order = %s, want a,x,y,z", got)
	}
}

func TestTree_WalkStopsOnError(t *testing.T) {
	tree := NewTree("m")
	tree.Add(tree.Root(), leafNode("x", 1))
	tree.Add(tree.Root(), leafNode("y", 1))

	stop := errors.New("stop")
	count := 0
	err := tree.Walk(func(n *Node) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Walk error = %v, want sentinel", err)
	}
	if count != 1 {
		t.Errorf("walk visited %d nodes after error, want 1", count)
	}
}

func TestTree_InsertChildAtFront(t *testing.T) {
	tree := NewTree("m")
	tree.Add(tree.Root(), leafNode("second", 1))
	tree.InsertChild(tree.Root(), 0, objectNode("first"))

	children := tree.Node(tree.Root()).Children
	if len(children) != 2 {
		t.Fatalf("root has %d children, want 2", len(children))
	}
	if tree.Node(children[0]).Name != "first" || tree.Node(children[1]).Name != "second" {
		t.Errorf("children = %q, %q; want first, second", tree.Node(children[0]).Name, tree.Node(children[1]).Name)
	}
}

func TestTree_GraftRederivesLevels(t *testing.T) {
	src := NewTree("header")
	h := src.Add(src.Root(), objectNode("h"))
	src.Node(h).Level = 0
	ts := src.Add(h, leafNode("ts", 14))
	src.Node(ts).Level = 1

	dst := NewTree("m")
	anchor := dst.Add(dst.Root(), objectNode("envelope"))
	dst.Node(anchor).Level = 0

	dst.Graft(anchor, src, src.Node(src.Root()).Children)

	grafted, ok := findByName(dst, "h")
	if !ok {
		t.Fatal("grafted node h not found")
	}
	if grafted.Level != 1 {
		t.Errorf("grafted h level = %d, want 1", grafted.Level)
	}
	leaf, ok := findByName(dst, "ts")
	if !ok {
		t.Fatal("grafted leaf ts not found")
	}
	if leaf.Level != 2 {
		t.Errorf("grafted ts level = %d, want 2", leaf.Level)
	}
	if got := dst.Path(leaf.ID); got != "envelope.h.ts" {
		t.Errorf("grafted path = %q, want envelope.h.ts", got)
	}
}

func findByName(tree *Tree, name string) (*Node, bool) {
	var found *Node
	tree.Walk(func(n *Node) error {
		if n.Name == name && found == nil {
			found = n
		}
		return nil
	})
	return found, found != nil
}

// --- Model tests ---

func TestNewModel_IndexesPaths(t *testing.T) {
	tree := NewTree("order")
	a := tree.Add(tree.Root(), objectNode("a"))
	tree.Add(a, leafNode("orderId", 10))

	m, err := NewModel(TypeRequest, tree, nil)
	if err != nil {
		t.Fatalf("NewModel returned error: %v", err)
	}
	if m.Name() != "order" {
		t.Errorf("Name = %q, want order", m.Name())
	}
	n, ok := m.Lookup("a.orderId")
	if !ok {
		t.Fatal("Lookup(a.orderId) missed")
	}
	if n.Length.Width() != 10 {
		t.Errorf("looked-up width = %d, want 10", n.Length.Width())
	}
	if _, ok := m.Lookup("a.missing"); ok {
		t.Error("Lookup(a.missing) hit, want miss")
	}
}

func TestNewModel_DuplicatePath(t *testing.T) {
	tree := NewTree("m")
	tree.Add(tree.Root(), leafNode("id", 1))
	tree.Add(tree.Root(), leafNode("id", 2))

	if _, err := NewModel(TypeRequest, tree, nil); err == nil {
		t.Fatal("NewModel succeeded with duplicate paths, want error")
	}
}

func TestModel_LeavesAndDeclaredLength(t *testing.T) {
	tree := NewTree("m")
	a := tree.Add(tree.Root(), objectNode("a"))
	tree.Add(a, leafNode("x", 3))
	tree.Add(a, leafNode("y", 4))
	arr := tree.Add(tree.Root(), Node{Kind: KindArray, Name: "items", Occurs: Occurs{Min: 0, Max: 5}})
	tree.Add(arr, leafNode("z", 2))

	m, err := NewModel(TypeResponse, tree, nil)
	if err != nil {
		t.Fatalf("NewModel returned error: %v", err)
	}

	leaves := m.Leaves()
	if len(leaves) != 3 {
		t.Fatalf("Leaves returned %d nodes, want 3", len(leaves))
	}
	if leaves[0].Name != "x" || leaves[1].Name != "y" || leaves[2].Name != "z" {
		t.Errorf("leaf order = %s,%s,%s; want x,y,z", leaves[0].Name, leaves[1].Name, leaves[2].Name)
	}
	// Composites count once; repetition never inflates the declared sum.
	if got := m.DeclaredLength(); got != 9 {
		t.Errorf("DeclaredLength = %d, want 9", got)
	}
}
