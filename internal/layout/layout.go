// Package layout expands a message model into its fixed-width offset
// table: one entry per leaf occurrence, in wire order, tiling the payload
// from byte zero with no gaps.
package layout

import (
	"fmt"

	"github.com/dshills/msgspec/internal/message"
)

// Entry locates one occurrence of a leaf field in the payload. Occurrence
// is the 0-based ordinal of the field across all repetitions in wire
// order, so (Path, Occurrence) is unique even under nested arrays.
type Entry struct {
	Path       string `json:"path"`
	Occurrence int    `json:"occurrence"`
	Start      int    `json:"start"`
	Length     int    `json:"length"`
}

// Repetitions supplies expansion counts for arrays, keyed by the array's
// field path. A supplied count wins over the declared occurrence range;
// arrays with an unbounded range require one.
type Repetitions map[string]int

// UnboundedArrayError reports an array that cannot be expanded because it
// declares no upper bound and no repetition count was supplied.
type UnboundedArrayError struct {
	Path string
}

func (e *UnboundedArrayError) Error() string {
	return fmt.Sprintf("array %s is unbounded and no repetition count was supplied", e.Path)
}

// Table is the computed offset table. Immutable after Build.
type Table struct {
	typ     message.Type
	total   int
	entries []Entry
}

// Build walks the model depth-first in sibling order, expanding each
// array into count copies of its child block.
func Build(m *message.Model, reps Repetitions) (*Table, error) {
	b := &builder{
		tree:    m.Tree,
		reps:    reps,
		ordinal: make(map[string]int),
	}
	if err := b.children(m.Tree.Root()); err != nil {
		return nil, err
	}
	return &Table{typ: m.Type, total: b.cursor, entries: b.entries}, nil
}

type builder struct {
	tree    *message.Tree
	reps    Repetitions
	cursor  int
	entries []Entry
	ordinal map[string]int
}

func (b *builder) children(id message.NodeID) error {
	for _, cid := range b.tree.Node(id).Children {
		if err := b.node(cid); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) node(id message.NodeID) error {
	n := b.tree.Node(id)
	switch n.Kind {
	case message.KindLeaf:
		path := b.tree.Path(id)
		occ := b.ordinal[path]
		b.ordinal[path] = occ + 1
		width := n.Length.Width()
		b.entries = append(b.entries, Entry{Path: path, Occurrence: occ, Start: b.cursor, Length: width})
		b.cursor += width
		return nil
	case message.KindObject:
		return b.children(id)
	case message.KindArray:
		count, err := b.count(n)
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if err := b.children(id); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("node %s: unknown kind %d", b.tree.Path(id), n.Kind)
	}
}

func (b *builder) count(n *message.Node) (int, error) {
	path := b.tree.Path(n.ID)
	if c, ok := b.reps[path]; ok {
		if c < 0 {
			return 0, fmt.Errorf("array %s: repetition count %d is negative", path, c)
		}
		return c, nil
	}
	if n.Occurs.Unbounded {
		return 0, &UnboundedArrayError{Path: path}
	}
	return n.Occurs.Max, nil
}

// Type reports the message type the table was computed for.
func (t *Table) Type() message.Type { return t.typ }

// TotalLength is the expanded byte length of the whole payload.
func (t *Table) TotalLength() int { return t.total }

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the offset entries in wire order. The slice is a copy;
// callers cannot disturb the table.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Validate checks that the entries tile [0, TotalLength) exactly: each
// entry starts where the previous one ended and the last ends at the
// declared total.
func (t *Table) Validate() error {
	cursor := 0
	for _, e := range t.entries {
		if e.Start != cursor {
			return fmt.Errorf("entry %s[%d] starts at %d, want %d", e.Path, e.Occurrence, e.Start, cursor)
		}
		if e.Length < 0 {
			return fmt.Errorf("entry %s[%d] declares negative length %d", e.Path, e.Occurrence, e.Length)
		}
		cursor += e.Length
	}
	if cursor != t.total {
		return fmt.Errorf("entries cover %d bytes, table declares %d", cursor, t.total)
	}
	return nil
}
