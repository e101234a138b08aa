// Package store persists message models as structure-preserving JSON:
// nested objects and arrays mirror the tree, metadata sits inline on each
// node, and child order is the wire order. Round-tripping a model through
// the store reproduces an identical offset table. Paths ending in .zst
// are zstd-compressed.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/rule"
)

const formatVersion = 1

type fileModel struct {
	Version    int                `json:"version"`
	Type       message.Type       `json:"type"`
	Root       *fileNode          `json:"root"`
	Provenance []message.SheetRef `json:"provenance,omitempty"`
}

type fileNode struct {
	Name        string      `json:"name"`
	RawName     string      `json:"rawName,omitempty"`
	Kind        string      `json:"kind"`
	Datatype    string      `json:"datatype,omitempty"`
	Length      string      `json:"length,omitempty"`
	Optional    bool        `json:"optional,omitempty"`
	NullOK      bool        `json:"nullOk,omitempty"`
	NLS         bool        `json:"nls,omitempty"`
	Rule        string      `json:"rule,omitempty"`
	GroupID     string      `json:"groupId,omitempty"`
	Occurs      string      `json:"occurs,omitempty"`
	Description string      `json:"description,omitempty"`
	Samples     string      `json:"samples,omitempty"`
	Remarks     string      `json:"remarks,omitempty"`
	Physical    string      `json:"physical,omitempty"`
	TestValue   string      `json:"testValue,omitempty"`
	Sheet       string      `json:"sheet,omitempty"`
	Row         int         `json:"row,omitempty"`
	Children    []*fileNode `json:"children,omitempty"`
}

// Encode renders the model's persisted form.
func Encode(m *message.Model) ([]byte, error) {
	f := fileModel{
		Version:    formatVersion,
		Type:       m.Type,
		Root:       encodeNode(m.Tree, m.Tree.Root()),
		Provenance: m.Provenance,
	}
	return json.MarshalIndent(f, "", "  ")
}

func encodeNode(t *message.Tree, id message.NodeID) *fileNode {
	n := t.Node(id)
	fn := &fileNode{
		Name:        n.Name,
		RawName:     n.RawName,
		Kind:        n.Kind.String(),
		Optional:    n.Optional,
		NullOK:      n.NullOK,
		NLS:         n.NLS,
		Description: n.Description,
		Samples:     n.Samples,
		Remarks:     n.Remarks,
		Physical:    n.Physical,
		TestValue:   n.TestValue,
		Sheet:       n.Sheet,
		Row:         n.Row,
	}
	if n.Leaf() {
		fn.Datatype = n.Datatype
		fn.Length = n.Length.String()
		fn.Rule = n.Rule.Raw
	} else {
		fn.GroupID = n.GroupID
		if !n.Occurs.Single() {
			fn.Occurs = n.Occurs.String()
		}
	}
	for _, c := range n.Children {
		fn.Children = append(fn.Children, encodeNode(t, c))
	}
	return fn
}

// Decode parses a persisted model, validating structure before handing it
// back: node kinds must be known, children may only sit under composites,
// leaves need a usable length, and occurrence ranges must agree with the
// node kind.
func Decode(data []byte) (*message.Model, error) {
	var f fileModel
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("model version %d is not supported (want %d)", f.Version, formatVersion)
	}
	if f.Type != message.TypeRequest && f.Type != message.TypeResponse {
		return nil, fmt.Errorf("unknown message type %q", f.Type)
	}
	if f.Root == nil {
		return nil, fmt.Errorf("model has no root node")
	}
	if f.Root.Kind != message.KindObject.String() {
		return nil, fmt.Errorf("model root must be an object, got %s", f.Root.Kind)
	}
	if f.Root.Name == "" {
		return nil, fmt.Errorf("model root has no name")
	}

	tree := message.NewTree(f.Root.Name)
	for _, c := range f.Root.Children {
		if err := decodeNode(tree, tree.Root(), c, 0); err != nil {
			return nil, err
		}
	}
	return message.NewModel(f.Type, tree, f.Provenance)
}

func decodeNode(tree *message.Tree, parent message.NodeID, fn *fileNode, level int) error {
	kind, err := message.KindFromString(fn.Kind)
	if err != nil {
		return fmt.Errorf("node %q: %w", fn.Name, err)
	}
	if fn.Name == "" {
		return fmt.Errorf("%s node under %q has no name", fn.Kind, tree.Node(parent).Name)
	}

	n := message.Node{
		Kind:        kind,
		Name:        fn.Name,
		RawName:     fn.RawName,
		Level:       level,
		Optional:    fn.Optional,
		NullOK:      fn.NullOK,
		NLS:         fn.NLS,
		Description: fn.Description,
		Samples:     fn.Samples,
		Remarks:     fn.Remarks,
		Physical:    fn.Physical,
		TestValue:   fn.TestValue,
		Sheet:       fn.Sheet,
		Row:         fn.Row,
	}

	switch kind {
	case message.KindLeaf:
		if len(fn.Children) > 0 {
			return fmt.Errorf("leaf %q has children", fn.Name)
		}
		if fn.Occurs != "" {
			return fmt.Errorf("leaf %q declares an occurrence range", fn.Name)
		}
		length, err := message.ParseLength(fn.Length)
		if err != nil {
			return fmt.Errorf("leaf %q: %w", fn.Name, err)
		}
		if length.NA {
			return fmt.Errorf("leaf %q has no length", fn.Name)
		}
		n.Length = length
		n.Datatype = fn.Datatype
		n.Rule = rule.Parse(fn.Rule)
	default:
		if fn.Length != "" && fn.Length != "-" {
			return fmt.Errorf("%s %q declares a length", fn.Kind, fn.Name)
		}
		n.Length = message.Length{NA: true}
		occurs, err := message.ParseOccurs(fn.Occurs)
		if err != nil {
			return fmt.Errorf("%s %q: %w", fn.Kind, fn.Name, err)
		}
		if kind == message.KindArray && occurs.Single() {
			return fmt.Errorf("array %q declares no repetition range", fn.Name)
		}
		if kind == message.KindObject && !occurs.Single() {
			return fmt.Errorf("object %q declares a repetition range", fn.Name)
		}
		n.Occurs = occurs
		n.GroupID = fn.GroupID
	}

	id := tree.Add(parent, n)
	for _, c := range fn.Children {
		if err := decodeNode(tree, id, c, level+1); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the model to path, compressing when the path carries a .zst
// suffix.
func Save(path string, m *message.Model) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if compressed(path) {
		if data, err = compress(data); err != nil {
			return fmt.Errorf("compressing model: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}

// Load reads a model file written by Save.
func Load(path string) (*message.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading model file %q: %w", path, err)
	}
	if compressed(path) {
		if data, err = decompress(data); err != nil {
			return nil, fmt.Errorf("decompressing model file %q: %w", path, err)
		}
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("model file %q: %w", path, err)
	}
	return m, nil
}

func compressed(path string) bool { return strings.HasSuffix(path, ".zst") }

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
