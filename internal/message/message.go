// Package message holds the canonical model a specification compiles to:
// an arena-backed ordered tree of field nodes plus the per-message
// metadata every later stage (layout, conformance, projections) reads.
// Trees are built once and treated as read-only afterwards.
package message

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/msgspec/internal/rule"
)

// Type names a message direction.
type Type string

const (
	TypeRequest  Type = "request"
	TypeResponse Type = "response"
)

// Kind discriminates field nodes.
type Kind int

const (
	KindLeaf Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// KindFromString is the inverse of Kind.String.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "leaf":
		return KindLeaf, nil
	case "object":
		return KindObject, nil
	case "array":
		return KindArray, nil
	}
	return KindLeaf, fmt.Errorf("unknown node kind %q", s)
}

// Length is a leaf's declared width: a fixed size, an inclusive range, or
// not applicable (structural markers). In a fixed-length format a ranged
// field is allocated its maximum.
type Length struct {
	Min int
	Max int
	NA  bool
}

// ParseLength reads the length column: "" or "-" for not applicable, "N"
// for a fixed width, "A..B" (or "A-B") for an inclusive range.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return Length{NA: true}, nil
	}

	lo, hi, ranged := splitRange(s)
	if !ranged {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Length{}, fmt.Errorf("length %q is not a positive integer or range", s)
		}
		return Length{Min: n, Max: n}, nil
	}

	a, errA := strconv.Atoi(lo)
	b, errB := strconv.Atoi(hi)
	if errA != nil || errB != nil || a < 1 || b < a {
		return Length{}, fmt.Errorf("length range %q must be two integers with 1 <= min <= max", s)
	}
	return Length{Min: a, Max: b}, nil
}

// splitRange cuts "A..B" or "A-B" into its bounds. A plain negative
// number is not a range.
func splitRange(s string) (lo, hi string, ok bool) {
	if lo, hi, ok = strings.Cut(s, ".."); ok {
		return lo, hi, true
	}
	if i := strings.Index(s, "-"); i > 0 {
		return s[:i], s[i+1:], true
	}
	return "", "", false
}

// Fixed reports whether the length is a single exact width.
func (l Length) Fixed() bool { return !l.NA && l.Min == l.Max }

// Width is the allocated wire width: the declared maximum.
func (l Length) Width() int { return l.Max }

func (l Length) String() string {
	switch {
	case l.NA:
		return "-"
	case l.Min == l.Max:
		return strconv.Itoa(l.Max)
	default:
		return fmt.Sprintf("%d..%d", l.Min, l.Max)
	}
}

// Occurs is a composite node's declared repetition range. Unbounded
// ranges are spelled with a literal N in source sheets.
type Occurs struct {
	Min       int
	Max       int
	Unbounded bool
}

// OccursOne is the non-repeating composite range.
var OccursOne = Occurs{Min: 1, Max: 1}

// ParseOccurs reads occurrence metadata: empty means 1..1; otherwise
// "min..max" with min 0 or 1 and max a positive integer >= min or the
// letter N for unbounded.
func ParseOccurs(s string) (Occurs, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OccursOne, nil
	}

	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return Occurs{}, fmt.Errorf("occurrence %q must be of the form min..max", s)
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || (min != 0 && min != 1) {
		return Occurs{}, fmt.Errorf("occurrence %q: min must be 0 or 1", s)
	}

	hi = strings.TrimSpace(hi)
	if strings.EqualFold(hi, "n") || strings.EqualFold(hi, "unbounded") {
		return Occurs{Min: min, Unbounded: true}, nil
	}
	max, err := strconv.Atoi(hi)
	if err != nil || max < 1 || max < min {
		return Occurs{}, fmt.Errorf("occurrence %q: max must be a positive integer >= min, or N", s)
	}
	return Occurs{Min: min, Max: max}, nil
}

// Single reports the non-repeating range 1..1.
func (o Occurs) Single() bool { return !o.Unbounded && o.Min == 1 && o.Max == 1 }

func (o Occurs) String() string {
	if o.Unbounded {
		return fmt.Sprintf("%d..N", o.Min)
	}
	return fmt.Sprintf("%d..%d", o.Min, o.Max)
}

// NodeID indexes a node within its tree's arena.
type NodeID int

// NoNode is the nil node reference.
const NoNode NodeID = -1

// Node is one field in the ordered tree. Children hold arena ids so the
// tree stays acyclic and cheap to project; Parent is a lookup
// back-reference, never an ownership edge. GroupID and Occurs carry
// meaning only on Object/Array nodes.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Kind     Kind
	RawName  string
	Name     string
	Level    int
	Datatype string
	Length   Length
	Optional bool
	NullOK   bool
	NLS      bool
	Rule     rule.Rule
	GroupID  string
	Occurs   Occurs
	Children []NodeID

	Description string
	Samples     string
	Remarks     string
	Physical    string
	TestValue   string

	Sheet string
	Row   int
}

// Leaf reports whether the node carries data bytes.
func (n *Node) Leaf() bool { return n.Kind == KindLeaf }
