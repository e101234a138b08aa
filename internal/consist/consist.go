// Package consist compares independently produced artifact projections
// against the canonical message model. The comparison universe is the
// model's leaf paths: every artifact must declare each of them with
// matching attributes, invent nothing, and, for the order-preserving wire
// artifact, keep the model's sibling order.
package consist

import (
	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/projection"
	"github.com/dshills/msgspec/internal/report"
)

// Run checks each projection set against the model and accumulates every
// finding. Findings never abort; the caller judges the run by the
// result's error count.
func Run(m *message.Model, sets []projection.Set) *report.Result {
	res := &report.Result{}
	canon := projection.Fields(m)
	index := make(map[string]projection.FieldDef, len(canon))
	for _, f := range canon {
		index[f.Path] = f
	}

	for _, set := range sets {
		checkSet(res, m, canon, index, set)
	}
	return res
}

func checkSet(res *report.Result, m *message.Model, canon []projection.FieldDef, index map[string]projection.FieldDef, set projection.Set) {
	got := make(map[string]projection.FieldDef, len(set.Fields))
	for _, f := range set.Fields {
		if _, known := index[f.Path]; !known {
			res.Errorf(report.RuleExtraneousField, f.Path,
				"%s artifact declares a field the model does not define", set.Artifact)
			continue
		}
		if _, dup := got[f.Path]; dup {
			res.Errorf(report.RuleExtraneousField, f.Path,
				"%s artifact declares the field more than once", set.Artifact)
			continue
		}
		got[f.Path] = f
	}

	for _, want := range canon {
		f, ok := got[want.Path]
		if !ok {
			res.Errorf(report.RuleMissingInArtifact, want.Path,
				"missing from %s artifact", set.Artifact)
			continue
		}
		compareAttrs(res, set.Artifact, want, f)
	}

	if set.Artifact == projection.ArtifactWire {
		checkOrder(res, m, set, index)
	}
}

func compareAttrs(res *report.Result, a projection.Artifact, want, got projection.FieldDef) {
	if got.Type != want.Type {
		res.Errorf(report.RuleAttributeMismatch, want.Path,
			"%s artifact declares type %q, model declares %q", a, got.Type, want.Type)
	}
	if got.Required != want.Required {
		res.Errorf(report.RuleAttributeMismatch, want.Path,
			"%s artifact declares required=%t, model declares %t", a, got.Required, want.Required)
	}
	if got.Default != want.Default {
		res.Errorf(report.RuleAttributeMismatch, want.Path,
			"%s artifact declares default %q, model declares %q", a, got.Default, want.Default)
	}
}

// checkOrder flags parents whose child order in the wire artifact diverges
// from the model's sibling order. Composite children are positioned by
// their first descendant leaf known to both sides, so missing and
// extraneous fields never double-report as reordering.
func checkOrder(res *report.Result, m *message.Model, set projection.Set, index map[string]projection.FieldDef) {
	pos := make(map[string]int, len(set.Fields))
	for i, f := range set.Fields {
		if _, known := index[f.Path]; !known {
			continue
		}
		if _, dup := pos[f.Path]; dup {
			continue
		}
		pos[f.Path] = i
	}

	tree := m.Tree
	var visit func(id message.NodeID)
	visit = func(id message.NodeID) {
		n := tree.Node(id)
		if len(n.Children) > 1 {
			checkParent(res, tree, id, pos)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(tree.Root())
}

// checkParent reports at most one inversion per parent. Positions grow
// monotonically exactly when the artifact preserves the model's order.
func checkParent(res *report.Result, tree *message.Tree, id message.NodeID, pos map[string]int) {
	type rep struct {
		name string
		pos  int
	}
	var reps []rep
	for _, c := range tree.Node(id).Children {
		if p, ok := firstKnownLeaf(tree, c, pos); ok {
			reps = append(reps, rep{name: tree.Node(c).Name, pos: pos[p]})
		}
	}
	for i := 1; i < len(reps); i++ {
		if reps[i].pos < reps[i-1].pos {
			parent := tree.Path(id)
			if parent == "" {
				parent = tree.Node(id).Name
			}
			res.Errorf(report.RuleOrderDivergence, parent,
				"wire artifact lists %s before %s, the model declares the reverse order", reps[i].name, reps[i-1].name)
			return
		}
	}
}

func firstKnownLeaf(tree *message.Tree, id message.NodeID, pos map[string]int) (string, bool) {
	n := tree.Node(id)
	if n.Leaf() {
		p := tree.Path(id)
		_, ok := pos[p]
		return p, ok
	}
	for _, c := range n.Children {
		if p, ok := firstKnownLeaf(tree, c, pos); ok {
			return p, true
		}
	}
	return "", false
}
