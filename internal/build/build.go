// Package build turns ordered specification rows into message models. It
// infers the field hierarchy from segment levels with an explicit
// ancestor stack, classifies rows into leaves and object/array markers,
// merges the shared-header sheet, and accumulates every independent
// structural failure before reporting.
package build

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/naming"
	"github.com/dshills/msgspec/internal/report"
	"github.com/dshills/msgspec/internal/rule"
	"github.com/dshills/msgspec/internal/sheet"
)

// Options carries the externally supplied build inputs.
type Options struct {
	// OperationID overrides the root message identifier when non-empty.
	OperationID string
	// HeaderAnchor names a childless object marker in the body under
	// which the shared-header fields are grafted. Empty means the header
	// subtree is inserted ahead of all body fields.
	HeaderAnchor string
}

// markerPattern matches "name:GroupName" structural markers.
var markerPattern = regexp.MustCompile(`^(.+):([A-Za-z][A-Za-z0-9_]*)$`)

// Message builds one message model from its body sheet and an optional
// shared-header sheet. On structural failure it returns the accumulated
// Errors; the ledger always reflects the naming decisions made, so audit
// output stays useful even for failed builds.
func Message(typ message.Type, body *sheet.Sheet, header *sheet.Sheet, opts Options) (*message.Model, *naming.Ledger, error) {
	ledger := &naming.Ledger{}
	var errs Errors

	scope := naming.ScopeRequest
	if typ == message.TypeResponse {
		scope = naming.ScopeResponse
	}
	norm := naming.New(scope, ledger)

	rootName, err := norm.Root(opts.OperationID, string(typ))
	if err != nil {
		errs.addSheet(body.Name, report.RuleInvalidOverrideName, "%s", err)
		rootName, _ = norm.Root("", string(typ))
	}

	tree := buildTree(body, rootName, norm, &errs)
	prov := []message.SheetRef{{Sheet: body.Name, Hash: body.Hash, Rows: len(body.Rows)}}

	if header != nil {
		hnorm := naming.New(naming.ScopeHeader, ledger)
		hroot, _ := hnorm.Root("", header.Name)
		htree := buildTree(header, hroot, hnorm, &errs)
		spliceHeader(tree, htree, header, opts.HeaderAnchor, &errs)
		prov = append(prov, message.SheetRef{Sheet: header.Name, Hash: header.Hash, Rows: len(header.Rows)})
	}

	checkDuplicatePaths(tree, &errs)

	if len(errs) > 0 {
		return nil, ledger, errs
	}

	model, err := message.NewModel(typ, tree, prov)
	if err != nil {
		// Unreachable after checkDuplicatePaths; kept as a guard.
		errs.addSheet(body.Name, report.RuleDuplicateFieldPath, "%s", err)
		return nil, ledger, errs
	}
	return model, ledger, nil
}

// frame is one open composite on the ancestor stack.
type frame struct {
	id    message.NodeID
	level int
}

// buildTree runs the ancestor-stack row loop for one sheet. Only markers
// open scopes; a row whose level jumps past the nearest open ancestor is
// recorded as a hierarchy gap and attached best-effort so later rows keep
// producing independent findings.
func buildTree(s *sheet.Sheet, rootName string, norm *naming.Normalizer, errs *Errors) *message.Tree {
	tree := message.NewTree(rootName)
	stack := []frame{{id: tree.Root(), level: -1}}

	for _, row := range s.Rows {
		for len(stack) > 1 && stack[len(stack)-1].level >= row.Level {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		if row.Level > top.level+1 {
			errs.addf(row, report.RuleHierarchyGap,
				"level %d jumps past the open ancestor at level %d", row.Level, top.level)
		}

		if name, group, ok := markerParts(row.Name); ok && row.Datatype == "" {
			id := addMarker(tree, top.id, row, name, group, norm, errs)
			stack = append(stack, frame{id: id, level: row.Level})
			continue
		}
		addLeaf(tree, top.id, row, norm, errs)
	}
	return tree
}

// markerParts splits a "name:GroupName" marker name.
func markerParts(name string) (field, group string, ok bool) {
	m := markerPattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// addMarker appends an Object/Array node. Markers are structural: a
// declared length is an error, and the occurrence range decides the kind.
func addMarker(tree *message.Tree, parent message.NodeID, row sheet.Row, name, group string, norm *naming.Normalizer, errs *Errors) message.NodeID {
	occurs, err := message.ParseOccurs(row.Occurs)
	if err != nil {
		errs.addf(row, report.RuleOccursRange, "%s", err)
		occurs = message.OccursOne
	}

	length, err := message.ParseLength(row.Length)
	switch {
	case err != nil:
		errs.addf(row, report.RuleUnparsableLength, "%s", err)
	case !length.NA:
		errs.addf(row, report.RuleMarkerLength,
			"structural marker declares length %s; markers carry no data bytes", length)
	}

	kind := message.KindObject
	if !occurs.Single() {
		kind = message.KindArray
	}

	return tree.Add(parent, message.Node{
		Kind:        kind,
		RawName:     row.Name,
		Name:        norm.Field(tree.Path(parent), name, row.Description),
		Level:       row.Level,
		Length:      message.Length{NA: true},
		Optional:    row.Optional,
		NullOK:      row.NullOK,
		NLS:         row.NLS,
		Occurs:      occurs,
		GroupID:     group,
		Description: row.Description,
		Samples:     row.Samples,
		Remarks:     row.Remarks,
		Physical:    row.Physical,
		TestValue:   row.TestValue,
		Sheet:       row.Sheet,
		Row:         row.Num,
	})
}

// addLeaf appends a data-bearing node, reporting absent required columns
// and unparsable lengths while still attaching a best-effort node.
func addLeaf(tree *message.Tree, parent message.NodeID, row sheet.Row, norm *naming.Normalizer, errs *Errors) {
	var missing []string
	if row.Name == "" {
		missing = append(missing, "field name")
	}
	if row.Length == "" || row.Length == "-" {
		missing = append(missing, "length")
	}
	if row.Datatype == "" {
		missing = append(missing, "datatype")
	}
	if len(missing) > 0 {
		errs.addf(row, report.RuleMissingField, "leaf row is missing %s", strings.Join(missing, ", "))
	}

	length, err := message.ParseLength(row.Length)
	if err != nil {
		errs.addf(row, report.RuleUnparsableLength, "%s", err)
	}

	tree.Add(parent, message.Node{
		Kind:        message.KindLeaf,
		RawName:     row.Name,
		Name:        norm.Field(tree.Path(parent), row.Name, row.Description),
		Level:       row.Level,
		Datatype:    row.Datatype,
		Length:      length,
		Optional:    row.Optional,
		NullOK:      row.NullOK,
		NLS:         row.NLS,
		Rule:        rule.Parse(row.HardRule),
		Description: row.Description,
		Samples:     row.Samples,
		Remarks:     row.Remarks,
		Physical:    row.Physical,
		TestValue:   row.TestValue,
		Sheet:       row.Sheet,
		Row:         row.Num,
	})
}

// spliceHeader grafts the header tree into the body: under the configured
// anchor marker when one is designated and usable, otherwise as a leading
// subtree named after the header sheet.
func spliceHeader(body, header *message.Tree, hs *sheet.Sheet, anchor string, errs *Errors) {
	children := header.Node(header.Root()).Children

	if anchor != "" {
		id, ok := findAnchor(body, anchor)
		if !ok {
			errs.addSheet(hs.Name, report.RuleHeaderAnchor,
				"header anchor %q is not a childless object marker in the body", anchor)
			return
		}
		body.Graft(id, header, children)
		return
	}

	hroot := header.Node(header.Root())
	anchorID := body.InsertChild(body.Root(), 0, message.Node{
		Kind:    message.KindObject,
		RawName: hs.Name,
		Name:    hroot.Name,
		Level:   0,
		Length:  message.Length{NA: true},
		Occurs:  message.OccursOne,
		Sheet:   hs.Name,
	})
	body.Graft(anchorID, header, children)
}

// findAnchor locates a childless Object named anchor.
func findAnchor(tree *message.Tree, anchor string) (message.NodeID, bool) {
	var found message.NodeID = message.NoNode
	tree.Walk(func(n *message.Node) error { //nolint:errcheck // walk fn never errors
		if found == message.NoNode && n.Kind == message.KindObject && n.Name == anchor && len(n.Children) == 0 {
			found = n.ID
		}
		return nil
	})
	return found, found != message.NoNode
}

// checkDuplicatePaths reports every field path claimed by more than one
// node. Sibling collisions are already suffixed away by the normalizer,
// so duplicates can only arise from the header merge.
func checkDuplicatePaths(tree *message.Tree, errs *Errors) {
	seen := make(map[string]*message.Node, tree.Len())
	tree.Walk(func(n *message.Node) error { //nolint:errcheck // walk fn never errors
		path := tree.Path(n.ID)
		if prev, dup := seen[path]; dup {
			*errs = append(*errs, RowError{
				Sheet:   n.Sheet,
				Row:     n.Row,
				Rule:    report.RuleDuplicateFieldPath,
				Message: fmtDuplicate(path, prev),
			})
			return nil
		}
		seen[path] = n
		return nil
	})
}

func fmtDuplicate(path string, prev *message.Node) string {
	if prev.Row > 0 {
		return fmt.Sprintf("field path %s already defined at %s row %d", path, prev.Sheet, prev.Row)
	}
	return fmt.Sprintf("field path %s already defined in %s", path, prev.Sheet)
}
