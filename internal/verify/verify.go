// Package verify checks a fixed-width payload against a message model's
// offset table: every entry is sliced, compared to the value its hard-code
// rule demands, and reported independently, so one pass surfaces every
// finding across hundreds of fields.
package verify

import (
	"fmt"
	"strings"

	"github.com/dshills/msgspec/internal/layout"
	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/report"
	"github.com/dshills/msgspec/internal/rule"
)

// Options configures one validation pass.
type Options struct {
	// Resolver answers referenced-column rules. Nil leaves them unverified.
	Resolver Resolver
	// Overrides replace the default-mapped code of enumerated rules,
	// keyed by field path.
	Overrides map[string]string
	// Convention pads expected values to field width. Nil means standard.
	Convention *Convention
}

// Run validates payload against every entry of the offset table. The
// result accumulates a finding per entry; nothing stops at the first
// mismatch.
func Run(m *message.Model, table *layout.Table, payload []byte, opts Options) *report.Result {
	res := &report.Result{}
	conv := opts.Convention
	if conv == nil {
		conv = standard()
	}

	for _, e := range table.Entries() {
		prefix := ""
		if e.Occurrence > 0 {
			prefix = fmt.Sprintf("occurrence %d: ", e.Occurrence)
		}

		end := e.Start + e.Length
		if end > len(payload) {
			res.Errorf(report.RuleTruncatedPayload, e.Path,
				"%spayload ends at byte %d, field needs bytes %d..%d", prefix, len(payload), e.Start, end)
			continue
		}

		node, ok := m.Lookup(e.Path)
		if !ok {
			res.Warnf(report.RuleCannotVerify, e.Path, "%sfield is not in the model", prefix)
			continue
		}

		actual := string(payload[e.Start:end])
		expected, state := expectedValue(node, e, conv, opts)
		switch state {
		case checkUnresolved:
			res.Warnf(report.RuleCannotVerify, e.Path,
				"%scannot verify, no resolver value for column %s", prefix, node.Rule.Column)
		case checkValue:
			if actual != expected {
				res.Errorf(report.RuleValueMismatch, e.Path,
					"%sexpected %q, got %q", prefix, expected, actual)
			}
		}
	}
	return res
}

type checkState int

const (
	checkNone checkState = iota // no value constraint, truncation only
	checkValue
	checkUnresolved
)

// expectedValue derives the value a field's rule demands, padded to the
// entry width. Blank rules fill with spaces regardless of convention.
func expectedValue(n *message.Node, e layout.Entry, conv *Convention, opts Options) (string, checkState) {
	switch n.Rule.Kind {
	case rule.KindBlank:
		return strings.Repeat(" ", e.Length), checkValue
	case rule.KindFixed:
		return conv.Pad(n.Rule.Literal, e.Length, n.Datatype), checkValue
	case rule.KindEnumerated:
		code := n.Rule.DefaultCode()
		if v, ok := opts.Overrides[e.Path]; ok {
			code = v
		}
		return conv.Pad(code, e.Length, n.Datatype), checkValue
	case rule.KindReference:
		if opts.Resolver == nil {
			return "", checkUnresolved
		}
		v, ok := opts.Resolver.Resolve(n.Rule.Column, e.Path)
		if !ok {
			return "", checkUnresolved
		}
		return conv.Pad(v, e.Length, n.Datatype), checkValue
	default:
		return "", checkNone
	}
}
