// Package naming derives stable camelCase identifiers from the irregular
// field names of authored sheets, recording every decision in an ordered
// rename ledger so downstream diff reports can trace each identifier back
// to its source spelling.
package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// Scope ties a rename decision to the message it applies to.
type Scope string

const (
	ScopeRequest  Scope = "request"
	ScopeResponse Scope = "response"
	ScopeHeader   Scope = "header"
)

// Reason codes how a normalized identifier diverged from its raw name.
type Reason string

const (
	ReasonUnchanged          Reason = "unchanged"
	ReasonStripped           Reason = "non-alnum-stripped"
	ReasonDescriptionDerived Reason = "description-derived"
	ReasonCollisionSuffixed  Reason = "collision-suffixed"
	ReasonOperationID        Reason = "operation-id-override"
)

// Entry is one rename decision.
type Entry struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Scope      Scope  `json:"scope"`
	Reason     Reason `json:"reason"`
}

// Ledger is the append-only, ordered record of rename decisions for one
// message build. It is audit output only: layout and conformance never
// read it.
type Ledger struct {
	entries []Entry
}

func (l *Ledger) add(e Entry) {
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the ledger in append order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded decisions.
func (l *Ledger) Len() int { return len(l.entries) }

// InvalidOverrideNameError rejects an externally supplied root identifier
// that is not a legal identifier on its own.
type InvalidOverrideNameError struct {
	Name string
}

func (e *InvalidOverrideNameError) Error() string {
	return fmt.Sprintf("override name %q is not a legal identifier (letters, digits, underscore; no leading digit)", e.Name)
}

// Normalizer assigns identifiers within one scope, suffixing collisions
// among siblings deterministically in first-seen order.
type Normalizer struct {
	scope  Scope
	ledger *Ledger
	taken  map[string]map[string]bool // parent path -> assigned names
}

// New creates a Normalizer recording into ledger.
func New(scope Scope, ledger *Ledger) *Normalizer {
	return &Normalizer{
		scope:  scope,
		ledger: ledger,
		taken:  make(map[string]map[string]bool),
	}
}

// Field normalizes the raw name of a node under the given parent path,
// deriving from description when the name strips to nothing and suffixing
// sibling collisions. Exactly one ledger entry is recorded per call.
func (n *Normalizer) Field(parentPath, raw, description string) string {
	reason := ReasonUnchanged
	name := Normalize(raw)
	switch {
	case name == "":
		name = deriveFromDescription(description)
		reason = ReasonDescriptionDerived
	case name != raw:
		reason = ReasonStripped
	}

	name, suffixed := n.claim(parentPath, name)
	if suffixed {
		reason = ReasonCollisionSuffixed
	}

	n.ledger.add(Entry{Raw: raw, Normalized: name, Scope: n.scope, Reason: reason})
	return name
}

// Root assigns the message root identifier. A non-empty override must
// already be a legal identifier; it is recorded verbatim with the
// override reason. Otherwise the fallback is normalized like any field.
func (n *Normalizer) Root(override, fallback string) (string, error) {
	if override != "" {
		if !legalIdentifier(override) {
			return "", &InvalidOverrideNameError{Name: override}
		}
		n.ledger.add(Entry{Raw: override, Normalized: override, Scope: n.scope, Reason: ReasonOperationID})
		return override, nil
	}

	name := Normalize(fallback)
	reason := ReasonUnchanged
	if name == "" {
		name = "message"
		reason = ReasonDescriptionDerived
	} else if name != fallback {
		reason = ReasonStripped
	}
	n.ledger.add(Entry{Raw: fallback, Normalized: name, Scope: n.scope, Reason: reason})
	return name, nil
}

// claim reserves name under parentPath, appending _2, _3, ... until free.
func (n *Normalizer) claim(parentPath, name string) (string, bool) {
	siblings := n.taken[parentPath]
	if siblings == nil {
		siblings = make(map[string]bool)
		n.taken[parentPath] = siblings
	}
	if !siblings[name] {
		siblings[name] = true
		return name, false
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !siblings[candidate] {
			siblings[candidate] = true
			return candidate, true
		}
	}
}

// Normalize applies the identifier rules to one raw name: characters
// outside letters/digits/underscore become token boundaries along with
// whitespace, underscores, hyphens, and lower-to-upper case transitions;
// tokens are camel-joined; a leading digit gains an underscore prefix.
// Already-normalized input passes through unchanged.
func Normalize(raw string) string {
	toks := tokens(raw)
	if len(toks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(toks[0]))
	for _, tok := range toks[1:] {
		b.WriteString(strings.ToUpper(tok[:1]))
		b.WriteString(strings.ToLower(tok[1:]))
	}

	name := b.String()
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}

// tokens splits a raw name into camel tokens. Boundaries: any character
// outside [A-Za-z0-9], a lower-or-digit to upper transition, and the last
// upper of an upper run followed by a lower ("HTTPServer" -> HTTP,
// Server). Disallowed characters never reach the output.
func tokens(raw string) []string {
	var toks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			toks = append(toks, string(cur))
			cur = nil
		}
	}

	runes := []rune(raw)
	for i, r := range runes {
		if !isWord(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return toks
}

func isWord(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// legalIdentifier checks the character and leading-digit rules without
// any reshaping.
func legalIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isWord(r) && r != '_' {
			return false
		}
	}
	return !unicode.IsDigit(rune(s[0]))
}

// maxDescriptionTokens caps how much of a description is folded into a
// derived identifier.
const maxDescriptionTokens = 4

func deriveFromDescription(description string) string {
	toks := tokens(description)
	if len(toks) > maxDescriptionTokens {
		toks = toks[:maxDescriptionTokens]
	}
	if len(toks) == 0 {
		return "field"
	}
	return Normalize(strings.Join(toks, " "))
}
