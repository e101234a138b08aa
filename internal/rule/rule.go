// Package rule parses the hard-code rule column of a specification row:
// the free-text cell that pins a field to a fixed literal, an enumerated
// code list, a blank fill, or a value listed in another column of the
// source workbook.
package rule

import (
	"regexp"
	"strings"
)

// Kind discriminates the rule forms.
type Kind int

const (
	KindNone Kind = iota
	KindFixed
	KindEnumerated
	KindBlank
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFixed:
		return "fixed"
	case KindEnumerated:
		return "enumerated"
	case KindBlank:
		return "blank"
	case KindReference:
		return "reference"
	}
	return "unknown"
}

// Mapping is one name=code assignment in an enumerated rule.
type Mapping struct {
	Name string
	Code string
}

// Rule is the parsed form of a row's hard-code rule text.
type Rule struct {
	Kind     Kind
	Raw      string
	Literal  string    // KindFixed
	Mappings []Mapping // KindEnumerated, in declaration order
	Column   string    // KindReference
}

// refPattern matches the long-form column reference spelled out in
// authored sheets ("Refer Column S for Value Listing").
var refPattern = regexp.MustCompile(`(?i)^refer\s+column\s+(\S+)\s+for\s+value\s+listing$`)

// Parse interprets hard-code rule text. Empty text yields KindNone; text
// that looks enumerated but does not parse cleanly falls back to a fixed
// literal, so an authored value like "A=1, see remarks" is never silently
// split into mappings.
func Parse(text string) Rule {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Rule{Kind: KindNone, Raw: text}
	}
	if strings.EqualFold(trimmed, "BLANK") {
		return Rule{Kind: KindBlank, Raw: text}
	}
	if col, ok := referenceColumn(trimmed); ok {
		return Rule{Kind: KindReference, Raw: text, Column: col}
	}
	if mappings, ok := parseMappings(trimmed); ok {
		return Rule{Kind: KindEnumerated, Raw: text, Mappings: mappings}
	}
	return Rule{Kind: KindFixed, Raw: text, Literal: trimmed}
}

// referenceColumn extracts the column name from either reference spelling:
// the compact "REF:S" or the long authored form.
func referenceColumn(s string) (string, bool) {
	if rest, ok := cutPrefixFold(s, "REF:"); ok {
		col := strings.TrimSpace(rest)
		if col != "" {
			return col, true
		}
		return "", false
	}
	if m := refPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// parseMappings splits "a=1,b=2" into ordered mappings. Every comma part
// must be a name=code pair with both sides non-empty, otherwise the text
// is not an enumerated rule.
func parseMappings(s string) ([]Mapping, bool) {
	if !strings.Contains(s, "=") {
		return nil, false
	}
	parts := strings.Split(s, ",")
	mappings := make([]Mapping, 0, len(parts))
	for _, part := range parts {
		name, code, found := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.TrimSpace(name)
		code = strings.TrimSpace(code)
		if !found || name == "" || code == "" {
			return nil, false
		}
		mappings = append(mappings, Mapping{Name: name, Code: code})
	}
	return mappings, true
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding on the prefix.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) {
		return s, false
	}
	if strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

// DefaultCode returns the statically derivable expected value: the fixed
// literal, or the first declared mapping's code for an enumerated rule.
// Blank, reference, and absent rules have no static default.
func (r Rule) DefaultCode() string {
	switch r.Kind {
	case KindFixed:
		return r.Literal
	case KindEnumerated:
		if len(r.Mappings) > 0 {
			return r.Mappings[0].Code
		}
	}
	return ""
}
