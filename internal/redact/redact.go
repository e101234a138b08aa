// Package redact masks payload-derived values before a report leaves the
// tool. Fixed-width financial payloads carry primary account numbers and
// customer identifiers; a report quoting expected and actual field values
// must not leak them into logs or tickets.
package redact

import (
	"regexp"

	"github.com/dshills/msgspec/internal/report"
)

const masked = "[MASKED]"

// patterns holds value-detection regexes in priority order.
var patterns = []*regexp.Regexp{
	// long digit runs: PANs, account and customer identifiers
	regexp.MustCompile(`\b[0-9]{9,}\b`),
	// inline password assignments
	regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
}

// Mask replaces sensitive value patterns in input with [MASKED]. Line
// structure is preserved: the number of newlines in the output always
// equals the number of newlines in the input.
func Mask(input string) string {
	for _, re := range patterns {
		input = re.ReplaceAllString(input, masked)
	}
	return input
}

// MaskIssues copies issues with masked messages. Locations are field
// paths and never carry payload bytes, so they pass through untouched.
func MaskIssues(issues []report.Issue) []report.Issue {
	out := make([]report.Issue, len(issues))
	for i, is := range issues {
		is.Message = Mask(is.Message)
		out[i] = is
	}
	return out
}
