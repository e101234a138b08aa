// Package report holds the validation finding model shared by the message
// and consistency validators: issues, severities, rule identifiers, and the
// ordered result they accumulate into.
package report

// Severity grades a validation issue.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Rule identifies the check that produced an issue.
type Rule string

const (
	// Structural rules, raised while building a message model.
	RuleHierarchyGap       Rule = "hierarchy-gap"
	RuleMarkerLength       Rule = "marker-length"
	RuleDuplicateFieldPath Rule = "duplicate-field-path"
	RuleMissingField       Rule = "missing-field"
	RuleUnparsableLength   Rule = "unparsable-length"
	RuleOccursRange        Rule = "occurs-range"
	RuleHeaderAnchor       Rule = "header-anchor"

	// Naming rules.
	RuleInvalidOverrideName Rule = "invalid-override-name"

	// Layout rules.
	RuleUnboundedArray Rule = "unbounded-array"

	// Conformance rules, raised while checking a wire payload.
	RuleTruncatedPayload Rule = "truncated-payload"
	RuleValueMismatch    Rule = "value-mismatch"
	RuleCannotVerify     Rule = "cannot-verify"

	// Consistency rules, raised while comparing artifact projections.
	RuleMissingInArtifact Rule = "missing-in-artifact"
	RuleAttributeMismatch Rule = "attribute-mismatch"
	RuleExtraneousField   Rule = "extraneous-field"
	RuleOrderDivergence   Rule = "order-divergence"
)

// Issue is a single validation finding. Location is a field path for
// payload conformance findings, or a file/sheet position for structural
// ones.
type Issue struct {
	Location string   `json:"location"`
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Verdict is the overall assessment derived from a result's issue set.
type Verdict string

const (
	VerdictPass             Verdict = "PASS"
	VerdictPassWithWarnings Verdict = "PASS_WITH_WARNINGS"
	VerdictFail             Verdict = "FAIL"
)
