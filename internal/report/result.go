package report

import "fmt"

// Result accumulates issues in insertion order. A Result succeeds when it
// holds zero Error-severity issues; warnings are informational. Results
// from independent validation passes merge by concatenation.
type Result struct {
	issues []Issue
}

// Add appends one issue.
func (r *Result) Add(issue Issue) {
	r.issues = append(r.issues, issue)
}

// Errorf appends an Error-severity issue with a formatted message.
func (r *Result) Errorf(rule Rule, location, format string, args ...any) {
	r.Add(Issue{
		Location: location,
		Rule:     rule,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a Warning-severity issue with a formatted message.
func (r *Result) Warnf(rule Rule, location, format string, args ...any) {
	r.Add(Issue{
		Location: location,
		Rule:     rule,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends the other result's issues after the receiver's. The other
// result is not modified.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.issues = append(r.issues, other.issues...)
}

// Issues returns a copy of the accumulated issues in insertion order.
func (r *Result) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Len returns the number of accumulated issues.
func (r *Result) Len() int { return len(r.issues) }

// Counts returns the number of Error and Warning issues.
func (r *Result) Counts() (errors, warnings int) {
	for _, issue := range r.issues {
		switch issue.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// OK reports whether the result contains no Error-severity issues.
func (r *Result) OK() bool {
	errors, _ := r.Counts()
	return errors == 0
}

// ExitCode maps the result to the process exit signal consumed by the CLI
// layer: 0 when OK, 1 otherwise.
func (r *Result) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Verdict derives the overall assessment: FAIL on any error,
// PASS_WITH_WARNINGS on warnings only, PASS otherwise.
func (r *Result) Verdict() Verdict {
	errors, warnings := r.Counts()
	switch {
	case errors > 0:
		return VerdictFail
	case warnings > 0:
		return VerdictPassWithWarnings
	default:
		return VerdictPass
	}
}
