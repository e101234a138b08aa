package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/msgspec/internal/naming"
	"github.com/dshills/msgspec/internal/report"
)

func sampleReport() *Report {
	return &Report{
		Tool:    "msgspec",
		Version: "1.0",
		Command: "verify",
		Input:   "payload.dat",
		Summary: Summary{Verdict: report.VerdictFail, Errors: 2, Warnings: 1},
		Issues: []report.Issue{
			{
				Location: "a.orderId",
				Rule:     report.RuleValueMismatch,
				Severity: report.SeverityError,
				Message:  `expected "020", got "021"`,
			},
			{
				Location: "a.currency",
				Rule:     report.RuleCannotVerify,
				Severity: report.SeverityWarning,
				Message:  "cannot verify, no resolver value for column S",
			},
		},
		Renames: []naming.Entry{
			{Raw: "Order_ID", Normalized: "orderId", Scope: naming.ScopeRequest, Reason: naming.ReasonStripped},
		},
	}
}

// --- FromResult tests ---

func TestFromResult(t *testing.T) {
	res := &report.Result{}
	res.Errorf(report.RuleValueMismatch, "a.x", "bad")
	res.Warnf(report.RuleCannotVerify, "a.y", "unknown")

	r := FromResult("msgspec", "1.0", "verify", "payload.dat", res, nil)
	if r.Summary.Verdict != report.VerdictFail {
		t.Errorf("verdict = %q, want FAIL", r.Summary.Verdict)
	}
	if r.Summary.Errors != 1 || r.Summary.Warnings != 1 {
		t.Errorf("counts = %d/%d, want 1/1", r.Summary.Errors, r.Summary.Warnings)
	}
	if len(r.Issues) != 2 {
		t.Errorf("issues = %d, want 2", len(r.Issues))
	}
	if r.Command != "verify" || r.Input != "payload.dat" {
		t.Errorf("command/input = %q/%q, want verify/payload.dat", r.Command, r.Input)
	}
}

func TestFromResult_CleanPass(t *testing.T) {
	r := FromResult("msgspec", "1.0", "build", "", &report.Result{}, nil)
	if r.Summary.Verdict != report.VerdictPass {
		t.Errorf("verdict = %q, want PASS", r.Summary.Verdict)
	}
	if len(r.Issues) != 0 {
		t.Errorf("issues = %d, want 0", len(r.Issues))
	}
}

// --- JSON renderer tests ---

func TestJSONRenderer(t *testing.T) {
	r, err := NewRenderer("json")
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}

	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.Verdict != report.VerdictFail {
		t.Errorf("decoded verdict = %q, want FAIL", decoded.Summary.Verdict)
	}
	if len(decoded.Issues) != 2 {
		t.Errorf("decoded issues = %d, want 2", len(decoded.Issues))
	}
	if len(decoded.Renames) != 1 || decoded.Renames[0].Normalized != "orderId" {
		t.Errorf("decoded renames = %+v, want the orderId entry", decoded.Renames)
	}
}

func TestJSONRenderer_OmitsEmptySections(t *testing.T) {
	r, _ := NewRenderer("json")
	out, err := r.Render(&Report{Tool: "msgspec", Version: "1.0", Command: "build"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	s := string(out)
	for _, key := range []string{`"issues"`, `"renames"`, `"input"`} {
		if strings.Contains(s, key) {
			t.Errorf("empty report contains %s section", key)
		}
	}
}

// --- markdown renderer tests ---

func TestMarkdownRenderer(t *testing.T) {
	r, err := NewRenderer("md")
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}

	out, err := r.Render(sampleReport())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"# msgspec verify Report",
		"**Verdict:** FAIL",
		"**Errors:** 2 | **Warnings:** 1",
		"**Input:** payload.dat",
		"## Findings",
		"`a.orderId` (value-mismatch)",
		"## Renames",
		"| Order_ID | orderId | request | non-alnum-stripped |",
		"*msgspec 1.0*",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown output missing %q:\n%s", want, s)
		}
	}
}

func TestMarkdownRenderer_NoFindings(t *testing.T) {
	r, _ := NewRenderer("md")
	out, err := r.Render(&Report{Tool: "msgspec", Version: "1.0", Command: "build",
		Summary: Summary{Verdict: report.VerdictPass}})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "## Findings") {
		t.Error("clean report rendered a Findings section")
	}
	if strings.Contains(s, "## Renames") {
		t.Error("clean report rendered a Renames section")
	}
	if !strings.Contains(s, "**Verdict:** PASS") {
		t.Error("clean report missing its verdict line")
	}
}

// --- NewRenderer tests ---

func TestNewRenderer_Unknown(t *testing.T) {
	if _, err := NewRenderer("yaml"); err == nil {
		t.Fatal("NewRenderer(yaml) succeeded, want error")
	}
}
