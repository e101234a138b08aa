// Package render formats validation reports for output.
package render

import (
	"fmt"

	"github.com/dshills/msgspec/internal/naming"
	"github.com/dshills/msgspec/internal/report"
)

// Summary is the roll-up block of a report.
type Summary struct {
	Verdict  report.Verdict `json:"verdict"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
}

// Report is the presentation envelope handed to renderers.
type Report struct {
	Tool    string         `json:"tool"`
	Version string         `json:"version"`
	Command string         `json:"command"`
	Input   string         `json:"input,omitempty"`
	Summary Summary        `json:"summary"`
	Issues  []report.Issue `json:"issues,omitempty"`
	Renames []naming.Entry `json:"renames,omitempty"`
}

// FromResult assembles the envelope for one validation result.
func FromResult(tool, version, command, input string, res *report.Result, renames []naming.Entry) *Report {
	errs, warns := res.Counts()
	return &Report{
		Tool:    tool,
		Version: version,
		Command: command,
		Input:   input,
		Summary: Summary{Verdict: res.Verdict(), Errors: errs, Warnings: warns},
		Issues:  res.Issues(),
		Renames: renames,
	}
}

// Renderer formats a Report into bytes for output.
type Renderer interface {
	Render(report *Report) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "json" (default), "md".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json":
		return &jsonRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md", format)
	}
}
