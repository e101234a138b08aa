// Package diffreport produces audit diffs between rename-ledger
// snapshots, so a reviewer can see exactly which naming decisions moved
// between two generation runs.
package diffreport

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/msgspec/internal/naming"
)

// Format renders ledger entries as stable one-line records, one per
// naming decision, suitable for snapshotting and diffing across runs.
func Format(entries []naming.Entry) string {
	var out strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&out, "%s\t%s\t%s\t%s\n", e.Scope, e.Raw, e.Normalized, e.Reason)
	}
	return out.String()
}

// Ledger diffs a previous snapshot against the current entries and
// returns patch text. An empty return means the ledgers agree.
// The previous snapshot is normalized before diffing to avoid spurious
// whitespace diffs from hand-edited files.
func Ledger(previous string, current []naming.Entry) string {
	before := normalize(previous)
	after := Format(current)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	patches := dmp.PatchMake(before, diffs)
	return dmp.PatchToText(patches)
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
