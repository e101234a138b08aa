package diffreport

import (
	"strings"
	"testing"

	"github.com/dshills/msgspec/internal/naming"
)

func entries() []naming.Entry {
	return []naming.Entry{
		{Raw: "request", Normalized: "request", Scope: naming.ScopeRequest, Reason: naming.ReasonUnchanged},
		{Raw: "Order_ID", Normalized: "orderId", Scope: naming.ScopeRequest, Reason: naming.ReasonStripped},
	}
}

func TestFormat(t *testing.T) {
	got := Format(entries())
	want := "request\trequest\trequest\tunchanged\n" +
		"request\tOrder_ID\torderId\tnon-alnum-stripped\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestLedger_NoChange(t *testing.T) {
	snapshot := Format(entries())
	if got := Ledger(snapshot, entries()); got != "" {
		t.Errorf("unchanged ledger produced a patch:\n%s", got)
	}
}

func TestLedger_IgnoresSnapshotWhitespace(t *testing.T) {
	snapshot := strings.ReplaceAll(Format(entries()), "\n", " \r\n")
	if got := Ledger(snapshot, entries()); got != "" {
		t.Errorf("whitespace-only drift produced a patch:\n%s", got)
	}
}

func TestLedger_Changed(t *testing.T) {
	snapshot := Format(entries())

	changed := entries()
	changed[1].Normalized = "orderId_2"
	changed[1].Reason = naming.ReasonCollisionSuffixed

	got := Ledger(snapshot, changed)
	if got == "" {
		t.Fatal("changed ledger produced no patch")
	}
	if !strings.Contains(got, "@@") {
		t.Errorf("patch text missing hunk header:\n%s", got)
	}
}

func TestLedger_FirstRun(t *testing.T) {
	if got := Ledger("", entries()); got == "" {
		t.Fatal("first run against an empty snapshot produced no patch")
	}
}
