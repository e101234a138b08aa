package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/msgspec/internal/build"
	"github.com/dshills/msgspec/internal/layout"
	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/sheet"
)

func buildModel(t *testing.T) *message.Model {
	t.Helper()
	rows := []sheet.Row{
		{Level: 0, Name: "a:A", Length: "-", Occurs: ""},
		{Level: 1, Name: "orderId", Length: "10", Datatype: "string", Optional: true},
		{Level: 1, Name: "msgCode", Length: "3", Datatype: "numeric", HardRule: "020"},
		{Level: 1, Name: "items:ITM", Length: "-", Occurs: "0..3"},
		{Level: 2, Name: "sku", Length: "8", Datatype: "string", NullOK: true},
		{Level: 0, Name: "trailer", Length: "1..4", Datatype: "string"},
	}
	for i := range rows {
		rows[i].Sheet = "body"
		rows[i].Num = i + 1
	}
	s := &sheet.Sheet{Name: "body", Hash: "sha256:fixture", Rows: rows}
	m, _, err := build.Message(message.TypeRequest, s, nil, build.Options{})
	if err != nil {
		t.Fatalf("building model: %v", err)
	}
	return m
}

func tableOf(t *testing.T, m *message.Model) ([]layout.Entry, int) {
	t.Helper()
	table, err := layout.Build(m, nil)
	if err != nil {
		t.Fatalf("building offset table: %v", err)
	}
	return table.Entries(), table.TotalLength()
}

// --- round-trip tests ---

func TestEncodeDecode_RoundTripsOffsetTable(t *testing.T) {
	m := buildModel(t)
	wantEntries, wantTotal := tableOf(t, m)

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	gotEntries, gotTotal := tableOf(t, back)
	if diff := cmp.Diff(wantEntries, gotEntries); diff != "" {
		t.Errorf("offset table changed across round trip:\n%s", diff)
	}
	if gotTotal != wantTotal {
		t.Errorf("total length = %d, want %d", gotTotal, wantTotal)
	}
}

func TestEncodeDecode_PreservesMetadata(t *testing.T) {
	m := buildModel(t)

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if back.Type != message.TypeRequest || back.Name() != "request" {
		t.Errorf("type/name = %s/%s, want request/request", back.Type, back.Name())
	}

	leaf, ok := back.Lookup("a.msgCode")
	if !ok {
		t.Fatal("Lookup(a.msgCode) missed after round trip")
	}
	if leaf.Rule.DefaultCode() != "020" {
		t.Errorf("rule default = %q, want 020", leaf.Rule.DefaultCode())
	}
	orderID, ok := back.Lookup("a.orderId")
	if !ok {
		t.Fatal("Lookup(a.orderId) missed after round trip")
	}
	if !orderID.Optional {
		t.Error("a.orderId lost its optional flag")
	}

	arr, ok := back.Lookup("a.items")
	if !ok {
		t.Fatal("Lookup(a.items) missed after round trip")
	}
	if arr.Kind != message.KindArray || arr.Occurs.Max != 3 {
		t.Errorf("a.items = kind %s occurs %s, want array 0..3", arr.Kind, arr.Occurs)
	}
	if arr.GroupID != "ITM" {
		t.Errorf("a.items group = %q, want ITM", arr.GroupID)
	}

	ranged, ok := back.Lookup("trailer")
	if !ok {
		t.Fatal("Lookup(trailer) missed after round trip")
	}
	if ranged.Length.Min != 1 || ranged.Length.Max != 4 {
		t.Errorf("trailer length = %s, want 1..4", ranged.Length)
	}

	if len(back.Provenance) != 1 || back.Provenance[0].Hash != "sha256:fixture" {
		t.Errorf("provenance = %+v, want the source sheet reference", back.Provenance)
	}
}

func TestSaveLoad(t *testing.T) {
	m := buildModel(t)
	path := filepath.Join(t.TempDir(), "request.model.json")

	if err := Save(path, m); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantEntries, _ := tableOf(t, m)
	gotEntries, _ := tableOf(t, back)
	if diff := cmp.Diff(wantEntries, gotEntries); diff != "" {
		t.Errorf("offset table changed across save/load:\n%s", diff)
	}
}

func TestSaveLoad_Compressed(t *testing.T) {
	m := buildModel(t)
	path := filepath.Join(t.TempDir(), "request.model.json.zst")

	if err := Save(path, m); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if back.Name() != m.Name() {
		t.Errorf("name = %q, want %q", back.Name(), m.Name())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.model.json")); err == nil {
		t.Fatal("Load succeeded on a missing file, want error")
	}
}

// --- Decode validation tests ---

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{
			name: "bad json",
			data: `{`,
			want: "parsing model",
		},
		{
			name: "wrong version",
			data: `{"version": 9, "type": "request", "root": {"name": "m", "kind": "object"}}`,
			want: "version",
		},
		{
			name: "unknown type",
			data: `{"version": 1, "type": "event", "root": {"name": "m", "kind": "object"}}`,
			want: "unknown message type",
		},
		{
			name: "missing root",
			data: `{"version": 1, "type": "request"}`,
			want: "no root",
		},
		{
			name: "leaf root",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "leaf", "length": "3"}}`,
			want: "root must be an object",
		},
		{
			name: "unnamed root",
			data: `{"version": 1, "type": "request", "root": {"kind": "object"}}`,
			want: "no name",
		},
		{
			name: "unknown kind",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "record"}]}}`,
			want: "unknown node kind",
		},
		{
			name: "unnamed child",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"kind": "leaf", "length": "3"}]}}`,
			want: "has no name",
		},
		{
			name: "leaf with children",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "leaf", "length": "3", "children": [{"name": "y", "kind": "leaf", "length": "1"}]}]}}`,
			want: "has children",
		},
		{
			name: "leaf without length",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "leaf"}]}}`,
			want: "has no length",
		},
		{
			name: "leaf with occurs",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "leaf", "length": "3", "occurs": "0..2"}]}}`,
			want: "occurrence range",
		},
		{
			name: "array without occurs",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "array"}]}}`,
			want: "no repetition range",
		},
		{
			name: "object with occurs",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "object", "occurs": "0..2"}]}}`,
			want: "repetition range",
		},
		{
			name: "marker with length",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "object", "length": "5"}]}}`,
			want: "declares a length",
		},
		{
			name: "duplicate paths",
			data: `{"version": 1, "type": "request", "root": {"name": "m", "kind": "object", "children": [{"name": "x", "kind": "leaf", "length": "1"}, {"name": "x", "kind": "leaf", "length": "2"}]}}`,
			want: "duplicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data))
			if err == nil {
				t.Fatal("Decode succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDecode_RederivesLevels(t *testing.T) {
	data := `{"version": 1, "type": "response", "root": {"name": "m", "kind": "object", "children": [
		{"name": "g", "kind": "object", "children": [
			{"name": "x", "kind": "leaf", "length": "3", "datatype": "string"}
		]}
	]}}`

	m, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	g, _ := m.Lookup("g")
	x, _ := m.Lookup("g.x")
	if g.Level != 0 || x.Level != 1 {
		t.Errorf("levels = %d/%d, want 0/1", g.Level, x.Level)
	}
}
