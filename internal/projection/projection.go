// Package projection defines the flat field-definition views of a message
// model that downstream artifacts are compared against: one entry per leaf
// path carrying the attributes every artifact must agree on.
package projection

import (
	"fmt"
	"sort"

	"github.com/dshills/msgspec/internal/message"
)

// Artifact identifies one downstream rendering of the model.
type Artifact string

const (
	ArtifactWire     Artifact = "wire"
	ArtifactBusiness Artifact = "business"
	ArtifactAPI      Artifact = "api"
)

// ParseArtifact validates an artifact tag read from an external file.
func ParseArtifact(s string) (Artifact, error) {
	switch Artifact(s) {
	case ArtifactWire, ArtifactBusiness, ArtifactAPI:
		return Artifact(s), nil
	default:
		return "", fmt.Errorf("unknown artifact %q (want wire, business, or api)", s)
	}
}

// FieldDef is one field as an artifact declares it. Structural markers
// never appear here; projections carry data-bearing fields only.
type FieldDef struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

// Set is one artifact's complete field listing, in the artifact's own
// declaration order.
type Set struct {
	Artifact Artifact   `json:"artifact"`
	Fields   []FieldDef `json:"fields"`
}

// Fields projects the model's leaves in wire order. This is the canonical
// attribute source every artifact is checked against.
func Fields(m *message.Model) []FieldDef {
	leaves := m.Leaves()
	defs := make([]FieldDef, 0, len(leaves))
	for _, n := range leaves {
		defs = append(defs, FieldDef{
			Path:     m.Tree.Path(n.ID),
			Type:     n.Datatype,
			Required: !n.Optional,
			Default:  n.Rule.DefaultCode(),
		})
	}
	return defs
}

// Wire is the order-preserving wire-layout view.
func Wire(m *message.Model) Set {
	return Set{Artifact: ArtifactWire, Fields: Fields(m)}
}

// Business is the business-object view. The artifact is order-insensitive,
// so the view is canonicalized to path order.
func Business(m *message.Model) Set {
	return Set{Artifact: ArtifactBusiness, Fields: sortedFields(m)}
}

// API is the API-schema view, canonicalized like Business.
func API(m *message.Model) Set {
	return Set{Artifact: ArtifactAPI, Fields: sortedFields(m)}
}

func sortedFields(m *message.Model) []FieldDef {
	defs := Fields(m)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs
}
