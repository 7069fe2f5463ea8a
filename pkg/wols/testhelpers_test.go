package wols

import "testing"

// resetRegistry swaps in a fresh registry and restores the previous one when
// the test finishes, so registration tests do not leak into each other.
func resetRegistry(t *testing.T) {
	t.Helper()
	previous := defaultRegistry
	defaultRegistry = newRegistry()
	t.Cleanup(func() { defaultRegistry = previous })
}

// validSpecimen returns a fully populated record that passes strict
// validation.
func validSpecimen(t *testing.T) Specimen {
	t.Helper()
	generation := "F2"
	clonal := 1
	lineage := "wols:parent123"
	source := "field collection"
	return Specimen{
		Context:      ContextIRI,
		DocType:      DocumentType,
		ID:           "wols:abc123def456",
		Version:      CurrentVersion,
		Type:         TypeCulture,
		Species:      "Pleurotus ostreatus",
		Strain:       &Strain{Name: "Blue Dolphin", Generation: &generation, ClonalGeneration: &clonal, Lineage: &lineage, Source: &source},
		Stage:        StageColonizing,
		Created:      "2026-03-14T09:26:53Z",
		Batch:        "B-2026-031",
		Organization: "North Spore Labs",
		Creator:      "s.ramirez",
		Custom:       map[string]any{"substrate": "masters mix"},
		Signature:    "sig-9f2c41",
		Meta:         map[string]any{"printer": "pm-241"},
	}
}

// validDocument returns the decoded-JSON shape of a minimal valid record.
func validDocument() map[string]any {
	return map[string]any{
		"@context": ContextIRI,
		"@type":    DocumentType,
		"id":       "wols:abc123def456",
		"version":  CurrentVersion,
		"type":     "CULTURE",
		"species":  "Pleurotus ostreatus",
	}
}
