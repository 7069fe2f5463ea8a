package wols

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseSpecimen decodes and validates a wire-format document, projecting it
// into a Specimen. Failure modes are layered, each with its own
// classification:
//
//  1. JSON syntax errors return invalid_json with a best-effort byte offset.
//  2. Non-object top-level values (arrays, primitives, null) return
//     invalid_format.
//  3. Validation failures return the single error's own code when there is
//     exactly one, or validation_failed bundling the full list.
//
// Keys that collide with prototype machinery in other runtimes ("__proto__"
// and friends) are ordinary unknown data here: they are kept, warned about
// like any unknown field, and never touch the registries.
func ParseSpecimen(text string) (Specimen, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return Specimen{}, &Error{Code: ErrCodeInvalidJSON, Message: "invalid JSON: " + syn.Error(), Offset: syn.Offset}
		}
		return Specimen{}, &Error{Code: ErrCodeInvalidJSON, Message: "invalid JSON: " + err.Error()}
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return Specimen{}, &Error{Code: ErrCodeInvalidFormat, Message: "specimen document must be a JSON object"}
	}
	if err := validateDocument(doc); err != nil {
		return Specimen{}, err
	}
	return projectSpecimen(doc), nil
}

// validateDocument runs the validator with default options and promotes
// failures to operational errors the way the parser reports them.
func validateDocument(doc map[string]any) error {
	res := ValidateSpecimen(doc, ValidateOptions{})
	if res.Valid {
		return nil
	}
	if len(res.Errors) == 1 {
		only := res.Errors[0]
		return &Error{Code: ErrorCode(only.Code), Message: only.Message, Path: only.Path}
	}
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed with %d errors", len(res.Errors)),
		Details: res.Errors,
	}
}

// projectSpecimen copies a validated document into the typed record.
// Required fields copy unconditionally; optional fields copy only when
// present, so absence survives a round trip instead of becoming a null or a
// default.
func projectSpecimen(doc map[string]any) Specimen {
	s := Specimen{
		Context: stringAt(doc, "@context"),
		DocType: stringAt(doc, "@type"),
		ID:      SpecimenID(stringAt(doc, "id")),
		Version: stringAt(doc, "version"),
		Type:    Type(stringAt(doc, "type")),
		Species: stringAt(doc, "species"),
	}
	if strain, ok := doc["strain"].(map[string]any); ok {
		s.Strain = projectStrain(strain)
	}
	if stage, ok := doc["stage"].(string); ok {
		s.Stage = Stage(stage)
	}
	s.Created = stringAt(doc, "created")
	s.Batch = stringAt(doc, "batch")
	s.Organization = stringAt(doc, "organization")
	s.Creator = stringAt(doc, "creator")
	if custom, ok := doc["custom"].(map[string]any); ok {
		s.Custom = custom
	}
	s.Signature = stringAt(doc, "signature")
	if meta, ok := doc["_meta"].(map[string]any); ok {
		s.Meta = meta
	}
	return s
}

func projectStrain(value map[string]any) *Strain {
	strain := &Strain{}
	if name, ok := value["name"].(string); ok {
		strain.Name = name
	}
	if gen, ok := value["generation"].(string); ok {
		strain.Generation = &gen
	}
	if raw, present := value["clonalGeneration"]; present {
		if n, ok := intValue(raw); ok {
			strain.ClonalGeneration = &n
		}
	}
	if lineage, ok := value["lineage"].(string); ok {
		strain.Lineage = &lineage
	}
	if source, ok := value["source"].(string); ok {
		strain.Source = &source
	}
	return strain
}

func stringAt(doc map[string]any, key string) string {
	value, _ := doc[key].(string)
	return value
}
