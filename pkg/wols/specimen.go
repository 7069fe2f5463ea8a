// Package wols implements the WOLS labeling and traceability data standard
// for biological specimens: a JSON-LD record format plus operations to
// create, validate, parse, serialize, compactly encode, migrate, and encrypt
// specimen records. The package is pure computation: it performs no I/O and
// keeps no state beyond the process-wide vocabulary registries.
package wols

import (
	"fmt"
	"strings"
)

// Fixed constants of the standard. Wire values must match byte-for-byte.
const (
	// ContextIRI is the required value of the JSON-LD @context marker.
	ContextIRI = "https://w3id.org/wols/v1"
	// DocumentType is the required value of the JSON-LD @type marker.
	DocumentType = "Specimen"
	// IDPrefix is the namespace prefix carried by every specimen id.
	IDPrefix = "wols:"
	// CurrentVersion is the standard version this library implements.
	CurrentVersion = "1.2.0"
)

// Specimen is the central labeled-entity record. Specimens are value
// objects: operations that change one (migration, decryption) produce new
// values rather than mutating in place. Field declaration order matches the
// canonical serialization order.
type Specimen struct {
	Context      string         `json:"@context"`
	DocType      string         `json:"@type"`
	ID           SpecimenID     `json:"id"`
	Version      string         `json:"version"`
	Type         Type           `json:"type"`
	Species      string         `json:"species"`
	Strain       *Strain        `json:"strain,omitempty"`
	Stage        Stage          `json:"stage,omitempty"`
	Created      string         `json:"created,omitempty"`
	Batch        string         `json:"batch,omitempty"`
	Organization string         `json:"organization,omitempty"`
	Creator      string         `json:"creator,omitempty"`
	Custom       map[string]any `json:"custom,omitempty"`
	Signature    string         `json:"signature,omitempty"`
	Meta         map[string]any `json:"_meta,omitempty"`
}

// Strain is the genetic/lineage sub-record of a Specimen. Name is required;
// the remaining fields distinguish absent from zero via pointers. Lineage
// references a parent specimen id but is not validated as a foreign key.
type Strain struct {
	Name             string  `json:"name"`
	Generation       *string `json:"generation,omitempty"`
	ClonalGeneration *int    `json:"clonalGeneration,omitempty"`
	Lineage          *string `json:"lineage,omitempty"`
	Source           *string `json:"source,omitempty"`
}

// CreateInput carries caller-supplied fields for CreateSpecimen. Strain
// accepts a bare string (expanded to Strain{Name: ...}), a Strain or
// *Strain value, or a generic map. Zero-valued fields are treated as
// absent; explicit ID, Version, and Created override generation.
type CreateInput struct {
	ID           string
	Version      string
	Type         string
	Species      string
	Strain       any
	Stage        string
	Created      string
	Batch        string
	Organization string
	Creator      string
	Custom       map[string]any
	Signature    string
	Meta         map[string]any
}

// CreateSpecimen constructs a new record from input: the type is passed
// through alias resolution and then the platform map, a bare-string strain
// is expanded to Strain{Name: ...}, and id, version, and the JSON-LD
// markers are stamped unless the input supplies them. The result is not
// validated; run ValidateSpecimen to check it.
func CreateSpecimen(input CreateInput) (Specimen, error) {
	if strings.TrimSpace(input.Species) == "" {
		return Specimen{}, &Error{Code: ErrCodeInvalidInput, Message: "species is required"}
	}
	if strings.TrimSpace(input.Type) == "" {
		return Specimen{}, &Error{Code: ErrCodeInvalidInput, Message: "type is required"}
	}
	strain, err := expandStrain(input.Strain)
	if err != nil {
		return Specimen{}, err
	}
	s := Specimen{
		Context:      ContextIRI,
		DocType:      DocumentType,
		ID:           SpecimenID(input.ID),
		Version:      input.Version,
		Type:         resolveType(input.Type),
		Species:      input.Species,
		Strain:       strain,
		Stage:        Stage(input.Stage),
		Created:      input.Created,
		Batch:        input.Batch,
		Organization: input.Organization,
		Creator:      input.Creator,
		Custom:       input.Custom,
		Signature:    input.Signature,
		Meta:         input.Meta,
	}
	if s.ID == "" {
		s.ID = NewSpecimenID()
	}
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	return s, nil
}

// resolveType maps free-form type vocabulary to a canonical Type: alias
// resolution first, the platform map as fallback. Unresolved input is kept
// unchanged so the validator can name it.
func resolveType(input string) Type {
	if resolved := ResolveTypeAlias(input); IsCanonicalType(Type(resolved)) {
		return Type(resolved)
	}
	if t, ok := TypeFromPlatform(input); ok {
		return t
	}
	return Type(input)
}

// expandStrain normalizes the dynamic strain input forms. A specimen never
// stores a bare-string strain.
func expandStrain(v any) (*Strain, error) {
	switch strain := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &Strain{Name: strain}, nil
	case Strain:
		copied := strain
		return &copied, nil
	case *Strain:
		if strain == nil {
			return nil, nil
		}
		copied := *strain
		return &copied, nil
	case map[string]any:
		return projectStrain(strain), nil
	default:
		return nil, &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("unsupported strain value of type %T", v)}
	}
}

// asDocument projects the specimen into the generic document shape consumed
// by the validator and by field-level encryption. Field presence mirrors the
// serialization omission rules.
func (s Specimen) asDocument() map[string]any {
	doc := map[string]any{
		"@context": s.Context,
		"@type":    s.DocType,
		"id":       string(s.ID),
		"version":  s.Version,
		"type":     string(s.Type),
		"species":  s.Species,
	}
	if s.Strain != nil {
		strain := map[string]any{"name": s.Strain.Name}
		if s.Strain.Generation != nil {
			strain["generation"] = *s.Strain.Generation
		}
		if s.Strain.ClonalGeneration != nil {
			strain["clonalGeneration"] = *s.Strain.ClonalGeneration
		}
		if s.Strain.Lineage != nil {
			strain["lineage"] = *s.Strain.Lineage
		}
		if s.Strain.Source != nil {
			strain["source"] = *s.Strain.Source
		}
		doc["strain"] = strain
	}
	if s.Stage != "" {
		doc["stage"] = string(s.Stage)
	}
	if s.Created != "" {
		doc["created"] = s.Created
	}
	if s.Batch != "" {
		doc["batch"] = s.Batch
	}
	if s.Organization != "" {
		doc["organization"] = s.Organization
	}
	if s.Creator != "" {
		doc["creator"] = s.Creator
	}
	if s.Custom != nil {
		doc["custom"] = s.Custom
	}
	if s.Signature != "" {
		doc["signature"] = s.Signature
	}
	if s.Meta != nil {
		doc["_meta"] = s.Meta
	}
	return doc
}
