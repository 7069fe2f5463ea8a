package wols

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Level selects how hard the validator comes down on format violations.
// Lenient downgrades malformed stage and created values from errors to
// warnings; everything else stays an error at both levels.
type Level string

const (
	LevelStrict  Level = "strict"
	LevelLenient Level = "lenient"
)

// IDMode selects the id suffix pattern the validator enforces.
type IDMode string

const (
	// IDModeStrict requires a lowercase alphanumeric suffix (the shape of
	// generated CUIDs).
	IDModeStrict IDMode = "strict"
	// IDModeULID requires a 26-character Crockford base32 suffix,
	// case-insensitive.
	IDModeULID IDMode = "ulid"
	// IDModeUUID requires an RFC 4122 hyphenated hex suffix,
	// case-insensitive.
	IDModeUUID IDMode = "uuid"
	// IDModeAny requires only a non-empty suffix.
	IDModeAny IDMode = "any"
)

// ValidateOptions configures a validation run. The zero value means strict
// level, strict id mode, and unknown-field warnings enabled.
type ValidateOptions struct {
	// AllowUnknownFields suppresses warnings for top-level fields outside
	// the standard's schema.
	AllowUnknownFields bool
	Level              Level
	IDMode             IDMode
	// CustomIDValidator, when set, fully replaces the IDMode pattern. It
	// receives the whole id including the namespace prefix.
	CustomIDValidator func(id string) bool
}

// ValidationError is a single accumulated field error.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationWarning is a non-blocking issue, optionally with a suggestion.
type ValidationWarning struct {
	Path       string `json:"path"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult accumulates everything found in one run. Warnings never
// affect Valid.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
}

// Validation issue codes.
const (
	CodeInvalidInput            = "invalid_input"
	CodeInvalidContext          = "invalid_context"
	CodeInvalidDocumentType     = "invalid_document_type"
	CodeInvalidIDType           = "invalid_id_type"
	CodeInvalidIDFormat         = "invalid_id_format"
	CodeInvalidVersion          = "invalid_version"
	CodeInvalidSpecimenType     = "invalid_specimen_type"
	CodeMissingSpecies          = "missing_species"
	CodeInvalidStage            = "invalid_stage"
	CodeInvalidTimestamp        = "invalid_timestamp"
	CodeInvalidStrain           = "invalid_strain"
	CodeMissingStrainName       = "missing_strain_name"
	CodeInvalidStrainGeneration = "invalid_strain_generation"
	CodeInvalidClonalGeneration = "invalid_clonal_generation"
	CodeInvalidStrainLineage    = "invalid_strain_lineage"
	CodeInvalidStrainSource     = "invalid_strain_source"
	CodeUnknownField            = "unknown_field"
)

var (
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	createdPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
	// The field-level generation pattern is narrower than IsValidGeneration
	// (no G<n>, no bare digits). Known inconsistency between the two
	// validation layers; both shapes are relied on.
	strainGenerationPattern = regexp.MustCompile(`^(P|F\d+)$`)

	idPatterns = map[IDMode]struct {
		re    *regexp.Regexp
		shape string
	}{
		IDModeStrict: {regexp.MustCompile(`^` + regexp.QuoteMeta(IDPrefix) + `[a-z0-9]+$`), IDPrefix + "<lowercase alphanumeric suffix>"},
		IDModeULID:   {regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(IDPrefix) + `[0-9A-HJKMNP-TV-Z]{26}$`), IDPrefix + "<26-character ULID suffix>"},
		IDModeUUID:   {regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(IDPrefix) + `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`), IDPrefix + "<UUID suffix>"},
		IDModeAny:    {regexp.MustCompile(`^` + regexp.QuoteMeta(IDPrefix) + `.+$`), IDPrefix + "<non-empty suffix>"},
	}

	knownFields = toSet([]string{
		"@context", "@type", "id", "version", "type", "species",
		"strain", "stage", "created", "batch", "organization", "creator",
		"custom", "signature", "_meta",
	})
)

// ValidateSpecimen checks a candidate record against the standard. It never
// panics: nil or non-object input yields a single top-level error. All field
// rules run independently and accumulate — validation does not stop at the
// first failure. Given identical input and options the result is identical,
// ordering included.
//
// The candidate may be a decoded document (map[string]any), a Specimen, or
// a *Specimen.
func ValidateSpecimen(candidate any, opts ValidateOptions) ValidationResult {
	v := &validator{opts: opts, level: opts.Level}
	if v.level == "" {
		v.level = LevelStrict
	}
	doc, ok := documentOf(candidate)
	if !ok {
		v.errorf("", CodeInvalidInput, "specimen must be a JSON object")
		return v.result()
	}
	v.checkMarkers(doc)
	v.checkID(doc)
	v.checkVersion(doc)
	v.checkType(doc)
	v.checkSpecies(doc)
	v.checkStage(doc)
	v.checkCreated(doc)
	v.checkStrain(doc)
	v.checkUnknownFields(doc)
	return v.result()
}

func documentOf(candidate any) (map[string]any, bool) {
	switch value := candidate.(type) {
	case map[string]any:
		return value, value != nil
	case Specimen:
		return value.asDocument(), true
	case *Specimen:
		if value == nil {
			return nil, false
		}
		return value.asDocument(), true
	default:
		return nil, false
	}
}

type validator struct {
	opts     ValidateOptions
	level    Level
	errors   []ValidationError
	warnings []ValidationWarning
}

func (v *validator) errorf(path, code, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(path, code, suggestion, format string, args ...any) {
	v.warnings = append(v.warnings, ValidationWarning{Path: path, Code: code, Message: fmt.Sprintf(format, args...), Suggestion: suggestion})
}

// demote records an error under strict and a warning under lenient.
func (v *validator) demote(path, code, suggestion, format string, args ...any) {
	if v.level == LevelLenient {
		v.warnf(path, code, suggestion, format, args...)
		return
	}
	v.errorf(path, code, format, args...)
}

func (v *validator) result() ValidationResult {
	return ValidationResult{Valid: len(v.errors) == 0, Errors: v.errors, Warnings: v.warnings}
}

// Marker mismatches are errors at every level.
func (v *validator) checkMarkers(doc map[string]any) {
	if value, ok := doc["@context"].(string); !ok || value != ContextIRI {
		v.errorf("@context", CodeInvalidContext, "@context must be %q", ContextIRI)
	}
	if value, ok := doc["@type"].(string); !ok || value != DocumentType {
		v.errorf("@type", CodeInvalidDocumentType, "@type must be %q", DocumentType)
	}
}

func (v *validator) checkID(doc map[string]any) {
	id, ok := doc["id"].(string)
	if !ok {
		v.errorf("id", CodeInvalidIDType, "id must be a string")
		return
	}
	if v.opts.CustomIDValidator != nil {
		if !v.opts.CustomIDValidator(id) {
			v.errorf("id", CodeInvalidIDFormat, "id rejected by custom validator")
		}
		return
	}
	mode := v.opts.IDMode
	if mode == "" {
		mode = IDModeStrict
	}
	pattern, ok := idPatterns[mode]
	if !ok {
		pattern = idPatterns[IDModeStrict]
	}
	if !pattern.re.MatchString(id) {
		v.errorf("id", CodeInvalidIDFormat, "id must match %s", pattern.shape)
	}
}

func (v *validator) checkVersion(doc map[string]any) {
	version, ok := doc["version"].(string)
	if !ok || !versionPattern.MatchString(version) {
		v.errorf("version", CodeInvalidVersion, "version must be a semantic version (major.minor.patch)")
	}
}

func (v *validator) checkType(doc map[string]any) {
	value, ok := doc["type"].(string)
	if !ok {
		v.errorf("type", CodeInvalidSpecimenType, "type must be a string")
		return
	}
	if !IsCanonicalType(Type(value)) {
		v.errorf("type", CodeInvalidSpecimenType, "unknown specimen type %q", value)
	}
}

func (v *validator) checkSpecies(doc map[string]any) {
	species, ok := doc["species"].(string)
	if !ok || strings.TrimSpace(species) == "" {
		v.errorf("species", CodeMissingSpecies, "species is required")
	}
}

func (v *validator) checkStage(doc map[string]any) {
	raw, present := doc["stage"]
	if !present {
		return
	}
	value, ok := raw.(string)
	if !ok {
		v.demote("stage", CodeInvalidStage, stageSuggestion(), "stage must be a string")
		return
	}
	if !IsCanonicalStage(Stage(value)) {
		v.demote("stage", CodeInvalidStage, stageSuggestion(), "unknown stage %q", value)
	}
}

func stageSuggestion() string {
	names := make([]string, len(canonicalStages))
	for i, st := range canonicalStages {
		names[i] = string(st)
	}
	return "valid stages: " + strings.Join(names, ", ")
}

func (v *validator) checkCreated(doc map[string]any) {
	raw, present := doc["created"]
	if !present {
		return
	}
	value, ok := raw.(string)
	if !ok || !createdPattern.MatchString(value) {
		v.demote("created", CodeInvalidTimestamp, "", "created must be an ISO-8601 date-time")
		return
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		v.demote("created", CodeInvalidTimestamp, "", "created must be a real instant")
	}
}

func (v *validator) checkStrain(doc map[string]any) {
	raw, present := doc["strain"]
	if !present {
		return
	}
	strain, ok := raw.(map[string]any)
	if !ok {
		v.errorf("strain", CodeInvalidStrain, "strain must be an object")
		return
	}
	if name, ok := strain["name"].(string); !ok || strings.TrimSpace(name) == "" {
		v.errorf("strain.name", CodeMissingStrainName, "strain name is required")
	}
	if raw, present := strain["generation"]; present {
		if value, ok := raw.(string); !ok || !strainGenerationPattern.MatchString(value) {
			v.errorf("strain.generation", CodeInvalidStrainGeneration, "generation must use P or F<n> notation")
		}
	}
	if raw, present := strain["clonalGeneration"]; present {
		if n, ok := intValue(raw); !ok || n <= 0 {
			v.errorf("strain.clonalGeneration", CodeInvalidClonalGeneration, "clonalGeneration must be a positive integer")
		}
	}
	if raw, present := strain["lineage"]; present {
		if _, ok := raw.(string); !ok {
			v.errorf("strain.lineage", CodeInvalidStrainLineage, "lineage must be a string")
		}
	}
	if raw, present := strain["source"]; present {
		if _, ok := raw.(string); !ok {
			v.errorf("strain.source", CodeInvalidStrainSource, "source must be a string")
		}
	}
}

// Unknown keys are scanned in sorted order so the warning list is stable
// regardless of map iteration order.
func (v *validator) checkUnknownFields(doc map[string]any) {
	if v.opts.AllowUnknownFields {
		return
	}
	var unknown []string
	for key := range doc {
		if _, ok := knownFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		v.warnf(key, CodeUnknownField, `move nonstandard data under "custom" or "_meta"`, "unknown field %q", key)
	}
}

// intValue accepts the two integer representations seen in practice: native
// ints from constructed documents and float64 from decoded JSON.
func intValue(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
