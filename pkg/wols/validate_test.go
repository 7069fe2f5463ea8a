package wols

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestValidateSpecimenAcceptsCompleteRecord(t *testing.T) {
	res := ValidateSpecimen(validSpecimen(t), ValidateOptions{})
	if !res.Valid {
		t.Fatalf("expected valid, got errors %+v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", res.Warnings)
	}
}

func TestValidateSpecimenRejectsNonObjectInput(t *testing.T) {
	inputs := []any{nil, "specimen", 42, []any{"a"}, 3.14, (*Specimen)(nil), (map[string]any)(nil)}
	for _, input := range inputs {
		res := ValidateSpecimen(input, ValidateOptions{})
		if res.Valid {
			t.Fatalf("input %#v: expected invalid", input)
		}
		if len(res.Errors) != 1 || res.Errors[0].Code != CodeInvalidInput {
			t.Fatalf("input %#v: expected single invalid_input error, got %+v", input, res.Errors)
		}
	}
}

func TestValidateSpecimenAccumulatesErrors(t *testing.T) {
	doc := map[string]any{
		"@context": "https://example.org/other",
		"@type":    "Sample",
		"id":       "no-prefix",
		"version":  "one",
		"type":     "GADGET",
	}
	res := ValidateSpecimen(doc, ValidateOptions{})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	wantCodes := []string{
		CodeInvalidContext,
		CodeInvalidDocumentType,
		CodeInvalidIDFormat,
		CodeInvalidVersion,
		CodeInvalidSpecimenType,
		CodeMissingSpecies,
	}
	if len(res.Errors) != len(wantCodes) {
		t.Fatalf("expected %d errors, got %+v", len(wantCodes), res.Errors)
	}
	for i, code := range wantCodes {
		if res.Errors[i].Code != code {
			t.Fatalf("error %d: expected %s, got %s (%s)", i, code, res.Errors[i].Code, res.Errors[i].Message)
		}
	}
}

func TestValidateSpecimenIDModes(t *testing.T) {
	ulid := "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	cases := []struct {
		name  string
		id    any
		opts  ValidateOptions
		code  string
		valid bool
	}{
		{"strict accepts cuid shape", "wols:c1a2b3c4d5", ValidateOptions{}, "", true},
		{"strict rejects uppercase", "wols:" + ulid, ValidateOptions{}, CodeInvalidIDFormat, false},
		{"ulid accepts the vector", "wols:" + ulid, ValidateOptions{IDMode: IDModeULID}, "", true},
		{"ulid accepts lowercase", "wols:" + strings.ToLower(ulid), ValidateOptions{IDMode: IDModeULID}, "", true},
		{"ulid rejects short suffix", "wols:01ARZ3NDEK", ValidateOptions{IDMode: IDModeULID}, CodeInvalidIDFormat, false},
		{"ulid rejects excluded letters", "wols:01ARZ3NDEKTSV4RRFFQ69G5FAL", ValidateOptions{IDMode: IDModeULID}, CodeInvalidIDFormat, false},
		{"uuid accepts hyphenated hex", "wols:6ba7b810-9dad-11d1-80b4-00c04fd430c8", ValidateOptions{IDMode: IDModeUUID}, "", true},
		{"uuid accepts uppercase hex", "wols:6BA7B810-9DAD-11D1-80B4-00C04FD430C8", ValidateOptions{IDMode: IDModeUUID}, "", true},
		{"uuid rejects missing groups", "wols:6ba7b810", ValidateOptions{IDMode: IDModeUUID}, CodeInvalidIDFormat, false},
		{"any accepts anything non-empty", "wols:" + ulid, ValidateOptions{IDMode: IDModeAny}, "", true},
		{"any rejects empty suffix", "wols:", ValidateOptions{IDMode: IDModeAny}, CodeInvalidIDFormat, false},
		{"missing prefix fails every mode", "01ARZ3NDEKTSV4RRFFQ69G5FAV", ValidateOptions{IDMode: IDModeAny}, CodeInvalidIDFormat, false},
		{"non-string id is a type error", 99, ValidateOptions{}, CodeInvalidIDType, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDocument()
			doc["id"] = tc.id
			res := ValidateSpecimen(doc, tc.opts)
			if tc.valid {
				if !res.Valid {
					t.Fatalf("expected valid, got %+v", res.Errors)
				}
				return
			}
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if res.Errors[0].Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, res.Errors[0].Code)
			}
		})
	}
}

func TestValidateSpecimenCustomIDValidatorOverridesMode(t *testing.T) {
	doc := validDocument()
	doc["id"] = "wols:UPPER"
	opts := ValidateOptions{
		IDMode:            IDModeStrict,
		CustomIDValidator: func(id string) bool { return strings.HasPrefix(id, IDPrefix) },
	}
	if res := ValidateSpecimen(doc, opts); !res.Valid {
		t.Fatalf("custom validator should have won over strict mode: %+v", res.Errors)
	}
	opts.CustomIDValidator = func(string) bool { return false }
	res := ValidateSpecimen(doc, opts)
	if res.Valid || res.Errors[0].Code != CodeInvalidIDFormat {
		t.Fatalf("expected custom validator rejection, got %+v", res.Errors)
	}
}

func TestValidateSpecimenVersionPattern(t *testing.T) {
	bad := []any{"1.2", "1.2.3.4", "v1.2.3", "1.2.3-beta", "one.two.three", 120}
	for _, version := range bad {
		doc := validDocument()
		doc["version"] = version
		res := ValidateSpecimen(doc, ValidateOptions{})
		if res.Valid || res.Errors[0].Code != CodeInvalidVersion {
			t.Fatalf("version %v: expected invalid_version, got %+v", version, res.Errors)
		}
	}
}

func TestValidateSpecimenStageLevels(t *testing.T) {
	doc := validDocument()
	doc["stage"] = "SOAKING"

	strict := ValidateSpecimen(doc, ValidateOptions{})
	if strict.Valid || strict.Errors[0].Code != CodeInvalidStage {
		t.Fatalf("strict: expected invalid_stage error, got %+v", strict.Errors)
	}

	lenient := ValidateSpecimen(doc, ValidateOptions{Level: LevelLenient})
	if !lenient.Valid {
		t.Fatalf("lenient: expected valid, got %+v", lenient.Errors)
	}
	if len(lenient.Warnings) != 1 || lenient.Warnings[0].Code != CodeInvalidStage {
		t.Fatalf("lenient: expected one stage warning, got %+v", lenient.Warnings)
	}
	if !strings.Contains(lenient.Warnings[0].Suggestion, string(StageFruiting)) {
		t.Fatalf("suggestion should list valid stages, got %q", lenient.Warnings[0].Suggestion)
	}
}

func TestValidateSpecimenCreatedProfile(t *testing.T) {
	good := []string{
		"2026-03-14T09:26:53Z",
		"2026-03-14T09:26:53.123Z",
		"2026-03-14T09:26:53+02:00",
		"2026-03-14T09:26:53.5-07:00",
	}
	for _, created := range good {
		doc := validDocument()
		doc["created"] = created
		if res := ValidateSpecimen(doc, ValidateOptions{}); !res.Valid {
			t.Fatalf("created %q: expected valid, got %+v", created, res.Errors)
		}
	}
	bad := []any{
		"2026-03-14",
		"2026-03-14 09:26:53Z",
		"14/03/2026T09:26:53Z",
		"2026-03-14T09:26:53",
		"2026-02-30T09:26:53Z", // matches the profile but is not a real instant
		20260314,
	}
	for _, created := range bad {
		doc := validDocument()
		doc["created"] = created
		res := ValidateSpecimen(doc, ValidateOptions{})
		if res.Valid || res.Errors[0].Code != CodeInvalidTimestamp {
			t.Fatalf("created %v: expected invalid_timestamp, got %+v", created, res.Errors)
		}
		lenient := ValidateSpecimen(doc, ValidateOptions{Level: LevelLenient})
		if !lenient.Valid || len(lenient.Warnings) != 1 {
			t.Fatalf("created %v: lenient should warn instead, got %+v / %+v", created, lenient.Errors, lenient.Warnings)
		}
	}
}

func TestValidateSpecimenStrainRules(t *testing.T) {
	cases := []struct {
		name   string
		strain any
		code   string
	}{
		{"non-object strain", "Blue Dolphin", CodeInvalidStrain},
		{"missing name", map[string]any{}, CodeMissingStrainName},
		{"blank name", map[string]any{"name": "  "}, CodeMissingStrainName},
		{"generation notation", map[string]any{"name": "x", "generation": "G2"}, CodeInvalidStrainGeneration},
		{"generation lowercase rejected", map[string]any{"name": "x", "generation": "f2"}, CodeInvalidStrainGeneration},
		{"generation non-string", map[string]any{"name": "x", "generation": 2}, CodeInvalidStrainGeneration},
		{"clonal generation zero", map[string]any{"name": "x", "clonalGeneration": 0}, CodeInvalidClonalGeneration},
		{"clonal generation fractional", map[string]any{"name": "x", "clonalGeneration": 1.5}, CodeInvalidClonalGeneration},
		{"lineage non-string", map[string]any{"name": "x", "lineage": 7}, CodeInvalidStrainLineage},
		{"source non-string", map[string]any{"name": "x", "source": true}, CodeInvalidStrainSource},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDocument()
			doc["strain"] = tc.strain
			res := ValidateSpecimen(doc, ValidateOptions{})
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if res.Errors[0].Code != tc.code {
				t.Fatalf("expected %s, got %s (%s)", tc.code, res.Errors[0].Code, res.Errors[0].Message)
			}
		})
	}

	// The field-level pattern rejects G<n> and bare digits even though
	// IsValidGeneration accepts them; the two layers differ on purpose.
	if !IsValidGeneration("G2") {
		t.Fatal("helper should accept G2")
	}
	doc := validDocument()
	doc["strain"] = map[string]any{"name": "x", "generation": "F2", "clonalGeneration": 3}
	if res := ValidateSpecimen(doc, ValidateOptions{}); !res.Valid {
		t.Fatalf("expected valid strain, got %+v", res.Errors)
	}
}

func TestValidateSpecimenUnknownFields(t *testing.T) {
	doc := validDocument()
	doc["zebra"] = 1
	doc["aardvark"] = 2
	doc["_meta"] = map[string]any{"note": "kept"}

	res := ValidateSpecimen(doc, ValidateOptions{})
	if !res.Valid {
		t.Fatalf("unknown fields must not block validity: %+v", res.Errors)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %+v", res.Warnings)
	}
	// Sorted by key, so aardvark first.
	if res.Warnings[0].Path != "aardvark" || res.Warnings[1].Path != "zebra" {
		t.Fatalf("warnings not in sorted key order: %+v", res.Warnings)
	}
	if res.Warnings[0].Code != CodeUnknownField {
		t.Fatalf("expected unknown_field, got %s", res.Warnings[0].Code)
	}

	allowed := ValidateSpecimen(doc, ValidateOptions{AllowUnknownFields: true})
	if len(allowed.Warnings) != 0 {
		t.Fatalf("AllowUnknownFields should suppress warnings, got %+v", allowed.Warnings)
	}
}

func TestValidateSpecimenDeterministic(t *testing.T) {
	doc := validDocument()
	doc["version"] = "nope"
	doc["stage"] = "BAD"
	doc["gamma"] = 1
	doc["alpha"] = 2
	doc["beta"] = 3

	first := ValidateSpecimen(doc, ValidateOptions{})
	second := ValidateSpecimen(doc, ValidateOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation not deterministic:\n%+v\n%+v", first, second)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("results differ byte-wise:\n%s\n%s", a, b)
	}
}

func TestValidateSpecimenStructInput(t *testing.T) {
	s := validSpecimen(t)
	if res := ValidateSpecimen(&s, ValidateOptions{}); !res.Valid {
		t.Fatalf("pointer input: %+v", res.Errors)
	}
	s.Species = "   "
	res := ValidateSpecimen(s, ValidateOptions{})
	if res.Valid || res.Errors[0].Code != CodeMissingSpecies {
		t.Fatalf("expected missing_species, got %+v", res.Errors)
	}
}
