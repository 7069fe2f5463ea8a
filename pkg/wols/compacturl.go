package wols

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Compact URL constants. The scheme and query tokens are wire contract:
// existing printed labels depend on them.
const (
	compactScheme         = "wols"
	compactVersionSegment = "v1"
)

// SpecimenRef is the partial projection decoded from a compact URL. The
// encoding is deliberately lossy — fields the URL never carried are absent
// here, and species travels as a short code when one is registered.
type SpecimenRef struct {
	ID               SpecimenID `json:"id"`
	Version          string     `json:"version"`
	Species          string     `json:"species,omitempty"`
	Type             Type       `json:"type,omitempty"`
	Stage            Stage      `json:"stage,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	Batch            string     `json:"batch,omitempty"`
	StrainName       string     `json:"strainName,omitempty"`
	StrainGeneration string     `json:"strainGeneration,omitempty"`
}

// ToCompactURL encodes a specimen for small-format labels:
//
//	wols://v1/<id-suffix>?s=...&t=...&st=...&ts=...&b=...&sn=...&sg=...
//
// Query keys appear in exactly that order, absent fields omitted. Species
// is replaced by its registered short code when one exists; stage travels
// as its literal value; created becomes Unix seconds.
func ToCompactURL(s Specimen) string {
	var b strings.Builder
	b.WriteString(compactScheme)
	b.WriteString("://")
	b.WriteString(compactVersionSegment)
	b.WriteByte('/')
	b.WriteString(url.PathEscape(s.ID.Suffix()))

	query := make([]string, 0, 7)
	add := func(key, value string) {
		if value != "" {
			query = append(query, key+"="+url.QueryEscape(value))
		}
	}
	species := s.Species
	if code, ok := CodeForSpecies(s.Species); ok {
		species = code
	}
	add("s", species)
	add("t", string(s.Type))
	add("st", string(s.Stage))
	if s.Created != "" {
		if instant, err := time.Parse(time.RFC3339, s.Created); err == nil {
			add("ts", strconv.FormatInt(instant.Unix(), 10))
		}
	}
	add("b", s.Batch)
	if s.Strain != nil {
		add("sn", s.Strain.Name)
		if s.Strain.Generation != nil {
			add("sg", *s.Strain.Generation)
		}
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(query, "&"))
	}
	return b.String()
}

// ParseCompactURL decodes a compact URL into a SpecimenRef. The scheme must
// match and the path must carry a version segment and an id segment.
// Unrecognized species codes pass through verbatim as the species name —
// codes and free-text names are never distinguished syntactically.
func ParseCompactURL(raw string) (SpecimenRef, error) {
	prefix := compactScheme + "://"
	if !strings.HasPrefix(raw, prefix) {
		return SpecimenRef{}, &Error{Code: ErrCodeInvalidURL, Message: fmt.Sprintf("compact URL must start with %s", prefix)}
	}
	rest := strings.TrimPrefix(raw, prefix)
	pathPart, queryPart, _ := strings.Cut(rest, "?")
	segments := strings.Split(pathPart, "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return SpecimenRef{}, &Error{Code: ErrCodeInvalidURL, Message: "compact URL must carry version and id segments"}
	}
	suffix, err := url.PathUnescape(segments[1])
	if err != nil {
		return SpecimenRef{}, &Error{Code: ErrCodeInvalidURL, Message: "compact URL id segment is not decodable", Err: err}
	}
	ref := SpecimenRef{
		ID:      SpecimenID(IDPrefix + suffix),
		Version: segments[0],
	}
	values, err := url.ParseQuery(queryPart)
	if err != nil {
		return SpecimenRef{}, &Error{Code: ErrCodeInvalidURL, Message: "compact URL query is not decodable", Err: err}
	}
	if v := values.Get("s"); v != "" {
		if species, ok := SpeciesForCode(v); ok {
			ref.Species = species
		} else {
			ref.Species = v
		}
	}
	if v := values.Get("t"); v != "" {
		ref.Type = Type(v)
	}
	if v := values.Get("st"); v != "" {
		ref.Stage = Stage(v)
	}
	if v := values.Get("ts"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			instant := time.Unix(secs, 0).UTC()
			ref.Timestamp = &instant
		}
	}
	ref.Batch = values.Get("b")
	ref.StrainName = values.Get("sn")
	ref.StrainGeneration = values.Get("sg")
	return ref, nil
}

// MustParseCompactURL is ParseCompactURL for inputs known to be valid; it
// panics on failure. It never diverges from ParseCompactURL in outcome.
func MustParseCompactURL(raw string) SpecimenRef {
	ref, err := ParseCompactURL(raw)
	if err != nil {
		panic(err)
	}
	return ref
}

// ParseCompactURLOrNil returns nil instead of an error on failure. It never
// diverges from ParseCompactURL in outcome.
func ParseCompactURLOrNil(raw string) *SpecimenRef {
	ref, err := ParseCompactURL(raw)
	if err != nil {
		return nil
	}
	return &ref
}

// RegisterSpeciesCode adds or replaces a species short code. Forward and
// reverse lookups update atomically; re-registering an existing code or
// species drops the stale pairing.
func RegisterSpeciesCode(code, species string) {
	defaultRegistry.registerSpeciesCode(code, species)
}

// SpeciesForCode resolves a short code to the registered species name.
func SpeciesForCode(code string) (string, bool) {
	return defaultRegistry.speciesFor(code)
}

// CodeForSpecies returns the short code registered for a species name.
func CodeForSpecies(species string) (string, bool) {
	return defaultRegistry.codeForSpecies(species)
}

// SpeciesCodes returns a copy of the species code table.
func SpeciesCodes() map[string]string {
	return defaultRegistry.speciesCodes()
}

// RegisterStageCode adds or replaces a stage display code. These codes are
// for label captions; the compact URL always carries the literal stage.
func RegisterStageCode(code string, stage Stage) {
	defaultRegistry.registerStageCode(code, stage)
}

// StageForCode resolves a display code to its stage.
func StageForCode(code string) (Stage, bool) {
	return defaultRegistry.stageFor(code)
}

// StageCodeFor returns the display code registered for a stage.
func StageCodeFor(stage Stage) (string, bool) {
	return defaultRegistry.codeForStage(stage)
}

// StageCodes returns a copy of the stage code table.
func StageCodes() map[string]Stage {
	return defaultRegistry.stageCodes()
}
