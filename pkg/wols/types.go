package wols

import (
	"strconv"
	"strings"
)

// Type is a canonical specimen type. The enumeration is closed; free-form
// vocabulary reaches it through the alias table or the platform map.
type Type string

// Canonical specimen types.
const (
	TypeCulture      Type = "CULTURE"
	TypeSpawn        Type = "SPAWN"
	TypeSubstrate    Type = "SUBSTRATE"
	TypeSporePrint   Type = "SPORE_PRINT"
	TypeSporeSyringe Type = "SPORE_SYRINGE"
	TypeFruitBody    Type = "FRUIT_BODY"
	TypeTissueSample Type = "TISSUE_SAMPLE"
)

// Stage is a canonical growth stage. The enumeration is closed.
type Stage string

// Canonical growth stages.
const (
	StageInoculated   Stage = "INOCULATED"
	StageColonizing   Stage = "COLONIZING"
	StageColonized    Stage = "COLONIZED"
	StagePinning      Stage = "PINNING"
	StageFruiting     Stage = "FRUITING"
	StageHarvested    Stage = "HARVESTED"
	StageDormant      Stage = "DORMANT"
	StageContaminated Stage = "CONTAMINATED"
)

var (
	canonicalTypes = []Type{
		TypeCulture,
		TypeSpawn,
		TypeSubstrate,
		TypeSporePrint,
		TypeSporeSyringe,
		TypeFruitBody,
		TypeTissueSample,
	}
	canonicalStages = []Stage{
		StageInoculated,
		StageColonizing,
		StageColonized,
		StagePinning,
		StageFruiting,
		StageHarvested,
		StageDormant,
		StageContaminated,
	}
	typeSet  = toSet(canonicalTypes)
	stageSet = toSet(canonicalStages)
)

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Types returns the canonical specimen types in declaration order.
func Types() []Type {
	out := make([]Type, len(canonicalTypes))
	copy(out, canonicalTypes)
	return out
}

// Stages returns the canonical growth stages in declaration order.
func Stages() []Stage {
	out := make([]Stage, len(canonicalStages))
	copy(out, canonicalStages)
	return out
}

// IsCanonicalType reports whether t is in the closed type enumeration.
func IsCanonicalType(t Type) bool {
	_, ok := typeSet[t]
	return ok
}

// IsCanonicalStage reports whether st is in the closed stage enumeration.
func IsCanonicalStage(st Stage) bool {
	_, ok := stageSet[st]
	return ok
}

// ResolveTypeAlias maps free-form type vocabulary to a canonical type name.
// The input is upper-cased; canonical values pass through, aliases resolve
// case-insensitively, and unresolved input is returned unchanged — the
// caller decides whether that is an error. Resolution is idempotent.
func ResolveTypeAlias(input string) string {
	upper := strings.ToUpper(input)
	if _, ok := typeSet[Type(upper)]; ok {
		return upper
	}
	if t, ok := defaultRegistry.aliasFor(upper); ok {
		return string(t)
	}
	return input
}

// RegisterTypeAlias adds or replaces an alias in the process-wide table.
// Matching is case-insensitive on the alias.
func RegisterTypeAlias(alias string, t Type) {
	defaultRegistry.registerAlias(alias, t)
}

// TypeAliases returns a copy of the alias table, keyed by upper-cased alias.
func TypeAliases() map[string]Type {
	return defaultRegistry.aliases()
}

// TypeFromPlatform resolves a descriptive platform label ("Grain Spawn Bag")
// to its canonical type. Matching ignores case and whitespace.
func TypeFromPlatform(label string) (Type, bool) {
	return defaultRegistry.platformFor(platformKey(label))
}

// PlatformFromType returns the representative platform label for a canonical
// type: the first label registered for it.
func PlatformFromType(t Type) (string, bool) {
	return defaultRegistry.platformLabel(t)
}

// RegisterPlatformType adds a platform label for a canonical type. The label
// is also registered as a type alias so both lookup paths stay consistent.
func RegisterPlatformType(label string, t Type) {
	defaultRegistry.registerPlatform(label, t)
}

// platformKey normalizes a platform label for lookup: upper-cased with all
// whitespace removed.
func platformKey(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), ""))
}

// GenerationNotation selects the output notation of NormalizeGeneration.
type GenerationNotation string

const (
	// NotationPreserve keeps the input notation, normalizing case only.
	NotationPreserve GenerationNotation = "preserve"
	// NotationFilial renders parental stock as P and everything else as F<n>.
	NotationFilial GenerationNotation = "filial"
	// NotationNumeric renders parental stock as 0 and everything else as the
	// bare generation number.
	NotationNumeric GenerationNotation = "numeric"
)

// parseGeneration recognizes P, P1, F<digits>, G<digits>, and bare digits,
// case-insensitively. P and P1 both denote parental stock.
func parseGeneration(gen string) (parental bool, n int, ok bool) {
	upper := strings.ToUpper(strings.TrimSpace(gen))
	switch {
	case upper == "P" || upper == "P1":
		return true, 0, true
	case len(upper) > 1 && (upper[0] == 'F' || upper[0] == 'G'):
		v, err := strconv.Atoi(upper[1:])
		if err != nil || v < 0 {
			return false, 0, false
		}
		return false, v, true
	case upper != "":
		v, err := strconv.Atoi(upper)
		if err != nil || v < 0 {
			return false, 0, false
		}
		return false, v, true
	default:
		return false, 0, false
	}
}

// IsValidGeneration reports whether gen is a recognized generation notation:
// P, P1, F<n>, G<n>, or a bare number, case-insensitive. Note the validator
// applies a narrower field-level pattern (P or F<n> only).
func IsValidGeneration(gen string) bool {
	_, _, ok := parseGeneration(gen)
	return ok
}

// NormalizeGeneration converts a generation string between notations.
// Unparseable input is returned unchanged rather than failing; unknown
// notations behave like NotationPreserve.
func NormalizeGeneration(gen string, notation GenerationNotation) string {
	parental, n, ok := parseGeneration(gen)
	if !ok {
		return gen
	}
	switch notation {
	case NotationFilial:
		if parental {
			return "P"
		}
		return "F" + strconv.Itoa(n)
	case NotationNumeric:
		if parental {
			return "0"
		}
		return strconv.Itoa(n)
	default:
		return strings.ToUpper(strings.TrimSpace(gen))
	}
}
