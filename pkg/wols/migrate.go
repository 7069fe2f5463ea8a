package wols

import (
	"fmt"
	"strconv"
	"strings"
)

// MigrationFunc upgrades a record one version step. It may mutate and
// return its argument or build a fresh map; returning nil keeps the current
// document. The engine owns the version field — handlers do not need to set
// it.
type MigrationFunc func(record map[string]any) (map[string]any, error)

type migration struct {
	from string
	to   string
	fn   MigrationFunc
}

// CompareVersions orders two version strings: -1, 0, or 1. Well-formed
// major.minor.patch triples compare numerically; when either side is
// malformed both fall back to plain string comparison — malformed versions
// order, they never error.
func CompareVersions(a, b string) int {
	av, aok := parseVersion(a)
	bv, bok := parseVersion(b)
	if !aok || !bok {
		return strings.Compare(a, b)
	}
	for i := 0; i < 3; i++ {
		switch {
		case av[i] < bv[i]:
			return -1
		case av[i] > bv[i]:
			return 1
		}
	}
	return 0
}

func parseVersion(v string) ([3]int, bool) {
	var parts [3]int
	fields := strings.Split(v, ".")
	if len(fields) != 3 {
		return parts, false
	}
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return parts, false
		}
		parts[i] = n
	}
	return parts, true
}

// IsOutdated reports whether v is older than CurrentVersion.
func IsOutdated(v string) bool {
	return CompareVersions(v, CurrentVersion) < 0
}

// IsNewer reports whether v is newer than CurrentVersion.
func IsNewer(v string) bool {
	return CompareVersions(v, CurrentVersion) > 0
}

// RegisterMigration declares a single-step upgrade from one exact version to
// another. Steps keep working regardless of registration order: the list is
// re-sorted by source version after every registration.
func RegisterMigration(from, to string, fn MigrationFunc) {
	defaultRegistry.registerMigration(migration{from: from, to: to, fn: fn})
}

// CanMigrate reports whether a complete migration chain exists from the
// record's version to CurrentVersion. Records already at or ahead of
// CurrentVersion report false.
func CanMigrate(record map[string]any) bool {
	version := versionOf(record)
	if CompareVersions(version, CurrentVersion) >= 0 {
		return false
	}
	steps := defaultRegistry.migrationSnapshot()
	for hops := 0; CompareVersions(version, CurrentVersion) < 0; hops++ {
		if hops > len(steps) {
			return false
		}
		step, ok := findStep(steps, version)
		if !ok {
			return false
		}
		version = step.to
	}
	return true
}

// Migrate walks the registered chain from the record's version up to
// CurrentVersion, applying each handler in turn. The record is copied at the
// top level first, so the caller's map is never mutated. Records already at
// or ahead of CurrentVersion come back unchanged. A version with no
// registered step fails: there is no safe partial-migration state to hand
// back. The final version field is forced to CurrentVersion even when the
// last handler already set it.
func Migrate(record map[string]any) (map[string]any, error) {
	doc := copyDocument(record)
	version := versionOf(doc)
	if CompareVersions(version, CurrentVersion) >= 0 {
		return doc, nil
	}
	steps := defaultRegistry.migrationSnapshot()
	for hops := 0; CompareVersions(version, CurrentVersion) < 0; hops++ {
		if hops > len(steps) {
			return nil, noMigrationPath(version)
		}
		step, ok := findStep(steps, version)
		if !ok {
			return nil, noMigrationPath(version)
		}
		next, err := step.fn(doc)
		if err != nil {
			return nil, &Error{
				Code:    ErrCodeMigrationFailed,
				Message: fmt.Sprintf("migration %s to %s failed", step.from, step.to),
				Err:     err,
			}
		}
		if next != nil {
			doc = next
		}
		doc["version"] = step.to
		version = step.to
	}
	doc["version"] = CurrentVersion
	return doc, nil
}

func noMigrationPath(stuck string) error {
	return &Error{
		Code:    ErrCodeMigrationFailed,
		Message: fmt.Sprintf("No migration path from version %s to %s", stuck, CurrentVersion),
	}
}

// findStep returns the first step whose source version matches exactly.
func findStep(steps []migration, version string) (migration, bool) {
	for _, step := range steps {
		if step.from == version {
			return step, true
		}
	}
	return migration{}, false
}

func versionOf(record map[string]any) string {
	version, _ := record["version"].(string)
	return version
}

func copyDocument(record map[string]any) map[string]any {
	doc := make(map[string]any, len(record))
	for k, v := range record {
		doc[k] = v
	}
	return doc
}
