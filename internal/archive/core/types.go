// Package core defines the issuance archive abstractions shared by the
// archive backends. The archive is the audit trail of every label issued:
// who (which specimen), what artifact, and when.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	// DriverSQLite persists issuances to a local SQLite file (default).
	DriverSQLite Driver = "sqlite"
	// DriverPostgres persists issuances to a Postgres database.
	DriverPostgres Driver = "postgres"
	// DriverMemory keeps issuances in process memory (tests).
	DriverMemory Driver = "memory"
)

// Issuance records a single label issuance event.
type Issuance struct {
	ID          uuid.UUID `json:"id"`
	SpecimenID  string    `json:"specimen_id"`
	Species     string    `json:"species,omitempty"`
	Format      string    `json:"format,omitempty"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Normalize validates the issuance and fills derivable fields. IssuedAt is
// forced to UTC so ordering is stable across backends; a zero IssuedAt
// becomes the current time.
func (i Issuance) Normalize() (Issuance, error) {
	if i.ID == uuid.Nil {
		return Issuance{}, fmt.Errorf("archive: issuance id is required")
	}
	if strings.TrimSpace(i.SpecimenID) == "" {
		return Issuance{}, fmt.Errorf("archive: specimen id is required")
	}
	if i.IssuedAt.IsZero() {
		i.IssuedAt = time.Now()
	}
	i.IssuedAt = i.IssuedAt.UTC()
	return i, nil
}

// Store is the issuance ledger surface the label service depends on.
type Store interface {
	// Record stores an issuance. Recording the same ID again replaces the
	// previous row, so retried issuances stay idempotent.
	Record(ctx context.Context, iss Issuance) error
	// List returns issuances ordered newest first (ties broken by ID).
	// A limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]Issuance, error)
	// FindBySpecimen returns all issuances for one specimen, newest first.
	FindBySpecimen(ctx context.Context, specimenID string) ([]Issuance, error)
	// Driver reports the configured backend.
	Driver() Driver
	// Close releases backend resources.
	Close() error
}
