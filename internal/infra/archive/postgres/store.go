// Package postgres persists the issuance archive to Postgres through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"wols/internal/archive/core"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	// Default DSN targets a local instance; deployments override it via config.
	defaultDSN = "postgres://localhost/wols?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the database opener and returns a restore func.
// Tests use it to inject a stub connection.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

const ddl = `CREATE TABLE IF NOT EXISTS issuances (
	id UUID PRIMARY KEY,
	specimen_id TEXT NOT NULL,
	species TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL DEFAULT '',
	artifact_key TEXT NOT NULL DEFAULT '',
	issued_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS issuances_specimen_idx ON issuances (specimen_id);`

// Store is a Postgres-backed issuance archive.
type Store struct {
	db *sql.DB
}

// New opens a Postgres archive using the DSN (falls back to defaultDSN),
// pings the server, and applies the schema.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres archive: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres archive: %w", err)
	}
	if err := applyDDL(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func applyDDL(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply archive ddl: %w", err)
		}
	}
	return nil
}

// Record stores the issuance, replacing any previous row with the same ID.
func (s *Store) Record(ctx context.Context, iss core.Issuance) error {
	iss, err := iss.Normalize()
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO issuances (id, specimen_id, species, format, artifact_key, issued_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	specimen_id = EXCLUDED.specimen_id,
	species = EXCLUDED.species,
	format = EXCLUDED.format,
	artifact_key = EXCLUDED.artifact_key,
	issued_at = EXCLUDED.issued_at`
	if _, err := s.db.ExecContext(ctx, stmt,
		iss.ID.String(), iss.SpecimenID, iss.Species, iss.Format, iss.ArtifactKey,
		iss.IssuedAt); err != nil {
		return fmt.Errorf("record issuance: %w", err)
	}
	return nil
}

// List returns issuances newest first; limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]core.Issuance, error) {
	query := `SELECT id, specimen_id, species, format, artifact_key, issued_at
FROM issuances ORDER BY issued_at DESC, id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issuances: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanIssuances(rows)
}

// FindBySpecimen returns all issuances for the specimen, newest first.
func (s *Store) FindBySpecimen(ctx context.Context, specimenID string) ([]core.Issuance, error) {
	const query = `SELECT id, specimen_id, species, format, artifact_key, issued_at
FROM issuances WHERE specimen_id = $1 ORDER BY issued_at DESC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, specimenID)
	if err != nil {
		return nil, fmt.Errorf("find issuances: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanIssuances(rows)
}

// Driver reports the backend kind.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func scanIssuances(rows *sql.Rows) ([]core.Issuance, error) {
	var out []core.Issuance
	for rows.Next() {
		var (
			id, specimenID, species, format, artifactKey string
			issuedAt                                     time.Time
		)
		if err := rows.Scan(&id, &specimenID, &species, &format, &artifactKey, &issuedAt); err != nil {
			return nil, fmt.Errorf("scan issuance: %w", err)
		}
		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse issuance id %q: %w", id, err)
		}
		out = append(out, core.Issuance{
			ID:          parsedID,
			SpecimenID:  specimenID,
			Species:     species,
			Format:      format,
			ArtifactKey: artifactKey,
			IssuedAt:    issuedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuances: %w", err)
	}
	return out, nil
}
