// Package sqlite persists the issuance archive to a local SQLite file
// through the pure-Go modernc driver, keeping the binary CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wols/internal/archive/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register the pure-Go sqlite driver
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "wols-archive.db"

// issuedAtLayout is RFC 3339 with fixed-width nanoseconds. SQLite compares
// TEXT lexicographically, and trimming trailing zeros would break the
// chronological ordering of the issued_at column.
const issuedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const ddl = `CREATE TABLE IF NOT EXISTS issuances (
	id TEXT PRIMARY KEY,
	specimen_id TEXT NOT NULL,
	species TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL DEFAULT '',
	artifact_key TEXT NOT NULL DEFAULT '',
	issued_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS issuances_specimen_idx ON issuances (specimen_id);`

// Store is a SQLite-backed issuance archive.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the archive database at path, creating the file and schema on
// first use. An empty path falls back to DefaultPath.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite archive: %w", err)
	}
	if err := applyDDL(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
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
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	specimen_id = EXCLUDED.specimen_id,
	species = EXCLUDED.species,
	format = EXCLUDED.format,
	artifact_key = EXCLUDED.artifact_key,
	issued_at = EXCLUDED.issued_at`
	if _, err := s.db.ExecContext(ctx, stmt,
		iss.ID.String(), iss.SpecimenID, iss.Species, iss.Format, iss.ArtifactKey,
		iss.IssuedAt.Format(issuedAtLayout)); err != nil {
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
		query += " LIMIT ?"
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
FROM issuances WHERE specimen_id = ? ORDER BY issued_at DESC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, specimenID)
	if err != nil {
		return nil, fmt.Errorf("find issuances: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanIssuances(rows)
}

// Driver reports the backend kind.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func scanIssuances(rows *sql.Rows) ([]core.Issuance, error) {
	var out []core.Issuance
	for rows.Next() {
		var id, specimenID, species, format, artifactKey, issuedAt string
		if err := rows.Scan(&id, &specimenID, &species, &format, &artifactKey, &issuedAt); err != nil {
			return nil, fmt.Errorf("scan issuance: %w", err)
		}
		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse issuance id %q: %w", id, err)
		}
		at, err := time.Parse(issuedAtLayout, issuedAt)
		if err != nil {
			return nil, fmt.Errorf("parse issued_at %q: %w", issuedAt, err)
		}
		out = append(out, core.Issuance{
			ID:          parsedID,
			SpecimenID:  specimenID,
			Species:     species,
			Format:      format,
			ArtifactKey: artifactKey,
			IssuedAt:    at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuances: %w", err)
	}
	return out, nil
}
