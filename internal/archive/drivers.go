package archive

import (
	archivememory "wols/internal/infra/archive/memory"
	archivepostgres "wols/internal/infra/archive/postgres"
	archivesqlite "wols/internal/infra/archive/sqlite"
)

// NewSQLite opens a SQLite archive at path, creating the file and schema on
// first use. An empty path uses the driver default.
func NewSQLite(path string) (Store, error) {
	return archivesqlite.New(path)
}

// NewPostgres opens a Postgres archive using the DSN.
func NewPostgres(dsn string) (Store, error) {
	return archivepostgres.New(dsn)
}

// NewMemory returns an in-process archive, handy for tests.
func NewMemory() Store {
	return archivememory.New()
}
