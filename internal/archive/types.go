// Package archive exposes the label issuance ledger behind a
// driver-agnostic facade. Callers import this package only; the concrete
// backends live under internal/infra/archive.
package archive

import "wols/internal/archive/core"

// Re-exported core types so call sites need a single import.
type (
	// Driver identifies a concrete archive backend.
	Driver = core.Driver
	// Issuance records a single label issuance event.
	Issuance = core.Issuance
	// Store is the issuance ledger surface the label service depends on.
	Store = core.Store
)

// Known archive drivers.
const (
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
	DriverMemory   = core.DriverMemory
)
