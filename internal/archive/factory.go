package archive

import (
	"fmt"
	"os"
)

// Open selects an archive implementation using environment variables.
//
//	WOLS_ARCHIVE_DRIVER: sqlite|postgres|memory (default sqlite)
//	WOLS_ARCHIVE_SQLITE_PATH: database file when driver=sqlite
//	WOLS_ARCHIVE_POSTGRES_DSN: connection string when driver=postgres
func Open() (Store, error) {
	driver := os.Getenv("WOLS_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverSQLite:
		return NewSQLite(os.Getenv("WOLS_ARCHIVE_SQLITE_PATH"))
	case DriverPostgres:
		return NewPostgres(os.Getenv("WOLS_ARCHIVE_POSTGRES_DSN"))
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}
