package storage

import "fmt"

// Backend names accepted by Open.
const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open returns the Provider for backend. target is the CSV file path, the
// SQLite database file, or the PostgreSQL connection string.
func Open(backend, target string) (Provider, error) {
	switch backend {
	case BackendCSV:
		return NewCSV(target)
	case BackendSQLite:
		return OpenSQL(DriverSQLite, target)
	case BackendPostgres:
		return OpenSQL(DriverPostgres, target)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
