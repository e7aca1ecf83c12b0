// Package store is the supplemented persisted-Spec cache: an optional,
// swap-in-swap-out layer that lets a host application avoid re-fetching and
// re-compiling the same exchange Spec on every process start. It is not
// part of the core's required path — §1 scopes the core around in-memory
// Spec values, and nothing in the core ever requires a store to be
// configured.
package store

import "database/sql"

// Driver identifies which database/sql driver a Config targets, mirroring
// the teacher's database.Config driver switch.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite3  Driver = "sqlite3"
)

// Config is the connection configuration for Connect.
type Config struct {
	Enabled bool
	Driver  Driver
	// DSN is the driver-specific data source name: a libpq connection
	// string for DriverPostgres, or a file path (or ":memory:") for
	// DriverSQLite3.
	DSN string
}

// dialect maps Driver to the goose migration dialect name.
func (d Driver) dialect() string {
	switch d {
	case DriverPostgres:
		return "postgres"
	case DriverSQLite3:
		return "sqlite3"
	default:
		return "invalid"
	}
}

func open(cfg Config) (*sql.DB, error) {
	return sql.Open(string(cfg.Driver), cfg.DSN)
}
