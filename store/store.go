package store

import (
	"database/sql"
	"path/filepath"
	"runtime"
	"sync"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/goose"
)

// Instance is a connected, migrated store handle, mirroring the teacher's
// database.Instance shape (a *sql.DB plus a connected flag guarded for
// concurrent reads).
type Instance struct {
	SQL    *sql.DB
	driver Driver

	mu        sync.RWMutex
	connected bool
}

// migrationDir is resolved relative to this source file, not the caller's
// working directory, so Connect works the same regardless of which package
// imports store.
func migrationDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "migrations")
}

// Connect opens cfg's driver, runs goose migrations to head, and returns a
// connected Instance. Connect is a no-op error-free path when cfg.Enabled
// is false: callers that don't configure a store never pay for one.
func Connect(cfg Config) (*Instance, error) {
	if !cfg.Enabled {
		return &Instance{}, nil
	}

	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := goose.Run("up", db, cfg.Driver.dialect(), migrationDir(), ""); err != nil {
		return nil, err
	}

	inst := &Instance{SQL: db, driver: cfg.Driver}
	inst.setConnected(true)
	return inst, nil
}

// Close closes the underlying connection, if any.
func (i *Instance) Close() error {
	if i.SQL == nil {
		return nil
	}
	i.setConnected(false)
	return i.SQL.Close()
}

// IsConnected reports whether Connect succeeded and Close has not been
// called.
func (i *Instance) IsConnected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.connected
}

func (i *Instance) setConnected(v bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.connected = v
}
