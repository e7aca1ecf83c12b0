package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/ccxtgo/unified/spec"
)

// ErrNotFound is returned by SpecRepository.Get when no row exists for the
// requested exchange id.
var ErrNotFound = errors.New("store: spec not found")

// SpecRepository persists compiled Spec values keyed by exchange id. It is
// hand-written, explicit SQL rather than a generated model layer: see
// DESIGN.md for why sqlboiler (the teacher's query-builder generator) could
// not be wired here.
type SpecRepository struct {
	db *sql.DB
}

// NewSpecRepository builds a repository over an already-migrated Instance.
func NewSpecRepository(inst *Instance) *SpecRepository {
	return &SpecRepository{db: inst.SQL}
}

// Get returns the cached Spec for exchangeID, or ErrNotFound if none is
// cached.
func (r *SpecRepository) Get(ctx context.Context, exchangeID string) (*spec.Spec, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM specs WHERE exchange_id = $1`, exchangeID)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s spec.Spec
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Put upserts s, keyed by s.ID.
func (r *SpecRepository) Put(ctx context.Context, s *spec.Spec) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertSQL,
		s.ID, s.SpecFormatVersion, string(payload), time.Now().UTC())
	return err
}

// Delete removes the cached Spec for exchangeID, if any.
func (r *SpecRepository) Delete(ctx context.Context, exchangeID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM specs WHERE exchange_id = $1`, exchangeID)
	return err
}

// upsertSQL relies on SQLite's and Postgres' shared "ON CONFLICT" upsert
// syntax (both drivers support it; this is the one bit of dialect-neutral
// SQL the repository depends on).
const upsertSQL = `
INSERT INTO specs (exchange_id, spec_format_version, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (exchange_id) DO UPDATE SET
  spec_format_version = excluded.spec_format_version,
  payload = excluded.payload,
  updated_at = excluded.updated_at
`
