// Package postgres persists the engine's action journal. The in-memory
// snapshot stays authoritative; this is the replacement point a durable
// deployment would rebuild state from.
package postgres

import (
	"context"

	"github.com/tahmid-rahman/counselhub/internal/engine"
	"github.com/tahmid-rahman/counselhub/libs/db"
)

type Journal struct {
	pool *db.Pool
}

func NewJournal(pool *db.Pool) *Journal {
	return &Journal{pool: pool}
}

func (j *Journal) Record(ctx context.Context, entry engine.JournalEntry) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO lifecycle_journal (recorded_at, action, payload)
		VALUES ($1, $2, $3)
	`, entry.At, entry.Action, entry.Payload)
	return err
}

// Schema is applied by the harness at startup; journalling is append-only
// so there is nothing to migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS lifecycle_journal (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	recorded_at TIMESTAMPTZ NOT NULL,
	action TEXT NOT NULL,
	payload JSONB NOT NULL
)`

func EnsureSchema(ctx context.Context, pool *db.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
