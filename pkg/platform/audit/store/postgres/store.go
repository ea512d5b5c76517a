// Package postgres provides a durable audit outbox backed by PostgreSQL.
//
// Verdict events carry compliance weight, so deployments that need a durable
// trail independent of the Kafka ledger write them here via database/sql with
// the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"renalmatch/pkg/platform/audit"
)

// Schema for the audit outbox table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id            BIGSERIAL PRIMARY KEY,
	category      TEXT        NOT NULL,
	action        TEXT        NOT NULL,
	session_id    UUID        NOT NULL,
	hospital_id   UUID        NOT NULL,
	score         INT         NULL,
	hard_excluded BOOLEAN     NOT NULL DEFAULT FALSE,
	superseded    BOOLEAN     NOT NULL DEFAULT FALSE,
	request_id    TEXT        NOT NULL DEFAULT '',
	occurred_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_session_idx ON audit_events (session_id, occurred_at);
`

// Store appends audit events to the outbox table.
type Store struct {
	db *sql.DB
}

// Open connects via lib/pq and ensures the outbox table exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle. The caller owns the handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var score sql.NullInt64
	if event.Score != nil {
		score = sql.NullInt64{Int64: int64(*event.Score), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(category, action, session_id, hospital_id, score, hard_excluded, superseded, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(event.Category),
		event.Action,
		event.SessionID.String(),
		event.HospitalID.String(),
		score,
		event.HardExcluded,
		event.Superseded,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Close releases the underlying handle when the store created it via Open.
func (s *Store) Close() error {
	return s.db.Close()
}
