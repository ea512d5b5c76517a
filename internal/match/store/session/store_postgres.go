package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "renalmatch/pkg/domain"
	"renalmatch/pkg/platform/sentinel"

	"renalmatch/internal/match/session"
)

// Schema for the sessions table. The aggregate is stored as JSONB: the
// engine always reads and writes whole sessions, so relational decomposition
// of profiles buys nothing here.
const Schema = `
CREATE TABLE IF NOT EXISTS match_sessions (
	id          UUID PRIMARY KEY,
	hospital_id UUID        NOT NULL,
	state       TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_sessions_hospital_idx ON match_sessions (hospital_id);
`

// PostgresStore persists sessions in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed session store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema applies the sessions table schema.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply session schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO match_sessions (id, hospital_id, state, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID.String(), sess.HospitalID.String(), string(sess.State), data,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM match_sessions WHERE id = $1`,
		sessionID.String(),
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) Update(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE match_sessions
		SET state = $2, data = $3, updated_at = $4
		WHERE id = $1`,
		sess.ID.String(), string(sess.State), data, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM match_sessions WHERE id = $1`,
		sessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
