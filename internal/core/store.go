package core

// store.go implements the Postgres-backed Persister. Each browser session
// maps to one row in workspace_sessions keyed by the session cookie's id.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// sessionSchema creates the session table if it does not exist.
// Applied once at startup via PGStore.Init.
const sessionSchema = `
CREATE TABLE IF NOT EXISTS workspace_sessions (
    session_id TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore persists session payloads in Postgres.
type PGStore struct {
	db DBTX
}

// NewPGStore creates a PGStore on the given connection or pool.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// Init creates the session table.
func (s *PGStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, sessionSchema); err != nil {
		return fmt.Errorf("create workspace_sessions: %w", err)
	}
	return nil
}

// Load returns the payload for a session, or (nil, nil) when absent.
func (s *PGStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM workspace_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return payload, nil
}

// Save upserts the payload for a session.
func (s *PGStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO workspace_sessions (session_id, payload)
		VALUES ($1, $2)
		ON CONFLICT (session_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		sessionID, payload,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the persisted payload for a session.
func (s *PGStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM workspace_sessions WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
