package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	audit "signup/pkg/platform/audit"
)

// Schema creates the registration audit table. Applied by EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS registration_audit (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	category    TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	session_id  TEXT NOT NULL DEFAULT '',
	username    TEXT NOT NULL DEFAULT '',
	country     TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT '',
	device      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS registration_audit_session_idx ON registration_audit (session_id);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts one event. Re-appending the same ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO registration_audit
			(id, action, category, occurred_at, session_id, username, country, reason, request_id, client_ip, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		string(event.Category()),
		event.Timestamp,
		event.SessionID,
		event.Username,
		event.Country,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("append audit event (%s): %w", pqErr.Code.Name(), err)
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySession returns a session's events ordered by time.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, occurred_at, session_id, username, country, reason, request_id, client_ip, device
		FROM registration_audit
		WHERE session_id = $1
		ORDER BY occurred_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.ID, &action, &e.Timestamp, &e.SessionID, &e.Username,
			&e.Country, &e.Reason, &e.RequestID, &e.ClientIP, &e.Device); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
