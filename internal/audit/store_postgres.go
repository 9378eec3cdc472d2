package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "onboard/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (occurred_at, actor_id, subject, owner_id, action, decision, reason, client, ip_prefix, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		event.Timestamp,
		nullableUUID(event.ActorID),
		event.Subject,
		nullableUUID(event.OwnerID),
		string(event.Action),
		event.Decision,
		event.Reason,
		event.Client,
		event.IPPrefix,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, actor_id, subject, owner_id, action, decision, reason, client, ip_prefix, request_id
		FROM audit_events
		WHERE subject = $1
		ORDER BY occurred_at, id
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e            Event
			actor, owner uuid.NullUUID
			action       string
		)
		if err := rows.Scan(&e.Timestamp, &actor, &e.Subject, &owner, &action,
			&e.Decision, &e.Reason, &e.Client, &e.IPPrefix, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		if actor.Valid {
			e.ActorID = id.UserID(actor.UUID)
		}
		if owner.Valid {
			e.OwnerID = id.UserID(owner.UUID)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullableUUID(v id.UserID) uuid.NullUUID {
	if v.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(v), Valid: true}
}
