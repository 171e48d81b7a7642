package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink appends security events to an append-only table. The table
// carries no update or delete paths; retention is an operational concern
// handled outside this process.
//
// Expected schema:
//
//	CREATE TABLE security_events (
//	    id          BIGSERIAL PRIMARY KEY,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    event_type  TEXT        NOT NULL,
//	    actor_id    TEXT        NOT NULL,
//	    actor_role  TEXT,
//	    target_type TEXT,
//	    target_id   TEXT,
//	    outcome     TEXT        NOT NULL,
//	    metadata    JSONB
//	);
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a sink writing to the security_events table.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

const insertEventSQL = `
	INSERT INTO security_events
		(occurred_at, event_type, actor_id, actor_role, target_type, target_id, outcome, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (s *PostgresSink) Write(ctx context.Context, events []SecurityEvent) error {
	batch := &pgx.Batch{}
	for _, event := range events {
		var metadata []byte
		if len(event.Metadata) > 0 {
			var err error
			metadata, err = json.Marshal(event.Metadata)
			if err != nil {
				return fmt.Errorf("marshal event metadata: %w", err)
			}
		}
		batch.Queue(insertEventSQL,
			event.Timestamp,
			string(event.Type),
			event.ActorID,
			nullable(event.ActorRole),
			nullable(event.TargetType),
			nullable(event.TargetID),
			string(event.Outcome),
			metadata,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert security event: %w", err)
		}
	}
	return nil
}

// ListByActor returns the recorded trail for one actor, oldest first. Used by
// operators investigating an incident, not by the decision path.
func (s *PostgresSink) ListByActor(ctx context.Context, actorID string, limit int) ([]SecurityEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT occurred_at, event_type, actor_id,
		       COALESCE(actor_role, ''), COALESCE(target_type, ''), COALESCE(target_id, ''),
		       outcome, metadata
		FROM security_events
		WHERE actor_id = $1
		ORDER BY occurred_at ASC, id ASC
		LIMIT $2
	`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	var events []SecurityEvent
	for rows.Next() {
		var event SecurityEvent
		var eventType, outcome string
		var metadata []byte
		if err := rows.Scan(
			&event.Timestamp, &eventType, &event.ActorID,
			&event.ActorRole, &event.TargetType, &event.TargetID,
			&outcome, &metadata,
		); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		event.Type = EventType(eventType)
		event.Outcome = Outcome(outcome)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
