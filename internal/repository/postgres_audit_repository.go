package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// AuditSchema creates the audit trail table
var AuditSchema = []string{
	`CREATE TABLE IF NOT EXISTS audit_events (
		event_id       UUID PRIMARY KEY,
		event_type     TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		actor_id       TEXT NOT NULL,
		occurred_at    TIMESTAMPTZ NOT NULL,
		version        INT NOT NULL,
		payload        JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_aggregate
		ON audit_events (aggregate_type, aggregate_id, occurred_at DESC)`,
}

// AuditEntry is one stored event
type AuditEntry struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	ActorID       string          `json:"actor_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Version       int             `json:"version"`
	Payload       json.RawMessage `json:"payload"`
}

// DBTX is satisfied by *pgxpool.Pool, *database.PostgresDB and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresAuditRepository implements AuditRepository on PostgreSQL
type PostgresAuditRepository struct {
	db DBTX
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(db DBTX) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Append inserts the event; replays of the same event id are ignored
func (r *PostgresAuditRepository) Append(ctx context.Context, event *domain.DomainEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.append")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.EventID),
		attribute.String("event_type", string(event.EventType)),
		attribute.String("aggregate_id", event.AggregateID),
	)

	payload, err := json.Marshal(event.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_events (
			event_id, event_type, aggregate_type, aggregate_id,
			actor_id, occurred_at, version, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err = r.db.Exec(ctx, query,
		event.EventID,
		string(event.EventType),
		event.AggregateType,
		event.AggregateID,
		event.ActorID,
		event.OccurredAt,
		event.Version,
		payload,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByAggregate returns the newest events for one record
func (r *PostgresAuditRepository) ListByAggregate(ctx context.Context, aggregateType, aggregateID string, limit int) ([]*AuditEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.list_by_aggregate")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT event_id::text, event_type, aggregate_type, aggregate_id,
		       actor_id, occurred_at, version, payload
		FROM audit_events
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, aggregateType, aggregateID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(
			&e.EventID, &e.EventType, &e.AggregateType, &e.AggregateID,
			&e.ActorID, &e.OccurredAt, &e.Version, &e.Payload,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return entries, nil
}
