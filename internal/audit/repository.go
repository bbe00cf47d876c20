// Package audit records lead forwarding, property sync, and drift events in
// Postgres so operators can answer "what happened to this lead" without
// digging through logs.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit log row.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	EventName  string          `json:"eventName"`
	Tenant     string          `json:"tenant,omitempty"`
	Subject    string          `json:"subject,omitempty"`
	Success    bool            `json:"success"`
	Detail     json.RawMessage `json:"detail"`
	OccurredAt time.Time       `json:"occurredAt"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Store persists audit entries.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Repository is the Postgres-backed audit store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit entry.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if len(entry.Detail) == 0 {
		entry.Detail = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO audit_log (id, event_name, tenant, subject, success, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.EventName, entry.Tenant, entry.Subject, entry.Success, entry.Detail, entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, event_name, tenant, subject, success, detail, occurred_at, recorded_at
		FROM audit_log
		ORDER BY recorded_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID, &entry.EventName, &entry.Tenant, &entry.Subject,
			&entry.Success, &entry.Detail, &entry.OccurredAt, &entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// NoopStore is used when no database is configured; the audit trail then
// lives only in the structured logs.
type NoopStore struct{}

func (NoopStore) Insert(context.Context, Entry) error { return nil }

func (NoopStore) ListRecent(context.Context, int) ([]Entry, error) { return nil, nil }
