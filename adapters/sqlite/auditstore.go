package sqlite

import (
	"context"

	"github.com/artpar/rpcgate/domain/audit"
	"github.com/artpar/rpcgate/ports"
)

// AuditStore implements ports.AuditStore using SQLite.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new SQLite audit store.
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// RecordBatch stores multiple audit events.
func (s *AuditStore) RecordBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_events (
			id, operation, outcome, username, locale, latency_ms, remote_ip, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		// Store timestamp in UTC for consistent ordering
		_, err := stmt.ExecContext(ctx,
			e.ID, e.Operation, e.Outcome, e.Username, e.Locale,
			e.LatencyMs, e.RemoteIP, e.Timestamp.UTC(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Recent returns the most recent events, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, outcome, username, locale, latency_ms, remote_ip, timestamp
		FROM audit_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(
			&e.ID, &e.Operation, &e.Outcome, &e.Username, &e.Locale,
			&e.LatencyMs, &e.RemoteIP, &e.Timestamp,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Ensure interface compliance.
var _ ports.AuditStore = (*AuditStore)(nil)
