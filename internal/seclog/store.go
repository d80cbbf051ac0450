package seclog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock
// implements it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists security events in the security_events table.
type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, ev *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO security_events (event_time, event_type, severity, user_id, ip, metadata)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, ev.Timestamp, ev.EventType, string(ev.Severity), ev.UserID, ev.IP, map[string]string(ev.Metadata))
	if err != nil {
		return fmt.Errorf("failed to insert security event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context, since time.Time) (map[Severity]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT severity, COUNT(*)
		FROM security_events
		WHERE event_time >= $1
		GROUP BY severity
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate security events: %w", err)
	}
	defer rows.Close()

	stats := make(map[Severity]int64)
	for rows.Next() {
		var severity string
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		stats[Severity(severity)] = count
	}
	return stats, rows.Err()
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT event_time, event_type, severity, COALESCE(user_id, ''), COALESCE(ip, ''), metadata
		FROM security_events
		ORDER BY event_time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent security events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var severity string
		var md map[string]string
		if err := rows.Scan(&ev.Timestamp, &ev.EventType, &severity, &ev.UserID, &ev.IP, &md); err != nil {
			return nil, err
		}
		ev.Severity = Severity(severity)
		ev.Metadata = md
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM security_events WHERE event_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old security events: %w", err)
	}
	return tag.RowsAffected(), nil
}
