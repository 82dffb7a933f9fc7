// Package observability records conversion outcomes in a SQLite store so a
// batch run leaves an inspectable trail: which documents went through direct
// extraction, which escalated to OCR, which were reprocessed by the quality
// gate, and which degraded to an error artifact.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a document left the pipeline.
type Outcome string

const (
	OutcomeDirect      Outcome = "direct"      // direct extraction passed the strict check
	OutcomeOCR         Outcome = "ocr"         // escalated to OCR
	OutcomeDegraded    Outcome = "degraded"    // error artifact substituted
	OutcomeReprocessed Outcome = "reprocessed" // quality gate forced a second OCR pass
	OutcomeFailed      Outcome = "failed"      // no artifact could be written
)

// Event is one recorded conversion outcome.
type Event struct {
	ID        string
	Source    string
	Artifact  string
	Outcome   Outcome
	Detail    string
	CreatedAt time.Time
}

// Store writes conversion events to a SQLite database.
type Store struct {
	db    *sql.DB
	newID func() string
}

// NewStore creates a store backed by the given database. Call Init once at
// startup before logging.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		newID: func() string { return "evt_" + uuid.NewString() },
	}
}

// Init creates the conversion_events table if it doesn't exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversion_events (
			event_id   TEXT PRIMARY KEY,
			source     TEXT NOT NULL,
			artifact   TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			detail     TEXT,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversion_created ON conversion_events (created_at);
	`)
	if err != nil {
		return fmt.Errorf("init conversion_events: %w", err)
	}
	return nil
}

// LogConversion records an event. Non-blocking: errors are logged via slog
// but do not propagate, so a failing observability store never blocks a
// conversion.
func (s *Store) LogConversion(ctx context.Context, event Event) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversion_events (event_id, source, artifact, outcome, detail, created_at)
		VALUES (?,?,?,?,?,?)`,
		s.newID(), event.Source, event.Artifact, string(event.Outcome), event.Detail, time.Now().Unix())
	if err != nil {
		slog.Error("conversion event log failed", "error", err, "source", event.Source, "outcome", event.Outcome)
	}
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, source, artifact, outcome, detail, created_at
		FROM conversion_events ORDER BY created_at DESC, event_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var outcome string
		var ts int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Artifact, &outcome, &e.Detail, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Outcome = Outcome(outcome)
		e.CreatedAt = time.Unix(ts, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Cleanup deletes events older than the retention window. Zero days means no
// cleanup.
func Cleanup(ctx context.Context, db *sql.DB, days int) error {
	if days <= 0 {
		return nil
	}
	cutoff := time.Now().Unix() - int64(days*86400)
	if _, err := db.ExecContext(ctx, `DELETE FROM conversion_events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup conversion_events: %w", err)
	}
	return nil
}
