package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/clawdock/internal/hooks"
)

// Fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded lifecycle event.
type Entry struct {
	ID        string
	Kind      string
	Data      map[string]any
	CreatedAt time.Time
}

// Journal records lifecycle events so that `clawdock history` can show what
// happened during past runs.
type Journal struct {
	db  *DB
	now func() time.Time
}

// NewJournal creates a journal on top of db.
func NewJournal(db *DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Record stores one event and returns its id.
func (j *Journal) Record(ctx context.Context, kind string, data map[string]any) (string, error) {
	var encoded sql.NullString
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("encoding %s data: %w", kind, err)
		}
		encoded = sql.NullString{String: string(b), Valid: true}
	}

	id := uuid.NewString()
	_, err := j.db.sql.ExecContext(ctx,
		"INSERT INTO events (id, kind, data, created_at) VALUES (?, ?, ?, ?)",
		id, kind, encoded, j.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("recording %s: %w", kind, err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first. A non-empty kind filters
// by event name.
func (j *Journal) Recent(ctx context.Context, kind string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := "SELECT id, kind, data, created_at FROM events"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			data    sql.NullString
			created string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &data, &created); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if data.Valid {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("decoding event %s: %w", e.ID, err)
			}
		}
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parsing event %s time: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and reports how many were removed.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.sql.ExecContext(ctx,
		"DELETE FROM events WHERE created_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return res.RowsAffected()
}

// Handler adapts the journal to the hook system.
func (j *Journal) Handler() hooks.Handler {
	return func(ctx context.Context, p hooks.Payload) error {
		_, err := j.Record(ctx, p.Event, p.Data)
		return err
	}
}
