// Package history keeps an append-only sqlite journal of booking
// lifecycle events so the administrator can review what happened even
// after appointments are removed from the live calendar.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotbot/internal/events"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Entry struct {
	ID        int64
	Action    string
	Day       string
	Hour      string
	UserID    int64
	Phone     string
	Name      string
	CreatedAt time.Time
}

type Journal struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewJournal(path string, logger *zerolog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect history database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS booking_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			day TEXT NOT NULL,
			hour TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			phone TEXT,
			name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_history_day ON booking_history(day)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_history_user_id ON booking_history(user_id)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("create history schema: %w", err)
		}
	}

	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one journal row.
func (j *Journal) Record(ctx context.Context, action string, p events.BookingEventPayload) error {
	query := `INSERT INTO booking_history (action, day, hour, user_id, phone, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := j.db.ExecContext(ctx, query, action, p.Day, p.Hour, p.UserID, p.Phone, p.Name, time.Now()); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, action, day, hour, user_id, phone, name, created_at
		FROM booking_history ORDER BY id DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.Day, &e.Hour, &e.UserID, &e.Phone, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Subscribe records booking events as they happen. Journal failures are
// logged and never affect the booking flow.
func (j *Journal) Subscribe(bus *events.Bus) {
	record := func(action string) events.Handler {
		return func(ev *events.Event) error {
			payload, err := events.DecodeBookingPayload(ev)
			if err != nil {
				j.logger.Error().Err(err).Str("event", ev.Type).Msg("history: decode payload")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := j.Record(ctx, action, payload); err != nil {
				j.logger.Error().Err(err).Str("action", action).Msg("history: record failed")
			}
			return nil
		}
	}

	bus.Subscribe(events.EventBookingCreated, record("created"))
	bus.Subscribe(events.EventBookingCancelled, record("cancelled"))
}
