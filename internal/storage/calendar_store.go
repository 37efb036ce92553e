// Package storage owns the durable calendar document: a single JSON file
// mapping ISO day keys to slot state, rewritten whole on every mutation.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"slotbot/internal/models"
	"slotbot/internal/slots"

	"github.com/rs/zerolog"
)

// CalendarStore loads and saves the calendar document. One mutex guards
// the entire load-modify-save sequence, not just the file I/O: two
// concurrent booking transactions must never both observe an hour as free.
type CalendarStore struct {
	path   string
	mu     sync.Mutex
	logger *zerolog.Logger
}

func NewCalendarStore(path string, logger *zerolog.Logger) (*CalendarStore, error) {
	if path == "" {
		return nil, fmt.Errorf("calendar store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &CalendarStore{path: path, logger: logger}, nil
}

// Load returns a snapshot of the durable calendar. A missing file means
// no data yet; a corrupt or unreadable file is logged and treated the
// same way, so a storage fault never breaks the conversation flow.
func (s *CalendarStore) Load(ctx context.Context) models.Calendar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update runs fn against the current calendar under the store lock and
// persists the result. When fn returns an error nothing is saved and the
// error is returned unchanged, so callers can abort a transaction by
// returning their domain outcome.
func (s *CalendarStore) Update(ctx context.Context, fn func(cal models.Calendar) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal := s.load()
	if err := fn(cal); err != nil {
		return err
	}
	s.save(cal)
	return nil
}

// EnsureDay inserts the day with its policy-default open hours when
// absent. Idempotent: an existing day is returned untouched.
func (s *CalendarStore) EnsureDay(cal models.Calendar, dayKey string) (*models.Day, error) {
	if day, ok := cal[dayKey]; ok {
		return day, nil
	}

	date, err := time.Parse(models.DayKeyFormat, dayKey)
	if err != nil {
		return nil, fmt.Errorf("invalid day key %q: %w", dayKey, err)
	}

	day := &models.Day{
		Open:   slots.DefaultOpenHours(date),
		Booked: []models.Appointment{},
	}
	cal[dayKey] = day
	return day, nil
}

func (s *CalendarStore) load() models.Calendar {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error().Err(err).Str("path", s.path).Msg("calendar read failed, starting empty")
		}
		return models.Calendar{}
	}

	var cal models.Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("calendar decode failed, starting empty")
		return models.Calendar{}
	}
	if cal == nil {
		cal = models.Calendar{}
	}
	return cal
}

// save writes the whole document atomically via a temp file rename.
// Failures are logged, not surfaced: persistence is best-effort.
func (s *CalendarStore) save(cal models.Calendar) {
	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		s.logger.Error().Err(err).Msg("calendar encode failed")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", tmp).Msg("calendar write failed")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("calendar rename failed")
	}
}
