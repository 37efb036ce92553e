package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"slotbot/internal/events"
	"slotbot/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsMirror keeps a Google Sheets tab in sync with the booking list.
// Sync is best-effort: failures are logged and never touch the booking
// transaction that triggered them.
type SheetsMirror struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zerolog.Logger
}

func NewSheetsMirror(ctx context.Context, credentialsFile, spreadsheetID string, logger *zerolog.Logger) (*SheetsMirror, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsMirror{
		service:       srv,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// TestConnection reads one cell to verify credentials and sharing.
func (m *SheetsMirror) TestConnection(ctx context.Context) error {
	_, err := m.service.Spreadsheets.Values.Get(m.spreadsheetID, "A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets connection test: %w", err)
	}
	return nil
}

// Replace overwrites the sheet with the current booking list.
func (m *SheetsMirror) Replace(ctx context.Context, bookings []models.Appointment) error {
	values := [][]interface{}{{"Дата", "Время", "Имя", "Телефон"}}
	values = append(values, BookingRows(bookings)...)

	if _, err := m.service.Spreadsheets.Values.Clear(m.spreadsheetID, "A:D", &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	body := &sheets.ValueRange{Values: values}
	_, err := m.service.Spreadsheets.Values.
		Update(m.spreadsheetID, "A1", body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}

// Subscribe refreshes the mirror after every booking event. The refresh
// runs in its own goroutine with a timeout so the event publisher is
// never blocked on the Sheets API.
func (m *SheetsMirror) Subscribe(bus *events.Bus, list func(ctx context.Context) ([]models.Appointment, error)) {
	refresh := func(ev *events.Event) error {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			bookings, err := list(ctx)
			if err != nil {
				m.logger.Error().Err(err).Msg("sheets mirror: list bookings")
				return
			}
			if err := m.Replace(ctx, bookings); err != nil {
				m.logger.Error().Err(err).Msg("sheets mirror: replace failed")
			}
		}()
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, refresh)
	bus.Subscribe(events.EventBookingCancelled, refresh)
}
