package service

import (
	"context"
	"sort"

	"slotbot/internal/domain"
	"slotbot/internal/models"
	"slotbot/internal/slots"

	"github.com/rs/zerolog"
)

// AdminService gates slot management and booking review behind the
// single configured administrator identity. Non-admin callers get
// ErrUnauthorized with no further detail.
type AdminService struct {
	store   domain.CalendarStore
	adminID int64
	logger  *zerolog.Logger
}

func NewAdminService(store domain.CalendarStore, adminID int64, logger *zerolog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		adminID: adminID,
		logger:  logger,
	}
}

func (s *AdminService) IsAdmin(userID int64) bool {
	return userID == s.adminID
}

// ListOpenStatus reports every catalog hour with its open flag for the
// day, initializing the day on first touch like the booking flow does.
func (s *AdminService) ListOpenStatus(ctx context.Context, callerID int64, day string) ([]models.HourStatus, error) {
	if !s.IsAdmin(callerID) {
		return nil, ErrUnauthorized
	}

	var statuses []models.HourStatus
	err := s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, day)
		if err != nil {
			return err
		}
		for _, hour := range slots.AllHours() {
			statuses = append(statuses, models.HourStatus{Hour: hour, Open: d.IsOpen(hour)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// ToggleHour opens a closed hour or closes an open one. Closing an hour
// with an existing appointment leaves the appointment intact.
func (s *AdminService) ToggleHour(ctx context.Context, callerID int64, day, hour string) error {
	if !s.IsAdmin(callerID) {
		return ErrUnauthorized
	}
	if !slots.InCatalog(hour) {
		return ErrHourNotInCatalog
	}

	return s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, day)
		if err != nil {
			return err
		}
		slots.Toggle(d, hour)
		s.logger.Info().Str("day", day).Str("hour", hour).Bool("open", d.IsOpen(hour)).Msg("slot toggled")
		return nil
	})
}

// ListAllBookings returns every appointment, days ascending, stored
// order within a day.
func (s *AdminService) ListAllBookings(ctx context.Context, callerID int64) ([]models.Appointment, error) {
	if !s.IsAdmin(callerID) {
		return nil, ErrUnauthorized
	}

	cal := s.store.Load(ctx)

	keys := make([]string, 0, len(cal))
	for key := range cal {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var bookings []models.Appointment
	for _, key := range keys {
		bookings = append(bookings, cal[key].Booked...)
	}
	return bookings, nil
}
