package service

import (
	"context"
	"sort"
	"time"

	"slotbot/internal/domain"
	"slotbot/internal/events"
	"slotbot/internal/models"
	"slotbot/internal/slots"

	"github.com/rs/zerolog"
)

// BookingService drives the customer reservation dialogue:
// day -> time -> phone -> confirmed. All calendar mutations run inside
// store.Update so the availability check and the write are one
// transaction.
type BookingService struct {
	store    domain.CalendarStore
	pending  domain.PendingRegistry
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(store domain.CalendarStore, pending domain.PendingRegistry, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		pending:  pending,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ChooseDay initializes the day on first touch and returns the hours
// still bookable, ascending. Returns ErrAlreadyBooked when the user
// already holds an appointment that day.
func (s *BookingService) ChooseDay(ctx context.Context, userID int64, day string) ([]string, error) {
	var free []string
	err := s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, day)
		if err != nil {
			return err
		}
		if _, booked := d.AppointmentBy(userID); booked {
			return ErrAlreadyBooked
		}
		free = d.FreeHours()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

// ChooseTime validates the hour and records the user's pending
// selection. Validation runs under the store lock, and is repeated at
// SubmitPhone: the slot can still be taken between the two steps.
func (s *BookingService) ChooseTime(ctx context.Context, userID int64, day, hour string) error {
	err := s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, day)
		if err != nil {
			return err
		}
		if !d.IsOpen(hour) || d.IsBooked(hour) {
			return ErrSlotUnavailable
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.pending.Set(ctx, &models.PendingSelection{UserID: userID, Day: day, Hour: hour})
}

// SubmitPhone consumes the user's pending selection and commits the
// appointment. The selection is taken atomically up front, so every
// outcome - success, slot gone, already booked - leaves no pending
// state behind and the caller always learns the specific reason.
func (s *BookingService) SubmitPhone(ctx context.Context, userID int64, phone, name string) (*models.Appointment, error) {
	sel, err := s.pending.Take(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("pending registry take failed")
		return nil, ErrNothingPending
	}
	if sel == nil {
		return nil, ErrNothingPending
	}

	appt := models.Appointment{
		Hour:   sel.Hour,
		UserID: userID,
		Phone:  phone,
		Name:   name,
		Day:    sel.Day,
	}

	err = s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, sel.Day)
		if err != nil {
			return err
		}
		if _, booked := d.AppointmentBy(userID); booked {
			return ErrAlreadyBooked
		}
		if !d.IsOpen(sel.Hour) || d.IsBooked(sel.Hour) {
			return ErrSlotUnavailable
		}
		d.Booked = append(d.Booked, appt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.EventBookingCreated, appt)
	return &appt, nil
}

// CancelPending drops the user's in-progress selection, if any. No
// durable state changes.
func (s *BookingService) CancelPending(ctx context.Context, userID int64) error {
	return s.pending.Clear(ctx, userID)
}

// CancelBooking removes the appointment matching (user, day, hour) and
// returns its snapshot for the cancellation notice.
func (s *BookingService) CancelBooking(ctx context.Context, userID int64, day, hour string) (*models.Appointment, error) {
	var removed models.Appointment
	err := s.store.Update(ctx, func(cal models.Calendar) error {
		d, err := s.store.EnsureDay(cal, day)
		if err != nil {
			return err
		}
		for i, a := range d.Booked {
			if a.UserID == userID && a.Hour == hour {
				removed = a
				d.Booked = append(d.Booked[:i], d.Booked[i+1:]...)
				return nil
			}
		}
		return ErrBookingNotFound
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.EventBookingCancelled, removed)
	return &removed, nil
}

// ListOpenHours is a read-only availability query. An uninitialized day
// is answered from the slot policy without persisting anything.
func (s *BookingService) ListOpenHours(ctx context.Context, day string) ([]string, error) {
	cal := s.store.Load(ctx)
	if d, ok := cal[day]; ok {
		return d.FreeHours(), nil
	}

	d := models.Day{}
	if date, err := parseDayKey(day); err == nil {
		d.Open = slots.DefaultOpenHours(date)
	} else {
		return nil, err
	}
	return d.FreeHours(), nil
}

// ListUserBookings returns the user's appointments across the whole
// calendar, days ascending, insertion order within a day.
func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]models.Appointment, error) {
	cal := s.store.Load(ctx)

	keys := make([]string, 0, len(cal))
	for key := range cal {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var bookings []models.Appointment
	for _, key := range keys {
		for _, a := range cal[key].Booked {
			if a.UserID == userID {
				bookings = append(bookings, a)
			}
		}
	}
	return bookings, nil
}

func parseDayKey(day string) (time.Time, error) {
	return time.Parse(models.DayKeyFormat, day)
}

func (s *BookingService) publish(eventType string, appt models.Appointment) {
	payload := events.BookingEventPayload{
		Day:    appt.Day,
		Hour:   appt.Hour,
		UserID: appt.UserID,
		Phone:  appt.Phone,
		Name:   appt.Name,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("day", appt.Day).Msg("publish event error")
	}
}
