package service

import "errors"

// Domain outcomes returned to the transport layer. These are values, not
// failures: the bot maps each one to user-facing guidance.
var (
	// ErrAlreadyBooked - the user already holds an appointment that day.
	ErrAlreadyBooked = errors.New("user already booked this day")

	// ErrSlotUnavailable - the hour is not open or was taken in the
	// meantime.
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrBookingNotFound - a cancellation target does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNothingPending - a phone arrived with no selection to confirm.
	ErrNothingPending = errors.New("no pending selection")

	// ErrUnauthorized - a non-administrator invoked an admin operation.
	ErrUnauthorized = errors.New("administrator rights required")

	// ErrHourNotInCatalog - an hour label outside the fixed catalog.
	ErrHourNotInCatalog = errors.New("hour is not in the catalog")
)
