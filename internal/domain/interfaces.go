package domain

import (
	"context"

	"slotbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CalendarStore owns the durable calendar document.
type CalendarStore interface {
	Load(ctx context.Context) models.Calendar
	Update(ctx context.Context, fn func(cal models.Calendar) error) error
	EnsureDay(cal models.Calendar, dayKey string) (*models.Day, error)
}

// PendingRegistry tracks per-user in-progress slot selections.
type PendingRegistry interface {
	Get(ctx context.Context, userID int64) (*models.PendingSelection, error)
	Set(ctx context.Context, sel *models.PendingSelection) error
	Take(ctx context.Context, userID int64) (*models.PendingSelection, error)
	Clear(ctx context.Context, userID int64) error
}

// EventPublisher emits booking lifecycle events for async consumers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingWorkflow drives the customer-side reservation dialogue.
type BookingWorkflow interface {
	ChooseDay(ctx context.Context, userID int64, day string) ([]string, error)
	ChooseTime(ctx context.Context, userID int64, day, hour string) error
	SubmitPhone(ctx context.Context, userID int64, phone, name string) (*models.Appointment, error)
	CancelPending(ctx context.Context, userID int64) error
	CancelBooking(ctx context.Context, userID int64, day, hour string) (*models.Appointment, error)
	ListOpenHours(ctx context.Context, day string) ([]string, error)
	ListUserBookings(ctx context.Context, userID int64) ([]models.Appointment, error)
}

// AdminManager exposes the administrator-only slot and review operations.
type AdminManager interface {
	IsAdmin(userID int64) bool
	ListOpenStatus(ctx context.Context, callerID int64, day string) ([]models.HourStatus, error)
	ToggleHour(ctx context.Context, callerID int64, day, hour string) error
	ListAllBookings(ctx context.Context, callerID int64) ([]models.Appointment, error)
}

// TelegramSender is the transport surface the bot and the notifier use.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
