// Package worker delivers admin notifications asynchronously so the
// user-facing booking transaction never blocks on Telegram delivery.
package worker

import (
	"context"
	"fmt"
	"time"

	"slotbot/internal/domain"
	"slotbot/internal/events"
	"slotbot/internal/metrics"
	"slotbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier consumes booking events from a bounded queue and sends the
// admin a message per event. The queue is owned by the process
// lifecycle: on shutdown in-flight notifications are cancelled
// explicitly via ctx, not silently leaked.
type Notifier struct {
	sender  domain.TelegramSender
	adminID int64
	retry   RetryPolicy
	queue   chan string
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewNotifier(sender domain.TelegramSender, adminID int64, retry RetryPolicy, m *metrics.Metrics, logger *zerolog.Logger) *Notifier {
	if retry.MaxRetries <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &Notifier{
		sender:  sender,
		adminID: adminID,
		retry:   retry,
		queue:   make(chan string, models.NotifyQueueSize),
		metrics: m,
		logger:  logger,
	}
}

func (n *Notifier) countOutcome(outcome string) {
	if n.metrics != nil {
		n.metrics.NotificationsTotal.WithLabelValues(outcome).Inc()
	}
}

// Subscribe wires the notifier to booking events on the bus.
func (n *Notifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventBookingCreated, func(ev *events.Event) error {
		payload, err := events.DecodeBookingPayload(ev)
		if err != nil {
			n.logger.Error().Err(err).Str("event", ev.Type).Msg("notifier: decode payload")
			return nil
		}
		n.Enqueue(formatCreated(payload))
		return nil
	})
	bus.Subscribe(events.EventBookingCancelled, func(ev *events.Event) error {
		payload, err := events.DecodeBookingPayload(ev)
		if err != nil {
			n.logger.Error().Err(err).Str("event", ev.Type).Msg("notifier: decode payload")
			return nil
		}
		n.Enqueue(formatCancelled(payload))
		return nil
	})
}

// Enqueue schedules a notification without blocking. When the queue is
// full the notification is dropped with a log line.
func (n *Notifier) Enqueue(text string) {
	select {
	case n.queue <- text:
	default:
		n.countOutcome("dropped")
		n.logger.Warn().Msg("notifier: queue full, notification dropped")
	}
}

// Start runs the delivery loop until ctx is done.
func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info().Msg("notifier: started")
	defer n.logger.Info().Msg("notifier: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			n.deliver(ctx, text)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, text string) {
	for attempt := 1; ; attempt++ {
		_, err := n.sender.Send(tgbotapi.NewMessage(n.adminID, text))
		if err == nil {
			n.countOutcome("delivered")
			return
		}
		if attempt >= n.retry.MaxRetries {
			n.countOutcome("failed")
			n.logger.Error().Err(err).Int("attempts", attempt).Msg("notifier: delivery failed, dropping")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(n.retry.Delay(attempt)):
		}
	}
}

func formatCreated(p events.BookingEventPayload) string {
	return fmt.Sprintf(
		"🆕 НОВАЯ ЗАПИСЬ!\n👤 %s\n📅 %s\n⏰ %s\n📞 %s",
		p.Name, FormatDayRU(p.Day), p.Hour, p.Phone,
	)
}

func formatCancelled(p events.BookingEventPayload) string {
	return fmt.Sprintf(
		"🗑 ЗАПИСЬ ОТМЕНЕНА\n👤 %s\n📅 %s\n⏰ %s\n📞 %s\nℹ️ Клиент отменил запись самостоятельно",
		p.Name, FormatDayRU(p.Day), p.Hour, p.Phone,
	)
}

// FormatDayRU renders an ISO day key as "02.01 (Пн)". Unparsable keys
// are returned as-is.
func FormatDayRU(dayKey string) string {
	date, err := time.Parse(models.DayKeyFormat, dayKey)
	if err != nil {
		return dayKey
	}
	weekday := int(date.Weekday()+6) % 7
	return fmt.Sprintf("%s (%s)", date.Format("02.01"), models.WeekdaysRU[weekday])
}
