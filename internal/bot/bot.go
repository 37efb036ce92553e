// Package bot is the Telegram transport layer: it turns inbound updates
// into booking workflow calls and renders the results as messages and
// keyboards. All slot/booking decisions live in the service layer.
package bot

import (
	"context"
	"os"
	"time"

	"slotbot/internal/config"
	"slotbot/internal/domain"
	"slotbot/internal/history"
	"slotbot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	sender  domain.TelegramSender
	cfg     *config.Config
	booking domain.BookingWorkflow
	admin   domain.AdminManager
	pending domain.PendingRegistry
	journal *history.Journal
	metrics *metrics.Metrics
	limiter *userLimiter
	logger  *zerolog.Logger
}

func NewBot(
	sender domain.TelegramSender,
	cfg *config.Config,
	booking domain.BookingWorkflow,
	admin domain.AdminManager,
	pending domain.PendingRegistry,
	journal *history.Journal,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		sender:  sender,
		cfg:     cfg,
		booking: booking,
		admin:   admin,
		pending: pending,
		journal: journal,
		metrics: m,
		limiter: newUserLimiter(cfg.Booking.RateLimitPerSec, cfg.Booking.RateLimitBurst),
		logger:  logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.sender.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.sender.GetSelf().UserName).Msg("authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bot stopping")
			b.sender.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdatesProcessed.Inc()
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	l := b.logger.With().Str("request_id", uuid.New().String()).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		switch {
		case update.Message != nil:
			userID = update.Message.From.ID
		case update.CallbackQuery != nil:
			userID = update.CallbackQuery.From.ID
		}
		if userID == 0 {
			return
		}

		if !b.admin.IsAdmin(userID) && !b.limiter.allow(userID) {
			b.logger.Warn().Int64("user_id", userID).Msg("rate limit exceeded")
			if update.Message != nil {
				b.send(tgbotapi.NewMessage(update.Message.Chat.ID, "⚠️ Слишком много сообщений. Пожалуйста, подождите немного."))
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallback(updateCtx, update.CallbackQuery)
			return
		}
		if update.Message != nil {
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.logger.Error().Err(err).Msg("send message failed")
	}
}

func (b *Bot) answerCallback(id string, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error().Err(err).Msg("answer callback failed")
	}
}
