package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slotbot/internal/service"
	"slotbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	parts := strings.Split(cb.Data, "|")

	switch parts[0] {
	case "day":
		if len(parts) == 2 {
			b.handleDayChosen(ctx, cb, parts[1])
			return
		}
	case "time":
		if len(parts) == 3 {
			b.handleTimeChosen(ctx, cb, parts[1], parts[2])
			return
		}
	case "cancel":
		if len(parts) == 3 {
			b.handleCancelBooking(ctx, cb, parts[1], parts[2])
			return
		}
	case "admin_day":
		if len(parts) == 2 {
			b.handleAdminDay(ctx, cb, parts[1])
			return
		}
	case "toggle":
		if len(parts) == 3 {
			b.handleToggle(ctx, cb, parts[1], parts[2])
			return
		}
	case "back_to_main":
		reply := tgbotapi.NewMessage(cb.Message.Chat.ID, "Главное меню")
		reply.ReplyMarkup = b.mainKeyboard(cb.From.ID)
		b.send(reply)
		b.answerCallback(cb.ID, "")
		return
	}

	b.answerCallback(cb.ID, "")
}

func (b *Bot) handleDayChosen(ctx context.Context, cb *tgbotapi.CallbackQuery, day string) {
	defer b.answerCallback(cb.ID, "")
	chatID := cb.Message.Chat.ID

	free, err := b.booking.ChooseDay(ctx, cb.From.ID, day)
	if err != nil {
		reply := tgbotapi.NewMessage(chatID, userMessage(err))
		reply.ReplyMarkup = b.mainKeyboard(cb.From.ID)
		b.send(reply)
		return
	}

	if len(free) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "⛔ Свободных слотов нет."))
		return
	}

	reply := tgbotapi.NewMessage(chatID, "Выберите время:")
	reply.ReplyMarkup = timePicker(day, free)
	b.send(reply)
}

func (b *Bot) handleTimeChosen(ctx context.Context, cb *tgbotapi.CallbackQuery, day, hour string) {
	defer b.answerCallback(cb.ID, "")
	chatID := cb.Message.Chat.ID

	if err := b.booking.ChooseTime(ctx, cb.From.ID, day, hour); err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			b.offerRefreshedHours(ctx, chatID, day)
			return
		}
		b.send(tgbotapi.NewMessage(chatID, userMessage(err)))
		return
	}

	reply := tgbotapi.NewMessage(chatID, "Для подтверждения записи отправьте ваш номер телефона кнопкой ниже 👇")
	reply.ReplyMarkup = phoneKeyboard()
	b.send(reply)
}

// offerRefreshedHours re-reads availability after a lost race so the
// user immediately sees what is still free.
func (b *Bot) offerRefreshedHours(ctx context.Context, chatID int64, day string) {
	free, err := b.booking.ListOpenHours(ctx, day)
	if err != nil || len(free) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "⛔ Это время уже занято, свободных слотов не осталось."))
		return
	}

	reply := tgbotapi.NewMessage(chatID, "⛔ Это время уже занято. Выберите другое:")
	reply.ReplyMarkup = timePicker(day, free)
	b.send(reply)
}

func (b *Bot) handleCancelBooking(ctx context.Context, cb *tgbotapi.CallbackQuery, day, hour string) {
	chatID := cb.Message.Chat.ID

	appt, err := b.booking.CancelBooking(ctx, cb.From.ID, day, hour)
	if err != nil {
		reply := tgbotapi.NewMessage(chatID, userMessage(err))
		reply.ReplyMarkup = b.mainKeyboard(cb.From.ID)
		b.send(reply)
		b.answerCallback(cb.ID, "")
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCancelled.Inc()
	}

	text := fmt.Sprintf("✅ Запись отменена!\n📅 %s\n⏰ %s", worker.FormatDayRU(appt.Day), appt.Hour)
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = b.mainKeyboard(cb.From.ID)
	b.send(reply)
	b.answerCallback(cb.ID, "Запись отменена")
}

func (b *Bot) handleAdminDay(ctx context.Context, cb *tgbotapi.CallbackQuery, day string) {
	defer b.answerCallback(cb.ID, "")

	statuses, err := b.admin.ListOpenStatus(ctx, cb.From.ID, day)
	if err != nil {
		return
	}

	reply := tgbotapi.NewMessage(cb.Message.Chat.ID, fmt.Sprintf("Открыть / закрыть слоты на %s:", worker.FormatDayRU(day)))
	reply.ReplyMarkup = toggleGrid(day, statuses)
	b.send(reply)
}

func (b *Bot) handleToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, day, hour string) {
	if err := b.admin.ToggleHour(ctx, cb.From.ID, day, hour); err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	if b.metrics != nil {
		b.metrics.SlotToggles.Inc()
	}

	// Redraw the grid in place so the admin sees the new state.
	statuses, err := b.admin.ListOpenStatus(ctx, cb.From.ID, day)
	if err == nil {
		grid := toggleGrid(day, statuses)
		edit := tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID, grid)
		if _, err := b.sender.Request(edit); err != nil {
			b.logger.Error().Err(err).Msg("edit toggle grid failed")
		}
	}
	b.answerCallback(cb.ID, "")
}
