package bot

import (
	"context"
	"fmt"
	"strings"

	"slotbot/internal/export"
	"slotbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		if msg.Command() == "start" {
			reply := tgbotapi.NewMessage(chatID, b.cfg.Info.Greeting)
			reply.ReplyMarkup = b.mainKeyboard(userID)
			b.send(reply)
		}
		return
	}

	if msg.Contact != nil {
		b.handleContact(ctx, msg)
		return
	}

	switch msg.Text {
	case btnBook:
		reply := tgbotapi.NewMessage(chatID, "Выберите день:")
		reply.ReplyMarkup = b.dayPicker("day")
		b.send(reply)

	case btnMyBookings:
		b.showUserBookings(ctx, userID, chatID)

	case btnPrices:
		b.send(tgbotapi.NewMessage(chatID, b.cfg.Info.PricesText))

	case btnAddress:
		reply := tgbotapi.NewMessage(chatID, b.cfg.Info.Address)
		reply.ReplyMarkup = mapKeyboard(b.cfg.Info.MapURL)
		b.send(reply)

	case btnContact:
		b.send(tgbotapi.NewMessage(chatID, b.cfg.Info.Contact))

	case btnCancel:
		if err := b.booking.CancelPending(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("cancel pending failed")
		}
		reply := tgbotapi.NewMessage(chatID, "❌ Запись отменена")
		reply.ReplyMarkup = b.mainKeyboard(userID)
		b.send(reply)

	case btnAdmin:
		if b.admin.IsAdmin(userID) {
			reply := tgbotapi.NewMessage(chatID, "⚙️ Администрирование")
			reply.ReplyMarkup = adminKeyboard()
			b.send(reply)
		}

	case btnAdminSlots:
		if b.admin.IsAdmin(userID) {
			reply := tgbotapi.NewMessage(chatID, "Выберите день:")
			reply.ReplyMarkup = b.dayPicker("admin_day")
			b.send(reply)
		}

	case btnAdminBookings:
		b.showAllBookings(ctx, userID, chatID)

	case btnAdminExport:
		b.exportBookings(ctx, userID, chatID)

	case btnAdminHistory:
		b.showHistory(ctx, userID, chatID)

	case btnBack:
		reply := tgbotapi.NewMessage(chatID, "Главное меню")
		reply.ReplyMarkup = b.mainKeyboard(userID)
		b.send(reply)

	default:
		// While a selection awaits a phone number, plain text is
		// rejected so the contact button stays the only path forward.
		sel, err := b.pending.Get(ctx, userID)
		if err == nil && sel != nil {
			reply := tgbotapi.NewMessage(chatID, "⛔ Пожалуйста, отправьте номер телефона кнопкой ниже 👇")
			reply.ReplyMarkup = phoneKeyboard()
			b.send(reply)
		}
	}
}

// handleContact finalizes the booking with the shared phone number.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	name := msg.From.FirstName
	if name == "" {
		name = "Неизвестно"
	}

	appt, err := b.booking.SubmitPhone(ctx, userID, msg.Contact.PhoneNumber, name)
	if err != nil {
		reply := tgbotapi.NewMessage(chatID, userMessage(err))
		reply.ReplyMarkup = b.mainKeyboard(userID)
		b.send(reply)
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.Inc()
	}

	text := fmt.Sprintf("✅ Запись подтверждена\n👤 %s\n📅 %s\n⏰ %s",
		appt.Name, worker.FormatDayRU(appt.Day), appt.Hour)
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = b.mainKeyboard(userID)
	b.send(reply)
}

func (b *Bot) showUserBookings(ctx context.Context, userID, chatID int64) {
	bookings, err := b.booking.ListUserBookings(ctx, userID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, userMessage(err)))
		return
	}

	if len(bookings) == 0 {
		reply := tgbotapi.NewMessage(chatID, "📅 У вас нет активных записей.")
		reply.ReplyMarkup = b.mainKeyboard(userID)
		b.send(reply)
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Подтвердите отмену 👇\n")
	for _, booking := range bookings {
		fmt.Fprintf(&sb, "• %s %s\n", worker.FormatDayRU(booking.Day), booking.Hour)
	}

	reply := tgbotapi.NewMessage(chatID, sb.String())
	reply.ReplyMarkup = cancelPicker(bookings)
	b.send(reply)
}

func (b *Bot) showAllBookings(ctx context.Context, userID, chatID int64) {
	bookings, err := b.admin.ListAllBookings(ctx, userID)
	if err != nil {
		return
	}

	if len(bookings) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Записей пока нет."))
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Записи:\n")
	currentDay := ""
	for _, booking := range bookings {
		if booking.Day != currentDay {
			currentDay = booking.Day
			fmt.Fprintf(&sb, "\n%s:\n", worker.FormatDayRU(booking.Day))
		}
		fmt.Fprintf(&sb, "⏰ %s | 👤 %s | 📞 %s\n", booking.Hour, booking.Name, booking.Phone)
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) exportBookings(ctx context.Context, userID, chatID int64) {
	bookings, err := b.admin.ListAllBookings(ctx, userID)
	if err != nil {
		return
	}

	filePath, err := export.ToExcel(b.cfg.Exports.Path, bookings)
	if err != nil {
		b.logger.Error().Err(err).Msg("export failed")
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось создать файл экспорта."))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = "📊 Экспорт записей"
	b.send(doc)
}

func (b *Bot) showHistory(ctx context.Context, userID, chatID int64) {
	if !b.admin.IsAdmin(userID) || b.journal == nil {
		return
	}

	entries, err := b.journal.Recent(ctx, 20)
	if err != nil {
		b.logger.Error().Err(err).Msg("history query failed")
		return
	}
	if len(entries) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "История пуста."))
		return
	}

	var sb strings.Builder
	sb.WriteString("🧾 Последние события:\n")
	for _, e := range entries {
		mark := "🆕"
		if e.Action == "cancelled" {
			mark = "🗑"
		}
		fmt.Fprintf(&sb, "%s %s %s | 👤 %s | 📞 %s\n", mark, worker.FormatDayRU(e.Day), e.Hour, e.Name, e.Phone)
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}
