package bot

import (
	"fmt"
	"time"

	"slotbot/internal/models"
	"slotbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnBook          = "🛞 Записаться"
	btnMyBookings    = "❌ Отмена записи"
	btnPrices        = "💰 Цены"
	btnAddress       = "📍 Адрес"
	btnContact       = "📞 Связь"
	btnAdmin         = "⚙️ Администрирование"
	btnAdminSlots    = "🕒 Управление слотами"
	btnAdminBookings = "📅 Посмотреть записи"
	btnAdminExport   = "📊 Экспорт записей"
	btnAdminHistory  = "🧾 История"
	btnBack          = "⬅️ Назад"
	btnCancel        = "❌ Отмена"
	btnSendPhone     = "📞 Отправить номер"
)

func (b *Bot) mainKeyboard(userID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(btnBook), tgbotapi.NewKeyboardButton(btnMyBookings)},
		{tgbotapi.NewKeyboardButton(btnPrices)},
		{tgbotapi.NewKeyboardButton(btnAddress), tgbotapi.NewKeyboardButton(btnContact)},
	}
	if b.admin.IsAdmin(userID) {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnAdmin)})
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAdminSlots)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAdminBookings)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAdminExport), tgbotapi.NewKeyboardButton(btnAdminHistory)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(btnSendPhone)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// dayPicker offers the rolling booking horizon, one day per row.
// prefix is "day" for customers and "admin_day" for slot management.
func (b *Bot) dayPicker(prefix string) tgbotapi.InlineKeyboardMarkup {
	today := time.Now()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, b.cfg.Booking.HorizonDays)
	for i := 0; i < b.cfg.Booking.HorizonDays; i++ {
		d := today.AddDate(0, 0, i)
		key := d.Format(models.DayKeyFormat)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(worker.FormatDayRU(key), fmt.Sprintf("%s|%s", prefix, key)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timePicker(day string, hours []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(hours))
	for _, hour := range hours {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(hour, fmt.Sprintf("time|%s|%s", day, hour)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cancelPicker(bookings []models.Appointment) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(bookings)+1)
	for _, booking := range bookings {
		label := fmt.Sprintf("⏰ %s (%s) ❌", booking.Hour, worker.FormatDayRU(booking.Day))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("cancel|%s|%s", booking.Day, booking.Hour)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Назад", "back_to_main"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// toggleGrid renders every catalog hour with its open mark for a day.
func toggleGrid(day string, statuses []models.HourStatus) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(statuses))
	for _, st := range statuses {
		mark := "❌"
		if st.Open {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", mark, st.Hour),
				fmt.Sprintf("toggle|%s|%s", day, st.Hour),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mapKeyboard(mapURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🗺 Открыть Яндекс.Карты", mapURL),
		),
	)
}
