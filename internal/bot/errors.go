package bot

import (
	"errors"

	"slotbot/internal/service"
)

// userMessage maps a domain outcome to the reply the user sees.
// Unauthorized deliberately gets the generic refusal: no detail leaks
// to non-admin callers.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrAlreadyBooked):
		return "⛔ Вы уже записаны на этот день. Можно записаться только один раз."
	case errors.Is(err, service.ErrSlotUnavailable):
		return "⛔ Это время уже занято или закрыто. Выберите другое время."
	case errors.Is(err, service.ErrBookingNotFound):
		return "❌ Запись не найдена."
	case errors.Is(err, service.ErrNothingPending):
		return "ℹ️ Нет записи для подтверждения. Начните запись заново."
	default:
		return "❌ Произошла ошибка при обработке запроса. Попробуйте позже."
	}
}
