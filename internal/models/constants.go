package models

// DayKeyFormat is the ISO date layout used as the calendar map key.
const DayKeyFormat = "2006-01-02"

const (
	// FirstHour and LastHour bound the fixed bookable hour catalog.
	FirstHour = 10
	LastHour  = 21
)

const (
	// DefaultPendingTTL ограничивает время жизни незавершенного выбора слота
	DefaultPendingTTL = 30 * 60 // 30 минут в секундах

	// DefaultBookingHorizonDays сколько дней вперед показываем в календаре
	DefaultBookingHorizonDays = 14

	// NotifyQueueSize размер очереди уведомлений админу
	NotifyQueueSize = 64

	// RateLimitMessages количество сообщений в секунду на пользователя
	RateLimitMessages = 1

	// RateLimitBurst допустимый всплеск сообщений
	RateLimitBurst = 5
)

// WeekdaysRU are short weekday labels, Monday first, used in user-facing
// date rendering.
var WeekdaysRU = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
