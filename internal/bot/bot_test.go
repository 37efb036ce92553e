package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"slotbot/internal/config"
	"slotbot/internal/events"
	"slotbot/internal/repository"
	"slotbot/internal/service"
	"slotbot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID = int64(42)
	testUserID  = int64(100)
	mondayKey   = "2025-06-02"
)

// recordingSender captures outbound traffic instead of calling Telegram.
type recordingSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.messages = append(r.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (r *recordingSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (r *recordingSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (r *recordingSender) GetSelf() tgbotapi.User { return tgbotapi.User{UserName: "slotbot_test"} }

func (r *recordingSender) StopReceivingUpdates() {}

func (r *recordingSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.messages, "no message was sent")
	return r.messages[len(r.messages)-1]
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.requests = nil
}

func newTestBot(t *testing.T) (*Bot, *recordingSender) {
	t.Helper()
	logger := zerolog.Nop()

	store, err := storage.NewCalendarStore(filepath.Join(t.TempDir(), "slots.json"), &logger)
	require.NoError(t, err)

	pending := repository.NewMemoryPendingRegistry(time.Hour)
	bus := events.NewBus()
	booking := service.NewBookingService(store, pending, bus, &logger)
	admin := service.NewAdminService(store, testAdminID, &logger)

	cfg := &config.Config{
		Booking: config.BookingConfig{AdminID: testAdminID, HorizonDays: 14, RateLimitPerSec: 100, RateLimitBurst: 100},
		Info: config.InfoConfig{
			Greeting:   "Добро пожаловать!",
			PricesText: "Прайс",
			Address:    "Адрес",
			MapURL:     "https://maps.example",
			Contact:    "Контакты",
		},
	}

	sender := &recordingSender{}
	return NewBot(sender, cfg, booking, admin, pending, nil, nil, &logger), sender
}

func userMsg(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: userID, FirstName: "Иван"},
		Chat: &tgbotapi.Chat{ID: userID},
	}
}

func callback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: userID, FirstName: "Иван"},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: userID}},
	}
}

func TestStartCommandShowsGreeting(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	msg := userMsg(testUserID, "/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleMessage(ctx, msg)

	got := sender.lastMessage(t)
	assert.Equal(t, "Добро пожаловать!", got.Text)

	kb, ok := got.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.Keyboard, 3, "customers see no admin row")
}

func TestAdminSeesAdminRow(t *testing.T) {
	b, sender := newTestBot(t)

	msg := userMsg(testAdminID, "/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleMessage(context.Background(), msg)

	kb, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.Keyboard, 4)
}

func TestBookingDialogue(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	// Day pick shows the free hours.
	b.handleCallback(ctx, callback(testUserID, "day|"+mondayKey))
	got := sender.lastMessage(t)
	assert.Equal(t, "Выберите время:", got.Text)
	picker, ok := got.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 3)

	// Time pick asks for the phone number.
	sender.reset()
	b.handleCallback(ctx, callback(testUserID, fmt.Sprintf("time|%s|18:00", mondayKey)))
	assert.Contains(t, sender.lastMessage(t).Text, "номер телефона")

	// Plain text is blocked while the phone is awaited.
	sender.reset()
	b.handleMessage(ctx, userMsg(testUserID, "вот мой номер 123"))
	assert.Contains(t, sender.lastMessage(t).Text, "кнопкой ниже")

	// The contact confirms the booking.
	sender.reset()
	contact := userMsg(testUserID, "")
	contact.Contact = &tgbotapi.Contact{PhoneNumber: "+79990000000"}
	b.handleMessage(ctx, contact)
	confirmation := sender.lastMessage(t)
	assert.Contains(t, confirmation.Text, "Запись подтверждена")
	assert.Contains(t, confirmation.Text, "18:00")

	// The booked hour disappears from the next customer's picker.
	sender.reset()
	b.handleCallback(ctx, callback(200, "day|"+mondayKey))
	picker, ok = sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 2)
}

func TestContactWithoutSelection(t *testing.T) {
	b, sender := newTestBot(t)

	contact := userMsg(testUserID, "")
	contact.Contact = &tgbotapi.Contact{PhoneNumber: "+79990000000"}
	b.handleMessage(context.Background(), contact)

	assert.Contains(t, sender.lastMessage(t).Text, "Начните запись заново")
}

func TestTakenSlotOffersAlternatives(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	// First user takes 18:00.
	b.handleCallback(ctx, callback(testUserID, fmt.Sprintf("time|%s|18:00", mondayKey)))
	contact := userMsg(testUserID, "")
	contact.Contact = &tgbotapi.Contact{PhoneNumber: "+79990000000"}
	b.handleMessage(ctx, contact)

	// Second user clicks the same, now stale, button.
	sender.reset()
	b.handleCallback(ctx, callback(200, fmt.Sprintf("time|%s|18:00", mondayKey)))
	got := sender.lastMessage(t)
	assert.Contains(t, got.Text, "уже занято")
	picker, ok := got.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 2, "remaining free hours are re-offered")
}

func TestCancelBookingCallback(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	b.handleCallback(ctx, callback(testUserID, fmt.Sprintf("time|%s|19:00", mondayKey)))
	contact := userMsg(testUserID, "")
	contact.Contact = &tgbotapi.Contact{PhoneNumber: "+79990000000"}
	b.handleMessage(ctx, contact)

	sender.reset()
	b.handleCallback(ctx, callback(testUserID, fmt.Sprintf("cancel|%s|19:00", mondayKey)))
	assert.Contains(t, sender.lastMessage(t).Text, "Запись отменена")

	sender.reset()
	b.handleMessage(ctx, userMsg(testUserID, btnMyBookings))
	assert.Contains(t, sender.lastMessage(t).Text, "нет активных записей")
}

func TestAdminToggleCallback(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	b.handleCallback(ctx, callback(testAdminID, "admin_day|"+mondayKey))
	grid, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, grid.InlineKeyboard, 12)

	// Closing 18:00 removes it from the customer picker.
	sender.reset()
	b.handleCallback(ctx, callback(testAdminID, fmt.Sprintf("toggle|%s|18:00", mondayKey)))

	sender.reset()
	b.handleCallback(ctx, callback(testUserID, "day|"+mondayKey))
	picker, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 2)
}

func TestToggleIgnoredForNonAdmin(t *testing.T) {
	b, sender := newTestBot(t)
	ctx := context.Background()

	b.handleCallback(ctx, callback(testUserID, fmt.Sprintf("toggle|%s|18:00", mondayKey)))

	sender.reset()
	b.handleCallback(ctx, callback(200, "day|"+mondayKey))
	picker, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 3, "slot state is unchanged")
}

func TestDayPickerHorizon(t *testing.T) {
	b, sender := newTestBot(t)

	b.handleMessage(context.Background(), userMsg(testUserID, btnBook))
	picker, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, picker.InlineKeyboard, 14)
}
