package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slotbot/internal/events"
	"slotbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender fails the first failures sends, then succeeds.
type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []string
	done     chan struct{}
}

func newFakeSender(failures int) *fakeSender {
	return &fakeSender{failures: failures, done: make(chan struct{}, 16)}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	f.done <- struct{}{}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeSender) GetSelf() tgbotapi.User { return tgbotapi.User{UserName: "test_bot"} }

func (f *fakeSender) StopReceivingUpdates() {}

func (f *fakeSender) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestNotifierDeliversBookingEvents(t *testing.T) {
	sender := newFakeSender(0)
	logger := zerolog.Nop()
	notifier := NewNotifier(sender, 42, fastRetry(), nil, &logger)

	bus := events.NewBus()
	notifier.Subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)

	payload := events.BookingEventPayload{Day: "2025-06-02", Hour: "18:00", UserID: 100, Phone: "+79990000000", Name: "Иван"}
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingCancelled, payload))

	for i := 0; i < 2; i++ {
		select {
		case <-sender.done:
		case <-time.After(2 * time.Second):
			t.Fatal("notification not delivered")
		}
	}

	sent := sender.sentTexts()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0], "НОВАЯ ЗАПИСЬ")
	assert.Contains(t, sent[0], "Иван")
	assert.Contains(t, sent[0], "02.06 (Пн)")
	assert.Contains(t, sent[0], "18:00")
	assert.Contains(t, sent[1], "ЗАПИСЬ ОТМЕНЕНА")
}

func TestNotifierRetriesThenSucceeds(t *testing.T) {
	sender := newFakeSender(2)
	logger := zerolog.Nop()
	notifier := NewNotifier(sender, 42, fastRetry(), nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)

	notifier.Enqueue("привет")

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery did not recover after transient failures")
	}
	assert.Equal(t, []string{"привет"}, sender.sentTexts())
}

func TestNotifierDropsAfterMaxRetries(t *testing.T) {
	sender := newFakeSender(100)
	logger := zerolog.Nop()
	notifier := NewNotifier(sender, 42, fastRetry(), nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Start(ctx)

	notifier.Enqueue("пропадёт")
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, sender.sentTexts())
}

func TestEnqueueNeverBlocks(t *testing.T) {
	sender := newFakeSender(0)
	logger := zerolog.Nop()
	notifier := NewNotifier(sender, 42, fastRetry(), nil, &logger)

	// No Start loop running: overflow past the queue capacity must be
	// dropped, not deadlock the publisher.
	for i := 0; i < models.NotifyQueueSize+10; i++ {
		notifier.Enqueue("сообщение")
	}
}

func TestFormatDayRU(t *testing.T) {
	assert.Equal(t, "02.06 (Пн)", FormatDayRU("2025-06-02"))
	assert.Equal(t, "07.06 (Сб)", FormatDayRU("2025-06-07"))
	assert.Equal(t, "08.06 (Вс)", FormatDayRU("2025-06-08"))
	assert.Equal(t, "garbage", FormatDayRU("garbage"))
}
