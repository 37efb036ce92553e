package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Wrapper adapts *tgbotapi.BotAPI to the domain.TelegramSender
// interface so handlers and the notifier can be tested with fakes.
type Wrapper struct {
	*tgbotapi.BotAPI
}

func NewWrapper(api *tgbotapi.BotAPI) *Wrapper {
	return &Wrapper{BotAPI: api}
}

func (w *Wrapper) GetSelf() tgbotapi.User {
	return w.Self
}

func (w *Wrapper) StopReceivingUpdates() {
	w.BotAPI.StopReceivingUpdates()
}
