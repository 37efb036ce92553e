package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("recovered from panic in update handler")
		}
	}()
	handler()
}

// userLimiter hands out one rate.Limiter per user. The admin is exempt.
type userLimiter struct {
	limiters sync.Map
	perSec   int
	burst    int
}

func newUserLimiter(perSec, burst int) *userLimiter {
	if perSec <= 0 {
		perSec = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &userLimiter{perSec: perSec, burst: burst}
}

func (l *userLimiter) allow(userID int64) bool {
	if v, ok := l.limiters.Load(userID); ok {
		return v.(*rate.Limiter).Allow()
	}

	lim := rate.NewLimiter(rate.Limit(l.perSec), l.burst)
	actual, _ := l.limiters.LoadOrStore(userID, lim)
	return actual.(*rate.Limiter).Allow()
}
