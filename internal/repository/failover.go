package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotbot/internal/domain"
	"slotbot/internal/models"

	"github.com/rs/zerolog"
)

// FailoverPendingRegistry prefers the primary registry (Redis) and falls
// back to the in-memory one when the primary errors. The primary is
// retried after a cooldown. A selection written during an outage lives
// only in memory; that matches the registry's transient contract.
type FailoverPendingRegistry struct {
	primary   domain.PendingRegistry
	fallback  domain.PendingRegistry
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryCooldown = time.Minute

func NewFailoverPendingRegistry(primary, fallback domain.PendingRegistry, logger *zerolog.Logger) *FailoverPendingRegistry {
	return &FailoverPendingRegistry{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverPendingRegistry) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary pending registry failed, using memory fallback")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverPendingRegistry) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryCooldown {
		r.lastCheck.Store(time.Now().UnixNano())
		return true
	}
	return false
}

func (r *FailoverPendingRegistry) Get(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	if r.primaryUsable() {
		sel, err := r.primary.Get(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			return sel, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, userID)
}

func (r *FailoverPendingRegistry) Set(ctx context.Context, sel *models.PendingSelection) error {
	if r.primaryUsable() {
		err := r.primary.Set(ctx, sel)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, sel)
}

func (r *FailoverPendingRegistry) Take(ctx context.Context, userID int64) (*models.PendingSelection, error) {
	if r.primaryUsable() {
		sel, err := r.primary.Take(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			if sel != nil {
				return sel, nil
			}
			// Primary empty: the selection may have been written to the
			// fallback during an outage.
			return r.fallback.Take(ctx, userID)
		}
		r.markDown(err)
	}
	return r.fallback.Take(ctx, userID)
}

func (r *FailoverPendingRegistry) Clear(ctx context.Context, userID int64) error {
	var primaryErr error
	if r.primaryUsable() {
		primaryErr = r.primary.Clear(ctx, userID)
		if primaryErr == nil {
			r.isDown.Store(false)
		} else {
			r.markDown(primaryErr)
		}
	}
	// Always clear the fallback too so no stale selection survives.
	return r.fallback.Clear(ctx, userID)
}
