package workers

import (
	"context"
	"time"

	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
)

// ResetTokenJanitor periodically clears expired password-reset digests
// from the users table. Expired digests are already unusable (the lookup
// filters on expiry), so this is hygiene: stale credential material should
// not sit in the database indefinitely.
type ResetTokenJanitor struct {
	users    store.UserRepository
	interval time.Duration
	logger   *logger.Logger
}

func NewResetTokenJanitor(users store.UserRepository, interval time.Duration, log *logger.Logger) *ResetTokenJanitor {
	return &ResetTokenJanitor{
		users:    users,
		interval: interval,
		logger:   log,
	}
}

// Run starts the sweep loop in its own goroutine. The loop stops when ctx
// is cancelled.
func (j *ResetTokenJanitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info().Msg("reset token janitor disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Info().Msg("reset token janitor stopped")
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()
}

func (j *ResetTokenJanitor) sweep(ctx context.Context) {
	cleared, err := j.users.DeleteExpiredResetTokens(ctx)
	if err != nil {
		j.logger.Error().Err(err).Str("func", "*ResetTokenJanitor.sweep").Msg("clearing expired reset tokens")
		return
	}

	if cleared > 0 {
		j.logger.Info().Int64("cleared", cleared).Msg("expired reset tokens cleared")
	}
}
