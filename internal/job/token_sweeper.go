// Package job holds the background maintenance loops.
package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SagarCoder007/modern-banking-system/internal/auth"
	"github.com/SagarCoder007/modern-banking-system/internal/logger"
)

// TokenSweeper periodically deletes expired access tokens. Timing is
// best-effort; verification already rejects expired tokens, the sweep
// only keeps the table from growing.
type TokenSweeper struct {
	auth     *auth.Service
	interval time.Duration
}

func NewTokenSweeper(auth *auth.Service, interval time.Duration) *TokenSweeper {
	return &TokenSweeper{auth: auth, interval: interval}
}

func (j *TokenSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Log.Info("token sweeper started", zap.Duration("interval", j.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("token sweeper stopped")
			return
		case <-ticker.C:
			n, err := j.auth.SweepExpired(ctx)
			if err != nil {
				logger.Log.Error("token sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("swept expired tokens", zap.Int64("deleted", n))
			}
		}
	}
}
