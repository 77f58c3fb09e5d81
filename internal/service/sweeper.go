package service

import (
	"context"
	"time"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/logger"
)

// Sweeper periodically deletes expired session records so the store
// does not accumulate dead rows.
type Sweeper struct {
	service  *SessionService
	interval time.Duration
	logger   *logger.Logger
}

// NewSweeper creates a Sweeper purging through service every interval.
func NewSweeper(service *SessionService, interval time.Duration, logger *logger.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run purges once immediately, then on every tick until ctx is
// cancelled. A failed purge is logged and the loop keeps running.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.service.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("Sweeper: purge failed", "error", err.Error())
		return
	}

	s.logger.Debug("Sweeper: purge complete", "deleted", count)
}
