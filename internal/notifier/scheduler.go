package notifier

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"enotice/internal/config"
)

// Scheduler periodically fires the pending-notices digest in the background.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
}

func NewScheduler(service *Service, cfg *config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{service: service, interval: cfg.Mail.DigestInterval, logger: logger}
}

// Start ties the digest loop to the fx lifecycle.
func (s *Scheduler) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			loopCtx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			s.logger.Info("starting pending-notice digest scheduler", zap.Duration("interval", s.interval))
			go s.run(loopCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("stopping pending-notice digest scheduler")
			if s.cancel != nil {
				s.cancel()
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.service.SendPendingDigest(ctx)
		case <-ctx.Done():
			return
		}
	}
}
