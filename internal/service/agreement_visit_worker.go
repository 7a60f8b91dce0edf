package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
)

// AgreementVisitWorker periodically materializes appointments for service
// agreements whose next visit has come due. Generation itself is idempotent,
// so a sweep that overlaps a manual trigger creates nothing extra.
type AgreementVisitWorker struct {
	agreements AgreementService
	cfg        config.AgreementsConfig
	logger     *zap.Logger
}

// NewAgreementVisitWorker creates a new AgreementVisitWorker.
func NewAgreementVisitWorker(agreements AgreementService, cfg config.AgreementsConfig, logger *zap.Logger) *AgreementVisitWorker {
	return &AgreementVisitWorker{
		agreements: agreements,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start runs the polling loop until ctx is canceled. The first sweep happens
// immediately; with a daily interval a restart should not postpone due visits
// by another day.
func (w *AgreementVisitWorker) Start(ctx context.Context) {
	interval := w.cfg.PollInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("agreement visit worker started", zap.Duration("poll", interval))
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("agreement visit worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *AgreementVisitWorker) sweep(ctx context.Context) {
	batch := w.cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}
	created, err := w.agreements.GenerateDueVisits(ctx, batch)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("agreement visit sweep failed", zap.Error(err))
		}
		return
	}
	if created > 0 {
		w.logger.Info("agreement visits generated", zap.Int("count", created))
	}
}
