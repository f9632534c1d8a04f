package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds the claim and reclaim queries of a scheduled run.
const runTimeout = 50 * time.Second

type scheduler struct {
	cron *cron.Cron
}

// cronLogger stuurt de logregels van cron naar zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start lanceert de geplande runs wanneer WORKER_SCHEDULE gezet is.
// Zonder schedule draait de worker alleen op aanroep via de API.
func (w *Worker) Start() error {
	if w.cfg.Schedule == "" {
		w.logger.Info("no worker schedule configured, running on trigger only")
		return nil
	}

	clog := cronLogger{log: w.logger.Sugar()}
	c := cron.New(cron.WithChain(
		cron.Recover(clog),
		cron.SkipIfStillRunning(clog),
	))

	if _, err := c.AddFunc(w.cfg.Schedule, w.runScheduledBatch); err != nil {
		return fmt.Errorf("invalid WORKER_SCHEDULE %q: %w", w.cfg.Schedule, err)
	}
	if w.cfg.ReclaimAfter > 0 {
		c.Schedule(cron.Every(w.cfg.ReclaimAfter), cron.FuncJob(w.runReclaim))
	}

	w.scheduler = &scheduler{cron: c}
	c.Start()
	w.logger.Info("worker scheduler started",
		zap.String("schedule", w.cfg.Schedule),
		zap.Duration("reclaim_after", w.cfg.ReclaimAfter),
	)
	return nil
}

// Stop wacht tot lopende runs klaar zijn of ctx verloopt.
func (w *Worker) Stop(ctx context.Context) error {
	if w.scheduler == nil {
		return nil
	}
	done := w.scheduler.cron.Stop()
	select {
	case <-done.Done():
		w.logger.Info("worker scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) runScheduledBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := w.ProcessBatch(ctx, Options{}); err != nil {
		w.logger.Error("scheduled batch failed", zap.Error(err))
	}
}

func (w *Worker) runReclaim() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := w.ReclaimStale(ctx); err != nil {
		w.logger.Error("reclaim failed", zap.Error(err))
	}
}
