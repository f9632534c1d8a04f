package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"automation-worker/internal/config"
	"automation-worker/internal/domain"
	"automation-worker/internal/logger"
	"automation-worker/internal/observability"
	"automation-worker/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxBatchSize caps the number of events claimed in one run.
const MaxBatchSize = 100

// Options are the per-run parameters of ProcessBatch.
type Options struct {
	BatchSize  int
	MaxRetries int
}

// Worker drains the event queue in batches.
type Worker struct {
	store     store.Storer
	processor EventProcessor
	cfg       config.WorkerConfig
	metrics   *observability.Metrics
	logger    *zap.Logger

	scheduler *scheduler
}

// NewWorker builds a worker; a nil metrics value disables instrumentation.
func NewWorker(s store.Storer, processor EventProcessor, cfg config.WorkerConfig, metrics *observability.Metrics, log *zap.Logger) *Worker {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Worker{
		store:     s,
		processor: processor,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.Component(log, "worker"),
	}
}

// normalize vult ontbrekende of ongeldige opties aan met de geconfigureerde defaults.
func (w *Worker) normalize(opts Options) Options {
	if opts.BatchSize <= 0 {
		opts.BatchSize = w.cfg.BatchSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.BatchSize > MaxBatchSize {
		opts.BatchSize = MaxBatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = w.cfg.MaxRetries
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return opts
}

// ProcessBatch claims up to opts.BatchSize pending events and processes them.
// Only a failing claim is returned as an error; per-event failures end up in
// the retry bookkeeping of that event. ctx bounds the claim only: once claimed,
// events run to completion even if ctx is cancelled.
func (w *Worker) ProcessBatch(ctx context.Context, opts Options) (domain.BatchSummary, error) {
	opts = w.normalize(opts)
	started := time.Now()

	events, err := w.store.ClaimPending(ctx, opts.BatchSize, opts.MaxRetries)
	if err != nil {
		w.logger.Error("could not claim pending events", zap.Error(err))
		return domain.BatchSummary{}, fmt.Errorf("could not claim pending events: %w", err)
	}

	if len(events) == 0 {
		w.logger.Debug("no pending events")
		return domain.BatchSummary{}, nil
	}

	w.logger.Info("claimed events",
		zap.Int("count", len(events)),
		zap.Int("batch_size", opts.BatchSize),
		zap.Int("max_retries", opts.MaxRetries),
	)

	// Geclaimde events zijn van deze run: een afgebroken trigger-request mag ze niet
	// halverwege laten falen of een retry kosten.
	runCtx := context.WithoutCancel(ctx)

	var (
		mu      sync.Mutex
		summary = domain.BatchSummary{Total: len(events)}
		g       errgroup.Group
	)
	g.SetLimit(w.cfg.Concurrency)

	for _, ev := range events {
		g.Go(func() error {
			ok := w.handleEvent(runCtx, ev, opts.MaxRetries)
			mu.Lock()
			if ok {
				summary.Processed++
			} else {
				summary.Failed++
			}
			mu.Unlock()
			// Elk event is een bulkhead: fouten stoppen de rest van de batch niet
			return nil
		})
	}
	_ = g.Wait()

	w.metrics.BatchDuration(runCtx, time.Since(started))
	logger.LogDuration(w.logger, "process_batch", started,
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
	)
	return summary, nil
}

// handleEvent verwerkt één event en schrijft de uitkomst terug.
func (w *Worker) handleEvent(ctx context.Context, ev domain.Event, maxRetries int) bool {
	err := w.processEvent(ctx, ev)
	if err == nil {
		w.metrics.EventProcessed(ctx)
		return true
	}

	w.metrics.EventFailed(ctx)
	status, retries, recErr := w.store.RecordFailure(ctx, ev.ID, err.Error(), maxRetries)
	if recErr != nil {
		w.logger.Error("could not record event failure",
			zap.String("event_id", ev.ID.String()),
			zap.NamedError("cause", err),
			zap.Error(recErr),
		)
		return false
	}

	w.logger.Warn("event processing failed",
		zap.String("event_id", ev.ID.String()),
		zap.String("status", string(status)),
		zap.Int("retry_count", retries),
		zap.Error(err),
	)
	return false
}

func (w *Worker) processEvent(ctx context.Context, ev domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing event: %v", r)
		}
	}()

	result, err := w.processor.ProcessEvent(ctx, ev)
	if err != nil {
		return err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not encode result: %w", err)
	}

	if err := w.store.Complete(ctx, ev.ID, body); err != nil {
		return fmt.Errorf("could not complete event: %w", err)
	}
	return nil
}

// ReclaimStale zet events die te lang in 'processing' staan terug in de wachtrij.
func (w *Worker) ReclaimStale(ctx context.Context) (int64, error) {
	n, err := w.store.ReclaimStale(ctx, w.cfg.ReclaimAfter, w.normalize(Options{}).MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("could not reclaim stale events: %w", err)
	}
	if n > 0 {
		w.logger.Warn("reclaimed stale events", zap.Int64("count", n))
	}
	return n, nil
}
