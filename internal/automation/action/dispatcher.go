// Package action contains the executors a rule can run and the table that dispatches to them.
package action

import (
	"context"
	"fmt"
	"time"

	"automation-worker/internal/automation"
	"automation-worker/internal/deliverer"
	"automation-worker/internal/domain"
	"automation-worker/internal/messaging"
	"automation-worker/internal/observability"
	"automation-worker/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Executor runs one kind of action. Every failure is reported in the result.
type Executor interface {
	Type() domain.ActionType
	Execute(ctx context.Context, ec automation.ExecContext, config map[string]any) domain.ActionResult
}

// MessageStore is what send_message needs from the store.
type MessageStore interface {
	GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error)
	CreateMessageLog(ctx context.Context, arg store.CreateMessageLogParams) error
}

// StatusStore is what update_status needs from the store.
type StatusStore interface {
	UpdateColumn(ctx context.Context, arg store.UpdateColumnParams) (int64, error)
}

// Sender delivers a chat message through a backend.
type Sender interface {
	Send(ctx context.Context, backend domain.MessageBackend, instanceToken string, msg messaging.SendRequest) (messaging.SendResponse, error)
}

// Dependencies are the collaborators of the built-in executors.
type Dependencies struct {
	Messages  MessageStore
	Statuses  StatusStore
	Sender    Sender
	Deliverer deliverer.Deliverer
	MaxDelay  time.Duration
	Logger    *zap.Logger
}

// Dispatcher maps action types to executors.
type Dispatcher struct {
	executors map[domain.ActionType]Executor
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDispatcher builds the dispatch table with every built-in executor.
func NewDispatcher(deps Dependencies, metrics *observability.Metrics) *Dispatcher {
	logger := deps.Logger.With(zap.String("component", "actions"))
	return NewDispatcherWith(logger, metrics,
		&SendMessage{store: deps.Messages, sender: deps.Sender, logger: logger},
		&UpdateStatus{store: deps.Statuses},
		&CallWebhook{deliverer: deps.Deliverer, logger: logger},
		&Delay{max: deps.MaxDelay},
		&Log{logger: logger},
	)
}

// NewDispatcherWith builds a dispatch table from the given executors.
func NewDispatcherWith(logger *zap.Logger, metrics *observability.Metrics, executors ...Executor) *Dispatcher {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	d := &Dispatcher{
		executors: make(map[domain.ActionType]Executor, len(executors)),
		metrics:   metrics,
		logger:    logger,
	}
	for _, e := range executors {
		d.executors[e.Type()] = e
	}
	return d
}

// Run executes a single action. It never panics and never returns an error:
// failures, including panics inside an executor, end up in the result.
func (d *Dispatcher) Run(ctx context.Context, ec automation.ExecContext, a domain.Action) (res domain.ActionResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("action panicked",
				zap.String("action", string(a.Type)),
				zap.String("rule_id", ec.RuleID.String()),
				zap.Any("panic", r),
			)
			res = domain.ActionResult{Success: false, Error: fmt.Sprintf("action panicked: %v", r)}
		}
		res.Type = a.Type
		d.metrics.ActionExecuted(ctx, string(a.Type), res.Success)
		d.logger.Debug("action executed",
			zap.String("action", string(a.Type)),
			zap.String("event_id", ec.Event.ID.String()),
			zap.Bool("success", res.Success),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	executor, ok := d.executors[a.Type]
	if !ok {
		return domain.ActionResult{Success: false, Error: "Unknown action type: " + string(a.Type)}
	}
	return executor.Execute(ctx, ec, a.Config)
}

func failure(err string) domain.ActionResult {
	return domain.ActionResult{Success: false, Error: err}
}

func success(result any) domain.ActionResult {
	return domain.ActionResult{Success: true, Result: result}
}
