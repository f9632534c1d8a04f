package store

import (
	"context"
	"encoding/json"
	"time"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"
	"automation-worker/internal/store/event"
	"automation-worker/internal/store/message"
	"automation-worker/internal/store/rule"
	"automation-worker/internal/store/status"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Parameter types van de sub-stores, zodat callers alleen dit package nodig hebben.
type (
	EnqueueParams          = event.EnqueueParams
	CreateMessageLogParams = message.CreateMessageLogParams
	UpdateColumnParams     = status.UpdateColumnParams
)

// Sentinel errors van de sub-stores.
var (
	ErrEventNotFound    = event.ErrEventNotFound
	ErrInstanceNotFound = message.ErrInstanceNotFound
	ErrTableNotAllowed  = status.ErrTableNotAllowed
	ErrInvalidColumn    = status.ErrInvalidColumn
)

// Storer is de interface voor al onze database-interacties.
type Storer interface {
	// Event queue
	ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error)
	Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error
	RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error)
	ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error)
	Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error)

	// Rules
	GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error)
	RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error

	// Messaging
	GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error)
	CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error

	// update_status
	UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error)
}

// DBStore implementeert de Storer interface door te delegeren naar de sub-stores.
type DBStore struct {
	eventStore   event.EventStorer
	ruleStore    rule.RuleStorer
	messageStore message.MessageStorer
	statusStore  status.StatusStorer
}

// NewStore maakt een nieuwe DBStore
func NewStore(db database.Querier, log *zap.Logger) Storer {
	log.Debug("initializing store", zap.String("component", "store"))
	return &DBStore{
		eventStore:   event.NewEventStore(db),
		ruleStore:    rule.NewRuleStore(db),
		messageStore: message.NewMessageStore(db),
		statusStore:  status.NewStatusStore(db),
	}
}

// --- Event queue ---

func (s *DBStore) ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error) {
	return s.eventStore.ClaimPending(ctx, limit, maxRetries)
}

func (s *DBStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return s.eventStore.Complete(ctx, id, result)
}

func (s *DBStore) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error) {
	return s.eventStore.RecordFailure(ctx, id, errMsg, maxRetries)
}

func (s *DBStore) ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error) {
	return s.eventStore.ReclaimStale(ctx, olderThan, maxRetries)
}

func (s *DBStore) Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error) {
	return s.eventStore.Enqueue(ctx, arg)
}

// --- Rules ---

func (s *DBStore) GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error) {
	return s.ruleStore.GetActiveRulesForEvent(ctx, projectID, eventType)
}

func (s *DBStore) RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error {
	return s.ruleStore.RecordRuleExecution(ctx, ruleID)
}

// --- Messaging ---

func (s *DBStore) GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error) {
	return s.messageStore.GetInstanceWithBackend(ctx, projectID, instanceID)
}

func (s *DBStore) CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error {
	return s.messageStore.CreateMessageLog(ctx, arg)
}

// --- update_status ---

func (s *DBStore) UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error) {
	return s.statusStore.UpdateColumn(ctx, arg)
}
