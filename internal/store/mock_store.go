package store

import (
	"context"
	"encoding/json"
	"time"

	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the Storer interface for testing
type MockStore struct {
	mock.Mock
}

// ClaimPending mocks the ClaimPending method
func (m *MockStore) ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error) {
	args := m.Called(ctx, limit, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

// Complete mocks the Complete method
func (m *MockStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

// RecordFailure mocks the RecordFailure method
func (m *MockStore) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error) {
	args := m.Called(ctx, id, errMsg, maxRetries)
	return args.Get(0).(domain.EventStatus), args.Int(1), args.Error(2)
}

// ReclaimStale mocks the ReclaimStale method
func (m *MockStore) ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error) {
	args := m.Called(ctx, olderThan, maxRetries)
	return args.Get(0).(int64), args.Error(1)
}

// Enqueue mocks the Enqueue method
func (m *MockStore) Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(domain.Event), args.Error(1)
}

// GetActiveRulesForEvent mocks the GetActiveRulesForEvent method
func (m *MockStore) GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error) {
	args := m.Called(ctx, projectID, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AutomationRule), args.Error(1)
}

// RecordRuleExecution mocks the RecordRuleExecution method
func (m *MockStore) RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error {
	args := m.Called(ctx, ruleID)
	return args.Error(0)
}

// GetInstanceWithBackend mocks the GetInstanceWithBackend method
func (m *MockStore) GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error) {
	args := m.Called(ctx, projectID, instanceID)
	return args.Get(0).(domain.MessagingInstance), args.Error(1)
}

// CreateMessageLog mocks the CreateMessageLog method
func (m *MockStore) CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

// UpdateColumn mocks the UpdateColumn method
func (m *MockStore) UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
