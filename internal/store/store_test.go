package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// --- MOCKS VOOR SUB-STORES ---

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error) {
	args := m.Called(ctx, limit, maxRetries)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return m.Called(ctx, id, result).Error(0)
}
func (m *MockEventStore) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error) {
	args := m.Called(ctx, id, errMsg, maxRetries)
	return args.Get(0).(domain.EventStatus), args.Int(1), args.Error(2)
}
func (m *MockEventStore) ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error) {
	args := m.Called(ctx, olderThan, maxRetries)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockEventStore) Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(domain.Event), args.Error(1)
}

type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error) {
	args := m.Called(ctx, projectID, eventType)
	return args.Get(0).([]domain.AutomationRule), args.Error(1)
}
func (m *MockRuleStore) RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error {
	return m.Called(ctx, ruleID).Error(0)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error) {
	args := m.Called(ctx, projectID, instanceID)
	return args.Get(0).(domain.MessagingInstance), args.Error(1)
}
func (m *MockMessageStore) CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error {
	return m.Called(ctx, arg).Error(0)
}

type MockStatusStore struct {
	mock.Mock
}

func (m *MockStatusStore) UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

// --- HULPSTRUCTUUR VOOR TESTS ---

type testStore struct {
	dbStore      *DBStore
	eventStore   *MockEventStore
	ruleStore    *MockRuleStore
	messageStore *MockMessageStore
	statusStore  *MockStatusStore
}

func newTestStore(_ *testing.T) *testStore {
	ts := &testStore{
		eventStore:   &MockEventStore{},
		ruleStore:    &MockRuleStore{},
		messageStore: &MockMessageStore{},
		statusStore:  &MockStatusStore{},
	}
	ts.dbStore = &DBStore{
		eventStore:   ts.eventStore,
		ruleStore:    ts.ruleStore,
		messageStore: ts.messageStore,
		statusStore:  ts.statusStore,
	}
	return ts
}

// --- TESTS ---

func TestNewStore(t *testing.T) {
	store := NewStore(nil, zap.NewNop())
	assert.NotNil(t, store)

	dbStore, ok := store.(*DBStore)
	assert.True(t, ok)
	assert.NotNil(t, dbStore.eventStore)
	assert.NotNil(t, dbStore.statusStore)
}

func TestMockStore_ImplementsStorer(t *testing.T) {
	var s Storer = &MockStore{}
	assert.NotNil(t, s)
}

func TestDBStore_EventMethods(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	id := uuid.New()
	events := []domain.Event{{EventType: "message_received"}}
	result := json.RawMessage(`{"rules":[]}`)

	ts.eventStore.On("ClaimPending", ctx, 10, 3).Return(events, nil)
	got, err := ts.dbStore.ClaimPending(ctx, 10, 3)
	assert.NoError(t, err)
	assert.Equal(t, events, got)

	ts.eventStore.On("Complete", ctx, id, result).Return(nil)
	assert.NoError(t, ts.dbStore.Complete(ctx, id, result))

	ts.eventStore.On("RecordFailure", ctx, id, "boom", 3).Return(domain.EventPending, 1, nil)
	status, retries, err := ts.dbStore.RecordFailure(ctx, id, "boom", 3)
	assert.NoError(t, err)
	assert.Equal(t, domain.EventPending, status)
	assert.Equal(t, 1, retries)

	ts.eventStore.On("ReclaimStale", ctx, time.Minute, 3).Return(int64(4), nil)
	n, err := ts.dbStore.ReclaimStale(ctx, time.Minute, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)

	params := EnqueueParams{EventType: "contact_created"}
	ts.eventStore.On("Enqueue", ctx, params).Return(domain.Event{EventType: "contact_created"}, nil)
	ev, err := ts.dbStore.Enqueue(ctx, params)
	assert.NoError(t, err)
	assert.Equal(t, "contact_created", ev.EventType)

	ts.eventStore.AssertExpectations(t)
}

func TestDBStore_RuleMethods(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	projectID, ruleID := uuid.New(), uuid.New()
	rules := []domain.AutomationRule{{Name: "Greeting"}}

	ts.ruleStore.On("GetActiveRulesForEvent", ctx, projectID, "message_received").Return(rules, nil)
	got, err := ts.dbStore.GetActiveRulesForEvent(ctx, projectID, "message_received")
	assert.NoError(t, err)
	assert.Equal(t, rules, got)

	ts.ruleStore.On("RecordRuleExecution", ctx, ruleID).Return(nil)
	assert.NoError(t, ts.dbStore.RecordRuleExecution(ctx, ruleID))

	ts.ruleStore.AssertExpectations(t)
}

func TestDBStore_MessageAndStatusMethods(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	projectID, instanceID := uuid.New(), uuid.New()

	ts.messageStore.On("GetInstanceWithBackend", ctx, projectID, instanceID).
		Return(domain.MessagingInstance{}, ErrInstanceNotFound)
	_, err := ts.dbStore.GetInstanceWithBackend(ctx, projectID, instanceID)
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	logParams := CreateMessageLogParams{ProjectID: projectID, Status: domain.MessageSent}
	ts.messageStore.On("CreateMessageLog", ctx, logParams).Return(nil)
	assert.NoError(t, ts.dbStore.CreateMessageLog(ctx, logParams))

	updateParams := UpdateColumnParams{ProjectID: projectID, Table: domain.TableContacts, Column: "status"}
	ts.statusStore.On("UpdateColumn", ctx, updateParams).Return(int64(1), nil)
	n, err := ts.dbStore.UpdateColumn(ctx, updateParams)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ts.messageStore.AssertExpectations(t)
	ts.statusStore.AssertExpectations(t)
}
