package domain

import (
	"time"

	"github.com/google/uuid"
)

// --- ENUM Types ---

// EventStatus is the processing state of a queued event.
type EventStatus string

const (
	EventPending    EventStatus = "pending"
	EventProcessing EventStatus = "processing"
	EventCompleted  EventStatus = "completed"
	EventFailed     EventStatus = "failed"
)

// TriggerAny matches every event type.
const TriggerAny = "any"

// ConditionOperator is the comparison applied by a Condition.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpStartsWith  ConditionOperator = "starts_with"
	OpEndsWith    ConditionOperator = "ends_with"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIsEmpty     ConditionOperator = "is_empty"
	OpIsNotEmpty  ConditionOperator = "is_not_empty"
	OpRegex       ConditionOperator = "regex"
)

// ActionType tags the executor an Action is dispatched to.
type ActionType string

const (
	ActionSendMessage  ActionType = "send_message"
	ActionUpdateStatus ActionType = "update_status"
	ActionCallWebhook  ActionType = "call_webhook"
	ActionDelay        ActionType = "delay"
	ActionLog          ActionType = "log"
)

// ActionTypes lists every supported action type.
var ActionTypes = []ActionType{
	ActionSendMessage,
	ActionUpdateStatus,
	ActionCallWebhook,
	ActionDelay,
	ActionLog,
}

// MutableTable is a table the update_status action is allowed to write to.
type MutableTable string

const (
	TableEventQueue    MutableTable = "automation_event_queue"
	TableConversations MutableTable = "conversations"
	TableContacts      MutableTable = "contacts"
)

var mutableTables = map[MutableTable]struct{}{
	TableEventQueue:    {},
	TableConversations: {},
	TableContacts:      {},
}

// ParseMutableTable returns the table when it is on the allow-list.
func ParseMutableTable(name string) (MutableTable, bool) {
	t := MutableTable(name)
	_, ok := mutableTables[t]
	return t, ok
}

// MessageLogStatus records the outcome of an outbound message attempt.
type MessageLogStatus string

const (
	MessageSent   MessageLogStatus = "sent"
	MessageFailed MessageLogStatus = "failed"
)

// --- Base Structs ---

type BaseEntity struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProjectEntity is scoped to a single tenant project.
type ProjectEntity struct {
	BaseEntity
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
}
