package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a queued unit of work awaiting rule evaluation.
type Event struct {
	ProjectEntity
	EventType    string          `db:"event_type"    json:"event_type"`
	Payload      json.RawMessage `db:"payload"       json:"payload"`
	Status       EventStatus     `db:"status"        json:"status"`
	RetryCount   int             `db:"retry_count"   json:"retry_count"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	Result       json.RawMessage `db:"result"        json:"result,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at"  json:"processed_at,omitempty"`
}

// Condition is a single predicate over the event payload.
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value"`
}

// Action is a single executable step of a rule.
type Action struct {
	Type        ActionType     `json:"type"`
	Config      map[string]any `json:"config"`
	StopOnError bool           `json:"stopOnError"`
}

// TriggerConfig narrows which events a rule reacts to.
type TriggerConfig struct {
	EventType string `json:"event_type,omitempty"`
}

// AutomationRule represents a tenant-defined trigger -> conditions -> actions policy.
type AutomationRule struct {
	ProjectEntity
	Name           string        `db:"name"             json:"name"`
	TriggerType    string        `db:"trigger_type"     json:"trigger_type"`
	TriggerConfig  TriggerConfig `db:"trigger_config"   json:"trigger_config"`
	Conditions     []Condition   `db:"conditions"       json:"conditions"`
	Actions        []Action      `db:"actions"          json:"actions"`
	IsActive       bool          `db:"is_active"        json:"is_active"`
	ExecutionCount int           `db:"execution_count"  json:"execution_count"`
	LastExecutedAt *time.Time    `db:"last_executed_at" json:"last_executed_at,omitempty"`
}

// ActionResult is the outcome of one executed action.
type ActionResult struct {
	Type    ActionType `json:"type"`
	Success bool       `json:"success"`
	Result  any        `json:"result,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// RuleResult collects the action outcomes of one fired rule.
type RuleResult struct {
	RuleID   uuid.UUID      `json:"ruleId"`
	RuleName string         `json:"ruleName"`
	Actions  []ActionResult `json:"actions"`
}

// NoMatchingRulesMessage is stored when no rule applied to an event.
const NoMatchingRulesMessage = "No matching rules"

// EventResult is persisted in the event's result column.
type EventResult struct {
	Message string
	Rules   []RuleResult
}

// MarshalJSON writes either {"message": ...} or {"rules": [...]}.
func (r EventResult) MarshalJSON() ([]byte, error) {
	if r.Message != "" {
		return json.Marshal(struct {
			Message string `json:"message"`
		}{r.Message})
	}
	rules := r.Rules
	if rules == nil {
		rules = []RuleResult{}
	}
	return json.Marshal(struct {
		Rules []RuleResult `json:"rules"`
	}{rules})
}

// UnmarshalJSON accepts both result shapes.
func (r *EventResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string       `json:"message"`
		Rules   []RuleResult `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Message = raw.Message
	r.Rules = raw.Rules
	return nil
}

// MessageBackend is the connection config of a messaging gateway.
type MessageBackend struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	URL         string    `db:"url"          json:"url"`
	Token       string    `db:"token"        json:"-"`
	IsConnected bool      `db:"is_connected" json:"is_connected"`
}

// MessagingInstance is a tenant's messaging number bound to a backend.
type MessagingInstance struct {
	ProjectEntity
	Name          string         `db:"name"           json:"name"`
	InstanceToken string         `db:"instance_token" json:"-"`
	Backend       MessageBackend `json:"backend"`
}

// MessageLog records an outbound message attempt.
type MessageLog struct {
	ID           int64            `db:"id"            json:"id"`
	ProjectID    uuid.UUID        `db:"project_id"    json:"project_id"`
	InstanceID   uuid.UUID        `db:"instance_id"   json:"instance_id"`
	EventID      *uuid.UUID       `db:"event_id"      json:"event_id,omitempty"`
	Recipient    string           `db:"recipient"     json:"recipient"`
	Message      string           `db:"message"       json:"message"`
	MessageType  string           `db:"message_type"  json:"message_type"`
	Status       MessageLogStatus `db:"status"        json:"status"`
	ExternalID   *string          `db:"external_id"   json:"external_id,omitempty"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time        `db:"created_at"    json:"created_at"`
}

// BatchSummary is returned by one worker invocation.
type BatchSummary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}
