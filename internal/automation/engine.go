package automation

import (
	"context"
	"fmt"

	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RuleSource is the part of the store the engine reads rules from.
type RuleSource interface {
	GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error)
	RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error
}

// ExecContext is what an action gets to see of the event that fired it.
type ExecContext struct {
	Event    domain.Event
	Payload  Payload
	RuleID   uuid.UUID
	RuleName string
}

// ActionRunner executes one action and reports its outcome. It never panics.
type ActionRunner interface {
	Run(ctx context.Context, ec ExecContext, a domain.Action) domain.ActionResult
}

// Engine evaluates the rules of one event and runs their actions.
type Engine struct {
	rules   RuleSource
	actions ActionRunner
	logger  *zap.Logger
}

// NewEngine creates a new Engine.
func NewEngine(rules RuleSource, actions ActionRunner, logger *zap.Logger) *Engine {
	return &Engine{
		rules:   rules,
		actions: actions,
		logger:  logger.With(zap.String("component", "engine")),
	}
}

// ProcessEvent runs every matching rule for the event and returns the result to
// store on it. An error means the event should be retried.
func (e *Engine) ProcessEvent(ctx context.Context, ev domain.Event) (domain.EventResult, error) {
	log := e.logger.With(
		zap.String("event_id", ev.ID.String()),
		zap.String("project_id", ev.ProjectID.String()),
		zap.String("event_type", ev.EventType),
	)

	rules, err := e.rules.GetActiveRulesForEvent(ctx, ev.ProjectID, ev.EventType)
	if err != nil {
		return domain.EventResult{}, fmt.Errorf("could not load rules: %w", err)
	}

	if len(rules) == 0 {
		log.Debug("no matching rules")
		return domain.EventResult{Message: domain.NoMatchingRulesMessage}, nil
	}

	payload := NewPayload(ev.Payload)
	results := make([]domain.RuleResult, 0, len(rules))

	for _, rule := range rules {
		if !triggerMatches(rule, ev) {
			continue
		}
		if !EvaluateConditions(rule.Conditions, payload) {
			log.Debug("conditions not met", zap.String("rule_id", rule.ID.String()))
			continue
		}

		ec := ExecContext{Event: ev, Payload: payload, RuleID: rule.ID, RuleName: rule.Name}
		results = append(results, domain.RuleResult{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Actions:  e.runActions(ctx, ec, rule.Actions),
		})

		// De teller hoort bij de poging, niet bij het resultaat van de acties
		if err := e.rules.RecordRuleExecution(ctx, rule.ID); err != nil {
			log.Warn("could not record rule execution",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
		}
	}

	log.Info("event evaluated",
		zap.Int("candidate_rules", len(rules)),
		zap.Int("fired_rules", len(results)),
	)
	return domain.EventResult{Rules: results}, nil
}

func (e *Engine) runActions(ctx context.Context, ec ExecContext, actions []domain.Action) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(actions))
	for _, a := range actions {
		res := e.actions.Run(ctx, ec, a)
		results = append(results, res)
		if !res.Success && a.StopOnError {
			e.logger.Info("stopping rule after failed action",
				zap.String("rule_id", ec.RuleID.String()),
				zap.String("action", string(a.Type)),
			)
			break
		}
	}
	return results
}

func triggerMatches(rule domain.AutomationRule, ev domain.Event) bool {
	if rule.TriggerType != domain.TriggerAny && rule.TriggerType != ev.EventType {
		return false
	}
	filter := rule.TriggerConfig.EventType
	return filter == "" || filter == domain.TriggerAny || filter == ev.EventType
}
