package rule

import (
	"context"
	"fmt"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RuleStorer defines the rule operations the automation engine needs.
type RuleStorer interface {
	GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error)
	RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error
}

// RuleStore handles rule-related database operations
type RuleStore struct {
	db database.Querier
}

// NewRuleStore creates a new RuleStore
func NewRuleStore(db database.Querier) RuleStorer {
	return &RuleStore{db: db}
}

// scanRule scans a database row into an AutomationRule
func scanRule(row pgx.Row) (domain.AutomationRule, error) {
	var rule domain.AutomationRule
	err := row.Scan(
		&rule.ID,
		&rule.ProjectID,
		&rule.Name,
		&rule.TriggerType,
		&rule.TriggerConfig,
		&rule.Conditions,
		&rule.Actions,
		&rule.IsActive,
		&rule.ExecutionCount,
		&rule.LastExecutedAt,
		&rule.CreatedAt,
	)
	return rule, err
}

// GetActiveRulesForEvent haalt de actieve regels van een project op die op dit
// event type (of op 'any') reageren, oudste eerst.
func (s *RuleStore) GetActiveRulesForEvent(ctx context.Context, projectID uuid.UUID, eventType string) ([]domain.AutomationRule, error) {
	query := `
    SELECT id, project_id, name, trigger_type, trigger_config, conditions, actions,
           is_active, execution_count, last_executed_at, created_at
    FROM automation_rules
    WHERE project_id = $1
      AND is_active = true
      AND trigger_type IN ($2, $3)
    ORDER BY created_at;
    `

	rows, err := s.db.Query(ctx, query, projectID, eventType, domain.TriggerAny)
	if err != nil {
		return nil, fmt.Errorf("db query error: %w", err)
	}
	defer rows.Close()

	var rules []domain.AutomationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("db row scan error: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db rows error: %w", err)
	}

	return rules, nil
}

// RecordRuleExecution verhoogt de teller en zet het tijdstip van de laatste uitvoering.
func (s *RuleStore) RecordRuleExecution(ctx context.Context, ruleID uuid.UUID) error {
	query := `
    UPDATE automation_rules
    SET execution_count = execution_count + 1, last_executed_at = now()
    WHERE id = $1;
    `

	cmdTag, err := s.db.Exec(ctx, query, ruleID)
	if err != nil {
		return fmt.Errorf("db exec error: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("no rule found with ID %s to update", ruleID)
	}

	return nil
}
