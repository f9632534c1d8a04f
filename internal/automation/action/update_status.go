package action

import (
	"context"
	"errors"

	"automation-worker/internal/automation"
	"automation-worker/internal/domain"
	"automation-worker/internal/store"
)

// UpdateStatusConfig is the config of an update_status action.
type UpdateStatusConfig struct {
	Table       string `json:"table"       validate:"required"`
	Column      string `json:"column"      default:"status"`
	Value       any    `json:"value"`
	WhereColumn string `json:"whereColumn" default:"id"`
	WhereValue  any    `json:"whereValue"`
}

// UpdateStatus sets one column on rows of an allow-listed table.
type UpdateStatus struct {
	store StatusStore
}

func (*UpdateStatus) Type() domain.ActionType { return domain.ActionUpdateStatus }

func (u *UpdateStatus) Execute(ctx context.Context, ec automation.ExecContext, config map[string]any) domain.ActionResult {
	// De allow-list gaat voor alles, ook voor config validatie
	if name, _ := config["table"].(string); name != "" {
		if _, ok := domain.ParseMutableTable(name); !ok {
			return failure("Table not allowed")
		}
	}

	cfg, err := decodeConfig[UpdateStatusConfig](config)
	if err != nil {
		return failure(err.Error())
	}
	table, ok := domain.ParseMutableTable(cfg.Table)
	if !ok {
		return failure("Table not allowed")
	}

	value := renderValue(cfg.Value, ec.Payload)
	whereValue := renderValue(cfg.WhereValue, ec.Payload)
	if whereValue == nil {
		whereValue = ec.Event.ID
	}

	rows, err := u.store.UpdateColumn(ctx, store.UpdateColumnParams{
		ProjectID:   ec.Event.ProjectID,
		Table:       table,
		Column:      cfg.Column,
		Value:       value,
		WhereColumn: cfg.WhereColumn,
		WhereValue:  whereValue,
	})
	if err != nil {
		if errors.Is(err, store.ErrTableNotAllowed) {
			return failure("Table not allowed")
		}
		return failure(err.Error())
	}

	return success(map[string]any{
		"table":        string(table),
		"column":       cfg.Column,
		"value":        value,
		"rowsAffected": rows,
	})
}

// renderValue fills placeholders in string values; other values pass through.
func renderValue(v any, payload automation.Payload) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return automation.RenderTemplate(s, payload)
}
