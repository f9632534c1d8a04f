package action

import (
	"context"

	"automation-worker/internal/automation"
	"automation-worker/internal/domain"

	"go.uber.org/zap"
)

// LogConfig is the config of a log action.
type LogConfig struct {
	Message string `json:"message"`
}

// Log writes the message and the event payload to the application log.
type Log struct {
	logger *zap.Logger
}

func (*Log) Type() domain.ActionType { return domain.ActionLog }

func (l *Log) Execute(_ context.Context, ec automation.ExecContext, raw map[string]any) domain.ActionResult {
	cfg, err := decodeConfig[LogConfig](raw)
	if err != nil {
		return failure(err.Error())
	}

	message := automation.RenderTemplate(cfg.Message, ec.Payload)
	l.logger.Info("automation log action",
		zap.String("message", message),
		zap.String("rule_id", ec.RuleID.String()),
		zap.String("rule_name", ec.RuleName),
		zap.String("event_id", ec.Event.ID.String()),
		zap.String("project_id", ec.Event.ProjectID.String()),
		zap.ByteString("payload", ec.Payload.Raw()),
	)

	return success(map[string]any{"logged": true, "message": message})
}
