package action

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"automation-worker/internal/automation"
	"automation-worker/internal/deliverer"
	"automation-worker/internal/domain"

	"go.uber.org/zap"
)

// CallWebhookConfig is the config of a call_webhook action.
type CallWebhookConfig struct {
	URL     string            `json:"url"     validate:"required,http_url"`
	Method  string            `json:"method"  default:"POST" validate:"oneof=GET POST PUT PATCH DELETE"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
}

func (c *CallWebhookConfig) normalize() {
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = http.MethodPost
	}
}

// CallWebhook sends an HTTP request to a tenant configured endpoint.
type CallWebhook struct {
	deliverer deliverer.Deliverer
	logger    *zap.Logger
}

func (*CallWebhook) Type() domain.ActionType { return domain.ActionCallWebhook }

func (c *CallWebhook) Execute(ctx context.Context, ec automation.ExecContext, config map[string]any) domain.ActionResult {
	cfg, err := decodeConfig[CallWebhookConfig](config)
	if err != nil {
		return failure(err.Error())
	}

	req := &deliverer.Request{
		URL:     cfg.URL,
		Method:  cfg.Method,
		Headers: cfg.Headers,
	}
	if cfg.Method != http.MethodGet {
		if cfg.Body == nil {
			req.Payload = ec.Payload.Raw()
		} else {
			body, err := json.Marshal(automation.RenderJSONTemplate(cfg.Body, ec.Payload))
			if err != nil {
				return failure(fmt.Sprintf("could not encode body: %v", err))
			}
			req.Payload = body
		}
	}

	res := c.deliverer.Deliver(ctx, req)
	if res.Error != nil {
		c.logger.Warn("webhook request failed",
			zap.String("event_id", ec.Event.ID.String()),
			zap.String("method", cfg.Method),
			zap.Duration("latency", res.Latency),
			zap.Error(res.Error),
		)
		return failure(res.Error.Error())
	}
	c.logger.Debug("webhook delivered",
		zap.String("event_id", ec.Event.ID.String()),
		zap.Stringer("request", res),
		zap.Duration("latency", res.Latency),
	)

	result := map[string]any{
		"statusCode": res.StatusCode,
		"body":       string(res.ResponseBody),
	}
	if !res.Is2xx() {
		return domain.ActionResult{
			Success: false,
			Result:  result,
			Error:   fmt.Sprintf("Webhook returned HTTP %d", res.StatusCode),
		}
	}
	return success(result)
}
