package action

import (
	"context"
	"math"
	"time"

	"automation-worker/internal/automation"
	"automation-worker/internal/config"
	"automation-worker/internal/domain"
)

// DelayConfig is the config of a delay action.
type DelayConfig struct {
	Seconds float64 `json:"seconds"`
}

// Delay pauses the rule, never longer than max.
type Delay struct {
	max time.Duration
}

func (*Delay) Type() domain.ActionType { return domain.ActionDelay }

func (d *Delay) Execute(ctx context.Context, _ automation.ExecContext, raw map[string]any) domain.ActionResult {
	cfg, err := decodeConfig[DelayConfig](raw)
	if err != nil {
		return failure(err.Error())
	}

	wait := d.clamp(cfg.Seconds)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return success(map[string]any{"delayed": wait.Seconds()})
	case <-ctx.Done():
		return failure("delay interrupted: " + ctx.Err().Error())
	}
}

// clamp begrenst in seconden, voor de conversie naar Duration: grote waarden lopen
// anders over in int64.
func (d *Delay) clamp(seconds float64) time.Duration {
	limit := d.max
	if limit <= 0 || limit > config.MaxActionDelay {
		limit = config.MaxActionDelay
	}
	switch {
	case math.IsNaN(seconds) || seconds <= 0:
		return 0
	case seconds >= limit.Seconds():
		return limit
	default:
		return time.Duration(seconds * float64(time.Second))
	}
}
