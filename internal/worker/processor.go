package worker

import (
	"automation-worker/internal/domain"
	"context"
)

// EventProcessor evaluates one claimed event and returns the result to store on it.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev domain.Event) (domain.EventResult, error)
}
