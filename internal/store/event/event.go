package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrEventNotFound is returned when an update targets an unknown event.
var ErrEventNotFound = errors.New("event not found")

// StaleClaimError is stored on events returned to the queue by ReclaimStale.
const StaleClaimError = "processing timed out"

// EnqueueParams contains the producer side fields of a new event.
type EnqueueParams struct {
	ProjectID uuid.UUID
	EventType string
	Payload   json.RawMessage
}

// EventStorer defines the queue operations of the automation worker.
type EventStorer interface {
	ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error)
	Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error
	RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error)
	ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error)
	Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error)
}

// EventStore handles event queue database operations.
type EventStore struct {
	db database.Querier
}

// NewEventStore creates a new EventStore.
func NewEventStore(db database.Querier) EventStorer {
	return &EventStore{db: db}
}

const eventColumns = `id, project_id, event_type, payload, status, retry_count,
           error_message, result, processed_at, created_at`

// scanEvent scans a database row into an Event.
func scanEvent(row pgx.Row) (domain.Event, error) {
	var ev domain.Event
	err := row.Scan(
		&ev.ID,
		&ev.ProjectID,
		&ev.EventType,
		&ev.Payload,
		&ev.Status,
		&ev.RetryCount,
		&ev.ErrorMessage,
		&ev.Result,
		&ev.ProcessedAt,
		&ev.CreatedAt,
	)
	return ev, err
}

// ClaimPending moves up to limit pending events to 'processing' in one statement.
// Rows locked by a concurrent claimer are skipped, so no event is handed out twice.
func (s *EventStore) ClaimPending(ctx context.Context, limit, maxRetries int) ([]domain.Event, error) {
	query := `
    UPDATE automation_event_queue
    SET status = 'processing', updated_at = now()
    WHERE id IN (
        SELECT id FROM automation_event_queue
        WHERE status = 'pending' AND retry_count < $2
        ORDER BY created_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED
    )
    RETURNING ` + eventColumns + `;
    `

	rows, err := s.db.Query(ctx, query, limit, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("db query error: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("db row scan error: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db rows error: %w", err)
	}

	// RETURNING geeft geen volgorde garantie
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	return events, nil
}

// Complete marks an event as completed and stores its result.
func (s *EventStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	query := `
    UPDATE automation_event_queue
    SET status = 'completed', processed_at = now(), result = $2,
        error_message = NULL, updated_at = now()
    WHERE id = $1;
    `

	cmdTag, err := s.db.Exec(ctx, query, id, result)
	if err != nil {
		return fmt.Errorf("db exec error: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}

	return nil
}

// RecordFailure increments the retry counter and either re-queues the event or
// marks it as permanently failed once the counter reaches maxRetries.
func (s *EventStore) RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) (domain.EventStatus, int, error) {
	query := `
    UPDATE automation_event_queue
    SET retry_count = retry_count + 1,
        status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END,
        error_message = $2,
        updated_at = now()
    WHERE id = $1
    RETURNING status, retry_count;
    `

	var (
		status     domain.EventStatus
		retryCount int
	)
	err := s.db.QueryRow(ctx, query, id, errMsg, maxRetries).Scan(&status, &retryCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return "", 0, fmt.Errorf("db query error: %w", err)
	}

	return status, retryCount, nil
}

// ReclaimStale returns events that stayed in 'processing' longer than olderThan
// to the queue, using the same retry bookkeeping as RecordFailure.
func (s *EventStore) ReclaimStale(ctx context.Context, olderThan time.Duration, maxRetries int) (int64, error) {
	query := `
    UPDATE automation_event_queue
    SET retry_count = retry_count + 1,
        status = CASE WHEN retry_count + 1 >= $2 THEN 'failed' ELSE 'pending' END,
        error_message = $3,
        updated_at = now()
    WHERE status = 'processing' AND updated_at < $1;
    `

	cutoff := time.Now().Add(-olderThan)
	cmdTag, err := s.db.Exec(ctx, query, cutoff, maxRetries, StaleClaimError)
	if err != nil {
		return 0, fmt.Errorf("db exec error: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// Enqueue inserts a new pending event.
func (s *EventStore) Enqueue(ctx context.Context, arg EnqueueParams) (domain.Event, error) {
	payload := arg.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	query := `
    INSERT INTO automation_event_queue (project_id, event_type, payload)
    VALUES ($1, $2, $3)
    RETURNING ` + eventColumns + `;
    `

	ev, err := scanEvent(s.db.QueryRow(ctx, query, arg.ProjectID, arg.EventType, payload))
	if err != nil {
		return domain.Event{}, fmt.Errorf("db scan error: %w", err)
	}

	return ev, nil
}
