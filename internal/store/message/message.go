package message

import (
	"context"
	"errors"
	"fmt"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrInstanceNotFound is returned when the instance does not exist within the project.
var ErrInstanceNotFound = errors.New("instance not found")

// CreateMessageLogParams contains the fields of an outbound message attempt.
type CreateMessageLogParams struct {
	ProjectID    uuid.UUID
	InstanceID   uuid.UUID
	EventID      *uuid.UUID
	Recipient    string
	Message      string
	MessageType  string
	Status       domain.MessageLogStatus
	ExternalID   string
	ErrorMessage string
}

// MessageStorer defines messaging related database operations.
type MessageStorer interface {
	GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error)
	CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error
}

// MessageStore handles messaging instances and the message log.
type MessageStore struct {
	db database.Querier
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db database.Querier) MessageStorer {
	return &MessageStore{db: db}
}

// GetInstanceWithBackend laadt een instance samen met de backend waaraan hij gekoppeld is.
func (s *MessageStore) GetInstanceWithBackend(ctx context.Context, projectID, instanceID uuid.UUID) (domain.MessagingInstance, error) {
	query := `
    SELECT i.id, i.project_id, i.name, i.instance_token, i.created_at,
           b.id, b.url, b.token, b.is_connected
    FROM messaging_instances i
    JOIN messaging_backends b ON b.id = i.backend_id
    WHERE i.id = $1 AND i.project_id = $2;
    `

	var inst domain.MessagingInstance
	err := s.db.QueryRow(ctx, query, instanceID, projectID).Scan(
		&inst.ID,
		&inst.ProjectID,
		&inst.Name,
		&inst.InstanceToken,
		&inst.CreatedAt,
		&inst.Backend.ID,
		&inst.Backend.URL,
		&inst.Backend.Token,
		&inst.Backend.IsConnected,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MessagingInstance{}, ErrInstanceNotFound
		}
		return domain.MessagingInstance{}, fmt.Errorf("db query error: %w", err)
	}

	return inst, nil
}

// CreateMessageLog slaat een verzendpoging op, geslaagd of niet.
func (s *MessageStore) CreateMessageLog(ctx context.Context, arg CreateMessageLogParams) error {
	query := `
    INSERT INTO message_logs (
        project_id, instance_id, event_id, recipient, message,
        message_type, status, external_id, error_message
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `

	_, err := s.db.Exec(ctx, query,
		arg.ProjectID,
		arg.InstanceID,
		arg.EventID,
		arg.Recipient,
		arg.Message,
		arg.MessageType,
		arg.Status,
		nullable(arg.ExternalID),
		nullable(arg.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("db exec error: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
