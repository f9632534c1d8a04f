package action

import (
	"context"
	"errors"
	"strings"

	"automation-worker/internal/automation"
	"automation-worker/internal/domain"
	"automation-worker/internal/messaging"
	"automation-worker/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendMessageConfig is the config of a send_message action.
type SendMessageConfig struct {
	InstanceID  string `json:"instanceId"  validate:"required,uuid"`
	Message     string `json:"message"     validate:"required"`
	To          string `json:"to"`
	MessageType string `json:"messageType" default:"text"`
}

func (c *SendMessageConfig) normalize() {
	c.InstanceID = strings.TrimSpace(c.InstanceID)
	if c.MessageType == "" {
		c.MessageType = "text"
	}
}

// SendMessage sends a chat message through the instance's backend.
type SendMessage struct {
	store  MessageStore
	sender Sender
	logger *zap.Logger
}

func (*SendMessage) Type() domain.ActionType { return domain.ActionSendMessage }

func (s *SendMessage) Execute(ctx context.Context, ec automation.ExecContext, config map[string]any) domain.ActionResult {
	cfg, err := decodeConfig[SendMessageConfig](config)
	if err != nil {
		return failure(err.Error())
	}
	instanceID, err := uuid.Parse(cfg.InstanceID)
	if err != nil {
		return failure("invalid config: instanceId: must be a UUID")
	}

	to := automation.RenderTemplate(cfg.To, ec.Payload)
	if to == "" {
		to = ec.Payload.String("from")
	}
	msg := messaging.SendRequest{
		To:      digitsOnly(to),
		Message: automation.RenderTemplate(cfg.Message, ec.Payload),
		Type:    cfg.MessageType,
	}

	logEntry := store.CreateMessageLogParams{
		ProjectID:   ec.Event.ProjectID,
		InstanceID:  instanceID,
		EventID:     &ec.Event.ID,
		Recipient:   msg.To,
		Message:     msg.Message,
		MessageType: msg.Type,
		Status:      domain.MessageFailed,
	}

	res := s.send(ctx, ec, instanceID, msg, &logEntry)

	if err := s.store.CreateMessageLog(ctx, logEntry); err != nil {
		s.logger.Warn("could not write message log",
			zap.String("event_id", ec.Event.ID.String()),
			zap.Error(err),
		)
	}
	return res
}

func (s *SendMessage) send(ctx context.Context, ec automation.ExecContext, instanceID uuid.UUID, msg messaging.SendRequest, logEntry *store.CreateMessageLogParams) domain.ActionResult {
	fail := func(reason string) domain.ActionResult {
		logEntry.ErrorMessage = reason
		return failure(reason)
	}

	if msg.To == "" {
		return fail("No recipient")
	}

	instance, err := s.store.GetInstanceWithBackend(ctx, ec.Event.ProjectID, instanceID)
	if err != nil {
		if errors.Is(err, store.ErrInstanceNotFound) {
			return fail("Instance not found")
		}
		return fail(err.Error())
	}
	if !instance.Backend.IsConnected {
		return fail("Backend not connected")
	}

	resp, err := s.sender.Send(ctx, instance.Backend, instance.InstanceToken, msg)
	if err != nil {
		return fail(err.Error())
	}

	logEntry.Status = domain.MessageSent
	logEntry.ExternalID = resp.MessageID
	return success(map[string]any{
		"to":        msg.To,
		"messageId": resp.MessageID,
	})
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
