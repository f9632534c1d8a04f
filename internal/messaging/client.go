// Package messaging talks to the messaging backends that deliver outbound chat messages.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"automation-worker/internal/deliverer"
	"automation-worker/internal/domain"

	"github.com/tidwall/gjson"
)

// SendRequest is the body of POST <backend>/send.
type SendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SendResponse is what the backend answered.
type SendResponse struct {
	StatusCode int
	MessageID  string
	Body       json.RawMessage
}

// Client sends messages through a backend.
type Client struct {
	deliverer deliverer.Deliverer
}

func NewClient(d deliverer.Deliverer) *Client {
	return &Client{deliverer: d}
}

// Send posts one message. A transport error or a non-2xx status is an error.
func (c *Client) Send(ctx context.Context, backend domain.MessageBackend, instanceToken string, msg SendRequest) (SendResponse, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return SendResponse{}, fmt.Errorf("could not encode message: %w", err)
	}

	res := c.deliverer.Deliver(ctx, &deliverer.Request{
		URL:     strings.TrimRight(backend.URL, "/") + "/send",
		Method:  http.MethodPost,
		Payload: body,
		Headers: map[string]string{
			"Authorization":    "Bearer " + backend.Token,
			"X-Instance-Token": instanceToken,
		},
	})
	if res.Error != nil {
		return SendResponse{}, fmt.Errorf("backend request failed: %w", res.Error)
	}

	out := SendResponse{StatusCode: res.StatusCode}
	if gjson.ValidBytes(res.ResponseBody) {
		out.Body = json.RawMessage(res.ResponseBody)
		out.MessageID = gjson.GetBytes(res.ResponseBody, "messageId").String()
	}

	if !res.Is2xx() {
		return out, fmt.Errorf("backend returned HTTP %d: %s", res.StatusCode, strings.TrimSpace(string(res.ResponseBody)))
	}

	return out, nil
}
