package coze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxConversationBody bounds how much of a conversation response is read.
const maxConversationBody = 1 << 20

// createConversationResponse is the envelope returned by
// POST /v1/conversation/create.
type createConversationResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreateConversation opens a new, empty conversation and returns its id.
// Every failure is logged here and returned; nothing is retried.
func (c *Client) CreateConversation(ctx context.Context) (string, error) {
	id, err := c.createConversation(ctx)
	if err != nil {
		c.logger.Error("create conversation request failed", "error", err)
		return "", err
	}

	c.logger.Info("conversation created", "conversation_id", id)
	return id, nil
}

func (c *Client) createConversation(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createConversationPath, strings.NewReader("{}"))
	if err != nil {
		return "", fmt.Errorf("building conversation request: %w", err)
	}
	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending conversation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxConversationBody))
	if err != nil {
		return "", fmt.Errorf("reading conversation response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{
			Op:         "create conversation",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var envelope createConversationResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decoding conversation response: %w", err)
	}

	if envelope.Data == nil || envelope.Data.ID == "" {
		if envelope.Msg != "" {
			return "", fmt.Errorf("%w (code %d: %s)", ErrMissingConversationID, envelope.Code, envelope.Msg)
		}
		return "", ErrMissingConversationID
	}

	return envelope.Data.ID, nil
}
