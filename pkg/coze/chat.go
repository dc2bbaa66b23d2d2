package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/papercomputeco/cozeprox/pkg/sse"
)

const (
	RoleUser = "user"

	ContentTypeText = "text"
)

// Message is one outbound message.
type Message struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// NewMessage returns a user text message.
func NewMessage(content string) Message {
	return Message{
		Role:        RoleUser,
		Content:     content,
		ContentType: ContentTypeText,
	}
}

// chatRequest is the body of POST /v3/chat.
type chatRequest struct {
	BotID              string    `json:"bot_id"`
	UserID             string    `json:"user_id"`
	Stream             bool      `json:"stream"`
	AutoSaveHistory    bool      `json:"auto_save_history"`
	AdditionalMessages []Message `json:"additional_messages"`
}

// Reply is the assembled result of one streamed chat.
type Reply struct {
	ConversationID string

	// Content is every delta fragment joined in arrival order.
	Content string

	// Fragments counts the delta fragments that made up Content.
	Fragments int

	// TerminalEvent is the last end-of-chat event observed, if any.
	TerminalEvent string

	// DroppedLines counts stream lines skipped for exceeding the line limit.
	DroppedLines int

	parseErrs *multierror.Error
}

// ParseErrors returns the delta lines that were skipped because they could
// not be decoded, or nil. Each wrapped error is a *ParseError.
func (r *Reply) ParseErrors() error {
	return r.parseErrs.ErrorOrNil()
}

// Skipped returns the number of undecodable delta lines.
func (r *Reply) Skipped() int {
	if r.parseErrs == nil {
		return 0
	}
	return len(r.parseErrs.Errors)
}

// SendOption tunes a single SendMessage call.
type SendOption func(*sendOptions)

type sendOptions struct {
	rawStream io.Writer
}

// WithRawStream copies every raw line of the event stream to w.
func WithRawStream(w io.Writer) SendOption {
	return func(o *sendOptions) {
		o.rawStream = w
	}
}

// SendMessage posts msg to the conversation with streaming enabled and reads
// the event stream until the upstream closes it.
//
// A non-200 status is returned as a *StatusError without reading the body.
// Transport errors at any point, including mid-stream, are returned as is.
// Undecodable delta lines are logged, collected on the Reply and skipped.
// A stream with no deltas yields an empty Content.
func (c *Client) SendMessage(ctx context.Context, conversationID string, msg Message, opts ...SendOption) (*Reply, error) {
	o := &sendOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if msg.Role == "" {
		msg.Role = RoleUser
	}
	if msg.ContentType == "" {
		msg.ContentType = ContentTypeText
	}

	payload, err := json.Marshal(chatRequest{
		BotID:              c.config.BotID,
		UserID:             c.config.UserID,
		Stream:             true,
		AutoSaveHistory:    true,
		AdditionalMessages: []Message{msg},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	endpoint := c.baseURL + chatPath + "?" + url.Values{"conversation_id": {conversationID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("chat request failed", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("sending chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &StatusError{Op: "chat", StatusCode: resp.StatusCode}
		c.logger.Error("chat request rejected", "conversation_id", conversationID, "status", resp.StatusCode)
		return nil, err
	}

	reply, err := c.readStream(resp.Body, conversationID, o.rawStream)
	if err != nil {
		c.logger.Error("reading chat stream failed", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("reading chat stream: %w", err)
	}

	c.logger.Info("chat stream complete",
		"conversation_id", conversationID,
		"fragments", reply.Fragments,
		"skipped", reply.Skipped(),
		"terminal_event", reply.TerminalEvent,
	)

	return reply, nil
}

func (c *Client) readStream(body io.Reader, conversationID string, raw io.Writer) (*Reply, error) {
	var (
		content strings.Builder
		parser  StreamParser
		reply   = &Reply{ConversationID: conversationID}
		lines   = sse.NewLineReader(body, raw)
	)

	for {
		line, ok, err := lines.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		res := parser.Feed(line)
		if res == nil {
			continue
		}

		if res.Err != nil {
			c.logger.Error("failed to parse delta payload",
				"conversation_id", conversationID,
				"line", res.Err.Line,
				"error", res.Err.Err,
			)
			reply.parseErrs = multierror.Append(reply.parseErrs, res.Err)
			continue
		}

		content.WriteString(res.Fragment)
		reply.Fragments++
	}

	reply.Content = content.String()
	reply.TerminalEvent = parser.Terminal()
	reply.DroppedLines = lines.Dropped()

	if reply.DroppedLines > 0 {
		c.logger.Warn("dropped over-long stream lines",
			"conversation_id", conversationID,
			"dropped", reply.DroppedLines,
		)
	}

	return reply, nil
}
