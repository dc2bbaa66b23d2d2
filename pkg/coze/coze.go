// Package coze is a client for the two Coze API calls cozeprox needs:
// creating a conversation and streaming a chat reply into it.
package coze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/papercomputeco/cozeprox/pkg/utils"
)

const (
	// DefaultBaseURL is the Coze API endpoint. It is fixed; Config.BaseURL
	// only exists so tests can point the client at a stub server.
	DefaultBaseURL = "https://api.coze.com"

	// DefaultUserID identifies the caller to Coze when none is configured.
	DefaultUserID = "1234567890"

	createConversationPath = "/v1/conversation/create"
	chatPath               = "/v3/chat"
)

// Config holds the static credentials and identifiers for the upstream.
type Config struct {
	BaseURL string
	APIKey  string
	BotID   string
	UserID  string

	// HTTPClient defaults to a client with no overall timeout. Deadlines
	// are carried by the context passed to each call.
	HTTPClient *http.Client
}

// Client talks to the Coze API. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. Empty BaseURL and UserID fall back to the defaults.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserID == "" {
		config.UserID = DefaultUserID
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Exchange creates a fresh conversation and sends content into it as a user
// text message. A failure in the first step is returned as a
// *ConversationError and the second step is never attempted.
func (c *Client) Exchange(ctx context.Context, content string) (*Reply, error) {
	conversationID, err := c.CreateConversation(ctx)
	if err != nil {
		return nil, &ConversationError{Err: err}
	}

	return c.SendMessage(ctx, conversationID, NewMessage(content))
}

// setRequestHeaders applies the bearer credential and JSON content type
// shared by every upstream call.
func (c *Client) setRequestHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
}
