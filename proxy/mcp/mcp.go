// Package mcp exposes the cozeprox chat exchange as an MCP (Model Context
// Protocol) tool, so agents can talk to the configured Coze bot directly.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/cozeprox/pkg/coze"
	"github.com/papercomputeco/cozeprox/pkg/utils"
)

// DefaultTimeout bounds one tool call when Config.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// Upstream runs one full chat exchange: a fresh conversation plus one
// streamed reply.
type Upstream interface {
	Exchange(ctx context.Context, message string) (*coze.Reply, error)
}

type Config struct {
	// Upstream performs the chat exchange
	Upstream Upstream

	// Timeout bounds each tool call
	Timeout time.Duration

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the chat tool.
func NewServer(c Config) (*Server, error) {
	if c.Upstream == nil {
		return nil, errors.New("upstream is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cozeprox",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        chatToolName,
		Description: chatDescription,
	}, s.handleChat)

	s.mcpServer = mcpServer

	// Stateless: every tool call opens its own Coze conversation, so there
	// is no session to keep between HTTP requests.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
