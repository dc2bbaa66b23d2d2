// Package proxy provides the cozeprox HTTP front door: a single POST /chat
// route that relays a message to a Coze bot and answers with the full reply.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/cozeprox/pkg/coze"
	chatmcp "github.com/papercomputeco/cozeprox/proxy/mcp"
)

// DefaultTimeout bounds one /chat request when Config.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// Upstream runs one full chat exchange: a fresh conversation plus one
// streamed reply. *coze.Client satisfies it.
type Upstream interface {
	Exchange(ctx context.Context, message string) (*coze.Reply, error)
}

// Proxy is the HTTP front door. Requests are independent: the only state
// shared between them is the read-only configuration and the upstream client.
type Proxy struct {
	config   Config
	upstream Upstream
	logger   *slog.Logger
	server   *fiber.App
}

// New creates a new Proxy.
func New(config Config, upstream Upstream, log *slog.Logger) (*Proxy, error) {
	if upstream == nil {
		return nil, errors.New("upstream is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		AppName:               "cozeprox",
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(config.CORSOrigins),
	}))
	app.Use(compress.New())

	p := &Proxy{
		config:   config,
		upstream: upstream,
		logger:   log,
		server:   app,
	}

	app.Get("/ping", p.handlePing)
	app.Post("/chat", p.handleChat)

	if config.EnableMCP {
		mcpServer, err := chatmcp.NewServer(chatmcp.Config{
			Upstream: upstream,
			Timeout:  config.Timeout,
			Logger:   log.With("component", "mcp"),
		})
		if err != nil {
			return nil, fmt.Errorf("could not create MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return p, nil
}

// Run starts the front door on the configured listening address.
func (p *Proxy) Run() error {
	p.logger.Info("starting cozeprox server",
		"listen", p.config.ListenAddr,
		"mcp", p.config.EnableMCP,
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the front door using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting cozeprox server",
		"listen", listener.Addr().String(),
		"mcp", p.config.EnableMCP,
	)

	return p.server.Listener(listener)
}

// Close gracefully shuts down the front door, letting in-flight requests
// finish.
func (p *Proxy) Close() error {
	return p.server.Shutdown()
}

// ShutdownWithContext shuts down the front door, abandoning in-flight
// requests once ctx is done.
func (p *Proxy) ShutdownWithContext(ctx context.Context) error {
	return p.server.ShutdownWithContext(ctx)
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}

// requestID returns the id the requestid middleware assigned to c.
func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

var _ Upstream = (*coze.Client)(nil)

