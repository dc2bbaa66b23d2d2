// Package servecmder provides the serve command, which runs the cozeprox
// HTTP front door.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cozeprox/pkg/config"
	"github.com/papercomputeco/cozeprox/pkg/coze"
	"github.com/papercomputeco/cozeprox/pkg/logger"
	"github.com/papercomputeco/cozeprox/proxy"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	cfg    *config.Config
	logger *slog.Logger

	// flag targets; the resolved values live in cfg
	apiKey      string
	botID       string
	userID      string
	timeout     time.Duration
	port        int
	corsOrigins string
	mcp         bool
	logJSON     bool
	logFile     string
}

var serveFlags = []string{
	config.FlagAPIKey,
	config.FlagBotID,
	config.FlagUserID,
	config.FlagTimeout,
	config.FlagPort,
	config.FlagCORSOrigins,
	config.FlagMCP,
	config.FlagLogJSON,
	config.FlagLogFile,
}

const serveLongDesc string = `Run the cozeprox HTTP server.

POST /chat with {"message": "..."} creates a Coze conversation, streams the
bot's reply and answers with {"response": "..."} once the stream ends.
GET /ping is a health check. With --mcp the same exchange is offered as an
MCP tool at /mcp.

Credentials come from COZE_API_KEY and COZE_BOT_ID, a --config file or flags.

Examples:
  cozeprox serve
  cozeprox serve --port 8080 --mcp
  cozeprox serve --config cozeprox.toml --log-file cozeprox.log`

const serveShortDesc string = "Run the cozeprox HTTP server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd, serveFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagBotID, &cmder.botID)
	config.AddStringFlag(cmd, config.Flags, config.FlagUserID, &cmder.userID)
	config.AddDurationFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddIntFlag(cmd, config.Flags, config.FlagPort, &cmder.port)
	config.AddStringFlag(cmd, config.Flags, config.FlagCORSOrigins, &cmder.corsOrigins)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMCP, &cmder.mcp)
	config.AddBoolFlag(cmd, config.Flags, config.FlagLogJSON, &cmder.logJSON)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = newLogger(c.cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	for _, name := range c.cfg.MissingCredentials() {
		c.logger.Warn("credential not set, upstream calls will be rejected", "env", name)
	}

	client, err := coze.New(coze.Config{
		APIKey: c.cfg.Coze.APIKey,
		BotID:  c.cfg.Coze.BotID,
		UserID: c.cfg.Coze.UserID,
	}, c.logger.With("component", "coze"))
	if err != nil {
		return fmt.Errorf("creating coze client: %w", err)
	}

	p, err := proxy.New(proxy.Config{
		ListenAddr:  c.cfg.Server.ListenAddr(),
		Timeout:     c.cfg.Coze.Timeout.Duration,
		CORSOrigins: c.cfg.Server.AllowedOrigins(),
		EnableMCP:   c.cfg.Server.MCP,
	}, client, c.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errChan := make(chan error, 1)

	go func() {
		if err := p.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := p.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newLogger builds the serve logger: pretty (or JSON) records on out, plus
// JSON records appended to cfg.File when it is set. The returned func closes
// the log file.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func() error, error) {
	console := logger.New(
		logger.WithWriter(out),
		logger.WithDebug(cfg.Debug),
		logger.WithPretty(!cfg.JSON),
		logger.WithJSON(cfg.JSON),
	)

	if cfg.File == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithWriter(f),
		logger.WithDebug(cfg.Debug),
		logger.WithJSON(true),
		logger.WithSource(cfg.Debug),
	)

	return logger.Multi(console, file), f.Close, nil
}
