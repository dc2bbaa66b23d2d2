// Package chatcmder provides the chat command: talk to the configured Coze
// bot from the terminal without running the server.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cozeprox/pkg/cliui"
	"github.com/papercomputeco/cozeprox/pkg/config"
	"github.com/papercomputeco/cozeprox/pkg/coze"
	"github.com/papercomputeco/cozeprox/pkg/logger"
)

const exitCommand = "/exit"

// chatClient is the part of *coze.Client the command drives.
type chatClient interface {
	CreateConversation(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, conversationID string, msg coze.Message, opts ...coze.SendOption) (*coze.Reply, error)
}

type chatCommander struct {
	cfg    *config.Config
	client chatClient
	logger *slog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// fancy enables the spinner and markdown rendering.
	fancy bool
	raw   bool
	plain bool

	// flag targets; the resolved values live in cfg
	apiKey  string
	botID   string
	userID  string
	timeout time.Duration
}

var chatFlags = []string{
	config.FlagAPIKey,
	config.FlagBotID,
	config.FlagUserID,
	config.FlagTimeout,
}

const chatLongDesc string = `Chat with the configured Coze bot from the terminal.

With a message argument, chat sends it in a new conversation, prints the
reply and exits. Without one it starts an interactive session where every
message goes to the same conversation. Type /exit or press Ctrl+D to quit.

Replies are rendered as markdown when stdout is a terminal.

Examples:
  cozeprox chat "你好"
  cozeprox chat --raw "show me the event stream"
  cozeprox chat`

const chatShortDesc string = "Chat with the Coze bot from the terminal"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd, chatFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg

			// Info records from the client would interleave with the
			// conversation, so only warnings show without --debug.
			cmder.logger = logger.New(
				logger.WithWriter(cmder.errOut),
				logger.WithPretty(true),
				logger.WithLevel(slog.LevelWarn),
				logger.WithDebug(cfg.Log.Debug),
			)

			for _, name := range cfg.MissingCredentials() {
				cmder.logger.Warn("credential not set, upstream calls will be rejected", "env", name)
			}

			client, err := coze.New(coze.Config{
				APIKey: cfg.Coze.APIKey,
				BotID:  cfg.Coze.BotID,
				UserID: cfg.Coze.UserID,
			}, cmder.logger)
			if err != nil {
				return fmt.Errorf("creating coze client: %w", err)
			}
			cmder.client = client

			if f, ok := cmder.out.(*os.File); ok {
				cmder.fancy = !cmder.plain && cliui.IsTerminal(f)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmder.once(cmd.Context(), strings.Join(args, " "))
			}
			return cmder.interactive(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagBotID, &cmder.botID)
	config.AddStringFlag(cmd, config.Flags, config.FlagUserID, &cmder.userID)
	config.AddDurationFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Copy the raw Coze event stream to stderr")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print replies as plain text, even on a terminal")

	return cmd
}

// once sends a single message in a fresh conversation.
func (c *chatCommander) once(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message is empty")
	}

	conversationID, err := c.createConversation(ctx)
	if err != nil {
		return err
	}

	return c.send(ctx, conversationID, message)
}

// interactive reads messages line by line, all in one conversation.
func (c *chatCommander) interactive(ctx context.Context) error {
	conversationID, err := c.createConversation(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s\n\n", cliui.Muted("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, cliui.Prompt("you> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == exitCommand {
			break
		}

		if err := c.send(ctx, conversationID, input); err != nil {
			// keep the session alive; the next message may succeed
			fmt.Fprintf(c.errOut, "  %s %v\n", cliui.Mark(err), err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

func (c *chatCommander) createConversation(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Coze.Timeout.Duration)
	defer cancel()

	var conversationID string
	err := c.step("Creating conversation", func() error {
		var err error
		conversationID, err = c.client.CreateConversation(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}

	c.logger.Debug("conversation ready", "conversation_id", conversationID)
	return conversationID, nil
}

func (c *chatCommander) send(ctx context.Context, conversationID, message string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Coze.Timeout.Duration)
	defer cancel()

	var opts []coze.SendOption
	if c.raw {
		opts = append(opts, coze.WithRawStream(c.errOut))
	}

	var reply *coze.Reply
	err := c.step("Waiting for reply", func() error {
		var err error
		reply, err = c.client.SendMessage(ctx, conversationID, coze.NewMessage(message), opts...)
		return err
	})
	if err != nil {
		return err
	}

	if skipped := reply.Skipped(); skipped > 0 {
		c.logger.Warn("skipped malformed stream lines", "skipped", skipped, logger.Err(reply.ParseErrors()))
	}

	return c.print(reply.Content)
}

// step shows a spinner around fn on a terminal and just runs it otherwise.
func (c *chatCommander) step(msg string, fn func() error) error {
	if !c.fancy {
		return fn()
	}
	return cliui.Step(c.errOut, msg, fn)
}

func (c *chatCommander) print(content string) error {
	if c.fancy && content != "" {
		rendered, err := cliui.RenderMarkdown(content)
		if err != nil {
			c.logger.Debug("markdown rendering failed", logger.Err(err))
		}
		_, err = fmt.Fprint(c.out, rendered)
		return err
	}

	_, err := fmt.Fprintln(c.out, content)
	return err
}
