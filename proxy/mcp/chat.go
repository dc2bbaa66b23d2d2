package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/cozeprox/pkg/coze"
	"github.com/papercomputeco/cozeprox/pkg/logger"
)

var (
	chatToolName    = "chat"
	chatDescription = "Send a message to the configured Coze bot and return its complete reply. Each call starts a new conversation."
)

// ChatInput represents the input arguments for the chat tool.
type ChatInput struct {
	Message string `json:"message" jsonschema:"the message to send to the bot"`
}

// ChatOutput represents the output of the chat tool.
type ChatOutput struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// handleChat processes a chat tool call.
func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	log := s.config.Logger

	if strings.TrimSpace(input.Message) == "" {
		return toolError("message is required"), ChatOutput{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	log.Debug("MCP chat request", "message_len", len(input.Message))

	reply, err := s.config.Upstream.Exchange(ctx, input.Message)
	if err != nil {
		log.Error("MCP chat failed", logger.Err(err))

		var convErr *coze.ConversationError
		if errors.As(err, &convErr) {
			return toolError(fmt.Sprintf("Failed to create conversation: %v", convErr.Err)), ChatOutput{}, nil
		}
		return toolError(fmt.Sprintf("Chat failed: %v", err)), ChatOutput{}, nil
	}

	if reply.Skipped() > 0 {
		log.Warn("MCP chat reply skipped malformed lines",
			slog.String("conversation_id", reply.ConversationID),
			slog.Int("skipped", reply.Skipped()),
		)
	}

	return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: reply.Content},
			},
		}, ChatOutput{
			Response:       reply.Content,
			ConversationID: reply.ConversationID,
		}, nil
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
