package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/cozeprox/pkg/coze"
	"github.com/papercomputeco/cozeprox/pkg/logger"
	"github.com/papercomputeco/cozeprox/pkg/utils"
)

// User-visible error messages. Clients of the service display these as is.
const (
	errMessageRequired     = "消息不能为空"
	errInvalidBody         = "无效的请求体"
	errConversationFailed  = "创建会话失败"
	errInternalServerError = "内部服务器错误"
)

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assembled bot reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned with every non-200 status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (p *Proxy) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat relays one message: create a conversation, stream the reply,
// answer with the joined delta content.
func (p *Proxy) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()
	log := p.logger.With("request_id", requestID(c))

	// Bodies that are not declared as JSON are ignored, so they fail the
	// message check below.
	var req ChatRequest
	if body := c.Body(); len(body) > 0 && isJSON(c) {
		if err := json.Unmarshal(body, &req); err != nil {
			log.Warn("invalid chat request body", logger.Err(err))
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: errInvalidBody})
		}
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: errMessageRequired})
	}

	log.Debug("chat request",
		"message", utils.Truncate(req.Message, 80),
	)

	ctx, cancel := context.WithTimeout(c.UserContext(), p.config.Timeout)
	defer cancel()

	reply, err := p.upstream.Exchange(ctx, req.Message)
	if err != nil {
		var convErr *coze.ConversationError
		if errors.As(err, &convErr) {
			log.Error("conversation creation failed", logger.Err(err))
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: errConversationFailed})
		}

		log.Error("chat failed", logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: errInternalServerError})
	}

	attrs := []any{
		slog.String("conversation_id", reply.ConversationID),
		slog.Int("fragments", reply.Fragments),
		slog.Duration("duration", time.Since(startTime)),
	}
	if skipped := reply.Skipped(); skipped > 0 {
		attrs = append(attrs, slog.Int("skipped", skipped))
	}
	log.Info("chat completed", attrs...)

	return c.JSON(ChatResponse{Response: reply.Content})
}

// isJSON reports whether the request declares a JSON body, either
// application/json or a structured application/*+json type.
func isJSON(c *fiber.Ctx) bool {
	if c.Is("json") {
		return true
	}

	mediaType, _, _ := strings.Cut(c.Get(fiber.HeaderContentType), ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
