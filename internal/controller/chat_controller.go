package controller

import (
	"bufio"
	"context"
	"errors"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
)

const (
	streamRateLimit  = 10
	streamRateWindow = time.Minute
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	rdb     *redis.Client
}

func NewChatController(service service.IChatService, rdb *redis.Client) IChatController {
	return &chatController{service: service, rdb: rdb}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1", serverutils.JwtMiddleware)
	h.Post("/stream", serverutils.RateLimiterMiddleware(c.rdb, streamRateLimit, streamRateWindow), c.Stream)
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:id", c.GetSession)
	h.Delete("/sessions/:id", c.DeleteSession)
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	return uuid.Parse(raw)
}

// Stream runs one chat exchange over server-sent events. Failures before
// generation starts are plain HTTP errors; everything after the SSE
// handshake is reported in-band, content chunks as data frames and
// failures as error events.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": "Invalid token",
		})
	}

	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Malformed request body",
		})
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": err.Error(),
		})
	}

	// Session resolution and message validation happen before the response
	// commits to an event stream.
	exchange, err := c.service.PrepareStream(ctx.Context(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": "Message must not be empty",
			})
		case errors.Is(err, service.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": "Session not found",
			})
		default:
			return err
		}
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The stream writer runs after this handler returns, so the request
	// context cannot be used inside it.
	svc := c.service

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sse := serverutils.NewSSEWriter(w)

		emit := func(chunk string) error {
			if err := sse.WriteContent(chunk); err != nil {
				// Write failure means the client disconnected; cancel so
				// the upstream completion stops too.
				cancel()
				return err
			}
			return nil
		}

		turn, streamErr := svc.StreamChat(streamCtx, userId, exchange, emit)
		if streamErr != nil {
			_ = sse.WriteError(streamErrorMessage(streamErr))
			if turn == nil {
				return
			}
		}
		_ = sse.WriteDone(turn.SessionId.String())
	}))

	return nil
}

// streamErrorMessage maps internal failures to client-safe text. Raw error
// strings never reach the event stream.
func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrInvalidRequest):
		return "The model provider rejected the request."
	case errors.Is(err, llm.ErrAuthFailure):
		return "Model provider authentication failed."
	case errors.Is(err, llm.ErrRateLimited):
		return "The model provider is rate limiting requests. Please retry shortly."
	case errors.Is(err, llm.ErrUpstreamTimeout):
		return "The model provider timed out."
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return "The model provider is unavailable."
	default:
		return "Something went wrong while generating the response."
	}
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.CreateSession(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Session created",
		"data":    res,
	})
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.service.GetAllSessions(ctx.Context(), userId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Invalid session id",
		})
	}

	res, err := c.service.GetSession(ctx.Context(), userId, sessionId)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": "Session not found",
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Invalid session id",
		})
	}

	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": "Session not found",
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Session deleted",
		"data":    nil,
	})
}
