package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/services"
)

// requestDeadline caps the whole answer path including gateway retries, so a
// hung model call cannot pin a request worker.
const requestDeadline = 90 * time.Second

type QueryHandler struct {
	queryService *services.QueryService
}

func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// AskRequest is the body for POST /ask.
type AskRequest struct {
	BusinessID string           `json:"business_id"`
	SessionID  string           `json:"session_id"`
	Query      string           `json:"query"`
	History    []policy.Message `json:"history"`
}

func (h *QueryHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}

	if req.BusinessID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "business_id is required",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestDeadline)
	defer cancel()

	result, err := h.queryService.AnswerQuery(ctx, req.BusinessID, req.SessionID, req.Query, req.History)
	if err != nil {
		if errors.Is(err, agent.ErrTenantUnavailable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "business not found or has no knowledge base",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to process query",
		})
	}

	return c.JSON(result)
}

// SaveTurnRequest is the body for POST /conversations/:sessionID/turns.
type SaveTurnRequest struct {
	BusinessID string           `json:"business_id"`
	Messages   []policy.Message `json:"messages"`
	Ended      bool             `json:"ended"`
}

func (h *QueryHandler) SaveTurn(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is required",
		})
	}

	var req SaveTurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}

	if req.BusinessID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "business_id is required",
		})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages are required",
		})
	}

	if err := h.queryService.SaveTurn(req.BusinessID, sessionID, req.Messages, req.Ended); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save turn",
		})
	}

	return c.JSON(fiber.Map{
		"accepted": true,
	})
}
