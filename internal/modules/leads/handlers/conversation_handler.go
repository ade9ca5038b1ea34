package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
)

type ConversationHandler struct {
	conversations repositories.ConversationRepo
}

func NewConversationHandler(conversations repositories.ConversationRepo) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func (h *ConversationHandler) ListByBusiness(c *fiber.Ctx) error {
	businessID := c.Query("business_id")
	if businessID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "business_id is required",
		})
	}

	limit := c.QueryInt("limit", 100)

	conversations, err := h.conversations.ListByBusiness(businessID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch conversations",
		})
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

func (h *ConversationHandler) GetBySessionID(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")

	conversation, err := h.conversations.GetBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "conversation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch conversation",
		})
	}

	return c.JSON(conversation)
}

// ListLeads serves the sales dashboard: conversations with any captured
// contact information, newest first.
func (h *ConversationHandler) ListLeads(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	leads, err := h.conversations.ListLeads(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch leads",
		})
	}

	return c.JSON(fiber.Map{
		"leads": leads,
		"count": len(leads),
	})
}
