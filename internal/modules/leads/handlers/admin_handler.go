package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
)

// AdminHandler covers the callbacks used by the out-of-scope collaborators:
// the ingestion service (reload after new documents) and tenant teardown.
type AdminHandler struct {
	registry   *agent.Registry
	businesses repositories.BusinessRepo
}

func NewAdminHandler(registry *agent.Registry, businesses repositories.BusinessRepo) *AdminHandler {
	return &AdminHandler{
		registry:   registry,
		businesses: businesses,
	}
}

func (h *AdminHandler) GetBusiness(c *fiber.Ctx) error {
	business, err := h.businesses.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "business not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch business",
		})
	}

	return c.JSON(business)
}

// ReloadAgent drops the cached agent so the next query rebuilds it from
// fresh documents. The ingestion service calls this after any change.
func (h *AdminHandler) ReloadAgent(c *fiber.Ctx) error {
	h.registry.Invalidate(c.Params("id"))
	return c.JSON(fiber.Map{
		"status": "reloaded",
	})
}

// EvictAgent permanently removes a tenant's agent (tenant teardown).
func (h *AdminHandler) EvictAgent(c *fiber.Ctx) error {
	h.registry.Evict(c.Params("id"))
	return c.JSON(fiber.Map{
		"status": "evicted",
	})
}
