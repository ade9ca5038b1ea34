package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vaanidesk/vaanidesk-be/internal/shared/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.Ping(); err != nil {
		status = "degraded"
		dbStatus = "disconnected"
	}

	return c.JSON(fiber.Map{
		"status":   status,
		"database": dbStatus,
	})
}
