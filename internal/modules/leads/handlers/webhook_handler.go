package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/services"
)

// WebhookHandler receives events from the telephony/voice platform.
type WebhookHandler struct {
	callService *services.CallService
	secret      string
}

func NewWebhookHandler(callService *services.CallService, secret string) *WebhookHandler {
	return &WebhookHandler{
		callService: callService,
		secret:      secret,
	}
}

// voiceEvent mirrors the platform's webhook envelope. Only end-of-call
// reports are acted on; everything else is acknowledged and dropped.
type voiceEvent struct {
	Type        string `json:"type"`
	EndedReason string `json:"ended_reason"`
	Call        struct {
		ID string `json:"id"`
	} `json:"call"`
	Assistant struct {
		ID string `json:"id"`
	} `json:"assistant"`
	Messages []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"messages"`
}

func (h *WebhookHandler) ReceiveVoiceEvent(c *fiber.Ctx) error {
	if h.secret != "" && c.Get("X-Webhook-Secret") != h.secret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid webhook secret",
		})
	}

	var event voiceEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}

	if event.Type != "end-of-call-report" {
		log.Debug().Str("type", event.Type).Msg("Ignoring voice event")
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	report := services.CallReport{
		CallID:      event.Call.ID,
		AssistantID: event.Assistant.ID,
		EndedReason: event.EndedReason,
	}
	for _, msg := range event.Messages {
		// The platform labels the agent side "bot"/"assistant" depending on
		// transport; normalize to our roles.
		role := policy.RoleAssistant
		if msg.Role == "user" || msg.Role == "customer" {
			role = policy.RoleUser
		}
		report.Messages = append(report.Messages, policy.Message{Role: role, Text: msg.Text})
	}

	if err := h.callService.HandleEndOfCall(report); err != nil {
		log.Error().Err(err).Str("call_id", report.CallID).Msg("❌ Failed to handle end-of-call report")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record call",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
