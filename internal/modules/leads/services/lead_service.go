package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
)

// extractionTimeout bounds one background extraction run. Abandoning a slow
// run is safe: the next turn triggers a fresh one.
const extractionTimeout = 45 * time.Second

// LeadService mines conversations for lead data off the request path. Every
// failure here is logged and swallowed; nothing propagates to the customer.
type LeadService struct {
	registry      *agent.Registry
	conversations repositories.ConversationRepo
}

func NewLeadService(registry *agent.Registry, conversations repositories.ConversationRepo) *LeadService {
	return &LeadService{
		registry:      registry,
		conversations: conversations,
	}
}

// ExtractAsync fires a detached extraction for a session. The caller never
// waits on it and never observes its outcome.
func (s *LeadService) ExtractAsync(sessionID string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("session_id", sessionID).Msg("❌ Lead extraction panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), extractionTimeout)
		defer cancel()

		if err := s.extractAndMerge(ctx, sessionID); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("⚠️ Lead extraction failed")
		}
	}()
}

func (s *LeadService) extractAndMerge(ctx context.Context, sessionID string) error {
	conversation, err := s.conversations.GetBySessionID(sessionID)
	if err != nil {
		return err
	}

	messages, err := conversation.GetMessages()
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	ag, err := s.registry.Get(conversation.BusinessID)
	if err != nil {
		return err
	}

	fields := s.Extract(ctx, ag, messages)
	if fields.IsEmpty() {
		return nil
	}

	if err := s.conversations.MergeLead(sessionID, fields); err != nil {
		return err
	}

	log.Info().Str("session_id", sessionID).Interface("fields", fields.Updates()).Msg("📇 Lead fields merged")
	return nil
}

// Extract asks the model to structure the conversation into lead fields.
// It never returns an error: a failed call or garbage output degrades to
// empty fields with an UNRELATED classification.
func (s *LeadService) Extract(ctx context.Context, ag *agent.Agent, messages []policy.Message) models.LeadFields {
	if len(messages) == 0 {
		return models.LeadFields{}
	}

	prompt := llm.BuildLeadPrompt(ag.PromptBusiness(), messages)

	// Single attempt per trigger; the next turn is the natural retry.
	text, err := ag.LLM.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Lead extraction model call failed")
		summary := "Error during analysis - conversation data preserved"
		classification := models.ClassificationUnrelated
		return models.LeadFields{
			Summary:            &summary,
			LeadClassification: &classification,
		}
	}

	return ParseExtraction(text)
}

// ParseExtraction parses the fixed NAME:/PHONE:/SUMMARY:/CLASSIFICATION:
// line format. It tolerates reordering and omitted lines; the "Not provided"
// sentinel maps to nil; output with no recognizable line at all degrades to
// an UNRELATED classification instead of failing.
func ParseExtraction(text string) models.LeadFields {
	var fields models.LeadFields
	parsedAny := false

	value := func(line, prefix string) *string {
		v := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		v = strings.Trim(v, `"`)
		if v == "" || strings.EqualFold(v, llm.NotProvided) {
			return nil
		}
		return &v
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "NAME:"):
			parsedAny = true
			fields.CustomerName = value(line, "NAME:")
		case strings.HasPrefix(line, "PHONE:"):
			parsedAny = true
			fields.CustomerPhone = value(line, "PHONE:")
		case strings.HasPrefix(line, "SUMMARY:"):
			parsedAny = true
			fields.Summary = value(line, "SUMMARY:")
		case strings.HasPrefix(line, "CLASSIFICATION:"):
			parsedAny = true
			if v := value(line, "CLASSIFICATION:"); v != nil {
				normalized := strings.ToUpper(*v)
				if models.ValidClassification(normalized) {
					fields.LeadClassification = &normalized
				}
			}
		}
	}

	if !parsedAny {
		classification := models.ClassificationUnrelated
		fields.LeadClassification = &classification
	}

	return fields
}
