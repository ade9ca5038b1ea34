package services

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
)

// ErrCorrelationNotFound means no tenant references the call's assistant id.
// The call still proceeds; only lead capture is skipped.
var ErrCorrelationNotFound = errors.New("no tenant matches assistant id")

// CallReport is an end-of-call notification from the telephony platform.
type CallReport struct {
	CallID      string           `json:"call_id"`
	AssistantID string           `json:"assistant_id"`
	Messages    []policy.Message `json:"messages"`
	EndedReason string           `json:"ended_reason"`
}

// CallService correlates inbound telephony events with tenants and records
// finished calls for lead extraction.
type CallService struct {
	businesses repositories.BusinessRepo
	query      *QueryService
}

func NewCallService(businesses repositories.BusinessRepo, query *QueryService) *CallService {
	return &CallService{
		businesses: businesses,
		query:      query,
	}
}

// ResolveTenant maps a platform-assigned assistant identifier to a tenant by
// scanning stored configurations for the first match. O(tenants) per inbound
// callback; fine at current tenant counts, revisit with an indexed column if
// that changes.
func (s *CallService) ResolveTenant(assistantID string) (string, error) {
	if assistantID == "" {
		return "", ErrCorrelationNotFound
	}

	businesses, err := s.businesses.List()
	if err != nil {
		return "", err
	}

	for _, business := range businesses {
		if business.VoiceAssistantID != "" && business.VoiceAssistantID == assistantID {
			return business.ID, nil
		}
	}

	return "", ErrCorrelationNotFound
}

// HandleEndOfCall records a finished call's transcript under the correlated
// tenant and kicks off lead extraction. An unknown assistant id is a warning,
// not a failure: the platform already served the call.
func (s *CallService) HandleEndOfCall(report CallReport) error {
	businessID, err := s.ResolveTenant(report.AssistantID)
	if err != nil {
		if errors.Is(err, ErrCorrelationNotFound) {
			log.Warn().Str("assistant_id", report.AssistantID).Str("call_id", report.CallID).Msg("⚠️ No tenant for call, skipping lead capture")
			return nil
		}
		return err
	}

	if report.CallID == "" || len(report.Messages) == 0 {
		log.Warn().Str("business_id", businessID).Msg("⚠️ End-of-call report without call id or messages")
		return nil
	}

	if err := s.query.SaveTurn(businessID, report.CallID, report.Messages, true); err != nil {
		return err
	}

	log.Info().Str("business_id", businessID).Str("call_id", report.CallID).Int("messages", len(report.Messages)).Str("reason", report.EndedReason).Msg("📞 Call recorded")
	return nil
}
