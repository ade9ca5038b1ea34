package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
)

// AnswerResult is the customer-facing outcome of one turn. ErrCode is set
// when the answer is a language-matched apology rather than a real reply;
// raw provider errors never reach the customer.
type AnswerResult struct {
	Answer    string          `json:"answer"`
	Language  policy.Language `json:"language"`
	SessionID string          `json:"session_id"`
	Model     string          `json:"model,omitempty"`
	ErrCode   string          `json:"error,omitempty"`
}

// QueryService drives the synchronous answer path: policy, prompt, model
// call with retry, persistence, and the detached extraction trigger.
type QueryService struct {
	registry      *agent.Registry
	conversations repositories.ConversationRepo
	leads         *LeadService
}

func NewQueryService(registry *agent.Registry, conversations repositories.ConversationRepo, leads *LeadService) *QueryService {
	return &QueryService{
		registry:      registry,
		conversations: conversations,
		leads:         leads,
	}
}

// AnswerQuery answers one customer turn grounded in the tenant's corpus.
// Unknown tenants surface agent.ErrTenantUnavailable; model failures are
// translated into user-safe messages in the detected language.
func (s *QueryService) AnswerQuery(ctx context.Context, businessID, sessionID, query string, history []policy.Message) (*AnswerResult, error) {
	directives := policy.Evaluate(query, history)

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result := &AnswerResult{
		Language:  directives.Language,
		SessionID: sessionID,
	}

	ag, err := s.registry.Get(businessID)
	if err != nil {
		return nil, err
	}

	if !ag.HasSource() {
		result.Answer = agent.NoInformationContext
		result.ErrCode = "no_knowledge_base"
		return result, nil
	}

	prompt := llm.BuildAnswerPrompt(ag.PromptBusiness(), ag.RenderContext(), query, directives)

	answer, err := ag.LLM.GenerateWithRetry(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("business_id", businessID).Str("session_id", sessionID).Msg("❌ Answer generation failed")
		result.Answer, result.ErrCode = safeFailureMessage(err, directives.Language, ag.PromptBusiness())
		return result, nil
	}

	// The model may answer in a different language than the query used
	// (Hinglish in, Devanagari out); detect from the answer to guide TTS.
	result.Language = policy.DetectLanguage(answer)
	result.Answer = answer
	if model, err := ag.LLM.ResolveModel(ctx); err == nil {
		result.Model = model
	}

	s.persistTurn(businessID, sessionID, query, answer, result.Language, history)
	s.leads.ExtractAsync(sessionID)

	return result, nil
}

// SaveTurn persists a turn batch committed by the request layer (used by the
// voice path and periodic frontend saves) and triggers extraction.
func (s *QueryService) SaveTurn(businessID, sessionID string, messages []policy.Message, ended bool) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	language := policy.LanguageEnglish
	for _, msg := range messages {
		if msg.Role == policy.RoleUser {
			language = policy.DetectLanguage(msg.Text)
			break
		}
	}

	if err := s.ensureConversation(sessionID, businessID, language); err != nil {
		return err
	}

	if err := s.conversations.SaveMessages(sessionID, messages); err != nil {
		return err
	}

	if ended {
		if err := s.conversations.MarkEnded(sessionID); err != nil {
			return err
		}
	}

	s.leads.ExtractAsync(sessionID)
	return nil
}

func (s *QueryService) persistTurn(businessID, sessionID, query, answer string, language policy.Language, history []policy.Message) {
	if err := s.ensureConversation(sessionID, businessID, language); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("⚠️ Failed to ensure conversation")
		return
	}

	messages := append(append([]policy.Message{}, history...),
		policy.Message{Role: policy.RoleUser, Text: query},
		policy.Message{Role: policy.RoleAssistant, Text: answer},
	)

	if err := s.conversations.SaveMessages(sessionID, messages); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("⚠️ Failed to save messages")
	}
}

func (s *QueryService) ensureConversation(sessionID, businessID string, language policy.Language) error {
	_, err := s.conversations.GetBySessionID(sessionID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = s.conversations.Create(sessionID, businessID, language)
	return err
}

// safeFailureMessage translates a model failure into a customer-appropriate
// reply in the resolved language. Quota exhaustion points the customer at
// the business's published phone number.
func safeFailureMessage(err error, language policy.Language, biz llm.BusinessPrompt) (string, string) {
	if errors.Is(err, llm.ErrRateLimited) {
		if biz.OwnerPhone == "" {
			if language == policy.LanguageHindi {
				return "अरे, अभी थोड़ी व्यस्तता है। थोड़ी देर बाद फिर से कोशिश करें या हमें सीधे फोन कर लें।", "quota_exceeded"
			}
			return "I apologize, but I'm experiencing high demand right now. Please try again in a few moments or call us directly for immediate assistance.", "quota_exceeded"
		}
		if language == policy.LanguageHindi {
			return fmt.Sprintf("अरे, अभी थोड़ी व्यस्तता है। थोड़ी देर बाद फिर से कोशिश करें या हमें सीधे %s पर फोन कर लें।", biz.OwnerPhone), "quota_exceeded"
		}
		return fmt.Sprintf("I apologize, but I'm experiencing high demand right now. Please try again in a few moments or call us directly at %s for immediate assistance.", biz.OwnerPhone), "quota_exceeded"
	}

	if language == policy.LanguageHindi {
		return "सॉरी, थोड़ी तकनीकी दिक्कत आ रही है। फिर से कोशिश करें या हमें कॉल करें।", "processing_error"
	}
	return "I apologize, I'm having technical difficulties. Please try again or call us for assistance.", "processing_error"
}
