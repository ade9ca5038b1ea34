package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/core/kb"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
)

// scriptedProvider answers the resolve probe, then replays scripted replies.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []func() (string, error)
	call    int
}

func (p *scriptedProvider) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call >= len(p.replies) {
		return "ok", nil
	}
	reply := p.replies[p.call]
	p.call++
	return reply()
}

func (p *scriptedProvider) GetProviderName() string { return "scripted" }

func reply(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func replyErr(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

type businessLoaderMap map[string]*models.Business

func (m businessLoaderMap) GetByID(id string) (*models.Business, error) {
	b, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

type sourceLoaderFixed struct{ source *kb.Source }

func (s sourceLoaderFixed) GetSource(businessID string) (*kb.Source, error) {
	return s.source, nil
}

// memoryConversationRepo is an in-memory ConversationRepo. Mutex-guarded
// because the extraction worker touches it from its own goroutine.
type memoryConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
}

func newMemoryConversationRepo() *memoryConversationRepo {
	return &memoryConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (r *memoryConversationRepo) Create(sessionID, businessID string, language policy.Language) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, err := models.EncodeMessages(nil)
	if err != nil {
		return nil, err
	}
	c := &models.Conversation{
		SessionID:  sessionID,
		BusinessID: businessID,
		Language:   string(language),
		Messages:   messages,
		StartedAt:  time.Now(),
	}
	r.conversations[sessionID] = c
	return c, nil
}

func (r *memoryConversationRepo) GetBySessionID(sessionID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memoryConversationRepo) SaveMessages(sessionID string, messages []policy.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	encoded, err := models.EncodeMessages(messages)
	if err != nil {
		return err
	}
	c.Messages = encoded
	return nil
}

func (r *memoryConversationRepo) MergeLead(sessionID string, fields models.LeadFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updates := fields.Updates()
	if v, ok := updates["customer_name"].(string); ok {
		c.CustomerName = &v
	}
	if v, ok := updates["customer_phone"].(string); ok {
		c.CustomerPhone = &v
	}
	if v, ok := updates["summary"].(string); ok {
		c.Summary = &v
	}
	if v, ok := updates["lead_classification"].(string); ok {
		c.LeadClassification = &v
	}
	return nil
}

func (r *memoryConversationRepo) MarkEnded(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.EndedAt == nil {
		now := time.Now()
		c.EndedAt = &now
	}
	return nil
}

func (r *memoryConversationRepo) ListByBusiness(businessID string, limit int) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Conversation
	for _, c := range r.conversations {
		if c.BusinessID == businessID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memoryConversationRepo) ListLeads(limit int) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Conversation
	for _, c := range r.conversations {
		if c.CustomerName != nil || c.CustomerPhone != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memoryConversationRepo) CountByClassification() (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, c := range r.conversations {
		if c.LeadClassification != nil {
			counts[*c.LeadClassification]++
		}
	}
	return counts, nil
}

func testQueryService(provider llm.Provider, repo *memoryConversationRepo, source *kb.Source) *QueryService {
	registry := agent.NewRegistry(
		businessLoaderMap{
			"rainbow_driving": {
				ID:         "rainbow_driving",
				Name:       "Rainbow Driving School",
				OwnerName:  "Ravi Kumar",
				OwnerPhone: "9876543210",
				AgentName:  "Priya",
			},
		},
		sourceLoaderFixed{source: source},
		provider,
		[]string{"model-a"},
	)
	leadService := NewLeadService(registry, repo)
	return NewQueryService(registry, repo, leadService)
}

func groundedSource() *kb.Source {
	return &kb.Source{
		KB: &kb.KnowledgeBase{
			BusinessName: "Rainbow Driving School",
			QAPairs:      []kb.QAPair{{Question: "Fees?", Answer: "5000 per month."}},
		},
	}
}

func TestAnswerQueryHappyPath(t *testing.T) {
	provider := &scriptedProvider{replies: []func() (string, error){
		reply("ok"), // resolve probe
		reply("The fees are 5000 per month. May I have your name and number?"),
	}}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	result, err := s.AnswerQuery(context.Background(), "rainbow_driving", "session-1", "What are the fees?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The fees are 5000 per month. May I have your name and number?", result.Answer)
	assert.Equal(t, policy.LanguageEnglish, result.Language)
	assert.Equal(t, "session-1", result.SessionID)
	assert.Equal(t, "model-a", result.Model)
	assert.Empty(t, result.ErrCode)

	// The turn is persisted: history plus the new user/assistant pair.
	conversation, err := repo.GetBySessionID("session-1")
	require.NoError(t, err)
	messages, err := conversation.GetMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, policy.RoleUser, messages[0].Role)
	assert.Equal(t, "What are the fees?", messages[0].Text)
	assert.Equal(t, policy.RoleAssistant, messages[1].Role)
}

func TestAnswerQueryGeneratesSessionID(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	result, err := s.AnswerQuery(context.Background(), "rainbow_driving", "", "hello", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestAnswerQueryHindiAnswerLanguage(t *testing.T) {
	provider := &scriptedProvider{replies: []func() (string, error){
		reply("ok"),
		reply("जी हाँ, फीस 5000 रुपये महीना है।"),
	}}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	// Hinglish query in Latin script, Devanagari answer: the result language
	// follows the answer so voice synthesis picks the right voice.
	result, err := s.AnswerQuery(context.Background(), "rainbow_driving", "session-1", "fees kitni hai", nil)
	require.NoError(t, err)
	assert.Equal(t, policy.LanguageHindi, result.Language)
}

func TestAnswerQueryUnknownTenant(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	_, err := s.AnswerQuery(context.Background(), "nope", "session-1", "hello", nil)
	assert.ErrorIs(t, err, agent.ErrTenantUnavailable)
}

func TestAnswerQueryNoKnowledgeBase(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, &kb.Source{})

	result, err := s.AnswerQuery(context.Background(), "rainbow_driving", "session-1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, agent.NoInformationContext, result.Answer)
	assert.Equal(t, "no_knowledge_base", result.ErrCode)

	// Nothing is persisted for an unanswerable tenant.
	_, err = repo.GetBySessionID("session-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAnswerQueryModelFailureSafeMessage(t *testing.T) {
	modelErr := errors.New("400 bad request")
	provider := &scriptedProvider{replies: []func() (string, error){
		reply("ok"), // resolve probe
		replyErr(modelErr),
	}}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	result, err := s.AnswerQuery(context.Background(), "rainbow_driving", "session-1", "What are the fees?", nil)
	require.NoError(t, err)
	assert.Equal(t, "processing_error", result.ErrCode)
	assert.Contains(t, result.Answer, "technical difficulties")
}

func TestSafeFailureMessages(t *testing.T) {
	biz := llm.BusinessPrompt{OwnerPhone: "9876543210"}
	rateLimited := fmt.Errorf("429: %w", llm.ErrRateLimited)

	msg, code := safeFailureMessage(rateLimited, policy.LanguageEnglish, biz)
	assert.Equal(t, "quota_exceeded", code)
	assert.Contains(t, msg, "9876543210")

	msg, code = safeFailureMessage(rateLimited, policy.LanguageHindi, biz)
	assert.Equal(t, "quota_exceeded", code)
	assert.Contains(t, msg, "9876543210")
	assert.Equal(t, policy.LanguageHindi, policy.DetectLanguage(msg))

	// No published phone number, no dangling placeholder.
	msg, code = safeFailureMessage(rateLimited, policy.LanguageEnglish, llm.BusinessPrompt{})
	assert.Equal(t, "quota_exceeded", code)
	assert.NotContains(t, msg, "at  for")

	msg, code = safeFailureMessage(errors.New("boom"), policy.LanguageEnglish, biz)
	assert.Equal(t, "processing_error", code)
	assert.Contains(t, msg, "technical difficulties")
}

func TestSaveTurn(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	messages := []policy.Message{
		{Role: policy.RoleUser, Text: "नमस्ते, फीस कितनी है?"},
		{Role: policy.RoleAssistant, Text: "5000 रुपये महीना।"},
	}

	require.NoError(t, s.SaveTurn("rainbow_driving", "call-1", messages, true))

	conversation, err := repo.GetBySessionID("call-1")
	require.NoError(t, err)
	assert.Equal(t, "rainbow_driving", conversation.BusinessID)
	assert.Equal(t, string(policy.LanguageHindi), conversation.Language)
	assert.NotNil(t, conversation.EndedAt)

	saved, err := conversation.GetMessages()
	require.NoError(t, err)
	assert.Equal(t, messages, saved)
}

func TestSaveTurnRequiresSessionID(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	err := s.SaveTurn("rainbow_driving", "", nil, false)
	assert.Error(t, err)
}

func TestSaveTurnIdempotentConversation(t *testing.T) {
	provider := &scriptedProvider{}
	repo := newMemoryConversationRepo()
	s := testQueryService(provider, repo, groundedSource())

	first := []policy.Message{{Role: policy.RoleUser, Text: "hi"}}
	require.NoError(t, s.SaveTurn("rainbow_driving", "call-1", first, false))

	second := append(first, policy.Message{Role: policy.RoleAssistant, Text: "hello ji"})
	require.NoError(t, s.SaveTurn("rainbow_driving", "call-1", second, false))

	conversation, err := repo.GetBySessionID("call-1")
	require.NoError(t, err)
	saved, err := conversation.GetMessages()
	require.NoError(t, err)
	assert.Equal(t, second, saved)
}
