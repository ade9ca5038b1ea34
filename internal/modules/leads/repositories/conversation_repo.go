package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
)

type ConversationRepo interface {
	Create(sessionID, businessID string, language policy.Language) (*models.Conversation, error)
	GetBySessionID(sessionID string) (*models.Conversation, error)
	SaveMessages(sessionID string, messages []policy.Message) error
	MergeLead(sessionID string, fields models.LeadFields) error
	MarkEnded(sessionID string) error
	ListByBusiness(businessID string, limit int) ([]models.Conversation, error)
	ListLeads(limit int) ([]models.Conversation, error)
	CountByClassification() (map[string]int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(sessionID, businessID string, language policy.Language) (*models.Conversation, error) {
	messages, err := models.EncodeMessages(nil)
	if err != nil {
		return nil, err
	}

	conversation := models.Conversation{
		SessionID:  sessionID,
		BusinessID: businessID,
		Language:   string(language),
		Messages:   messages,
		StartedAt:  time.Now(),
	}

	if err := r.db.Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepo) GetBySessionID(sessionID string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.First(&conversation, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// SaveMessages replaces the stored message history with the just-committed
// list. Only the messages column is touched, so a racing lead merge for the
// same session cannot be lost.
func (r *conversationRepo) SaveMessages(sessionID string, messages []policy.Message) error {
	encoded, err := models.EncodeMessages(messages)
	if err != nil {
		return err
	}

	return r.db.Model(&models.Conversation{}).
		Where("session_id = ?", sessionID).
		Update("messages", encoded).Error
}

// MergeLead applies a field-level merge of extracted lead data. Nil/empty
// fields are skipped entirely, so later extractions never null out values a
// previous one captured.
func (r *conversationRepo) MergeLead(sessionID string, fields models.LeadFields) error {
	updates := fields.Updates()
	if len(updates) == 0 {
		return nil
	}

	return r.db.Model(&models.Conversation{}).
		Where("session_id = ?", sessionID).
		Updates(updates).Error
}

func (r *conversationRepo) MarkEnded(sessionID string) error {
	now := time.Now()
	return r.db.Model(&models.Conversation{}).
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		Update("ended_at", now).Error
}

func (r *conversationRepo) ListByBusiness(businessID string, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 100
	}

	var conversations []models.Conversation
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Find(&conversations).Error

	return conversations, err
}

// ListLeads returns conversations with any captured lead information, newest
// first, for the sales dashboard.
func (r *conversationRepo) ListLeads(limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 100
	}

	var conversations []models.Conversation
	err := r.db.Where("customer_name IS NOT NULL OR customer_phone IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&conversations).Error

	return conversations, err
}

func (r *conversationRepo) CountByClassification() (map[string]int64, error) {
	var rows []struct {
		LeadClassification string
		Count              int64
	}

	err := r.db.Model(&models.Conversation{}).
		Select("lead_classification, COUNT(*) as count").
		Where("lead_classification IS NOT NULL").
		Group("lead_classification").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.LeadClassification] = row.Count
	}
	return counts, nil
}
