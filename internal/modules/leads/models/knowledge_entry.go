package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// KnowledgeEntry is one question/answer pair deduced from call recordings.
// When a business has any active entries, the structured knowledge base wins
// over raw transcripts as the grounding source.
type KnowledgeEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID string         `gorm:"type:text;not null;index" json:"business_id"`
	Question   string         `gorm:"type:text;not null" json:"question"`
	Answer     string         `gorm:"type:text;not null" json:"answer"`
	Tags       pq.StringArray `gorm:"type:text[]" json:"tags"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}

// BeforeCreate sets UUID before creating
func (e *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
