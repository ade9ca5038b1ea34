package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transcript is one transcribed call recording document produced by the
// ingestion service. Text holds the cleaned/translated rendition and is
// preferred over OriginalText when building grounding context.
type Transcript struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID   string    `gorm:"type:text;not null;index" json:"business_id"`
	Filename     string    `gorm:"type:text;not null" json:"filename"`
	Service      string    `gorm:"type:text" json:"service"` // transcription backend used
	Language     string    `gorm:"type:text" json:"language"`
	Text         string    `gorm:"type:text" json:"text"`
	OriginalText string    `gorm:"type:text" json:"original_text"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Transcript) TableName() string {
	return "transcripts"
}

// BeforeCreate sets UUID before creating
func (t *Transcript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
