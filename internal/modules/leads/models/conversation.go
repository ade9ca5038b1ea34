package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vaanidesk/vaanidesk-be/internal/core/policy"
)

// Lead classification values produced by the extraction worker.
const (
	ClassificationHotLead        = "HOT_LEAD"
	ClassificationGeneralInquiry = "GENERAL_INQUIRY"
	ClassificationSpam           = "SPAM"
	ClassificationUnrelated      = "UNRELATED"
)

// ValidClassification reports whether v is one of the known lead classes.
func ValidClassification(v string) bool {
	switch v {
	case ClassificationHotLead, ClassificationGeneralInquiry, ClassificationSpam, ClassificationUnrelated:
		return true
	}
	return false
}

// Conversation is the durable record of one session/call. The business
// assignment is immutable after creation; messages are append-only; the
// lead columns stay NULL until the extraction worker fills them in.
type Conversation struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID  string    `gorm:"type:text;uniqueIndex;not null" json:"session_id"`
	BusinessID string    `gorm:"type:text;not null;index" json:"business_id"`
	Language   string    `gorm:"type:text" json:"language"`

	Messages datatypes.JSON `gorm:"type:jsonb;not null" json:"messages"`

	CustomerName       *string `gorm:"type:text" json:"customer_name"`
	CustomerPhone      *string `gorm:"type:text" json:"customer_phone"`
	Summary            *string `gorm:"type:text" json:"summary"`
	LeadClassification *string `gorm:"type:text" json:"lead_classification"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate sets UUID before creating
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// GetMessages decodes the stored JSONB message history.
func (c *Conversation) GetMessages() ([]policy.Message, error) {
	if len(c.Messages) == 0 {
		return nil, nil
	}
	var messages []policy.Message
	if err := json.Unmarshal(c.Messages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// EncodeMessages serializes a message history for the JSONB column.
func EncodeMessages(messages []policy.Message) (datatypes.JSON, error) {
	if messages == nil {
		messages = []policy.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// LeadFields is the partial lead update merged into a conversation. Nil (or
// empty) fields are left untouched so a later sparse extraction can never
// erase values captured earlier.
type LeadFields struct {
	CustomerName       *string
	CustomerPhone      *string
	Summary            *string
	LeadClassification *string
}

// Updates returns the column map for a field-level merge. Nil and empty
// values are dropped.
func (f LeadFields) Updates() map[string]interface{} {
	updates := make(map[string]interface{})

	set := func(column string, v *string) {
		if v != nil && *v != "" {
			updates[column] = *v
		}
	}

	set("customer_name", f.CustomerName)
	set("customer_phone", f.CustomerPhone)
	set("summary", f.Summary)
	set("lead_classification", f.LeadClassification)

	return updates
}

// IsEmpty reports whether the update would touch no columns.
func (f LeadFields) IsEmpty() bool {
	return len(f.Updates()) == 0
}
