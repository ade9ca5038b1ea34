package models

import "time"

// Business is one tenant of the platform. The ID is a human-assigned slug
// (e.g. "rainbow_driving") created by the onboarding process.
type Business struct {
	ID         string `gorm:"type:text;primary_key" json:"id"`
	Name       string `gorm:"type:text;not null" json:"name"`
	Location   string `gorm:"type:text" json:"location"`
	OwnerName  string `gorm:"type:text" json:"owner_name"`
	OwnerPhone string `gorm:"type:text" json:"owner_phone"`
	AgentName  string `gorm:"type:text" json:"agent_name"`

	// VoiceAssistantID is the assistant identifier assigned by the telephony
	// platform; inbound call events are correlated back to a tenant by it.
	VoiceAssistantID string `gorm:"type:text" json:"voice_assistant_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Business) TableName() string {
	return "businesses"
}
