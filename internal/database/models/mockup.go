package models

import "github.com/google/uuid"

type MockupType string

const (
	MockupTypeChat   MockupType = "chat"
	MockupTypeAI     MockupType = "ai"
	MockupTypeSocial MockupType = "social"
)

// platformsByType enumerates the allowed platforms per mockup type. The
// three sets are disjoint: a chat platform is never a valid ai platform.
var platformsByType = map[MockupType][]string{
	MockupTypeChat:   {"whatsapp", "imessage", "messenger", "telegram", "discord", "slack", "wechat"},
	MockupTypeAI:     {"chatgpt", "claude", "gemini", "grok", "perplexity"},
	MockupTypeSocial: {"instagram", "twitter", "facebook", "linkedin"},
}

// ValidMockupType reports whether t is one of the known mockup types.
func ValidMockupType(t MockupType) bool {
	_, ok := platformsByType[t]
	return ok
}

// ValidPlatform reports whether platform belongs to the enumeration for t.
func ValidPlatform(t MockupType, platform string) bool {
	for _, p := range platformsByType[t] {
		if p == platform {
			return true
		}
	}
	return false
}

// Platforms returns the allowed platforms for a mockup type.
func Platforms(t MockupType) []string {
	return platformsByType[t]
}

// Mockup is the central entity: a saved, editable fake-screenshot artifact.
// Data and Appearance are opaque JSON payloads whose shape belongs to the
// editor and renderer, never interpreted here.
type Mockup struct {
	Base
	OwnerID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	ProjectID    *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Name         string     `gorm:"not null" json:"name"`
	Type         MockupType `gorm:"not null" json:"type"`
	Platform     string     `gorm:"not null" json:"platform"`
	Data         string     `gorm:"default:'{}'" json:"data"`
	Appearance   string     `gorm:"default:'{}'" json:"appearance"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	IsPublic     bool       `gorm:"default:false" json:"is_public"`

	// Relationships
	Owner    *User           `gorm:"foreignKey:OwnerID" json:"-"`
	Shares   []MockupShare   `gorm:"foreignKey:MockupID;constraint:OnDelete:CASCADE" json:"-"`
	Versions []MockupVersion `gorm:"foreignKey:MockupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Mockup) TableName() string {
	return "mockups"
}
