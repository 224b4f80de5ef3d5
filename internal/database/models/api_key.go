package models

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey is an alternative requester identity for programmatic access. The
// raw secret is returned once at creation; only its SHA-256 hash is stored.
type ApiKey struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	KeyHash   string    `gorm:"uniqueIndex;not null" json:"-"`
	KeyPrefix string    `json:"key_prefix"`

	// No default tags on the flags: GORM drops zero-value fields from the
	// INSERT when a column default exists, so a false flag would be stored
	// as the default. Creators set every flag explicitly.
	CanGenerateMockups bool `json:"can_generate_mockups"`
	CanSaveMockups     bool `json:"can_save_mockups"`
	CanAccessTemplates bool `json:"can_access_templates"`

	RateLimit  int        `gorm:"default:60" json:"rate_limit"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}

// Usable reports whether the key may authenticate a request right now.
func (k *ApiKey) Usable(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	return k.ExpiresAt == nil || k.ExpiresAt.After(now)
}
