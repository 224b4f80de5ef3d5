package models

import (
	"time"

	"github.com/google/uuid"
)

type SharePermission string

const (
	SharePermissionView SharePermission = "view"
	SharePermissionEdit SharePermission = "edit"
)

// MockupShare grants view or edit on a mockup to a specific user or to an
// email address (email shares predate the grantee having an account).
// Exactly one of SharedWithUserID / SharedWithEmail is set.
//
// A share whose ExpiresAt lies in the past is inert: it is skipped at
// permission resolution time, never deleted by a sweep.
type MockupShare struct {
	Base
	MockupID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"mockup_id"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"owner_id"`
	SharedWithUserID *uuid.UUID      `gorm:"type:uuid;index" json:"shared_with_user_id,omitempty"`
	SharedWithEmail  string          `gorm:"index" json:"shared_with_email,omitempty"`
	Permission       SharePermission `gorm:"not null;default:'view'" json:"permission"`
	ShareToken       string          `gorm:"index" json:"share_token,omitempty"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`

	// Relationships
	Mockup *Mockup `gorm:"foreignKey:MockupID" json:"-"`
}

func (MockupShare) TableName() string {
	return "mockup_shares"
}

// Expired reports whether the share is inert at the given instant. A share
// is live only while its expiry lies strictly in the future.
func (s *MockupShare) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
