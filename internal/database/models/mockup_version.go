package models

import "github.com/google/uuid"

// MockupVersion is an immutable snapshot of a mockup's content. Version
// numbers increase strictly per mockup; the composite unique index makes
// the max+1 computation safe under concurrent snapshots. Rows are never
// mutated after creation, only deleted, so numbering gaps are permitted.
type MockupVersion struct {
	Base
	MockupID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_mockup_version" json:"mockup_id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	VersionNumber     int        `gorm:"not null;uniqueIndex:idx_mockup_version" json:"version_number"`
	Name              string     `gorm:"not null" json:"name"`
	Data              string     `gorm:"default:'{}'" json:"data"`
	Appearance        string     `gorm:"default:'{}'" json:"appearance"`
	ThumbnailURL      string     `json:"thumbnail_url,omitempty"`
	ChangeDescription string     `json:"change_description,omitempty"`

	// Relationships
	Mockup *Mockup `gorm:"foreignKey:MockupID" json:"-"`
}

func (MockupVersion) TableName() string {
	return "mockup_versions"
}
