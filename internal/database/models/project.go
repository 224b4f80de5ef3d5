package models

import "github.com/google/uuid"

// Project is an optional grouping folder for mockups. Deleting a project
// detaches its mockups (project_id set to null), it never deletes them.
type Project struct {
	Base
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`

	// Relationships
	Owner   *User    `gorm:"foreignKey:OwnerID" json:"-"`
	Mockups []Mockup `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}
