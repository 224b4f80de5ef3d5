package models

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`

	// Relationships
	Mockups  []Mockup  `gorm:"foreignKey:OwnerID" json:"-"`
	Projects []Project `gorm:"foreignKey:OwnerID" json:"-"`
	ApiKeys  []ApiKey  `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
