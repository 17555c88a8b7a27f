package store

import "time"

// GORM model used for persistence.
type IdentityUserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	DisplayName  string
	PasswordHash string `gorm:"not null"`
	Disabled     bool
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}
