package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a local user record mirroring an identity-provider account.
// UID is the identity provider's subject id and is immutable once created;
// all auth flows key on it. Email is kept in sync with the provider on every
// sync call (the provider is the source of truth once an email exists).
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UID       string         `gorm:"uniqueIndex;not null" json:"uid"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Name      *string        `json:"name"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OwnerUID;references:UID" json:"organization,omitempty"`
}
