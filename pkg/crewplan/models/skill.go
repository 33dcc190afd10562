package models

import (
	"time"

	"gorm.io/gorm"
)

// Skill is an organization-scoped capability tag assignable to employees.
type Skill struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"not null;uniqueIndex:idx_org_skill" json:"name"`
	OrganizationID uint           `gorm:"not null;uniqueIndex:idx_org_skill" json:"organization_id"`
}
