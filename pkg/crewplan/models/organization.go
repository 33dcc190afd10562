package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents a tenant in the multi-tenancy system.
// Every organization is owned by exactly one user (unique OwnerUID), and every
// org-scoped query resolves the caller's organization through that ownership
// before touching departments, employees or projects.
type Organization struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	OwnerUID  string         `gorm:"uniqueIndex;not null" json:"owner_uid"`

	// Relationships
	Departments []Department `gorm:"foreignKey:OrganizationID" json:"departments,omitempty"`
	Skills      []Skill      `gorm:"foreignKey:OrganizationID" json:"skills,omitempty"`
}
