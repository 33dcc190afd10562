package models

import (
	"time"

	"gorm.io/gorm"
)

// Department groups employees within an organization. The optional leader is
// one of the department's employees.
type Department struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"not null" json:"name"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	LeaderID       *uint          `json:"leader_id"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Leader       *Employee    `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Employees    []Employee   `gorm:"foreignKey:DepartmentID" json:"employees,omitempty"`
}
