package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus represents a project's lifecycle state
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project is managed by an employee; organization membership is transitive
// through the manager's department.
type Project struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Status      ProjectStatus  `gorm:"type:varchar(20);default:'planned'" json:"status"`
	ManagerID   uint           `gorm:"not null;index" json:"manager_id"`

	// Relationships
	Manager Employee `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Roles   []Role   `gorm:"foreignKey:ProjectID" json:"roles,omitempty"`
}
