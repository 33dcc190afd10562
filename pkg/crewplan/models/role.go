package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is an allocation of an employee to a project for a date range.
// Allocation is a percentage (1..100); the date range is optional and open
// ranges mean "for the whole project".
type Role struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	EmployeeID uint           `gorm:"not null;index" json:"employee_id"`
	ProjectID  uint           `gorm:"not null;index" json:"project_id"`
	Title      string         `gorm:"not null" json:"title"`
	Allocation int            `gorm:"default:100" json:"allocation"`
	StartDate  *time.Time     `json:"start_date"`
	EndDate    *time.Time     `json:"end_date"`

	// Relationships
	Employee Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Project  Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
