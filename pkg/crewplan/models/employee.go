package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee belongs to a department; organization membership is transitive
// through the department.
type Employee struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	DepartmentID uint           `gorm:"not null;index" json:"department_id"`

	// Relationships
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Skills     []Skill    `gorm:"many2many:employee_skills" json:"skills,omitempty"`
	Roles      []Role     `gorm:"foreignKey:EmployeeID" json:"roles,omitempty"`
}

// EmployeeSkill is the join table between employees and skills.
type EmployeeSkill struct {
	EmployeeID uint `gorm:"primarykey" json:"employee_id"`
	SkillID    uint `gorm:"primarykey" json:"skill_id"`
}
