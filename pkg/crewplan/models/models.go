package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: User and Organization must be migrated before the org-scoped models
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&Department{},
		&Employee{},
		&Skill{},
		&EmployeeSkill{},
		&Project{},
		&Role{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
