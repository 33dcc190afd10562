package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open initializes a database connection and returns the handle. The handle
// is owned by the caller and injected into every store and handler; there is
// no package-level singleton. TranslateError is enabled so unique-constraint
// violations surface as gorm.ErrDuplicatedKey regardless of driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
