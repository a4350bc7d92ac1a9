package database

import (
	"propview-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Listing{}, &models.Agent{}, &models.FileRecord{})
}
