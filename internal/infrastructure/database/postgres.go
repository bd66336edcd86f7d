package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wiz0007/WeChat-server/internal/infrastructure/repositories"
)

// Open creates a new database connection. File and :memory: DSNs get the
// sqlite driver for local development; everything else is treated as a
// Postgres DSN. TranslateError is required so unique-constraint violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	if strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db") || dsn == ":memory:" {
		return gorm.Open(sqlite.Open(dsn), config)
	}
	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate performs database migration for all tables the core depends on
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&repositories.DBAccount{},
		&repositories.DBChat{},
		&repositories.DBMessage{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
