package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjdodge123/Raid-Ledger-sub004/internal/config"
)

// InitDB opens the database connection and migrates the schema. Postgres is
// used when a DATABASE_URL is configured, otherwise a local SQLite file.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DatabaseURL != "" {
		// Simple protocol plays nice with connection poolers like pgbouncer.
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
		log.Info("connecting to postgres")
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DataPath), &gorm.Config{TranslateError: true})
		log.Info("using sqlite database", zap.String("path", cfg.DataPath))
	}

	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&Game{},
		&Event{},
		&EventRoleSlot{},
		&Signup{},
		&RosterAssignment{},
		&APIKey{},
		&APIUsage{},
		&MasterUser{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// EnsureDefaultGames seeds the games table. Existing rows are left alone so
// operators can rename or re-flag games without the seed clobbering them.
func EnsureDefaultGames(db *gorm.DB) error {
	games := []Game{
		{Slug: "wow", Name: "World of Warcraft", RoleBased: true},
		{Slug: "ffxiv", Name: "Final Fantasy XIV", RoleBased: true},
		{Slug: "custom", Name: "Custom Event", RoleBased: false},
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&games).Error
}
