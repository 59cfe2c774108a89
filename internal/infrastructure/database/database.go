package database

import (
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// OpenSQLite opens a SQLite database (file path or ":memory:") with a single connection,
// so an in-memory database is shared by every query and writes never contend.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate creates or updates every table the vehicle uses.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.VehicleState{},
		&domain.Investor{},
		&domain.LedgerBalance{},
		&domain.LedgerSupply{},
		&domain.ProfitRound{},
		&domain.Notification{},
		&domain.Deposit{},
	); err != nil {
		return fmt.Errorf("database: automigrate: %w", err)
	}
	return nil
}
