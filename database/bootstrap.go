// database/bootstrap.go
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmyield/entities"
)

// OpenSQLite opens the ledger database and migrates it. Use ":memory:" for a
// throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: every ledger call is applied in admission order, and an
	// in-memory database stays alive for the lifetime of the handle.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&entities.Farmer{},
		&entities.Pool{},
		&entities.YieldFarmer{},
		&entities.ChainState{},
		&entities.TxReceipt{},
		&entities.Payout{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	if err := seedChainState(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// seedChainState makes sure the single clock row exists so height reads never
// race a first insert.
func seedChainState(db *gorm.DB) error {
	var n int64
	if err := db.Model(&entities.ChainState{}).Where("id = ?", 1).Count(&n).Error; err != nil {
		return fmt.Errorf("check chain state: %w", err)
	}
	if n > 0 {
		return nil
	}
	return db.Create(&entities.ChainState{ID: 1, Height: 0}).Error
}
