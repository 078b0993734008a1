package db

import (
	"log"
	"time"

	"loan-ledger-backend/internal/domain/gateway"
	"loan-ledger-backend/internal/domain/loan"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate keeps the ledger schema current: loans, the active-loan index
// and the balance ledger.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&loan.Loan{}, &loan.ActiveLoan{}, &gateway.Balance{})
}
