package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector resolves a driver name and location (file path or DSN) into a
// gorm dialector.
func Dialector(driver, location string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3", "local":
		if location == "" {
			return nil, fmt.Errorf("sqlite path must be configured")
		}
		if err := ensureDir(filepath.Dir(location)); err != nil {
			return nil, err
		}
		return sqlite.Open(location), nil
	case "mysql":
		if location == "" {
			return nil, fmt.Errorf("mysql dsn must be configured")
		}
		return mysql.Open(location), nil
	case "postgres", "postgresql":
		if location == "" {
			return nil, fmt.Errorf("postgres dsn must be configured")
		}
		return postgres.Open(location), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Open initialises a gorm.DB for the given driver and location.
func Open(driver, location string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, location)
	if err != nil {
		return nil, err
	}
	return OpenDialector(dialector)
}

// OpenDialector opens a gorm.DB on an already built dialector.
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates the tables of the given models if they are absent. It is
// safe to run repeatedly.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
