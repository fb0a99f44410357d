package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/yi-nology/easy_fm/biz/dal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a temporary file-backed SQLite database for testing.
// A file is used instead of :memory: so every pooled connection sees the
// same schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise in tests
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Datastore{}, &model.FileMap{}); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestDatastore registers a datastore of the given kind with an empty payload
func CreateTestDatastore(t *testing.T, db *gorm.DB, kind string) *model.Datastore {
	t.Helper()
	ds := &model.Datastore{Kind: kind, Config: "{}"}
	if err := NewDatastoreDAO().Create(context.Background(), db, ds); err != nil {
		t.Fatalf("Failed to create test datastore: %v", err)
	}
	return ds
}

// CreateTestFileMap creates a file record in the given datastore
func CreateTestFileMap(t *testing.T, db *gorm.DB, gid string, dsid uint, name string) *model.FileMap {
	t.Helper()
	fm := &model.FileMap{
		GID:         gid,
		DSID:        dsid,
		Name:        name,
		RawKey:      name,
		Description: "test://" + name,
	}
	if err := NewFileMapDAO().Create(context.Background(), db, fm); err != nil {
		t.Fatalf("Failed to create test file record: %v", err)
	}
	return fm
}
