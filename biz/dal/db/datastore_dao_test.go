package db

import (
	"context"
	"testing"

	"github.com/yi-nology/easy_fm/biz/dal/model"
	"gorm.io/gorm"
)

func TestDatastoreDAO_Create(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewDatastoreDAO()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ds := &model.Datastore{Kind: "s3", Config: `{"bucket":"b"}`}
		if err := dao.Create(ctx, db, ds); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if ds.ID == 0 {
			t.Error("Expected ID to be set after creation")
		}

		found, err := dao.GetByID(ctx, db, ds.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if found.Kind != "s3" || found.Config != `{"bucket":"b"}` {
			t.Errorf("Unexpected datastore: %+v", found)
		}
	})

	t.Run("IDsAreDistinct", func(t *testing.T) {
		a := CreateTestDatastore(t, db, "local")
		b := CreateTestDatastore(t, db, "local")
		if a.ID == b.ID {
			t.Errorf("Expected distinct ids, both got %d", a.ID)
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		err := dao.Create(ctx, db, nil)
		if err == nil {
			t.Fatal("Expected error for nil entity")
		}
		if err.Error() != "datastore must not be nil" {
			t.Errorf("Unexpected error message: %v", err)
		}
	})

	t.Run("EmptyKind", func(t *testing.T) {
		if err := dao.Create(ctx, db, &model.Datastore{Config: "{}"}); err == nil {
			t.Error("Expected error for empty kind")
		}
	})
}

func TestDatastoreDAO_DeleteByID(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewDatastoreDAO()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ds := CreateTestDatastore(t, db, "local")
		if err := dao.DeleteByID(ctx, db, ds.ID); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		_, err := dao.GetByID(ctx, db, ds.ID)
		if err != gorm.ErrRecordNotFound {
			t.Errorf("Expected ErrRecordNotFound, got: %v", err)
		}
	})

	t.Run("NonExistent", func(t *testing.T) {
		if err := dao.DeleteByID(ctx, db, 9999); err != gorm.ErrRecordNotFound {
			t.Errorf("Expected ErrRecordNotFound, got: %v", err)
		}
	})
}

func TestDatastoreDAO_List(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewDatastoreDAO()
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		list, err := dao.List(ctx, db)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected no datastores, got %d", len(list))
		}
	})

	t.Run("OrderedByID", func(t *testing.T) {
		first := CreateTestDatastore(t, db, "s3")
		second := CreateTestDatastore(t, db, "local")
		list, err := dao.List(ctx, db)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 datastores, got %d", len(list))
		}
		if list[0].ID != first.ID || list[1].ID != second.ID {
			t.Errorf("Unexpected order: %d, %d", list[0].ID, list[1].ID)
		}
	})
}
