package db

import (
	"context"
	"errors"

	"github.com/yi-nology/easy_fm/biz/dal/model"

	"gorm.io/gorm"
)

// DatastoreDAO handles CRUD operations for datastore registrations.
type DatastoreDAO struct{}

func NewDatastoreDAO() *DatastoreDAO { return &DatastoreDAO{} }

// Create persists a registration; the assigned id is written back to entity.
func (dao *DatastoreDAO) Create(ctx context.Context, db *gorm.DB, entity *model.Datastore) error {
	if entity == nil {
		return errors.New("datastore must not be nil")
	}
	if entity.Kind == "" {
		return errors.New("datastore kind must not be empty")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// DeleteByID removes a registration. A missing id yields gorm.ErrRecordNotFound.
func (dao *DatastoreDAO) DeleteByID(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&model.Datastore{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *DatastoreDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Datastore, error) {
	var entity model.Datastore
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (dao *DatastoreDAO) List(ctx context.Context, db *gorm.DB) ([]model.Datastore, error) {
	var list []model.Datastore
	if err := db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
