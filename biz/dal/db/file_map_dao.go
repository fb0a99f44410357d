package db

import (
	"context"
	"errors"

	"github.com/yi-nology/easy_fm/biz/dal/model"

	"gorm.io/gorm"
)

// FileMapFilter narrows a file map query. Zero-valued fields are unconstrained;
// set fields are combined with AND on exact equality.
type FileMapFilter struct {
	GID  string
	DSID uint
	Name string
}

// FileMapDAO handles CRUD operations for file records.
type FileMapDAO struct{}

func NewFileMapDAO() *FileMapDAO { return &FileMapDAO{} }

func (dao *FileMapDAO) Create(ctx context.Context, db *gorm.DB, entity *model.FileMap) error {
	if entity == nil {
		return errors.New("file record must not be nil")
	}
	if entity.GID == "" {
		return errors.New("file record gid must not be empty")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// DeleteByGID removes a file record. A missing gid yields gorm.ErrRecordNotFound.
func (dao *FileMapDAO) DeleteByGID(ctx context.Context, db *gorm.DB, gid string) error {
	result := db.WithContext(ctx).Where("gid = ?", gid).Delete(&model.FileMap{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Find returns the records matching filter, oldest first.
func (dao *FileMapDAO) Find(ctx context.Context, db *gorm.DB, filter FileMapFilter) ([]model.FileMap, error) {
	query := db.WithContext(ctx).Model(&model.FileMap{})
	if filter.GID != "" {
		query = query.Where("gid = ?", filter.GID)
	}
	if filter.DSID != 0 {
		query = query.Where("dsid = ?", filter.DSID)
	}
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}

	var list []model.FileMap
	if err := query.Order("created_at ASC").Order("gid ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountByDSID reports how many file records reference a datastore.
func (dao *FileMapDAO) CountByDSID(ctx context.Context, db *gorm.DB, dsid uint) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.FileMap{}).Where("dsid = ?", dsid).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
