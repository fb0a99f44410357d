package model

import "time"

// FileMap maps a logical file to the object a datastore holds for it.
type FileMap struct {
	GID         string    `gorm:"column:gid;primaryKey;type:varchar(64)" json:"gid"`
	CreatedAt   time.Time `gorm:"index:idx_file_map_created" json:"created_at,omitempty"`
	DSID        uint      `gorm:"column:dsid;index:idx_file_map_dsid;not null" json:"dsid"`
	Name        string    `gorm:"column:name;type:varchar(512);index:idx_file_map_name;not null" json:"name"`
	RawKey      string    `gorm:"column:raw_key;type:varchar(1024);not null" json:"raw_key"`
	Description string    `gorm:"column:description;type:text" json:"description"`
}

// TableName overrides gorm to use file_map table.
func (FileMap) TableName() string {
	return "file_map"
}
