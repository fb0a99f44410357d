package model

import "time"

// Datastore registers one backend instance: its kind and the opaque
// configuration payload only that kind interprets.
type Datastore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Kind      string    `gorm:"column:kind;type:varchar(64);not null" json:"kind"`
	Config    string    `gorm:"column:config;type:text;not null" json:"config"`
}

// TableName overrides gorm to use datastore table.
func (Datastore) TableName() string {
	return "datastore"
}
