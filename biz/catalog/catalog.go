// Package catalog keeps the bookkeeping of datastore registrations and file
// records. It never talks to a backend.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// DatastoreRecord is a registered backend instance.
type DatastoreRecord struct {
	ID     uint   `json:"id"`
	Kind   string `json:"kind"`
	Config []byte `json:"config"`
}

// FileRecord tracks one stored file.
type FileRecord struct {
	GID        string `json:"gid"`
	DSID       uint   `json:"dsid"`
	Name       string `json:"name"`
	RawKey     string `json:"raw_key"`
	Descriptor string `json:"descriptor"`
}

// Filter narrows QueryFileRecords. Zero-valued fields are unconstrained and
// set fields are combined with AND on exact equality.
type Filter struct {
	GID  string
	DSID uint
	Name string
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) String() string {
	var parts []string
	if f.GID != "" {
		parts = append(parts, "gid="+f.GID)
	}
	if f.DSID != 0 {
		parts = append(parts, fmt.Sprintf("dsid=%d", f.DSID))
	}
	if f.Name != "" {
		parts = append(parts, "name="+f.Name)
	}
	if len(parts) == 0 {
		return "<all>"
	}
	return strings.Join(parts, ",")
}

// Catalog is the persistent store of datastore registrations and file
// records. Lookups that must resolve a single record report errs.ErrNotFound
// when nothing matches.
type Catalog interface {
	RegisterDatastore(ctx context.Context, kind string, config []byte) (uint, error)
	RemoveDatastore(ctx context.Context, id uint) error
	ListDatastores(ctx context.Context) ([]DatastoreRecord, error)
	GetDatastoreConfig(ctx context.Context, id uint) (kind string, config []byte, err error)

	PutFileRecord(ctx context.Context, record FileRecord) error
	DeleteFileRecord(ctx context.Context, gid string) error
	QueryFileRecords(ctx context.Context, filter Filter) ([]FileRecord, error)

	Close() error
}
