package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/easy_fm/biz/dal/db"
	"github.com/yi-nology/easy_fm/biz/dal/model"
	"github.com/yi-nology/easy_fm/pkg/database"
	"github.com/yi-nology/easy_fm/pkg/errs"

	"gorm.io/gorm"
)

// Models lists the tables the catalog owns.
func Models() []any {
	return []any{&model.Datastore{}, &model.FileMap{}}
}

// Init creates the catalog schema at location if it does not exist yet. It
// is idempotent and must be invoked once before the first Open.
func Init(kind, location string) error {
	gdb, err := database.Open(kind, location)
	if err != nil {
		return errs.Config(fmt.Errorf("open catalog: %w", err))
	}
	defer database.Close(gdb)
	return Migrate(gdb)
}

// Migrate creates the catalog tables on an open database.
func Migrate(gdb *gorm.DB) error {
	if err := database.Migrate(gdb, Models()...); err != nil {
		return errs.OperationFailed(err)
	}
	return nil
}

// Open connects to an initialized catalog. It never creates the schema.
func Open(kind, location string) (*SQL, error) {
	gdb, err := database.Open(kind, location)
	if err != nil {
		return nil, errs.Config(fmt.Errorf("open catalog: %w", err))
	}
	return NewSQL(gdb), nil
}

// SQL is the relational Catalog. A single mutex covers every operation so
// catalog calls are linearizable.
type SQL struct {
	mu           sync.Mutex
	db           *gorm.DB
	datastoreDAO *db.DatastoreDAO
	fileMapDAO   *db.FileMapDAO
}

var _ Catalog = (*SQL)(nil)

// NewSQL wraps an open database whose schema already exists.
func NewSQL(gdb *gorm.DB) *SQL {
	return &SQL{
		db:           gdb,
		datastoreDAO: db.NewDatastoreDAO(),
		fileMapDAO:   db.NewFileMapDAO(),
	}
}

func (c *SQL) RegisterDatastore(ctx context.Context, kind string, config []byte) (uint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entity := &model.Datastore{Kind: kind, Config: string(config)}
	if err := c.datastoreDAO.Create(ctx, c.db, entity); err != nil {
		return 0, errs.OperationFailed(fmt.Errorf("register datastore: %w", err))
	}
	return entity.ID, nil
}

// RemoveDatastore drops a registration. File records still pointing at it
// are left in place.
func (c *SQL) RemoveDatastore(ctx context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.datastoreDAO.DeleteByID(ctx, c.db, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("datastore %d", id)
		}
		return errs.OperationFailed(fmt.Errorf("remove datastore: %w", err))
	}
	if n, err := c.fileMapDAO.CountByDSID(ctx, c.db, id); err == nil && n > 0 {
		hlog.CtxWarnf(ctx, "datastore %d removed while %d file records still reference it", id, n)
	}
	return nil
}

func (c *SQL) ListDatastores(ctx context.Context) ([]DatastoreRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.datastoreDAO.List(ctx, c.db)
	if err != nil {
		return nil, errs.OperationFailed(fmt.Errorf("list datastores: %w", err))
	}
	records := make([]DatastoreRecord, 0, len(list))
	for i := range list {
		records = append(records, datastoreModelToRecord(&list[i]))
	}
	return records, nil
}

func (c *SQL) GetDatastoreConfig(ctx context.Context, id uint) (string, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entity, err := c.datastoreDAO.GetByID(ctx, c.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errs.NotFound("datastore %d", id)
		}
		return "", nil, errs.OperationFailed(fmt.Errorf("get datastore: %w", err))
	}
	return entity.Kind, []byte(entity.Config), nil
}

func (c *SQL) PutFileRecord(ctx context.Context, record FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entity := fileRecordToModel(record)
	if err := c.fileMapDAO.Create(ctx, c.db, entity); err != nil {
		return errs.OperationFailed(fmt.Errorf("put file record: %w", err))
	}
	return nil
}

func (c *SQL) DeleteFileRecord(ctx context.Context, gid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fileMapDAO.DeleteByGID(ctx, c.db, gid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("file %s", gid)
		}
		return errs.OperationFailed(fmt.Errorf("delete file record: %w", err))
	}
	return nil
}

func (c *SQL) QueryFileRecords(ctx context.Context, filter Filter) ([]FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.fileMapDAO.Find(ctx, c.db, db.FileMapFilter{
		GID:  filter.GID,
		DSID: filter.DSID,
		Name: filter.Name,
	})
	if err != nil {
		return nil, errs.OperationFailed(fmt.Errorf("query file records: %w", err))
	}
	records := make([]FileRecord, 0, len(list))
	for i := range list {
		records = append(records, fileModelToRecord(&list[i]))
	}
	return records, nil
}

func (c *SQL) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return database.Close(c.db)
}

// --------------------- Model conversion helpers ---------------------

func datastoreModelToRecord(m *model.Datastore) DatastoreRecord {
	return DatastoreRecord{
		ID:     m.ID,
		Kind:   m.Kind,
		Config: []byte(m.Config),
	}
}

func fileRecordToModel(r FileRecord) *model.FileMap {
	return &model.FileMap{
		GID:         r.GID,
		DSID:        r.DSID,
		Name:        r.Name,
		RawKey:      r.RawKey,
		Description: r.Descriptor,
	}
}

func fileModelToRecord(m *model.FileMap) FileRecord {
	return FileRecord{
		GID:        m.GID,
		DSID:       m.DSID,
		Name:       m.Name,
		RawKey:     m.RawKey,
		Descriptor: m.Description,
	}
}
