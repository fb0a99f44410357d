// Package rm sequences catalog and backend operations for uploads,
// downloads, deletions and datastore lifecycle.
package rm

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/registry"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/lock"
	"github.com/yi-nology/easy_fm/pkg/metrics"
	"github.com/yi-nology/easy_fm/pkg/naming"
	"github.com/yi-nology/easy_fm/pkg/storage"
)

// AmbiguousError is returned by Download and Delete when the lookup matched
// more than one record. No backend call is made in that case.
type AmbiguousError struct {
	Filter     catalog.Filter
	Candidates []catalog.FileRecord
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s for %s: %d candidates", errs.ErrAmbiguous.Error(), e.Filter, len(e.Candidates))
}

func (e *AmbiguousError) Is(target error) bool {
	return target == errs.ErrAmbiguous
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator replaces the generator of file gids.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithBackendFactory replaces the constructor used to build backends.
func WithBackendFactory(f registry.Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithMetrics records every file operation in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

// WithLocker serializes uploads and deletions per datastore across every
// process holding l. Different datastores never wait on each other.
func WithLocker(l lock.Locker) Option {
	return func(m *Manager) { m.locker = l }
}

// Manager is the resource manager. The catalog lock is never held across a
// backend call: every catalog access below completes before or after the
// backend call it brackets.
type Manager struct {
	catalog  catalog.Catalog
	registry *registry.Registry
	factory  registry.Factory
	newID    func() string
	metrics  *metrics.Collector
	locker   lock.Locker
}

// New creates a Manager on top of an opened catalog.
func New(cat catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog: cat,
		newID:   naming.NewID,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry = registry.New(cat, m.factory)
	return m
}

// Close closes the underlying catalog.
func (m *Manager) Close() error {
	return m.catalog.Close()
}

// --------------------- Datastore operations ---------------------

func (m *Manager) RegisterDatastore(ctx context.Context, kind string, config []byte) (uint, error) {
	id, err := m.catalog.RegisterDatastore(ctx, kind, config)
	if err != nil {
		return 0, err
	}
	hlog.CtxInfof(ctx, "registered %s datastore %d", kind, id)
	return id, nil
}

// RemoveDatastore drops the registration and any cached backend for it.
func (m *Manager) RemoveDatastore(ctx context.Context, id uint) error {
	if err := m.catalog.RemoveDatastore(ctx, id); err != nil {
		return err
	}
	m.registry.Evict(id)
	hlog.CtxInfof(ctx, "removed datastore %d", id)
	return nil
}

func (m *Manager) ListDatastores(ctx context.Context) ([]catalog.DatastoreRecord, error) {
	return m.catalog.ListDatastores(ctx)
}

// --------------------- File operations ---------------------

// Upload stores the file at sourcePath in datastore dsid and records it. The
// record is only written once the backend put has succeeded.
func (m *Manager) Upload(ctx context.Context, dsid uint, sourcePath string, policy naming.Policy) (_ *catalog.FileRecord, err error) {
	defer m.metrics.Track(metrics.OpUpload, time.Now(), &err)

	name := filepath.Base(sourcePath)
	if name == "." || name == string(filepath.Separator) || sourcePath == "" {
		return nil, errs.File(fmt.Errorf("no file name in path %q", sourcePath))
	}

	gid := m.newID()
	rawKey, err := naming.Resolve(policy, name, naming.Ext(name), gid)
	if err != nil {
		return nil, err
	}

	handle, err := m.registry.Acquire(ctx, dsid)
	if err != nil {
		return nil, err
	}
	unlock, err := m.lockDatastore(ctx, dsid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var descriptor string
	err = handle.Do(func(b storage.Backend) error {
		var putErr error
		descriptor, putErr = b.Put(ctx, rawKey, sourcePath)
		return putErr
	})
	if err != nil {
		hlog.CtxWarnf(ctx, "upload of %s to datastore %d failed, no record written: %v", name, dsid, err)
		return nil, backendError(err)
	}

	record := catalog.FileRecord{
		GID:        gid,
		DSID:       dsid,
		Name:       name,
		RawKey:     rawKey,
		Descriptor: descriptor,
	}
	if err := m.catalog.PutFileRecord(ctx, record); err != nil {
		hlog.CtxErrorf(ctx, "object %s stored in datastore %d but its record could not be written: %v", rawKey, dsid, err)
		return nil, err
	}
	hlog.CtxInfof(ctx, "uploaded %s to datastore %d as %s (gid %s)", name, dsid, rawKey, gid)
	return &record, nil
}

// Resolve returns every record matching filter.
func (m *Manager) Resolve(ctx context.Context, filter catalog.Filter) (_ []catalog.FileRecord, err error) {
	defer m.metrics.Track(metrics.OpResolve, time.Now(), &err)
	return m.catalog.QueryFileRecords(ctx, filter)
}

// Download writes the single record matching filter to destination. An
// empty destination writes to the record's name in the working directory.
func (m *Manager) Download(ctx context.Context, filter catalog.Filter, destination string) (_ *catalog.FileRecord, err error) {
	defer m.metrics.Track(metrics.OpDownload, time.Now(), &err)

	record, err := m.resolveOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if destination == "" {
		destination = record.Name
	}

	handle, err := m.registry.Acquire(ctx, record.DSID)
	if err != nil {
		return nil, err
	}
	err = handle.Do(func(b storage.Backend) error {
		return b.Get(ctx, record.RawKey, destination)
	})
	if err != nil {
		return nil, backendError(err)
	}
	hlog.CtxInfof(ctx, "downloaded %s (gid %s) to %s", record.Name, record.GID, destination)
	return record, nil
}

// Delete removes the object of file gid from its datastore, then its record.
// A failed backend delete leaves the record untouched.
func (m *Manager) Delete(ctx context.Context, gid string) (_ *catalog.FileRecord, err error) {
	defer m.metrics.Track(metrics.OpDelete, time.Now(), &err)

	if gid == "" {
		return nil, errs.NotFound("empty gid")
	}
	record, err := m.resolveOne(ctx, catalog.Filter{GID: gid})
	if err != nil {
		return nil, err
	}

	handle, err := m.registry.Acquire(ctx, record.DSID)
	if err != nil {
		return nil, err
	}
	unlock, err := m.lockDatastore(ctx, record.DSID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = handle.Do(func(b storage.Backend) error {
		return b.Delete(ctx, record.RawKey)
	})
	if err != nil {
		hlog.CtxWarnf(ctx, "backend delete of %s failed, record %s kept: %v", record.RawKey, gid, err)
		return nil, backendError(err)
	}

	if err := m.catalog.DeleteFileRecord(ctx, gid); err != nil {
		hlog.CtxErrorf(ctx, "object %s deleted but record %s remains: %v", record.RawKey, gid, err)
		return nil, err
	}
	hlog.CtxInfof(ctx, "deleted %s (gid %s) from datastore %d", record.Name, gid, record.DSID)
	return record, nil
}

// List returns the records of datastore dsid, or of every datastore when
// dsid is 0.
func (m *Manager) List(ctx context.Context, dsid uint) ([]catalog.FileRecord, error) {
	return m.catalog.QueryFileRecords(ctx, catalog.Filter{DSID: dsid})
}

func (m *Manager) resolveOne(ctx context.Context, filter catalog.Filter) (*catalog.FileRecord, error) {
	candidates, err := m.catalog.QueryFileRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	switch len(candidates) {
	case 0:
		return nil, errs.NotFound("no file matches %s", filter)
	case 1:
		return &candidates[0], nil
	default:
		return nil, &AmbiguousError{Filter: filter, Candidates: candidates}
	}
}

// lockDatastore takes the write lock of dsid when a locker is configured. It
// is held across the backend call and the record write that follows it.
func (m *Manager) lockDatastore(ctx context.Context, dsid uint) (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}
	name := lock.DatastoreName(dsid)
	unlock, err := m.locker.Acquire(ctx, name)
	if err != nil {
		return nil, errs.OperationFailed(fmt.Errorf("lock datastore %d: %w", dsid, err))
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			hlog.CtxErrorf(ctx, "release lock %s: %v", name, err)
		}
	}, nil
}

// backendError classifies a backend failure: local file problems keep their
// class, everything else is an operation failure.
func backendError(err error) error {
	if errors.Is(err, errs.ErrFile) {
		return err
	}
	return errs.OperationFailed(err)
}
