// Package registry turns datastore ids into ready backend handles, building
// each backend at most once and serializing calls made through a handle.
package registry

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/storage"
	"golang.org/x/sync/singleflight"
)

// ConfigSource yields the stored (kind, config) pair of a datastore.
type ConfigSource interface {
	GetDatastoreConfig(ctx context.Context, id uint) (kind string, config []byte, err error)
}

// Factory builds a backend from a datastore's kind and configuration.
type Factory func(kind string, config []byte) (storage.Backend, error)

// Handle is a shared, lock-guarded backend. Only one call runs through a
// handle at a time.
type Handle struct {
	mu      sync.Mutex
	dsid    uint
	kind    string
	backend storage.Backend
}

// DSID returns the datastore the handle belongs to.
func (h *Handle) DSID() uint { return h.dsid }

// Kind returns the backend kind of the handle.
func (h *Handle) Kind() string { return h.kind }

// Do runs fn with exclusive access to the backend.
func (h *Handle) Do(fn func(storage.Backend) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.backend)
}

// Registry caches one Handle per datastore id. mu guards only the maps; it
// is never held while a backend is built or called. Construction for one id
// runs at most once at a time through group.
type Registry struct {
	source  ConfigSource
	factory Factory
	group   singleflight.Group

	mu      sync.Mutex
	handles map[uint]*Handle
	// evictions counts Evict calls per id. A build that saw a different
	// count when it started is discarded.
	evictions map[uint]uint64
}

// New creates a registry reading configurations from source. A nil factory
// selects storage.New.
func New(source ConfigSource, factory Factory) *Registry {
	if factory == nil {
		factory = storage.New
	}
	return &Registry{
		source:    source,
		factory:   factory,
		handles:   make(map[uint]*Handle),
		evictions: make(map[uint]uint64),
	}
}

// Acquire returns the handle for dsid, building the backend on first use.
// Concurrent first calls for one id share a single construction. Unregistered
// ids fail with errs.ErrNotFound and construction failures with
// errs.ErrConfig; neither leaves an entry behind.
func (r *Registry) Acquire(ctx context.Context, dsid uint) (*Handle, error) {
	if h, _ := r.lookup(dsid); h != nil {
		return h, nil
	}

	v, err, _ := r.group.Do(strconv.FormatUint(uint64(dsid), 10), func() (any, error) {
		return r.build(ctx, dsid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

func (r *Registry) build(ctx context.Context, dsid uint) (*Handle, error) {
	h, generation := r.lookup(dsid)
	if h != nil {
		return h, nil
	}

	kind, config, err := r.source.GetDatastoreConfig(ctx, dsid)
	if err != nil {
		return nil, err
	}
	backend, err := r.factory(kind, config)
	if err != nil {
		return nil, errs.Config(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evictions[dsid] != generation {
		closeBackend(backend)
		hlog.CtxDebugf(ctx, "datastore %d evicted while its backend was built, discarding it", dsid)
		return nil, errs.NotFound("datastore %d", dsid)
	}
	h = &Handle{dsid: dsid, kind: kind, backend: backend}
	r.handles[dsid] = h
	hlog.CtxDebugf(ctx, "built %s backend for datastore %d", kind, dsid)
	return h, nil
}

// Evict drops the cached handle of dsid and invalidates any construction of
// it still running. Calls already running through the handle are allowed to
// finish.
func (r *Registry) Evict(dsid uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, dsid)
	r.evictions[dsid]++
}

// Len reports how many handles are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

func (r *Registry) lookup(dsid uint) (*Handle, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles[dsid], r.evictions[dsid]
}

func closeBackend(b storage.Backend) {
	if c, ok := b.(io.Closer); ok {
		_ = c.Close()
	}
}
