// Package storage defines the capability every datastore backend provides
// and the registry of named constructors used to build one from a stored
// configuration payload.
package storage

import "context"

// Backend moves whole files between the local filesystem and a datastore.
// Implementations are not required to be safe for concurrent use; callers
// serialize access per datastore.
type Backend interface {
	// Get writes the object stored under key to the local file dst.
	// Local write failures match errs.ErrFile.
	Get(ctx context.Context, key, dst string) error

	// Put stores the local file src under key and returns a descriptor of the
	// stored object, typically a locator it can be retrieved from.
	Put(ctx context.Context, key, src string) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}
