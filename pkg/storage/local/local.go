// Package local implements a datastore backed by a directory on the local
// filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yi-nology/easy_fm/pkg/errs"
)

// Config is the datastore payload for the local kind.
type Config struct {
	BasePath string `json:"base_path"`
}

// Storage stores objects as files below basePath.
type Storage struct {
	basePath string
}

// New creates a new local storage backend rooted at basePath.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}

	// Ensure base directory exists
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Storage{basePath: abs}, nil
}

// Put copies src into the datastore and returns the stored path.
func (s *Storage) Put(ctx context.Context, key, src string) (string, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return "", errs.OperationFailed(err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", errs.File(fmt.Errorf("open source: %w", err))
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", errs.OperationFailed(fmt.Errorf("create directory: %w", err))
	}
	if err := copyFile(fullPath, in); err != nil {
		return "", errs.OperationFailed(err)
	}
	return fullPath, nil
}

// Get copies the stored object to dst.
func (s *Storage) Get(ctx context.Context, key, dst string) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return errs.OperationFailed(err)
	}

	in, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.OperationFailed(fmt.Errorf("object not found: %s", key))
		}
		return errs.OperationFailed(fmt.Errorf("open object: %w", err))
	}
	defer in.Close()

	if err := copyFile(dst, in); err != nil {
		return errs.File(err)
	}
	return nil
}

// Delete removes the stored object. Deleting a missing object is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return errs.OperationFailed(err)
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.OperationFailed(fmt.Errorf("delete file: %w", err))
	}

	// Try to remove parent directory if empty
	if dir := filepath.Dir(fullPath); dir != s.basePath {
		os.Remove(dir)
	}
	return nil
}

// BasePath returns the base path of the storage.
func (s *Storage) BasePath() string {
	return s.basePath
}

// keyToPath converts an object key to a full filesystem path. Keys escaping
// the base directory are rejected.
func (s *Storage) keyToPath(key string) (string, error) {
	full := filepath.Join(s.basePath, key)
	if full == s.basePath || !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return full, nil
}

func copyFile(dst string, src io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}
