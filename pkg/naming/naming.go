// Package naming derives the physical storage key used by a backend from a
// logical file name.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yi-nology/easy_fm/pkg/errs"
)

// Policy selects how a raw key is derived.
type Policy string

const (
	// Raw stores the object under its original file name.
	Raw Policy = "raw"
	// GID stores the object under the generated identifier only.
	GID Policy = "gid"
	// GIDExt stores the object under the generated identifier plus the
	// original extension, so content type can still be inferred from it.
	GIDExt Policy = "gide"
)

// Default is used when no policy is requested.
const Default = Raw

// Policies lists every known policy.
func Policies() []Policy {
	return []Policy{Raw, GID, GIDExt}
}

// ParsePolicy validates a policy tag. The empty string maps to Default.
func ParsePolicy(tag string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(tag)))
	switch p {
	case "":
		return Default, nil
	case Raw, GID, GIDExt:
		return p, nil
	default:
		return "", errs.OperationFailed(fmt.Errorf("unknown naming policy %q", tag))
	}
}

// NewID returns a fresh globally unique identifier.
func NewID() string {
	return uuid.NewString()
}

// Ext returns the extension of name without the leading dot.
func Ext(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// Resolve computes the raw key for a file. id is the unique identifier
// already generated for the upload; it is ignored by Raw. ext may be given
// with or without its leading dot. An empty ext under GIDExt yields the bare id.
func Resolve(policy Policy, name, ext, id string) (string, error) {
	switch policy {
	case Raw:
		return name, nil
	case GID:
		return id, nil
	case GIDExt:
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			return id, nil
		}
		return id + "." + ext, nil
	default:
		return "", errs.OperationFailed(fmt.Errorf("unknown naming policy %q", string(policy)))
	}
}
