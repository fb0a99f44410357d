// Package errs defines the error classes shared by the catalog, the backend
// registry and the resource manager. Errors built here match their class
// through errors.Is and still unwrap to the underlying cause.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a required lookup matched no record.
	ErrNotFound = errors.New("record not found")
	// ErrFile reports a local filesystem failure on a source or destination path.
	ErrFile = errors.New("failed to deal with file")
	// ErrOperationFailed reports a failed backend or catalog operation.
	ErrOperationFailed = errors.New("operation failed")
	// ErrConfig reports an unknown backend kind or a malformed configuration payload.
	ErrConfig = errors.New("invalid datastore configuration")
	// ErrAmbiguous reports that a lookup requiring one record matched several.
	ErrAmbiguous = errors.New("multiple records match")
)

// NotFound returns an ErrNotFound carrying a formatted detail message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// File wraps cause as an ErrFile.
func File(cause error) error {
	return wrap(ErrFile, cause)
}

// OperationFailed wraps cause as an ErrOperationFailed.
func OperationFailed(cause error) error {
	return wrap(ErrOperationFailed, cause)
}

// Config wraps cause as an ErrConfig.
func Config(cause error) error {
	return wrap(ErrConfig, cause)
}

func wrap(class, cause error) error {
	if cause == nil {
		return class
	}
	if errors.Is(cause, class) {
		return cause
	}
	return fmt.Errorf("%w: %w", class, cause)
}
