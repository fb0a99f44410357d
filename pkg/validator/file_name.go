package validator

import (
	"strings"
	"unicode"
)

const maxFileNameLen = 255

// ValidateFileName reports whether name can be stored as the logical name of
// an uploaded file: a single path element of at most 255 bytes without
// control characters.
func ValidateFileName(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > maxFileNameLen {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}
