package validator

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxUploadSize bounds HTTP uploads when the config sets no limit.
const DefaultMaxUploadSize = 1 << 30 // 1GiB

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UploadConfig defines constraints for HTTP uploads. An empty
// AllowedMimeTypes accepts every type.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// NewUploadConfig builds an UploadConfig from configured values. A
// non-positive maxSize takes DefaultMaxUploadSize.
func NewUploadConfig(maxSize int64, allowedTypes []string) *UploadConfig {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	c := &UploadConfig{MaxFileSize: maxSize}
	if len(allowedTypes) > 0 {
		c.AllowedMimeTypes = make(map[string]bool, len(allowedTypes))
		for _, t := range allowedTypes {
			c.AllowedMimeTypes[normalizeMimeType(t)] = true
		}
	}
	return c
}

// ValidateFileSize checks if the file size is within the allowed limit.
func (c *UploadConfig) ValidateFileSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > c.MaxFileSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, c.MaxFileSize)
	}
	return nil
}

// ValidateMimeType checks the declared type against the whitelist.
func (c *UploadConfig) ValidateMimeType(mimeType string) error {
	if len(c.AllowedMimeTypes) == 0 {
		return nil
	}
	normalized := normalizeMimeType(mimeType)
	if normalized == "" {
		return fmt.Errorf("%w: missing content type", ErrUnsupportedType)
	}
	if !c.AllowedMimeTypes[normalized] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	return nil
}

// Validate performs full validation on an upload.
func (c *UploadConfig) Validate(size int64, mimeType string) error {
	if err := c.ValidateFileSize(size); err != nil {
		return err
	}
	return c.ValidateMimeType(mimeType)
}

// normalizeMimeType lowercases and drops parameters such as "; charset=utf-8".
func normalizeMimeType(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx > 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
