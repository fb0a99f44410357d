package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestUploadConfigValidate(t *testing.T) {
	c := NewUploadConfig(10, []string{"image/png", "Text/Plain"})

	cases := []struct {
		name     string
		size     int64
		mimeType string
		want     error
	}{
		{"ok", 5, "image/png", nil},
		{"parameters", 5, "text/plain; charset=utf-8", nil},
		{"empty", 0, "image/png", ErrEmptyFile},
		{"too large", 11, "image/png", ErrFileTooLarge},
		{"type", 5, "application/zip", ErrUnsupportedType},
		{"missing type", 5, "", ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Validate(tc.size, tc.mimeType)
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUploadConfigDefaults(t *testing.T) {
	c := NewUploadConfig(0, nil)
	if c.MaxFileSize != DefaultMaxUploadSize {
		t.Fatalf("expected default limit, got %d", c.MaxFileSize)
	}
	if err := c.ValidateMimeType("application/x-anything"); err != nil {
		t.Fatalf("empty whitelist should accept every type: %v", err)
	}
}

func TestValidateFileName(t *testing.T) {
	valid := []string{"a.png", "report 2024.pdf", ".bashrc", "数据.csv"}
	invalid := []string{"", ".", "..", "dir/a.png", `dir\a.png`, "a\x00b", strings.Repeat("x", 256)}
	for _, name := range valid {
		if !ValidateFileName(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}
	for _, name := range invalid {
		if ValidateFileName(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}
