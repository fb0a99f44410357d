package storage

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/storage/local"
	"github.com/yi-nology/easy_fm/pkg/storage/s3"
)

type nopBackend struct{}

func (nopBackend) Get(context.Context, string, string) error            { return nil }
func (nopBackend) Put(context.Context, string, string) (string, error) { return "nop", nil }
func (nopBackend) Delete(context.Context, string) error                 { return nil }

func TestNew(t *testing.T) {
	t.Run("Local", func(t *testing.T) {
		raw, err := EncodeConfig(local.Config{BasePath: filepath.Join(t.TempDir(), "ds")})
		if err != nil {
			t.Fatalf("EncodeConfig: %v", err)
		}
		b, err := New(KindLocal, raw)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, ok := b.(*local.Storage); !ok {
			t.Fatalf("expected *local.Storage, got %T", b)
		}
	})

	t.Run("S3", func(t *testing.T) {
		raw, _ := EncodeConfig(s3.Config{
			Region:    "us-east-1",
			Endpoint:  "http://127.0.0.1:9000",
			AccessKey: "ak",
			SecretKey: "sk",
			Bucket:    "bucket",
		})
		b, err := New(KindS3, raw)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, ok := b.(*s3.Storage); !ok {
			t.Fatalf("expected *s3.Storage, got %T", b)
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := New("ftp", []byte(`{}`))
		if !errors.Is(err, errs.ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		_, err := New(KindS3, []byte(`{"bucket":`))
		if !errors.Is(err, errs.ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := New(KindLocal, []byte(`{"base_path":"x","colour":"red"}`))
		if !errors.Is(err, errs.ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("RejectedByConstructor", func(t *testing.T) {
		_, err := New(KindS3, []byte(`{"bucket":"b"}`))
		if !errors.Is(err, errs.ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})
}

func TestRegister(t *testing.T) {
	Register("nop", func([]byte) (Backend, error) { return nopBackend{}, nil })
	if !slices.Contains(Kinds(), "nop") {
		t.Fatalf("expected nop in %v", Kinds())
	}
	b, err := New("nop", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if desc, _ := b.Put(context.Background(), "k", "src"); desc != "nop" {
		t.Fatalf("unexpected descriptor %s", desc)
	}
}

func TestRedact(t *testing.T) {
	got := string(Redact([]byte(`{"bucket":"b","secret_key":"SK"}`)))
	if got != `{"bucket":"b","secret_key":"******"}` {
		t.Fatalf("unexpected redaction %s", got)
	}
	if Redact([]byte(`"just a string"`)) != nil {
		t.Fatalf("non-object payload should redact to nil")
	}
}
