package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func isolateUserDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := isolateUserDirs(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)

	want := filepath.Join(dir, "config", AppDir, DefaultCatalogFile)
	if cfg.Catalog.Location != want {
		t.Fatalf("expected catalog location %s, got %s", want, cfg.Catalog.Location)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := isolateUserDirs(t)
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath returned error: %v", err)
	}
	if want := filepath.Join(dir, "config", "rm", "config.yaml"); path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	isolateUserDirs(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
catalog:
  kind: mysql
  location: "user:pass@tcp(127.0.0.1:3306)/rm"
server:
  address: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if cfg.Catalog.Kind != "mysql" {
		t.Fatalf("expected catalog kind mysql, got %s", cfg.Catalog.Kind)
	}
	if cfg.Catalog.Location != "user:pass@tcp(127.0.0.1:3306)/rm" {
		t.Fatalf("unexpected catalog location %s", cfg.Catalog.Location)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	isolateUserDirs(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  driver: sqlite\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadExpandsHome(t *testing.T) {
	dir := isolateUserDirs(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  location: ~/rm/catalog.db\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if want := filepath.Join(dir, "home", "rm", "catalog.db"); cfg.Catalog.Location != want {
		t.Fatalf("expected %s, got %s", want, cfg.Catalog.Location)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateUserDirs(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Catalog.Location = "/var/lib/rm/catalog.db"
	cfg.Redis.Enabled = true
	cfg.Server.AllowedTypes = []string{"image/png"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Fatalf("round trip mismatch: %+v != %+v", loaded, cfg)
	}
}

func TestHertzLevel(t *testing.T) {
	cases := map[string]hlog.Level{
		"debug":   hlog.LevelDebug,
		"INFO":    hlog.LevelInfo,
		"warn":    hlog.LevelWarn,
		"warning": hlog.LevelWarn,
		"error":   hlog.LevelError,
		"":        hlog.LevelInfo,
		"verbose": hlog.LevelInfo,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			if got := (LogConfig{Level: in}).HertzLevel(); got != want {
				t.Fatalf("level %q: expected %v, got %v", in, want, got)
			}
		})
	}
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Catalog.Kind != "sqlite" {
		t.Fatalf("expected default catalog kind sqlite, got %s", cfg.Catalog.Kind)
	}
	if filepath.Base(cfg.Catalog.Location) != DefaultCatalogFile {
		t.Fatalf("expected default catalog file %s, got %s", DefaultCatalogFile, cfg.Catalog.Location)
	}
}
