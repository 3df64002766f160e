package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goCinema/session"
	"github.com/alicebob/miniredis/v2"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gocinema.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
auth:
  base_url: https://auth.example.com
  api_key: anon
  refresh_leeway: 45s
catalog:
  api_key: cat-key
  cache_ttl: 2m
storage:
  backend: file
  dir: `+dir+`
browse:
  debounce: 250ms
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Auth.BaseURL != "https://auth.example.com" || cfg.Auth.APIKey != "anon" {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Auth.RefreshLeeway != 45*time.Second {
		t.Fatalf("expected 45s leeway, got %v", cfg.Auth.RefreshLeeway)
	}
	if cfg.Catalog.CacheTTL != 2*time.Minute {
		t.Fatalf("expected 2m cache ttl, got %v", cfg.Catalog.CacheTTL)
	}
	if cfg.Storage.Dir != dir {
		t.Fatalf("expected storage dir %q, got %q", dir, cfg.Storage.Dir)
	}

	ec := cfg.engineConfig()
	if ec.Browse.Debounce != 250*time.Millisecond {
		t.Fatalf("expected debounce to carry over, got %v", ec.Browse.Debounce)
	}
	if !ec.Auth.AutoRefresh {
		t.Fatal("expected auto refresh default to survive")
	}
	if err := ec.Validate(); err != nil {
		t.Fatalf("engine config should validate: %v", err)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  base_url: https://auth.example.com
  api_key: from-file
`)
	t.Setenv("GOCINEMA_AUTH_API_KEY", "from-env")
	t.Setenv("GOCINEMA_STORAGE_BACKEND", "redis")
	t.Setenv("GOCINEMA_STORAGE_REDIS_ADDR", "cache:6379")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Auth.APIKey != "from-env" {
		t.Fatalf("expected env api key, got %q", cfg.Auth.APIKey)
	}
	if cfg.Storage.Backend != "redis" || cfg.Storage.RedisAddr != "cache:6379" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Storage.RedisPrefix != "gocinema:" {
		t.Fatalf("expected default redis prefix, got %q", cfg.Storage.RedisPrefix)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := writeConfigFile(t, "storage:\n  backend: s3\n")
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("expected storage.backend error, got %v", err)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestOpenStorageRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	st, closeFn, err := openStorage(context.Background(), storageConfig{
		Backend:     "redis",
		RedisAddr:   mr.Addr(),
		RedisPrefix: "cli-test:",
	})
	if err != nil {
		t.Fatalf("openStorage: %v", err)
	}
	defer closeFn()

	if err := st.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("cli-test:k")
	if err != nil || got != "v" {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", got, err)
	}
}

func TestOpenStorageRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, _, err := openStorage(context.Background(), storageConfig{Backend: "redis", RedisAddr: addr}); err == nil {
		t.Fatal("expected ping failure for a closed redis")
	}
}

func TestOpenStorageFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	st, closeFn, err := openStorage(context.Background(), storageConfig{Backend: "file", Dir: dir})
	if err != nil {
		t.Fatalf("openStorage: %v", err)
	}
	defer closeFn()

	fs, ok := st.(*session.FileStorage)
	if !ok {
		t.Fatalf("expected *session.FileStorage, got %T", st)
	}
	if fs.Dir() != dir {
		t.Fatalf("expected dir %q, got %q", dir, fs.Dir())
	}
}

func TestNewLoggerFallsBackToWarn(t *testing.T) {
	l := newLogger("nonsense")
	if l.Enabled(context.Background(), -4) {
		t.Fatal("debug should be disabled for an unparseable level")
	}
	if !newLogger("debug").Enabled(context.Background(), -4) {
		t.Fatal("debug should be enabled for level=debug")
	}
}
