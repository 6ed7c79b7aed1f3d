package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nst.yaml")

	contents := `
proxy:
  host: 127.0.0.1
  port: 1080
network_jitter:
  targets:
    - "echo.example:9000"
  ping_interval: 1s
  test_duration: 10s
  parallel: 1
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %s", err)
	}
	if cfg.Proxy.Host != "127.0.0.1" {
		t.Errorf("Proxy.Host = %q, want 127.0.0.1", cfg.Proxy.Host)
	}
	if cfg.Jitter == nil || len(cfg.Jitter.Targets) != 1 {
		t.Fatalf("Jitter = %+v, want one target", cfg.Jitter)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/nst.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("proxy: [this is not a map"), 0o600); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadFileFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(path, []byte("proxy:\n  host: \"\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for empty proxy host")
	}
}
