package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != ":8080" || cfg.LogLevel != "info" || cfg.TokenTTLDays != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BwrapPath != "bwrap" {
		t.Fatalf("BwrapPath = %q, want bwrap", cfg.BwrapPath)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yfass.yaml")
	const doc = "bind_addr: :9090\nroot: /var/lib/yfass\nbase_host: faas.example.com\ntoken_ttl_days: 30\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want :9090", cfg.BindAddr)
	}
	if cfg.Root != "/var/lib/yfass" {
		t.Fatalf("Root = %q", cfg.Root)
	}
	if cfg.BaseHost != "faas.example.com" {
		t.Fatalf("BaseHost = %q", cfg.BaseHost)
	}
	if cfg.TokenTTLDays != 30 {
		t.Fatalf("TokenTTLDays = %d, want 30", cfg.TokenTTLDays)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestApplyFlagOnlyOverwritesNonZero(t *testing.T) {
	s := "original"
	ApplyFlag(&s, "")
	if s != "original" {
		t.Fatalf("zero value flag overwrote field: %q", s)
	}
	ApplyFlag(&s, "override")
	if s != "override" {
		t.Fatalf("non-zero flag did not overwrite: %q", s)
	}

	n := 5
	ApplyFlag(&n, 0)
	if n != 5 {
		t.Fatalf("zero int flag overwrote field: %d", n)
	}
	ApplyFlag(&n, 7)
	if n != 7 {
		t.Fatalf("non-zero int flag did not overwrite: %d", n)
	}
}
