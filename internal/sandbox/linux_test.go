//go:build linux

package sandbox

import (
	"testing"
)

func TestNewMissingBwrapIsSpawnError(t *testing.T) {
	cfg := Config{
		Command:     "/bin/true",
		ContentsDir: t.TempDir(),
		BwrapPath:   "/nonexistent/bwrap-binary-that-does-not-exist",
	}
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error when bwrap is missing")
	}
	spawnErr, ok := err.(*SpawnError)
	if !ok {
		t.Fatalf("error type = %T, want *SpawnError", err)
	}
	if spawnErr.Category != "bwrap_missing" {
		t.Fatalf("category = %q, want bwrap_missing", spawnErr.Category)
	}
}

func TestBwrapPathDefault(t *testing.T) {
	if got := bwrapPath(Config{}); got != "bwrap" {
		t.Fatalf("bwrapPath(empty) = %q, want bwrap", got)
	}
	if got := bwrapPath(Config{BwrapPath: "/opt/bwrap"}); got != "/opt/bwrap" {
		t.Fatalf("bwrapPath(override) = %q, want /opt/bwrap", got)
	}
}
