//go:build !linux

package sandbox

import (
	"context"
	"testing"
	"time"
)

func TestFallbackRunsAndExits(t *testing.T) {
	cfg := Config{
		Command:     "/bin/sh",
		Args:        []string{"-c", "exit 0"},
		ContentsDir: t.TempDir(),
	}
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for h.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.IsRunning() {
		t.Fatal("expected process to have exited")
	}
}

func TestFallbackTerminateKillsLongRunningProcess(t *testing.T) {
	cfg := Config{
		Command:     "/bin/sh",
		Args:        []string{"-c", "sleep 30"},
		ContentsDir: t.TempDir(),
		GraceTime:   50 * time.Millisecond,
	}
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.Terminate(ctx); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if h.IsRunning() {
		t.Fatal("expected process terminated")
	}
	// Terminate must be idempotent on an already-stopped handle.
	if err := h.Terminate(ctx); err != nil {
		t.Fatalf("second Terminate: %v", err)
	}
}
