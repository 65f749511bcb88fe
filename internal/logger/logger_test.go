package logger

import (
	"log/slog"
	"testing"
)

func TestInitSetsLevel(t *testing.T) {
	Init("debug")
	if !Log.Enabled(nil, slog.LevelDebug) {
		t.Fatal("expected debug level enabled after Init(\"debug\")")
	}

	Init("warn")
	if Log.Enabled(nil, slog.LevelInfo) {
		t.Fatal("expected info level disabled after Init(\"warn\")")
	}
	if !Log.Enabled(nil, slog.LevelWarn) {
		t.Fatal("expected warn level enabled after Init(\"warn\")")
	}
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	Init("not-a-real-level")
	if !Log.Enabled(nil, slog.LevelInfo) {
		t.Fatal("expected info level enabled as the fallback default")
	}
	if Log.Enabled(nil, slog.LevelDebug) {
		t.Fatal("expected debug level disabled under the fallback default")
	}
}

func TestNamedLazilyInitializes(t *testing.T) {
	Log = nil
	l := Named("store")
	if l == nil {
		t.Fatal("expected Named to lazily initialize the global logger")
	}
	if Log == nil {
		t.Fatal("expected Log to be set after Named's lazy init")
	}
}
