package store

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JieningYu/yfass/internal/yerr"
)

func makeArchive(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return &buf
}

func makePlainTarArchive(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	return &buf
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestUploadAndResolve(t *testing.T) {
	s := newTestStore(t)
	archive := makeArchive(t, map[string]string{"main.sh": "echo hi\n"})

	cfg := Config{Addr: "127.0.0.1:18080"}
	rec, err := s.Upload(context.Background(), "echo", "v1", archive, cfg)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Meta.Name != "echo" || rec.Meta.Version != "v1" {
		t.Fatalf("unexpected meta: %+v", rec.Meta)
	}

	contents := s.ContentsDir("echo", "v1")
	if _, err := os.Stat(filepath.Join(contents, "main.sh")); err != nil {
		t.Fatalf("expected extracted file: %v", err)
	}

	got, err := s.Resolve(Key{Name: "echo", Version: "v1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Config.Addr != "127.0.0.1:18080" {
		t.Fatalf("resolved config addr = %q", got.Config.Addr)
	}
}

func TestUploadPlainTarIsAccepted(t *testing.T) {
	s := newTestStore(t)
	archive := makePlainTarArchive(t, map[string]string{"main.sh": "echo hi\n"})

	cfg := Config{Addr: "127.0.0.1:18081"}
	rec, err := s.Upload(context.Background(), "echo", "v1", archive, cfg)
	if err != nil {
		t.Fatalf("Upload of uncompressed tar: %v", err)
	}
	if rec.Meta.Name != "echo" || rec.Meta.Version != "v1" {
		t.Fatalf("unexpected meta: %+v", rec.Meta)
	}

	contents := s.ContentsDir("echo", "v1")
	data, err := os.ReadFile(filepath.Join(contents, "main.sh"))
	if err != nil {
		t.Fatalf("expected extracted file: %v", err)
	}
	if string(data) != "echo hi\n" {
		t.Fatalf("extracted content = %q", data)
	}
}

func TestUploadMalformedArchiveRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Upload(context.Background(), "echo", "v1", bytes.NewReader([]byte("not an archive at all")), Config{})
	if yerr.KindOf(err) != yerr.BadRequest {
		t.Fatalf("kind = %v, want BadRequest", yerr.KindOf(err))
	}
}

func TestUploadDuplicateRejected(t *testing.T) {
	s := newTestStore(t)
	archive := makeArchive(t, map[string]string{"f": "x"})
	if _, err := s.Upload(context.Background(), "echo", "v1", archive, Config{}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	archive2 := makeArchive(t, map[string]string{"f": "x"})
	_, err := s.Upload(context.Background(), "echo", "v1", archive2, Config{})
	if err == nil {
		t.Fatal("expected AlreadyExists on duplicate upload")
	}
	if yerr.KindOf(err) != yerr.AlreadyExists {
		t.Fatalf("kind = %v, want AlreadyExists", yerr.KindOf(err))
	}
}

func TestAliasIntegrity(t *testing.T) {
	s := newTestStore(t)
	archive := makeArchive(t, map[string]string{"f": "x"})
	if _, err := s.Upload(context.Background(), "echo", "v1", archive, Config{Addr: "a:1"}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := s.Alias("echo", "prod", "v1"); err != nil {
		t.Fatalf("Alias: %v", err)
	}

	byAlias, err := s.Resolve(Key{Name: "prod"})
	if err != nil {
		t.Fatalf("Resolve(prod): %v", err)
	}
	byVersion, err := s.Resolve(Key{Name: "echo", Version: "v1"})
	if err != nil {
		t.Fatalf("Resolve(echo@v1): %v", err)
	}
	if byAlias.Config.Addr != byVersion.Config.Addr {
		t.Fatalf("alias and direct resolution disagree: %+v vs %+v", byAlias, byVersion)
	}

	if err := s.Remove("echo", "v1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Resolve(Key{Name: "prod"}); yerr.KindOf(err) != yerr.NotFound {
		t.Fatalf("expected NotFound after removing aliased version, got %v", err)
	}
}

func TestAliasReassignmentMovesNotDuplicates(t *testing.T) {
	s := newTestStore(t)
	s.Upload(context.Background(), "echo", "v1", makeArchive(t, map[string]string{"f": "1"}), Config{Addr: "a:1"})
	s.Upload(context.Background(), "echo", "v2", makeArchive(t, map[string]string{"f": "2"}), Config{Addr: "a:2"})

	if err := s.Alias("echo", "prod", "v1"); err != nil {
		t.Fatalf("alias v1: %v", err)
	}
	if err := s.Alias("echo", "prod", "v2"); err != nil {
		t.Fatalf("alias v2: %v", err)
	}

	got, err := s.Resolve(Key{Name: "prod"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Meta.Version != "v2" {
		t.Fatalf("expected prod to point at v2, got %q", got.Meta.Version)
	}

	v1, err := s.load("echo", "v1")
	if err != nil {
		t.Fatalf("load v1: %v", err)
	}
	if v1.Meta.VersionAlias != nil {
		t.Fatalf("expected v1's alias pointer cleared, got %v", *v1.Meta.VersionAlias)
	}
}

func TestOverrideRequiresExistingVersion(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Override("nope", "v1", Config{Addr: "a:1"})
	if yerr.KindOf(err) != yerr.NotFound {
		t.Fatalf("Override on missing version: kind = %v, want NotFound", yerr.KindOf(err))
	}
}

func TestRemoveUnknownVersion(t *testing.T) {
	s := newTestStore(t)
	err := s.Remove("nope", "v1")
	if yerr.KindOf(err) != yerr.NotFound {
		t.Fatalf("Remove on missing version: kind = %v, want NotFound", yerr.KindOf(err))
	}
}
