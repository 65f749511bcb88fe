// Package store persists deployed function versions to a directory tree
// under a configured root and resolves aliases to concrete versions. It
// owns no process lifecycle; internal/registry drives that.
package store

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/yerr"
	"golang.org/x/crypto/blake2b"
)

// Store is a JSON-and-directory-tree backed registry of function versions.
// Layout:
//
//	<root>/functions/<name>/<version>/contents/...
//	<root>/functions/<name>/<version>/config.json
//	<root>/functions/<name>/aliases/<alias> -> ../<version>
//
// All mutating methods are internally serialized per function name so a
// concurrent Upload and Remove on the same name can't race; distinct names
// proceed independently.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "functions"), 0o755); err != nil {
		return nil, fmt.Errorf("store: create root: %w", err)
	}
	return &Store{root: root, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Store) funcDir(name string) string       { return filepath.Join(s.root, "functions", name) }
func (s *Store) versionDir(name, v string) string  { return filepath.Join(s.funcDir(name), v) }
func (s *Store) aliasesDir(name string) string     { return filepath.Join(s.funcDir(name), "aliases") }
func (s *Store) aliasLink(name, alias string) string {
	return filepath.Join(s.aliasesDir(name), alias)
}

// ContentsDir returns the host path of a version's extracted contents,
// the path internal/sandbox bind-mounts into the child.
func (s *Store) ContentsDir(name, version string) string {
	return filepath.Join(s.versionDir(name, version), "contents")
}

// Resolve turns a Key (possibly a bare alias) into a concrete (name,
// version) pair and loads its Record.
func (s *Store) Resolve(key Key) (Record, error) {
	if key.IsAlias() {
		links, err := filepath.Glob(filepath.Join(s.root, "functions", "*", "aliases", key.Name))
		if err != nil {
			return Record{}, fmt.Errorf("store: find alias %s: %w", key.Name, err)
		}
		if len(links) == 0 {
			return Record{}, yerr.NotFoundf("alias %q", key.Name)
		}
		name := filepath.Base(filepath.Dir(filepath.Dir(links[0])))
		target, err := s.readAlias(name, key.Name)
		if err != nil {
			return Record{}, err
		}
		return s.load(name, target)
	}
	return s.load(key.Name, key.Version)
}

func (s *Store) readAlias(name, alias string) (string, error) {
	link := s.aliasLink(name, alias)
	target, err := os.Readlink(link)
	if errors.Is(err, fs.ErrNotExist) {
		return "", yerr.NotFoundf("alias %q", alias)
	}
	if err != nil {
		return "", fmt.Errorf("store: read alias %s/%s: %w", name, alias, err)
	}
	return filepath.Base(target), nil
}

func (s *Store) load(name, version string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(s.versionDir(name, version), "config.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, yerr.NotFoundf("function %s@%s", name, version)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: read config: %w", err)
	}
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return Record{}, yerr.BadRequestf("corrupt config for %s@%s: %v", name, version, err)
	}
	return rec, nil
}

// Upload extracts a tar or tar.gz archive into a new version directory and
// writes its config. The archive is fingerprinted with blake2b for logging
// only; the fingerprint is not part of the persisted record.
func (s *Store) Upload(ctx context.Context, name, version string, archive io.Reader, cfg Config) (Record, error) {
	if err := validNameVersion(name, version); err != nil {
		return Record{}, err
	}
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	dest := s.versionDir(name, version)
	if _, err := os.Stat(dest); err == nil {
		return Record{}, yerr.AlreadyExistsf("function %s@%s", name, version)
	}

	staging, err := os.MkdirTemp(s.funcDir(name)+"_staging", "upload-*")
	if err != nil {
		if err := os.MkdirAll(s.funcDir(name)+"_staging", 0o755); err != nil {
			return Record{}, fmt.Errorf("store: prepare staging: %w", err)
		}
		staging, err = os.MkdirTemp(s.funcDir(name)+"_staging", "upload-*")
		if err != nil {
			return Record{}, fmt.Errorf("store: create staging dir: %w", err)
		}
	}
	defer os.RemoveAll(staging)

	contentsStaging := filepath.Join(staging, "contents")
	if err := os.MkdirAll(contentsStaging, 0o755); err != nil {
		return Record{}, fmt.Errorf("store: prepare contents staging: %w", err)
	}

	sum, err := extractTarGz(archive, contentsStaging)
	if err != nil {
		return Record{}, yerr.BadRequestf("invalid function archive: %v", err)
	}
	logger.Named("store").Debug("staged function upload", "name", name, "version", version,
		"fingerprint", hex.EncodeToString(sum[:8]))

	rec := Record{Meta: Meta{Name: name, Version: version}, Config: cfg}
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("store: marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, "config.json"), body, 0o644); err != nil {
		return Record{}, fmt.Errorf("store: write config: %w", err)
	}

	if err := os.MkdirAll(s.funcDir(name), 0o755); err != nil {
		return Record{}, fmt.Errorf("store: prepare function dir: %w", err)
	}
	if err := os.Rename(staging, dest); err != nil {
		return Record{}, fmt.Errorf("store: commit version dir: %w", err)
	}
	return rec, nil
}

// Override replaces an existing version's config without touching its
// contents.
func (s *Store) Override(name, version string, cfg Config) (Record, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	dir := s.versionDir(name, version)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return Record{}, yerr.NotFoundf("function %s@%s", name, version)
	}

	rec := Record{Meta: Meta{Name: name, Version: version}, Config: cfg}
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("store: marshal config: %w", err)
	}
	tmp := filepath.Join(dir, "config.json.tmp")
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return Record{}, fmt.Errorf("store: write config: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "config.json")); err != nil {
		return Record{}, fmt.Errorf("store: commit config: %w", err)
	}
	return rec, nil
}

// Alias points alias at name@version, replacing any previous target and
// clearing the old target's reverse pointer. Each version carries at most
// one alias at a time; reassigning an alias moves it, it does not
// duplicate it.
func (s *Store) Alias(name, alias, version string) error {
	if err := validName(alias); err != nil {
		return err
	}
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	dir := s.versionDir(name, version)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return yerr.NotFoundf("function %s@%s", name, version)
	}

	if cur, err := s.load(name, version); err == nil && cur.Meta.VersionAlias != nil && *cur.Meta.VersionAlias != alias {
		os.Remove(s.aliasLink(name, *cur.Meta.VersionAlias))
	}
	if prevVersion, err := s.readAlias(name, alias); err == nil {
		if err := s.clearVersionAlias(name, prevVersion); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(s.aliasesDir(name), 0o755); err != nil {
		return fmt.Errorf("store: prepare aliases dir: %w", err)
	}
	link := s.aliasLink(name, alias)
	os.Remove(link)
	if err := os.Symlink(filepath.Join("..", version), link); err != nil {
		return fmt.Errorf("store: create alias symlink: %w", err)
	}

	return s.setVersionAlias(name, version, &alias)
}

func (s *Store) clearVersionAlias(name, version string) error {
	return s.setVersionAlias(name, version, nil)
}

// RemoveAlias detaches version's alias, if it has one (the {"alias": null}
// form of PUT /api/alias). A version with no alias is a no-op.
func (s *Store) RemoveAlias(name, version string) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.load(name, version)
	if err != nil {
		return err
	}
	if rec.Meta.VersionAlias == nil {
		return nil
	}
	os.Remove(s.aliasLink(name, *rec.Meta.VersionAlias))
	return s.setVersionAlias(name, version, nil)
}

func (s *Store) setVersionAlias(name, version string, alias *string) error {
	rec, err := s.load(name, version)
	if err != nil {
		return err
	}
	rec.Meta.VersionAlias = alias
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(s.versionDir(name, version), "config.json"), body, 0o644)
}

// Remove deletes a version and, if it held an alias, the alias symlink too.
func (s *Store) Remove(name, version string) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	dir := s.versionDir(name, version)
	rec, err := s.load(name, version)
	if err != nil {
		return err
	}
	if rec.Meta.VersionAlias != nil {
		os.Remove(s.aliasLink(name, *rec.Meta.VersionAlias))
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("store: remove version dir: %w", err)
	}
	return nil
}

// List returns every version currently stored under name.
func (s *Store) List(name string) ([]Record, error) {
	entries, err := os.ReadDir(s.funcDir(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", name, err)
	}
	var out []Record
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "aliases" {
			continue
		}
		rec, err := s.load(name, e.Name())
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// gzipMagic is the two-byte RFC 1952 header every gzip stream starts with.
var gzipMagic = [2]byte{0x1f, 0x8b}

// extractTarGz extracts either a gzip-compressed or a plain tar stream into
// dest, detecting which by sniffing the stream's first two bytes. Plain tar
// is the conformance baseline; gzip is accepted as a convenience and only
// rejected with a clear error if its framing is itself malformed. An
// archive holding no files or directories is rejected.
func extractTarGz(r io.Reader, dest string) ([32]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	tee := io.TeeReader(r, h)
	br := bufio.NewReader(tee)

	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return [32]byte{}, fmt.Errorf("read archive: %w", err)
	}

	var tr *tar.Reader
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return [32]byte{}, fmt.Errorf("not gzip: %w", err)
		}
		defer gz.Close()
		tr = tar.NewReader(gz)
	} else {
		tr = tar.NewReader(br)
	}

	extracted := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return [32]byte{}, fmt.Errorf("tar: %w", err)
		}
		target := filepath.Join(dest, filepath.Clean("/"+hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return [32]byte{}, err
			}
			extracted++
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return [32]byte{}, err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode&0o777))
			if err != nil {
				return [32]byte{}, err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return [32]byte{}, err
			}
			f.Close()
			extracted++
		default:
			// symlinks and other entry types are skipped; the sandbox's
			// own mount tree supplies device/special files when needed.
		}
	}
	if extracted == 0 {
		return [32]byte{}, errors.New("archive contains no files or directories")
	}

	// Drain any trailer so the full archive is hashed even if the tar
	// reader stopped before EOF of the underlying stream.
	io.Copy(io.Discard, br)

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
