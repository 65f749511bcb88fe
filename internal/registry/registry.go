// Package registry is the in-memory deploy/kill/status layer. It drives
// internal/sandbox for process lifecycle and publishes successful deploys
// to internal/router, the data-plane's only source of routing truth.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/router"
	"github.com/JieningYu/yfass/internal/sandbox"
	"github.com/JieningYu/yfass/internal/store"
	"github.com/JieningYu/yfass/internal/yerr"
)

// RuntimeEntry is a live (name, version)'s running state.
type RuntimeEntry struct {
	Handle          sandbox.Handle
	PublishedPrefix string
	Addr            string
}

// Registry holds the map of currently-deployed runtime entries.
type Registry struct {
	store  *store.Store
	router *router.Router
	bwrapPath string

	mu      sync.Mutex
	entries map[string]*RuntimeEntry // key: "name@version"
}

func New(st *store.Store, rt *router.Router, bwrapPath string) *Registry {
	return &Registry{
		store:     st,
		router:    rt,
		bwrapPath: bwrapPath,
		entries:   make(map[string]*RuntimeEntry),
	}
}

func runtimeKey(name, version string) string { return name + "@" + version }

// prefixOf is lower-cased to match the keys router.Prefix produces.
func prefixOf(name, version string) string { return strings.ToLower(version + "." + name) }

// Deploy loads the function's config, spawns it via the sandbox, and on
// success publishes its router entry keyed by "<version>.<name>",
// lower-cased. A second
// concurrent deploy of the same key is rejected with AlreadyExists. The
// launcher is rolled back (its router entry, if any, is never published)
// on spawn failure.
func (r *Registry) Deploy(ctx context.Context, name, version string) error {
	rk := runtimeKey(name, version)

	r.mu.Lock()
	if _, running := r.entries[rk]; running {
		r.mu.Unlock()
		return yerr.AlreadyExistsf("function %s@%s is already running", name, version)
	}
	// Reserve the slot before releasing the lock so a second concurrent
	// Deploy(k) sees it immediately instead of racing the sandbox spawn.
	r.entries[rk] = &RuntimeEntry{}
	r.mu.Unlock()

	rec, err := r.store.Resolve(store.Key{Name: name, Version: version})
	if err != nil {
		r.abortReservation(rk)
		return err
	}

	cfg, err := r.buildSandboxConfig(name, version, rec)
	if err != nil {
		r.abortReservation(rk)
		return err
	}

	handle, err := sandbox.New(cfg)
	if err != nil {
		r.abortReservation(rk)
		return yerr.Wrap(yerr.SandboxSpawn, "spawn sandbox", err)
	}

	target, err := router.ResolveTarget(rec.Config.Addr)
	if err != nil {
		handle.Terminate(ctx)
		r.abortReservation(rk)
		return yerr.BadRequestf("invalid addr %q: %v", rec.Config.Addr, err)
	}

	prefix := prefixOf(name, version)
	r.router.Publish(prefix, target)

	r.mu.Lock()
	r.entries[rk] = &RuntimeEntry{Handle: handle, PublishedPrefix: prefix, Addr: rec.Config.Addr}
	r.mu.Unlock()

	logger.Named("registry").Info("deployed function", "name", name, "version", version, "prefix", prefix)
	return nil
}

func (r *Registry) abortReservation(rk string) {
	r.mu.Lock()
	delete(r.entries, rk)
	r.mu.Unlock()
}

func (r *Registry) buildSandboxConfig(name, version string, rec store.Record) (sandbox.Config, error) {
	sb := rec.Config.Sandbox
	mode, err := sb.PlatformExt.Mode()
	if err != nil {
		return sandbox.Config{}, err
	}

	var filter *sandbox.SyscallFilter
	if len(sb.PlatformExt.SyscallFilter) > 0 {
		filter = &sandbox.SyscallFilter{Mode: mode, Names: sb.PlatformExt.SyscallFilter}
	}

	mounts := make([]sandbox.Mount, 0, len(sb.ROEntries))
	for host, sbPath := range sb.ROEntries {
		mounts = append(mounts, sandbox.Mount{HostPath: host, SandboxPath: sbPath})
	}

	return sandbox.Config{
		Command:       sb.Command,
		Args:          sb.Args,
		ROEntries:     mounts,
		Envs:          sb.Envs,
		InheritStdout: sb.InheritStdout,
		ContentsDir:   r.store.ContentsDir(name, version),
		MountProcfs:   sb.PlatformExt.MountProcfs,
		MountDevtmpfs: sb.PlatformExt.MountDevtmpfs,
		MountTmpfs:    sb.PlatformExt.MountTmpfs,
		SyscallFilter: filter,
		BwrapPath:     r.bwrapPath,
	}, nil
}

// Kill removes the router entry first, then terminates the handle, so no
// new request can be routed to a sandbox mid-teardown. It is idempotent
// on a not-running key.
func (r *Registry) Kill(ctx context.Context, name, version string) error {
	rk := runtimeKey(name, version)

	r.mu.Lock()
	entry, ok := r.entries[rk]
	if !ok || entry.Handle == nil {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, rk)
	r.mu.Unlock()

	r.router.Unpublish(entry.PublishedPrefix)
	if err := entry.Handle.Terminate(ctx); err != nil {
		return fmt.Errorf("registry: terminate %s: %w", rk, err)
	}
	return nil
}

// Status reports whether (name, version) currently has a running sandbox.
func (r *Registry) Status(name, version string) bool {
	rk := runtimeKey(name, version)
	r.mu.Lock()
	entry, ok := r.entries[rk]
	r.mu.Unlock()
	if !ok || entry.Handle == nil {
		return false
	}
	return entry.Handle.IsRunning()
}
