// Package sandbox spawns an isolated child process for a deployed function
// and owns its lifecycle. The Linux backend shells out to bwrap; other
// platforms get a stub that satisfies the interface but performs no
// isolation, so portability is achieved only by keeping the sandbox
// behind an abstract interface.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/JieningYu/yfass/internal/seccomp"
)

// SpawnError categorizes a launcher failure that happened before exec.
// Failures after exec surface only as a non-zero exit the registry
// observes via IsRunning.
type SpawnError struct {
	Category string // "fd_setup", "bwrap_missing", "io"
	Cause    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("sandbox spawn error [%s]: %v", e.Category, e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// Handle represents a spawned sandbox. Terminate must be safe to call more
// than once and on a process that has already exited.
type Handle interface {
	IsRunning() bool
	Terminate(ctx context.Context) error
}

// Mount is a read-only bind mount from a host path into the sandbox.
type Mount struct {
	HostPath    string
	SandboxPath string
}

// SyscallFilter is the platform_ext seccomp configuration.
type SyscallFilter struct {
	Mode  seccomp.Mode
	Names []string
}

// Config mirrors a FunctionRecord's sandbox + platform_ext configuration
// plus the resolved contents directory the launcher must mount.
type Config struct {
	Command       string
	Args          []string
	ROEntries     []Mount
	Envs          map[string]string
	InheritStdout bool
	ContentsDir   string // host path to <root>/functions/<name>/<version>/contents

	MountProcfs    bool
	MountDevtmpfs  bool
	MountTmpfs     bool
	SyscallFilter  *SyscallFilter // nil = no filter installed

	BwrapPath string        // path to the bwrap executable
	GraceTime time.Duration // Terminate's SIGTERM-to-SIGKILL window; 0 = default (5s)
}

// contentsMountPath is the fixed, private location the function's contents
// directory is mounted at inside the sandbox. Mounting at "./" would be
// interpreted as "/" by bwrap and collide with later binds (§4.2.3).
const contentsMountPath = "/.__private_yfass_contents"

const defaultGraceTime = 5 * time.Second

func (c Config) graceTime() time.Duration {
	if c.GraceTime > 0 {
		return c.GraceTime
	}
	return defaultGraceTime
}
