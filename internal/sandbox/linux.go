//go:build linux

package sandbox

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/JieningYu/yfass/internal/seccomp"
)

type linuxHandle struct {
	cmd       *exec.Cmd
	running   atomic.Bool
	done      chan struct{}
	graceTime time.Duration

	mu          sync.Mutex
	terminating bool
}

// New spawns a function inside a bwrap sandbox, returning a Handle that
// owns the child.
func New(cfg Config) (Handle, error) {
	if _, err := exec.LookPath(bwrapPath(cfg)); err != nil {
		return nil, &SpawnError{Category: "bwrap_missing", Cause: err}
	}

	args := []string{"--unshare-all", "--share-net", "--die-with-parent"}

	for _, m := range cfg.ROEntries {
		args = append(args, "--ro-bind", m.HostPath, m.SandboxPath)
	}
	args = append(args, "--ro-bind", cfg.ContentsDir, contentsMountPath)

	if cfg.MountProcfs {
		args = append(args, "--proc", "/proc")
	}
	if cfg.MountDevtmpfs {
		args = append(args, "--dev", "/dev")
	}
	if cfg.MountTmpfs {
		args = append(args, "--tmpfs", "/tmp")
	}

	// Start from a clean slate so only the listed envs reach the child.
	args = append(args, "--clearenv")
	for k, v := range cfg.Envs {
		args = append(args, "--setenv", k, v)
	}

	args = append(args, "--chdir", contentsMountPath)

	var extraFiles []*os.File
	if cfg.SyscallFilter != nil {
		prog, err := seccomp.Compile(cfg.SyscallFilter.Mode, cfg.SyscallFilter.Names)
		if err != nil {
			return nil, err // *seccomp.ConfigError / *seccomp.CompileError, fatal per §4.1
		}
		readEnd, err := seccomp.Pipe(prog)
		if err != nil {
			return nil, &SpawnError{Category: "fd_setup", Cause: err}
		}
		extraFiles = append(extraFiles, readEnd)
		// ExtraFiles[0] lands at fd 3 in the child (stdin/out/err are 0-2).
		args = append(args, "--seccomp", "3")
	}

	args = append(args, "--", cfg.Command)
	args = append(args, cfg.Args...)

	cmd := exec.Command(bwrapPath(cfg), args...)
	cmd.ExtraFiles = extraFiles
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}

	if cfg.InheritStdout {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, &SpawnError{Category: "io", Cause: err}
		}
		defer null.Close()
		cmd.Stdout = null
		cmd.Stderr = null
	}

	if err := cmd.Start(); err != nil {
		for _, f := range extraFiles {
			f.Close()
		}
		return nil, &SpawnError{Category: "io", Cause: err}
	}
	for _, f := range extraFiles {
		f.Close() // the child holds its own copy past exec
	}

	h := &linuxHandle{
		cmd:       cmd,
		done:      make(chan struct{}),
		graceTime: cfg.graceTime(),
	}
	h.running.Store(true)
	go h.wait()
	return h, nil
}

func bwrapPath(cfg Config) string {
	if cfg.BwrapPath != "" {
		return cfg.BwrapPath
	}
	return "bwrap"
}

func (h *linuxHandle) wait() {
	h.cmd.Wait()
	h.running.Store(false)
	close(h.done)
}

func (h *linuxHandle) IsRunning() bool {
	return h.running.Load()
}

func (h *linuxHandle) Terminate(ctx context.Context) error {
	h.mu.Lock()
	if h.terminating {
		h.mu.Unlock()
		<-h.done
		return nil
	}
	h.terminating = true
	h.mu.Unlock()

	if !h.running.Load() {
		return nil // idempotent on not-running (§8 property 10)
	}

	h.cmd.Process.Signal(syscall.SIGTERM)

	timer := time.NewTimer(h.graceTime)
	defer timer.Stop()
	select {
	case <-h.done:
		return nil
	case <-timer.C:
		h.cmd.Process.Signal(syscall.SIGKILL)
	case <-ctx.Done():
		h.cmd.Process.Signal(syscall.SIGKILL)
	}
	<-h.done
	return nil
}
