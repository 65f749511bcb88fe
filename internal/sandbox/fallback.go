//go:build !linux

package sandbox

import (
	"context"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/JieningYu/yfass/internal/logger"
)

// New on non-Linux platforms runs the function as a plain child process with
// no namespace or seccomp isolation. Non-Linux targets are stubbed — the
// registry and API above this package never need to know.
func New(cfg Config) (Handle, error) {
	logger.Named("sandbox").Warn("no sandbox backend for this platform, running without isolation",
		"goos", "non-linux")

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.ContentsDir

	env := make([]string, 0, len(cfg.Envs))
	for k, v := range cfg.Envs {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

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
		return nil, &SpawnError{Category: "io", Cause: err}
	}

	h := &fallbackHandle{cmd: cmd, done: make(chan struct{}), graceTime: cfg.graceTime()}
	h.running.Store(true)
	go h.wait()
	return h, nil
}

type fallbackHandle struct {
	cmd       *exec.Cmd
	running   atomic.Bool
	done      chan struct{}
	graceTime time.Duration
}

func (h *fallbackHandle) wait() {
	h.cmd.Wait()
	h.running.Store(false)
	close(h.done)
}

func (h *fallbackHandle) IsRunning() bool {
	return h.running.Load()
}

func (h *fallbackHandle) Terminate(ctx context.Context) error {
	if !h.running.Load() {
		return nil
	}
	h.cmd.Process.Signal(syscall.SIGTERM)
	timer := time.NewTimer(h.graceTime)
	defer timer.Stop()
	select {
	case <-h.done:
		return nil
	case <-timer.C:
		h.cmd.Process.Kill()
	case <-ctx.Done():
		h.cmd.Process.Kill()
	}
	<-h.done
	return nil
}
