package store

import "github.com/JieningYu/yfass/internal/seccomp"

// SandboxSpec is the platform-independent part of a function's sandbox
// configuration.
type SandboxSpec struct {
	Command       string            `json:"command"`
	Args          []string          `json:"args,omitempty"`
	ROEntries     map[string]string `json:"ro_entries,omitempty"` // host_path -> sandbox_path
	Envs          map[string]string `json:"envs,omitempty"`
	InheritStdout bool              `json:"inherit_stdout,omitempty"`
	PlatformExt   PlatformExt       `json:"platform_ext,omitempty"`
}

// PlatformExt is the Linux-specific sandbox extension.
type PlatformExt struct {
	SyscallFilterMode string   `json:"syscall_filter_mode,omitempty"` // "Allow" | "Deny"
	SyscallFilter     []string `json:"syscall_filter,omitempty"`
	MountProcfs       bool     `json:"mount_procfs,omitempty"`
	MountDevtmpfs     bool     `json:"mount_devtmpfs,omitempty"`
	MountTmpfs        bool     `json:"mount_tmpfs,omitempty"`
}

// Mode parses SyscallFilterMode, defaulting to Deny when unset.
func (p PlatformExt) Mode() (seccomp.Mode, error) {
	if p.SyscallFilterMode == "" {
		return seccomp.Deny, nil
	}
	return seccomp.ParseMode(p.SyscallFilterMode)
}

// Config is a FunctionRecord's mutable configuration.
type Config struct {
	Group   string      `json:"group,omitempty"`
	Addr    string      `json:"addr"`
	Sandbox SandboxSpec `json:"sandbox"`
}

// Meta identifies a specific deployed function version.
type Meta struct {
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	VersionAlias  *string `json:"version_alias,omitempty"`
}

// Record is a function's full on-disk record: identity plus config.
type Record struct {
	Meta   Meta   `json:"meta"`
	Config Config `json:"config"`
}
