// Package seccomp compiles a syscall name-list plus mode into a classic BPF
// (cBPF) program installable via SECCOMP_SET_MODE_FILTER, supporting both
// Allow and Deny modes over an arbitrary caller-supplied syscall list.
package seccomp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mode selects whether the named syscalls are the exception to a default
// allow, or the entirety of what's allowed.
type Mode int

const (
	// Deny allows everything except the named syscalls, which kill the
	// calling thread.
	Deny Mode = iota
	// Allow permits only the named syscalls; anything else kills the
	// calling thread.
	Allow
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "allow", "Allow":
		return Allow, nil
	case "deny", "Deny":
		return Deny, nil
	default:
		return Deny, fmt.Errorf("seccomp: unknown mode %q", s)
	}
}

// ConfigError reports a filter request the compiler cannot honor, e.g. an
// unrecognized syscall name. It is fatal to the deploy attempt.
type ConfigError struct {
	Syscall string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("seccomp: unknown syscall %q", e.Syscall)
}

// CompileError reports a BPF program that could not be assembled.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("seccomp: filter compile failed: %s", e.Reason)
}

// BPF instruction encoding constants not exposed as named values by
// golang.org/x/sys/unix in every build.
const (
	retAllow      = 0x7fff0000
	retKillThread = 0x00000000
)

// Program is a compiled seccomp filter ready to be serialized onto the pipe
// C1 hands to the sandbox launcher.
type Program struct {
	Instructions []unix.SockFilter
}

// Compile builds a BPF program for the given mode and syscall name list.
// Deny mode: default=allow, listed=kill-thread.
// Allow mode: default=kill-thread, listed=allow.
func Compile(mode Mode, names []string) (*Program, error) {
	nrs := make([]uint32, 0, len(names))
	for _, name := range names {
		nr, ok := lookup(name)
		if !ok {
			return nil, &ConfigError{Syscall: name}
		}
		nrs = append(nrs, nr)
	}

	n := len(nrs)
	if n == 0 {
		// Nothing named: Deny-mode reduces to "allow everything",
		// Allow-mode reduces to "kill everything".
		action := uint32(retAllow)
		if mode == Allow {
			action = retKillThread
		}
		return &Program{Instructions: []unix.SockFilter{
			loadSyscallNR(),
			ret(action),
		}}, nil
	}

	// matchAction is taken when the syscall number equals one of nrs;
	// fallAction is taken otherwise.
	matchAction := uint32(retKillThread)
	fallAction := uint32(retAllow)
	if mode == Allow {
		matchAction, fallAction = retAllow, retKillThread
	}

	prog := make([]unix.SockFilter, 0, n+3)
	prog = append(prog, loadSyscallNR())
	for i, nr := range nrs {
		// jt/jf are relative to the next instruction. The match branch
		// jumps past the remaining comparisons straight to the "matched"
		// return; falling through tries the next name.
		remaining := uint8(n - i)
		prog = append(prog, unix.SockFilter{
			Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K,
			Jt:   remaining, // distance to the matched-return instruction
			Jf:   0,
			K:    nr,
		})
	}
	prog = append(prog, ret(fallAction))
	prog = append(prog, ret(matchAction))

	if len(prog) > 0xffff {
		return nil, &CompileError{Reason: "program too large"}
	}
	return &Program{Instructions: prog}, nil
}

func loadSyscallNR() unix.SockFilter {
	return unix.SockFilter{
		Code: unix.BPF_LD | unix.BPF_W | unix.BPF_ABS,
		K:    0, // offsetof(struct seccomp_data, nr)
	}
}

func ret(action uint32) unix.SockFilter {
	return unix.SockFilter{Code: unix.BPF_RET | unix.BPF_K, K: action}
}

// Bytes serializes the program into the raw sock_filter[] wire layout (8
// bytes per instruction: u16 code, u8 jt, u8 jf, u32 k) that bwrap's
// --seccomp fd argument expects on its read end.
func (p *Program) Bytes() []byte {
	buf := make([]byte, 0, len(p.Instructions)*8)
	for _, ins := range p.Instructions {
		buf = append(buf,
			byte(ins.Code), byte(ins.Code>>8),
			ins.Jt, ins.Jf,
			byte(ins.K), byte(ins.K>>8), byte(ins.K>>16), byte(ins.K>>24),
		)
	}
	return buf
}
