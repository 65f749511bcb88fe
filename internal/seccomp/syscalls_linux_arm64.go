//go:build linux && arm64

package seccomp

import "golang.org/x/sys/unix"

// names maps the syscall names accepted in a function's platform_ext
// syscall_filter list to their kernel numbers. arm64 dropped several
// legacy syscalls that amd64 still carries (open, stat, lstat, access,
// pipe, select, dup2, fork, vfork, getdents, rename, mkdir, rmdir, unlink,
// link, symlink, readlink, chmod, chown all have no SYS_* constant here); those
// names are simply absent from this table and resolve as unrecognized.
var names = map[string]uint32{
	"read":           unix.SYS_READ,
	"write":          unix.SYS_WRITE,
	"openat":         unix.SYS_OPENAT,
	"close":          unix.SYS_CLOSE,
	"fstat":          unix.SYS_FSTAT,
	"mmap":           unix.SYS_MMAP,
	"mprotect":       unix.SYS_MPROTECT,
	"munmap":         unix.SYS_MUNMAP,
	"brk":            unix.SYS_BRK,
	"rt_sigaction":   unix.SYS_RT_SIGACTION,
	"rt_sigprocmask": unix.SYS_RT_SIGPROCMASK,
	"ioctl":          unix.SYS_IOCTL,
	"pipe2":          unix.SYS_PIPE2,
	"sched_yield":    unix.SYS_SCHED_YIELD,
	"dup":            unix.SYS_DUP,
	"nanosleep":      unix.SYS_NANOSLEEP,
	"socket":         unix.SYS_SOCKET,
	"connect":        unix.SYS_CONNECT,
	"accept":         unix.SYS_ACCEPT,
	"accept4":        unix.SYS_ACCEPT4,
	"sendto":         unix.SYS_SENDTO,
	"recvfrom":       unix.SYS_RECVFROM,
	"bind":           unix.SYS_BIND,
	"listen":         unix.SYS_LISTEN,
	"clone":          unix.SYS_CLONE,
	"execve":         unix.SYS_EXECVE,
	"exit":           unix.SYS_EXIT,
	"exit_group":     unix.SYS_EXIT_GROUP,
	"wait4":          unix.SYS_WAIT4,
	"kill":           unix.SYS_KILL,
	"tkill":          unix.SYS_TKILL,
	"uname":          unix.SYS_UNAME,
	"fcntl":          unix.SYS_FCNTL,
	"flock":          unix.SYS_FLOCK,
	"ftruncate":      unix.SYS_FTRUNCATE,
	"getdents64":     unix.SYS_GETDENTS64,
	"getcwd":         unix.SYS_GETCWD,
	"chdir":          unix.SYS_CHDIR,
	"renameat":       unix.SYS_RENAMEAT,
	"linkat":         unix.SYS_LINKAT,
	"symlinkat":      unix.SYS_SYMLINKAT,
	"readlinkat":     unix.SYS_READLINKAT,
	"fchmodat":       unix.SYS_FCHMODAT,
	"fchownat":       unix.SYS_FCHOWNAT,
	"getuid":         unix.SYS_GETUID,
	"getgid":         unix.SYS_GETGID,
	"setuid":         unix.SYS_SETUID,
	"setgid":         unix.SYS_SETGID,
	"getpid":         unix.SYS_GETPID,
	"getppid":        unix.SYS_GETPPID,
	"ptrace":         unix.SYS_PTRACE,
	"mount":          unix.SYS_MOUNT,
	"umount2":        unix.SYS_UMOUNT2,
	"reboot":         unix.SYS_REBOOT,
	"swapon":         unix.SYS_SWAPON,
	"swapoff":        unix.SYS_SWAPOFF,
	"pivot_root":     unix.SYS_PIVOT_ROOT,
	"init_module":    unix.SYS_INIT_MODULE,
	"finit_module":   unix.SYS_FINIT_MODULE,
	"delete_module":  unix.SYS_DELETE_MODULE,
	"kexec_load":     unix.SYS_KEXEC_LOAD,
	"unshare":        unix.SYS_UNSHARE,
	"setns":          unix.SYS_SETNS,
	"clock_gettime":  unix.SYS_CLOCK_GETTIME,
	"gettimeofday":   unix.SYS_GETTIMEOFDAY,
	"futex":          unix.SYS_FUTEX,
	"epoll_create1":  unix.SYS_EPOLL_CREATE1,
	"epoll_wait":     unix.SYS_EPOLL_WAIT,
	"epoll_ctl":      unix.SYS_EPOLL_CTL,
	"socketpair":     unix.SYS_SOCKETPAIR,
	"getsockopt":     unix.SYS_GETSOCKOPT,
	"setsockopt":     unix.SYS_SETSOCKOPT,
}
