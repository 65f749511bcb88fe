//go:build linux && amd64

package seccomp

import "golang.org/x/sys/unix"

// names maps the syscall names accepted in a function's platform_ext
// syscall_filter list to their kernel numbers. Covers the syscalls a
// sandboxed function is realistically configured to allow or deny.
var names = map[string]uint32{
	"read":           unix.SYS_READ,
	"write":          unix.SYS_WRITE,
	"open":           unix.SYS_OPEN,
	"openat":         unix.SYS_OPENAT,
	"close":          unix.SYS_CLOSE,
	"stat":           unix.SYS_STAT,
	"fstat":          unix.SYS_FSTAT,
	"lstat":          unix.SYS_LSTAT,
	"mmap":           unix.SYS_MMAP,
	"mprotect":       unix.SYS_MPROTECT,
	"munmap":         unix.SYS_MUNMAP,
	"brk":            unix.SYS_BRK,
	"rt_sigaction":   unix.SYS_RT_SIGACTION,
	"rt_sigprocmask": unix.SYS_RT_SIGPROCMASK,
	"ioctl":          unix.SYS_IOCTL,
	"access":         unix.SYS_ACCESS,
	"pipe":           unix.SYS_PIPE,
	"pipe2":          unix.SYS_PIPE2,
	"select":         unix.SYS_SELECT,
	"sched_yield":    unix.SYS_SCHED_YIELD,
	"dup":            unix.SYS_DUP,
	"dup2":           unix.SYS_DUP2,
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
	"fork":           unix.SYS_FORK,
	"vfork":          unix.SYS_VFORK,
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
	"getdents":       unix.SYS_GETDENTS,
	"getdents64":     unix.SYS_GETDENTS64,
	"getcwd":         unix.SYS_GETCWD,
	"chdir":          unix.SYS_CHDIR,
	"rename":         unix.SYS_RENAME,
	"mkdir":          unix.SYS_MKDIR,
	"rmdir":          unix.SYS_RMDIR,
	"unlink":         unix.SYS_UNLINK,
	"link":           unix.SYS_LINK,
	"symlink":        unix.SYS_SYMLINK,
	"readlink":       unix.SYS_READLINK,
	"chmod":          unix.SYS_CHMOD,
	"chown":          unix.SYS_CHOWN,
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
