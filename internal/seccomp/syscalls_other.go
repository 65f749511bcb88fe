//go:build !linux

package seccomp

// lookup always fails on non-Linux platforms; seccomp is a Linux-only
// mechanism and the sandbox package's stub never reaches Compile here.
func lookup(name string) (uint32, bool) {
	return 0, false
}
