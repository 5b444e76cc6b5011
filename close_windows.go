//go:build windows

package bftw

// On Windows the engine always owns an *os.File (never a bare fd), so
// submitClose's closeFD branch is unreachable in practice.
func sysClosePortable(fd int) error { return nil }
