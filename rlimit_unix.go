//go:build !windows

package bftw

import "golang.org/x/sys/unix"

func processOpenFileLimit() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 256
	}
	if rlim.Cur > 1<<20 {
		return 1 << 20
	}
	return int(rlim.Cur)
}
