//go:build !linux

package bftw

import (
	"os"
)

// atFDCWD is a placeholder on platforms where openDirAt does not use
// FD-relative opens; see the comment on openDirAt below.
const atFDCWD = -1

// openDirAt on non-Linux platforms opens fullPath directly rather than
// relative to atFD: golang.org/x/sys/unix's Stat_t layout (and thus
// devIno below) is not uniform enough across darwin/bsd/windows for
// this module to justify a second raw-syscall fast path alongside the
// Linux one in openat_unix.go. fullPath is always the complete path
// built by the path builder, so this degrades to the teacher's own
// portable fallback (fastwalk_portable.go) rather than failing.
func openDirAt(_ int, _ string, fullPath string) (*os.File, error) {
	return os.OpenFile(fullPath, os.O_RDONLY, 0)
}

func statAt(_ int, _ string, fullPath string, nofollow bool) (os.FileInfo, error) {
	if nofollow {
		return os.Lstat(fullPath)
	}
	return os.Stat(fullPath)
}

// devIno extracts (dev, ino) via the standard syscall package, which
// exposes Dev/Ino on every unix syscall.Stat_t even though their
// concrete integer types vary by platform. On platforms without a
// Unix-style Stat_t (Windows) it reports ok=false and callers degrade
// gracefully (no cycle detection, no mount-point comparison).
func devIno(fi os.FileInfo) (dev, ino uint64, ok bool) {
	return portableDevIno(fi)
}
