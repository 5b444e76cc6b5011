//go:build linux

package bftw

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// statInfo is a minimal os.FileInfo backed by a raw fstatat result, so
// statAt doesn't need to round-trip through a path-based os.Lstat.
type statInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	mtime time.Time
	dev   uint64
	ino   uint64
}

func (s *statInfo) Name() string       { return s.name }
func (s *statInfo) Size() int64        { return s.size }
func (s *statInfo) Mode() os.FileMode  { return s.mode }
func (s *statInfo) ModTime() time.Time { return s.mtime }
func (s *statInfo) IsDir() bool        { return s.mode.IsDir() }
func (s *statInfo) Sys() any           { return s }

func unixModeToGo(m uint32) os.FileMode {
	mode := os.FileMode(m & 0777)
	switch m & unix.S_IFMT {
	case unix.S_IFBLK:
		mode |= os.ModeDevice
	case unix.S_IFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case unix.S_IFDIR:
		mode |= os.ModeDir
	case unix.S_IFIFO:
		mode |= os.ModeNamedPipe
	case unix.S_IFLNK:
		mode |= os.ModeSymlink
	case unix.S_IFSOCK:
		mode |= os.ModeSocket
	}
	return mode
}

func unixTimespecToGo(ts unix.Timespec) time.Time {
	return time.Unix(int64(ts.Sec), int64(ts.Nsec))
}

// devIno extracts the (dev, ino) pair used for cycle detection and
// mount-point comparison (§4.4.f, §4.4.g) from a FileInfo produced by
// this package's own stat paths.
func devIno(fi os.FileInfo) (dev, ino uint64, ok bool) {
	if s, ok := fi.Sys().(*statInfo); ok {
		return s.dev, s.ino, true
	}
	if st, ok := fi.Sys().(*unix.Stat_t); ok {
		return uint64(st.Dev), st.Ino, true
	}
	return 0, 0, false
}
