//go:build linux

package bftw

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// atFDCWD is the AT_FDCWD sentinel of spec §6 ("AT_FDCWD semantics").
const atFDCWD = unix.AT_FDCWD

func sysOpenat(dirfd int, name string, flags int) (int, error) {
	for {
		fd, err := unix.Openat(dirfd, name, flags, 0)
		if err != unix.EINTR {
			return fd, err
		}
	}
}

func sysFstatat(dirfd int, name string, flags int) (unix.Stat_t, error) {
	var st unix.Stat_t
	for {
		err := unix.Fstatat(dirfd, name, &st, flags)
		if err != unix.EINTR {
			return st, err
		}
	}
}

// openDirAt opens relPath relative to atFD as a directory descriptor
// (openat + O_DIRECTORY, spec §6). fullPath is used only for error
// reporting. On ENAMETOOLONG it recovers by walking relPath one
// component at a time, opening each intermediary relative to its
// parent (§4.4.h).
func openDirAt(atFD int, relPath, fullPath string) (*os.File, error) {
	const flags = unix.O_RDONLY | unix.O_CLOEXEC | unix.O_DIRECTORY
	fd, err := sysOpenat(atFD, relPath, flags)
	if err == nil {
		return os.NewFile(uintptr(fd), fullPath), nil
	}
	if err != unix.ENAMETOOLONG {
		return nil, &os.PathError{Op: "openat", Path: fullPath, Err: err}
	}
	return openDirAtRecover(atFD, relPath, fullPath)
}

func openDirAtRecover(atFD int, relPath, fullPath string) (*os.File, error) {
	const flags = unix.O_RDONLY | unix.O_CLOEXEC | unix.O_DIRECTORY
	cur := atFD
	opened := -1
	if strings.HasPrefix(relPath, "/") {
		fd, err := sysOpenat(atFD, "/", flags)
		if err != nil {
			return nil, &os.PathError{Op: "openat", Path: fullPath, Err: err}
		}
		opened, cur = fd, fd
	}
	for _, comp := range strings.Split(relPath, "/") {
		if comp == "" {
			continue
		}
		fd, err := sysOpenat(cur, comp, flags)
		if opened >= 0 {
			unix.Close(opened)
		}
		if err != nil {
			return nil, &os.PathError{Op: "openat", Path: fullPath, Err: err}
		}
		opened = fd
		cur = fd
	}
	if opened < 0 {
		return nil, &os.PathError{Op: "openat", Path: fullPath, Err: unix.EINVAL}
	}
	return os.NewFile(uintptr(opened), fullPath), nil
}

// statAt performs an fstatat of relPath relative to atFD, following the
// symlink unless nofollow is set.
func statAt(atFD int, relPath, fullPath string, nofollow bool) (os.FileInfo, error) {
	flags := 0
	if nofollow {
		flags = unix.AT_SYMLINK_NOFOLLOW
	}
	st, err := sysFstatat(atFD, relPath, flags)
	if err != nil {
		return nil, &os.PathError{Op: "fstatat", Path: fullPath, Err: err}
	}
	return &statInfo{
		name:  baseName(fullPath),
		size:  st.Size,
		mode:  unixModeToGo(st.Mode),
		mtime: unixTimespecToGo(st.Mtim),
		dev:   uint64(st.Dev),
		ino:   st.Ino,
	}, nil
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
