//go:build linux

package bftw

import (
	"os"
	"sync"
	"syscall"
	"unsafe"
)

// Empirical testing (inherited from the teacher's fastwalk_unix.go)
// shows 32k is a good buffer size for a single getdents64 call.
const direntBufSize = 32 * 1024

var direntBufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, direntBufSize)
		return &b
	},
}

// readDirFD enumerates the entries of the already-open directory dir
// via raw getdents64 (through syscall.ReadDirent on dir's underlying
// fd), calling fn with each entry's name and the type hint carried in
// d_type. "." and ".." are suppressed. This is the realization of
// spec §6's "readdir" and avoids an extra stat per child purely to
// learn its type.
func readDirFD(dir *os.File, fn func(name string, typ Type)) error {
	fd := int(dir.Fd())
	pb := direntBufPool.Get().(*[]byte)
	defer direntBufPool.Put(pb)
	bbuf := *pb

	for {
		n, err := readDirentRetry(fd, bbuf)
		if err != nil {
			return err
		}
		if n <= 0 {
			return nil
		}
		buf := bbuf[:n:n]
		for len(buf) > 0 {
			consumed, name, typ := parseDirent(buf)
			if consumed <= 0 {
				break
			}
			buf = buf[consumed:]
			if name == "" || name == "." || name == ".." {
				continue
			}
			fn(name, typ)
		}
	}
}

func readDirentRetry(fd int, buf []byte) (int, error) {
	for {
		n, err := syscall.ReadDirent(fd, buf)
		if err != syscall.EINTR {
			return n, err
		}
	}
}

const direntNameOffset = uint64(unsafe.Offsetof(syscall.Dirent{}.Name))

func parseDirent(buf []byte) (consumed int, name string, typ Type) {
	if len(buf) < int(unsafe.Offsetof(syscall.Dirent{}.Name)) {
		return 0, "", TypeUnknown
	}
	reclen := *(*uint16)(unsafe.Pointer(&buf[unsafe.Offsetof(syscall.Dirent{}.Reclen)]))
	if uint64(reclen) == 0 || uint64(reclen) > uint64(len(buf)) {
		return 0, "", TypeUnknown
	}
	rec := buf[:reclen]
	dtype := rec[unsafe.Offsetof(syscall.Dirent{}.Type)]
	typ = directTypeToFileType(dtype)

	namebuf := rec[direntNameOffset:]
	end := 0
	for end < len(namebuf) && namebuf[end] != 0 {
		end++
	}
	return int(reclen), string(namebuf[:end]), typ
}

func directTypeToFileType(dt byte) Type {
	switch dt {
	case syscall.DT_REG:
		return TypeRegular
	case syscall.DT_DIR:
		return TypeDirectory
	case syscall.DT_LNK:
		return TypeSymlink
	case syscall.DT_BLK:
		return TypeBlockDev
	case syscall.DT_CHR:
		return TypeCharDev
	case syscall.DT_FIFO:
		return TypeFifo
	case syscall.DT_SOCK:
		return TypeSocket
	case syscall.DT_WHT:
		return TypeWhiteout
	default:
		return TypeUnknown
	}
}
