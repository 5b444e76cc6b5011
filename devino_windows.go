//go:build windows

package bftw

import "os"

// Windows has no dev/ino pair comparable to POSIX's; cycle detection
// and mount-point comparison are unavailable there (§4.4.f, §4.4.g
// both degrade to "never matches").
func portableDevIno(fi os.FileInfo) (dev, ino uint64, ok bool) {
	return 0, 0, false
}
