//go:build !linux

package bftw

import "os"

// readDirFD is the portable fallback for platforms without a raw
// getdents64 fast path (adapted from the teacher's own
// fastwalk_portable.go fallback): it reads through dir's own
// *os.File.ReadDir rather than minting a second *os.File over the same
// descriptor, which would install its own GC finalizer and risk
// closing the engine's live fd out from under it.
//
// dir must already be open (opened via openDirAt) and positioned at
// the start; it is not closed by this function.
func readDirFD(dir *os.File, fn func(name string, typ Type)) error {
	des, err := dir.ReadDir(-1)
	for _, d := range des {
		name := d.Name()
		if name == "." || name == ".." {
			continue
		}
		fn(name, fileTypeFromMode(d.Type()))
	}
	return err
}
