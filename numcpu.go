package bftw

import "runtime"

// DefaultIOQThreads is the default number of ioq worker goroutines,
// clamped the same way the teacher clamps its DefaultNumWorkers: never
// below 2 (one for the current directory, one spare, per the
// nopenfd floor in SPEC_FULL.md §5) and never above 32.
var DefaultIOQThreads = func() int {
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	if n > 32 {
		return 32
	}
	return n
}()

// defaultMaxOpenFiles is the fallback FD-cache capacity used when Args
// does not specify one: half of the process's soft RLIMIT_NOFILE, down
// to a floor of 2 (the nopenfd floor).
func defaultMaxOpenFiles() int {
	n := processOpenFileLimit()
	n /= 2
	if n < 2 {
		return 2
	}
	return n
}
