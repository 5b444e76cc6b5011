package bftw

import "errors"

// ErrStop is returned by Walk when the visitor returned Stop.
var ErrStop = errors.New("bftw: walk stopped by callback")

// ErrInvalidArgs covers the "logic errors" of spec §7 that Walk checks:
// nil Args or Callback, no paths, an unknown strategy, or
// MaxOpenFiles < 2. A callback return other than Continue, Prune or
// Stop is not checked; the engine treats it as Continue.
var ErrInvalidArgs = errors.New("bftw: invalid arguments")

// ErrLoop is delivered as an Entry's error when BFTW_DETECT_CYCLES
// finds the entry's (dev, ino) among its own ancestors. It stands in
// for the original implementation's ELOOP, as a portable sentinel
// rather than a platform errno (some targets don't define one by that
// name).
var ErrLoop = errors.New("bftw: ELOOP: filesystem cycle detected")

// accumulator is the engine's "error accumulator" of spec §7: it is
// only ever updated on loss of information (an error that cannot be
// surfaced through a visitor ERROR call), and its first error is what
// Walk returns when the traversal otherwise completes normally.
type accumulator struct {
	err error
}

func (a *accumulator) record(err error) {
	if err != nil && a.err == nil {
		a.err = err
	}
}
