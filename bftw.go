// Package bftw provides a breadth-first-by-default filesystem
// traversal engine: a from-scratch reimplementation of the
// traversal core of the `find` utility `bfs`.
//
// By default Walk explores the starting paths in breadth-first order,
// overlapping opendir/stat/close with visitor-callback execution
// through an internal async I/O queue, and keeps a bounded LRU cache
// of open directory descriptors so traversals of very wide or very
// deep trees don't exhaust the process's file-descriptor limit.
// Depth-first, iterative-deepening, and exponential-deepening
// strategies are available through Args.Strategy.
//
// # Non-goals
//
// This package implements only the traversal core. Expression
// parsing, predicate evaluation, colored printing, regex matching,
// -exec-style action execution, and user/group caches are not part of
// this package; they are expected to live in the visitor callback or
// in a caller built on top of Walk, the way cmd/bftw does.
package bftw

import (
	"fmt"
	"os"
)

// Action is a visitor callback's decision about how to continue the
// traversal.
type Action int

const (
	// Continue descends into a directory (on a directory visit) or
	// simply moves on (on a non-directory visit).
	Continue Action = iota
	// Prune skips this entry's children entirely.
	Prune
	// Stop aborts the whole traversal; Walk returns ErrStop.
	Stop
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "Continue"
	case Prune:
		return "Prune"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Visit distinguishes the pre-order call (before a directory's
// children are processed) from the post-order call (after).
type Visit int

const (
	Pre Visit = iota
	Post
)

func (v Visit) String() string {
	if v == Post {
		return "Post"
	}
	return "Pre"
}

// Strategy selects a traversal order (spec §4.5, Glossary).
type Strategy int

const (
	BFS Strategy = iota
	DFS
	IDS // iterative deepening
	EDS // exponential deepening
)

// Flags are the engine-wide options of spec §3 "Engine state".
type Flags uint32

const (
	FlagStat         Flags = 1 << iota // always stat, never rely on dirent type hints
	FlagSort                           // BFTW_SORT: siblings visited in strcoll(ish) order
	FlagRecover                        // BFTW_RECOVER: surface per-entry errors as ERROR visits
	FlagVisitError                     // BFTW_VISIT_ERROR: permit ERROR visits (paired with FlagRecover)
	FlagPostOrder                      // BFTW_POST_ORDER: fire POST visits
	FlagDetectCycles                   // BFTW_DETECT_CYCLES
	FlagSkipMounts                     // BFTW_SKIP_MOUNTS
	FlagPruneMounts                    // BFTW_PRUNE_MOUNTS
	FlagBuffer                         // BFTW_BUFFER: force sibling buffering; required for DFS's LIFO descent order
	FlagWhiteouts                      // BFTW_WHITEOUTS
)

// Callback is the user-supplied visitor (spec §6). It is always
// invoked on the goroutine that called Walk.
type Callback func(*Entry) Action

// Args configures a single Walk call (spec §6 "walk(args)").
type Args struct {
	// Paths are the starting paths, processed in input order.
	Paths []string
	// Callback is invoked for every visited entry.
	Callback Callback

	Flags    Flags
	Strategy Strategy

	// Mtab is consulted by the must-stat policy (§4.4.d) when set; it
	// is never required.
	Mtab Mtab

	// MaxOpenFiles bounds the FD cache (spec §4.1); 0 selects
	// defaultMaxOpenFiles(). Per spec §7, any other value < 2
	// (negative values included) is a logic error.
	MaxOpenFiles int
	// IOQThreads is the ioq worker count (spec §4.2); 0 disables the
	// ioq and makes every operation synchronous. < 0 selects
	// DefaultIOQThreads.
	IOQThreads int

	// FollowRoots / FollowAll are the two symlink-follow bits of
	// §4.4.e (-H / -L).
	FollowRoots bool
	FollowAll   bool

	// DedupByInode backs the supplemented -unique flag
	// (SPEC_FULL.md §5): once an inode has been visited, later
	// encounters of the same inode are pruned without a callback.
	DedupByInode bool
}

// Walk runs the traversal described by args and returns nil on
// success or a non-nil error (spec §6: "Return 0 on success, -1 on any
// unsurfaced error"). A Stop returned by the callback yields ErrStop.
func Walk(args *Args) error {
	if err := validateArgs(args); err != nil {
		return err
	}
	switch args.Strategy {
	case BFS, DFS:
		return runEngine(args)
	case IDS:
		return walkIterativeDeepening(args)
	case EDS:
		return walkExponentialDeepening(args)
	default:
		return fmt.Errorf("%w: unknown strategy %d", ErrInvalidArgs, args.Strategy)
	}
}

func validateArgs(args *Args) error {
	if args == nil || args.Callback == nil {
		return fmt.Errorf("%w: nil Args or Callback", ErrInvalidArgs)
	}
	if len(args.Paths) == 0 {
		return fmt.Errorf("%w: no paths", ErrInvalidArgs)
	}
	if args.MaxOpenFiles != 0 && args.MaxOpenFiles < 2 {
		return fmt.Errorf("%w: MaxOpenFiles must be >= 2 (or 0 for the default)", ErrInvalidArgs)
	}
	return nil
}

// Entry is the visitor descriptor of spec §4.4.b.
type Entry struct {
	path   string
	root   string
	depth  int
	visit  Visit
	typ    Type
	err    error
	atFD   int
	atPath string

	eng *engine
	rec *record
}

func (v *Entry) Path() string  { return v.path }
func (v *Entry) Root() string  { return v.root }
func (v *Entry) Depth() int    { return v.depth }
func (v *Entry) Visit() Visit  { return v.visit }
func (v *Entry) Type() Type    { return v.typ }
func (v *Entry) Err() error    { return v.err }
func (v *Entry) IsDir() bool   { return v.typ == TypeDirectory }
func (v *Entry) ATFD() int     { return v.atFD }
func (v *Entry) ATPath() string { return v.atPath }

// Stat returns the follow-symlink stat buffer, faulting it in and
// caching it on first use.
func (v *Entry) Stat() (os.FileInfo, error) {
	return v.eng.fetchStat(v.rec, false)
}

// Lstat returns the no-follow stat buffer, faulting it in and caching
// it on first use.
func (v *Entry) Lstat() (os.FileInfo, error) {
	return v.eng.fetchStat(v.rec, true)
}

// CachedStat returns a previously fetched stat buffer without faulting
// it in; ok is false if nothing has been cached yet.
func (v *Entry) CachedStat(follow bool) (info os.FileInfo, err error, ok bool) {
	slot := &v.rec.stat
	if !follow {
		slot = &v.rec.lstat
	}
	switch slot.state {
	case statFetchedOK:
		return slot.info, nil, true
	case statFetchedErr:
		return nil, slot.err, true
	default:
		return nil, nil, false
	}
}
