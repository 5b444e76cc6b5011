package bftw

import "os"

// Type classifies a record the way bftw's visitor descriptor does.
// It is derived from a dirent's d_type when available and refined by
// stat/lstat once either is fetched.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeBlockDev
	TypeCharDev
	TypeFifo
	TypeSocket
	TypeWhiteout
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeBlockDev:
		return "block device"
	case TypeCharDev:
		return "char device"
	case TypeFifo:
		return "fifo"
	case TypeSocket:
		return "socket"
	case TypeWhiteout:
		return "whiteout"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

func fileTypeFromMode(m os.FileMode) Type {
	switch {
	case m.IsRegular():
		return TypeRegular
	case m.IsDir():
		return TypeDirectory
	case m&os.ModeSymlink != 0:
		return TypeSymlink
	case m&os.ModeDevice != 0 && m&os.ModeCharDevice != 0:
		return TypeCharDev
	case m&os.ModeDevice != 0:
		return TypeBlockDev
	case m&os.ModeNamedPipe != 0:
		return TypeFifo
	case m&os.ModeSocket != 0:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// statState tracks whether a stat buffer slot has been populated.
type statState uint8

const (
	statUnfetched statState = iota
	statFetchedOK
	statFetchedErr
)

// statSlot is either of FileRecord's two stat caches (§3 "Stat cache").
type statSlot struct {
	state statState
	info  os.FileInfo
	err   error
}

func (s *statSlot) set(info os.FileInfo, err error) {
	if err != nil {
		s.state = statFetchedErr
		s.err = err
		return
	}
	s.state = statFetchedOK
	s.info = info
}

// record is the Go rendering of spec.md's FileRecord: one encountered
// filesystem entry. Records form a forest via parent, so reference
// cycles are structurally impossible (§9 "Reference-counted parent
// pointers ... Cycles are impossible because the parent pointer graph
// is a forest.").
type record struct {
	name   string
	parent *record
	root   *record
	depth  int

	nameOffset int
	nameLength int

	fd  int // -1 means "none"
	dir *os.File // non-nil iff an opendir succeeded and hasn't been closed

	refcount int
	pincount int
	ioqueued bool

	typ Type
	dev uint64
	ino uint64

	stat  statSlot
	lstat statSlot

	// mirrors the dirent type hint recorded before any stat, used by
	// must_stat (stat.go) to decide whether a stat is required at all.
	direntType Type

	// set by completeOp when an async opendir fails; serviceDir then
	// retries the open synchronously and reports that attempt's error.
	walkErr error

	postFired bool
	pruned    bool

	// seq is assigned when the record enters a queue's waiting stage and
	// is used by that queue to preserve pop-order under BFTW_SORT even
	// when async completions arrive out of order (queue.go, ORDER flag).
	seq int64

	// three independent next/prev pairs, one per intrusive list this
	// record can simultaneously belong to (§9 "Intrusive linked-list
	// hooks ... modeled as three independent next/prev pairs").
	bufNext, bufPrev     *record // queue buffer/waiting stage
	readyNext, readyPrev *record // queue ready stage
	lruNext, lruPrev     *record // FD cache LRU list
}

func newRecord(parent *record, name string) *record {
	r := &record{
		name:   name,
		parent: parent,
		fd:     -1,
		refcount: 1,
	}
	if parent != nil {
		r.root = parent.root
		r.depth = parent.depth + 1
		sep := 0
		if parent.name != "" && parent.name[len(parent.name)-1] != '/' {
			sep = 1
		}
		r.nameOffset = parent.nameOffset + parent.nameLength + sep
		parent.refcount++ // I4: parent accounts for this child
	}
	r.nameLength = len(name)
	return r
}

func newRoot(path string) *record {
	r := &record{
		name:  path,
		fd:    -1,
		refcount: 1,
		nameLength: len(path),
	}
	r.root = r
	return r
}

// hasFD reports whether the record currently owns an open descriptor (I1/I2).
func (r *record) hasFD() bool { return r.fd >= 0 }

// setType overwrites r's type with the result of an actual stat/lstat.
// A dirent's d_type is only ever a hint (and absent on some
// filesystems); once must_stat has fired, the stat result is
// authoritative and replaces it outright, matching bftw.c's
// ftwbuf->type = bfs_mode_to_type(statbuf->mode) after every stat.
func (r *record) setType(t Type) {
	r.typ = t
}
