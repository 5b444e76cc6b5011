package bftw

import "os"

// followMode is the effective per-call symlink policy passed to statAt
// (spec §4.4.e): tryFollow retries with nofollow on a broken symlink's
// ENOENT, nofollow never retries.
type followMode uint8

const (
	followNone followMode = iota // NOFOLLOW
	followTry                    // TRYFOLLOW
)

// effectiveFollow computes the runtime flag set for a record at depth
// d, given the two Args bits (§4.4.e): "Effective stat flags at depth
// 0 include follow-roots; deeper entries use follow-all."
func (a *Args) effectiveFollow(depth int) followMode {
	follow := a.FollowAll
	if depth == 0 {
		follow = follow || a.FollowRoots
	}
	if follow {
		return followTry
	}
	return followNone
}

// mustStat implements §4.4.d's must_stat predicate.
func (e *engine) mustStat(r *record) bool {
	a := e.args
	if a.Flags&FlagStat != 0 {
		return true
	}
	if e.dedup != nil {
		return true // -unique needs (dev, ino) on every entry, not just directories
	}
	if r.typ == TypeUnknown {
		return true
	}
	if r.typ == TypeDirectory && a.Flags&(FlagDetectCycles|FlagSkipMounts|FlagPruneMounts) != 0 {
		return true
	}
	if r.typ == TypeSymlink && e.args.effectiveFollow(r.depth) != followNone {
		return true
	}
	if e.mtab != nil && r.typ != TypeUnknown && e.mtab.MaybeMountPoint(e.buildPath(r)) {
		return true
	}
	return false
}

// fetchStat performs (or returns the cached result of) a stat/lstat on
// r, following the symlink-follow and whiteout-emulation rules of
// §4.4.b/§4.4.e. nofollow selects the lstat slot; otherwise the stat
// slot is used, with TRYFOLLOW's ENOENT-retry-as-nofollow behavior.
func (e *engine) fetchStat(r *record, nofollow bool) (os.FileInfo, error) {
	slot := &r.stat
	if nofollow {
		slot = &r.lstat
	}
	switch slot.state {
	case statFetchedOK:
		return slot.info, nil
	case statFetchedErr:
		return nil, slot.err
	}

	atFD, relPath := e.atPair(r)
	fullPath := e.buildPath(r)

	follow := !nofollow
	info, err := statAt(atFD, relPath, fullPath, !follow)
	if err != nil && follow && os.IsNotExist(err) {
		// TRYFOLLOW: a broken symlink's ENOENT falls back to lstat.
		info, err = statAt(atFD, relPath, fullPath, true)
	}
	slot.set(info, err)
	if err == nil {
		if dev, ino, ok := devIno(info); ok {
			r.dev, r.ino = dev, ino
		}
		r.setType(fileTypeFromMode(info.Mode()))
	}
	return info, err
}

// atPair returns the (at_fd, at_path) openable pair of §4.4.b: the
// nearest open ancestor's fd (or AT_FDCWD) and a path relative to it
// (or the absolute/relative full path when no ancestor fd is open).
func (e *engine) atPair(r *record) (atFD int, relPath string) {
	if r.parent != nil && r.parent.hasFD() {
		return r.parent.fd, r.name
	}
	return atFDCWD, e.buildPath(r)
}
