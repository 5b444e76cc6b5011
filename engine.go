package bftw

import (
	"sort"
)

// engine is the Go rendering of spec.md's "Engine state": both
// traversal queues, the FD cache, the optional ioq, the path builder,
// the mount-table collaborator, and the error accumulator, all private
// to one Walk call.
type engine struct {
	args *Args

	cache *fdCache
	ioq   *ioQueue
	mtab  Mtab
	paths pathBuilder

	dirq  *queue // directories already PRE-visited with CONTINUE, awaiting opendir+readdir
	fileq *queue // freshly discovered entries awaiting their PRE visit

	dedup *dedupFilter

	errs    accumulator
	stopped bool
}

// runEngine drives BFS and DFS directly (spec §4.5: "direct use of the
// engine with BFS (FIFO) or DFS (LIFO+BUFFER) queue flags"). IDS/EDS
// build their own engine per round by calling this repeatedly with a
// wrapped callback; see iddeepening.go and expdeepening.go.
func runEngine(args *Args) error {
	e := &engine{args: args, mtab: args.Mtab}

	capacity := args.MaxOpenFiles
	if capacity <= 0 {
		capacity = defaultMaxOpenFiles()
	}
	e.cache = newFDCache(capacity)

	threads := args.IOQThreads
	if threads < 0 {
		threads = DefaultIOQThreads
	}
	e.ioq = newIOQueue(threads)
	if e.ioq != nil {
		defer e.ioq.shutdown()
	}

	if args.DedupByInode {
		e.dedup = newDedupFilter()
	}

	dirFlags, fileFlags := queueFlagsFor(args)
	e.dirq = newQueue(dirFlags)
	e.fileq = newQueue(fileFlags)

	for _, p := range args.Paths {
		e.visitCurrent(newRoot(p))
		if e.stopped {
			break
		}
	}

	if !e.stopped {
		e.drive()
	}

	if e.stopped {
		return ErrStop
	}
	return e.errs.err
}

func queueFlagsFor(args *Args) (dirFlags, fileFlags queueFlags) {
	dirFlags = qOrder | qBalance
	fileFlags = qOrder | qBalance
	// DFS's LIFO sibling-descent order is only realized through a
	// buffered flush (qLIFO reverses buffer-to-waiting, not push order
	// itself); without BFTW_BUFFER, DFS falls back to the discovery-order
	// approximation the spec itself names for the unbuffered case.
	if args.Strategy == DFS && args.Flags&FlagBuffer != 0 {
		dirFlags |= qBuffer | qLIFO
	}
	if args.Flags&FlagSort != 0 || args.Flags&FlagBuffer != 0 {
		fileFlags |= qBuffer
	}
	return dirFlags, fileFlags
}

// drive is the outer loop of §4.4.2: flush both queues, offer newly
// eligible waiting entries to the ioq, then service whichever queue
// has work, preferring the directory queue. A nil pop means the
// queue's next record is mid-flight in the ioq, so the loop blocks on
// one completion before retrying.
func (e *engine) drive() {
	for !e.dirq.empty() || !e.fileq.empty() {
		e.dirq.flush()
		if e.args.Flags&FlagSort != 0 {
			e.sortBufferedSiblings()
		}
		e.fileq.flush()
		e.offerAsync()

		switch {
		case !e.dirq.empty():
			r := e.dirq.pop()
			if r == nil {
				if !e.awaitProgress() {
					return
				}
				continue
			}
			e.serviceDir(r)
		case !e.fileq.empty():
			r := e.fileq.pop()
			if r == nil {
				if !e.awaitProgress() {
					return
				}
				continue
			}
			e.visitCurrent(r)
		}

		if e.stopped {
			e.drainAll()
			return
		}
	}
}

func (e *engine) awaitProgress() bool {
	if e.ioq == nil {
		return false
	}
	return e.ioq.waitOne(e.completeOp)
}

// sortBufferedSiblings implements BFTW_SORT: the file queue's buffer
// at this point holds exactly one directory's freshly read children
// (serviceDir reads a directory to exhaustion before drive() ever
// flushes again), so sorting the buffer in place and then flushing
// yields strcoll-style sibling order without disturbing cross-
// directory ordering.
func (e *engine) sortBufferedSiblings() {
	b := &e.fileq.buffer
	if b.size < 2 {
		return
	}
	items := make([]*record, 0, b.size)
	for r := b.head; r != nil; r = r.bufNext {
		items = append(items, r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].name < items[j].name })
	*b = list{}
	for _, r := range items {
		r.bufNext, r.bufPrev = nil, nil
		listPushBackBuf(b, r)
	}
}

// offerAsync walks each queue's waiting stage and submits an async
// opendir/stat for any entry that isn't already in flight, as long as
// its queue's balance still permits it (spec §4.3's BALANCE flag).
// Entries submitted out of seq order still pop in order: attach()
// parks them in the completed map until their turn (queue.go).
func (e *engine) offerAsync() {
	if e.ioq == nil {
		return
	}
	for r := e.fileq.waiting.head; r != nil; {
		next := r.bufNext
		if !r.ioqueued && e.fileq.mayGoAsync() && e.mustStat(r) {
			follow := r.typ == TypeSymlink && e.args.effectiveFollow(r.depth) != followNone
			atFD, relPath := e.atPair(r)
			fullPath := e.buildPath(r)
			e.fileq.detach(r, true)
			e.ioq.submitStat(atFD, relPath, fullPath, !follow, r)
		}
		r = next
	}
	for r := e.dirq.waiting.head; r != nil; {
		next := r.bufNext
		if !r.ioqueued && !r.hasFD() && e.dirq.mayGoAsync() {
			if err := e.reserve(); err != nil {
				break
			}
			atFD, relPath := e.atPair(r)
			fullPath := e.buildPath(r)
			e.dirq.detach(r, true)
			e.ioq.submitOpendir(atFD, relPath, fullPath, r)
		}
		r = next
	}
}

// completeOp is the ioq completion handler (spec §4.2): it writes the
// result into the record and re-attaches it to whichever queue is
// waiting on it.
func (e *engine) completeOp(res ioResult) {
	r := res.op.tag
	switch res.op.kind {
	case opOpendir:
		if res.err == nil {
			r.dir = res.dir
			r.fd = res.fd
			e.cache.add(r)
		} else {
			r.walkErr = res.err
		}
		e.dirq.attach(r, true)
	case opStat:
		slot := &r.stat
		if res.op.nofollow {
			slot = &r.lstat
		}
		slot.set(res.info, res.err)
		if res.err == nil {
			if dev, ino, ok := devIno(res.info); ok {
				r.dev, r.ino = dev, ino
			}
			r.setType(fileTypeFromMode(res.info.Mode()))
		}
		e.fileq.attach(r, true)
	case opClose:
		// Fire-and-forget closes issued by gc(); nothing to re-attach.
	}
}

// visitChild implements the dirent half of §4.4.a's visit_entry:
// allocate a child record with the dirent's type hint and either
// buffer it (so its stat can be offloaded) or visit it immediately.
func (e *engine) visitChild(parent *record, name string, direntType Type) {
	if e.stopped {
		return
	}
	r := newRecord(parent, name)
	r.typ = direntType
	r.direntType = direntType

	if e.shouldBuffer(r) {
		e.fileq.push(r)
		return
	}
	e.visitCurrent(r)
}

// shouldBuffer is the buffering half of §4.4.a: BFTW_SORT always
// buffers (so the sibling group can be sorted before flush);
// otherwise a record is buffered only when it lets a required stat be
// offloaded to the ioq rather than blocking the main loop. Roots are
// never buffered (§5: "stat for root records is never offloaded").
func (e *engine) shouldBuffer(r *record) bool {
	if r.parent == nil {
		return false
	}
	if e.args.Flags&FlagSort != 0 {
		return true
	}
	return e.ioq != nil && e.mustStat(r) && e.fileq.mayGoAsync()
}

// visitCurrent implements §4.4.a's non-buffered branch: resolve
// type/stat if required, run cycle/mount/dedup checks, deliver the
// visit, and act on CONTINUE/PRUNE/STOP.
func (e *engine) visitCurrent(r *record) {
	if e.stopped {
		e.gc(r)
		return
	}

	var statErr error
	if e.mustStat(r) {
		// An Unknown type (every root, or a dirent without d_type) may
		// itself be a symlink, so it is stat'ed under the follow policy too.
		follow := (r.typ == TypeSymlink || r.typ == TypeUnknown) && e.args.effectiveFollow(r.depth) != followNone
		nofollow := !follow
		slot := &r.stat
		if nofollow {
			slot = &r.lstat
		}
		alreadyFetched := slot.state != statUnfetched
		_, statErr = e.fetchStat(r, nofollow)
		if !alreadyFetched && r.parent != nil {
			e.fileq.rebalance(1)
		}
	}
	if wtype, werr, ok := maybeWhiteout(e.args.Flags, r.direntType, statErr); ok {
		r.typ, statErr = wtype, werr
	}
	if statErr != nil {
		r.typ = TypeError
	}

	if statErr == nil && r.typ == TypeDirectory && r.parent != nil &&
		e.args.Flags&FlagDetectCycles != 0 && detectCycle(r) {
		r.typ = TypeError
		statErr = ErrLoop
	}

	if statErr == nil && r.typ == TypeDirectory && r.parent != nil &&
		e.args.Flags&FlagSkipMounts != 0 && isMountPoint(r) {
		r.pruned = true
		e.gc(r) // BFTW_SKIP_MOUNTS: treated as PRUNE, no callback at all
		return
	}

	// (r.dev != 0 || r.ino != 0) guards against a record whose stat
	// somehow never ran; mustStat already forces a stat whenever dedup
	// is active, so a genuine inode 0 would also skip the dedup check
	// here, but real filesystems don't hand out inode 0.
	if statErr == nil && e.dedup != nil && (r.dev != 0 || r.ino != 0) && e.dedup.seenBefore(r.dev, r.ino) {
		r.pruned = true
		e.gc(r)
		return
	}

	action := e.deliver(r, Pre, statErr)
	switch action {
	case Stop:
		e.stopped = true
		e.gc(r)
		return
	case Prune:
		r.pruned = true
		e.gc(r)
		return
	}

	if statErr == nil && r.typ == TypeDirectory {
		if e.args.Flags&FlagPruneMounts != 0 && r.parent != nil && isMountPoint(r) {
			e.gc(r) // BFTW_PRUNE_MOUNTS: visited, but not descended
			return
		}
		e.dirq.push(r)
		return
	}
	e.gc(r)
}

// deliver builds the visitor descriptor for r and invokes the user
// callback, honoring §7's recover/visit-error policy for entries that
// failed to stat or read: without both BFTW_RECOVER and
// BFTW_VISIT_ERROR, the error is absorbed into the accumulator and the
// callback is never invoked for it.
func (e *engine) deliver(r *record, visit Visit, statErr error) Action {
	if statErr != nil {
		const want = FlagRecover | FlagVisitError
		if e.args.Flags&want != want {
			e.errs.record(statErr)
			return Continue
		}
	}

	atFD, atPath := e.atPair(r)
	ent := &Entry{
		path:   e.buildPath(r),
		root:   r.root.name,
		depth:  r.depth,
		visit:  visit,
		typ:    r.typ,
		err:    statErr,
		atFD:   atFD,
		atPath: atPath,
		eng:    e,
		rec:    r,
	}
	return e.args.Callback(ent)
}

// serviceDir implements step 2.a of the outer loop: open the
// directory if a completed async opendir hasn't already done so, read
// its entries, run visit_entry for each, then release the directory's
// own reference (gc) once exhausted.
func (e *engine) serviceDir(r *record) {
	if e.stopped {
		e.gc(r)
		return
	}

	if !r.hasFD() {
		if err := e.reserve(); err != nil {
			e.finishDirError(r, err)
			return
		}
		atFD, relPath := e.atPair(r)
		dir, err := openDirAt(atFD, relPath, e.buildPath(r))
		e.dirq.rebalance(1) // this open was serviced synchronously, not by the ioq
		if err != nil {
			e.finishDirError(r, err)
			return
		}
		r.dir = dir
		r.fd = int(dir.Fd())
		e.cache.add(r)
	}

	e.cache.pin(r)
	err := readDirFD(r.dir, func(name string, typ Type) {
		e.visitChild(r, name, typ)
	})
	e.cache.unpin(r)

	if err != nil {
		r.typ = TypeError
		if action := e.deliver(r, Pre, err); action == Stop {
			e.stopped = true
		}
	}

	e.closeFD(r)
	e.gc(r)
}

func (e *engine) finishDirError(r *record, err error) {
	r.typ = TypeError
	if action := e.deliver(r, Pre, err); action == Stop {
		e.stopped = true
	}
	e.gc(r)
}

// gc implements §4.4.i: release r's own reference; if that drops its
// refcount to zero, fire the POST visit (if requested, not already
// fired, and r wasn't pruned), close its FD, and propagate the
// decrement to its parent, repeating up the chain.
func (e *engine) gc(r *record) {
	for r != nil {
		r.refcount--
		if r.refcount > 0 {
			return
		}
		// A STOP already in effect - whether returned from the PRE visit
		// that led here, or from an earlier ancestor's own POST in this
		// same chain - suppresses every remaining POST: bftw.c's STOP
		// path runs bftw_gc with BFTW_VISIT_NONE, and a STOP returned
		// from inside a POST callback halts the rest of the ancestor
		// chain rather than continuing to deliver POSTs after STOP was
		// already requested.
		if !e.stopped && !r.postFired && e.args.Flags&FlagPostOrder != 0 && !r.pruned {
			r.postFired = true
			if action := e.deliver(r, Post, nil); action == Stop {
				e.stopped = true
			}
		}
		e.closeFD(r)
		r = r.parent
	}
}

// drainAll closes every FD still held by the cache when the walk is
// stopped early, so STOP never leaks descriptors (spec §5's
// cancellation policy; the ioq itself is shut down by runEngine's
// deferred call).
func (e *engine) drainAll() {
	for {
		r := e.cache.popLRU()
		if r == nil {
			return
		}
		e.closeFD(r)
	}
}
