package bftw

import (
	"os"

	"golang.org/x/sync/errgroup"
)

// opKind tags the three operations the ioq can overlap with callback
// execution (spec §4.2): opendir, stat, and close/closedir.
type opKind uint8

const (
	opOpendir opKind = iota
	opStat
	opClose
)

// ioOp is the tagged-variant submission the spec's "polymorphic enum
// of operations" redesigns into (§9): one struct, a kind discriminant,
// and only the fields that kind needs.
type ioOp struct {
	kind opKind
	tag  *record // nil for opClose

	atFD     int
	relPath  string
	fullPath string
	nofollow bool

	closeFile *os.File
	closeFD   int
}

// ioResult is the completion header: result, kind, and original tag.
type ioResult struct {
	op   ioOp
	dir  *os.File
	fd   int
	info os.FileInfo
	err  error
}

// ioQueue is the async submit/complete queue of spec §4.2. With one
// worker it behaves as "single-threaded ioq mode" (the engine is
// expected to set qBalance on its queues so the main thread keeps
// participating); with more than one it is "multi-threaded ioq mode".
type ioQueue struct {
	submit   chan ioOp
	complete chan ioResult
	done     chan struct{}
	group    *errgroup.Group
	threads  int
}

// newIOQueue returns nil when threads <= 0: "the ioq cannot be
// created... async paths are skipped and everything is synchronous."
func newIOQueue(threads int) *ioQueue {
	if threads <= 0 {
		return nil
	}
	q := &ioQueue{
		submit:   make(chan ioOp, threads*4),
		complete: make(chan ioResult, threads*4),
		done:     make(chan struct{}),
		threads:  threads,
	}
	g := new(errgroup.Group)
	for i := 0; i < threads; i++ {
		g.Go(q.workerLoop)
	}
	q.group = g
	return q
}

func (q *ioQueue) workerLoop() error {
	for {
		// Drain anything already queued before honoring done: by the time
		// shutdown closes done, submission has stopped for good (the
		// engine that feeds q.submit runs on one goroutine and only calls
		// shutdown after it's finished), so a pending submitClose must
		// still run or its descriptor leaks. A plain two-case select would
		// let the pseudo-random choice between two ready cases drop it.
		select {
		case op, ok := <-q.submit:
			if !ok {
				return nil
			}
			q.complete <- q.perform(op)
			continue
		default:
		}
		select {
		case <-q.done:
			return nil
		case op, ok := <-q.submit:
			if !ok {
				return nil
			}
			q.complete <- q.perform(op)
		}
	}
}

func (q *ioQueue) perform(op ioOp) ioResult {
	switch op.kind {
	case opOpendir:
		dir, err := openDirAt(op.atFD, op.relPath, op.fullPath)
		fd := -1
		if dir != nil {
			fd = int(dir.Fd())
		}
		return ioResult{op: op, dir: dir, fd: fd, err: err}
	case opStat:
		info, err := statAt(op.atFD, op.relPath, op.fullPath, op.nofollow)
		return ioResult{op: op, info: info, err: err}
	case opClose:
		var err error
		if op.closeFile != nil {
			err = op.closeFile.Close()
		} else if op.closeFD >= 0 {
			err = sysClosePortable(op.closeFD)
		}
		return ioResult{op: op, err: err}
	default:
		panic("bftw: ioQueue: unknown op kind")
	}
}

func (q *ioQueue) submitOpendir(atFD int, relPath, fullPath string, tag *record) {
	select {
	case q.submit <- ioOp{kind: opOpendir, tag: tag, atFD: atFD, relPath: relPath, fullPath: fullPath}:
	case <-q.done:
	}
}

func (q *ioQueue) submitStat(atFD int, relPath, fullPath string, nofollow bool, tag *record) {
	select {
	case q.submit <- ioOp{kind: opStat, tag: tag, atFD: atFD, relPath: relPath, fullPath: fullPath, nofollow: nofollow}:
	case <-q.done:
	}
}

func (q *ioQueue) submitClose(file *os.File, fd int) {
	op := ioOp{kind: opClose, closeFile: file, closeFD: -1}
	if file == nil {
		op.closeFD = fd
	}
	select {
	case q.submit <- op:
	case <-q.done:
	}
}

// drainAvailable delivers every completion currently available without
// blocking.
func (q *ioQueue) drainAvailable(handle func(ioResult)) {
	for {
		select {
		case res := <-q.complete:
			handle(res)
		default:
			return
		}
	}
}

// waitOne blocks until at least one completion arrives (or the ioq is
// shutting down), delivering it. This is the only suspension point of
// spec §5 that the ioq itself introduces.
func (q *ioQueue) waitOne(handle func(ioResult)) bool {
	select {
	case res, ok := <-q.complete:
		if !ok {
			return false
		}
		handle(res)
		return true
	case <-q.done:
		return false
	}
}

// shutdown cancels outstanding work and drains every completion still
// in flight so their buffers are released, per spec §5's cancellation
// policy, before returning.
func (q *ioQueue) shutdown() {
	close(q.done)
	drained := make(chan struct{})
	go func() {
		for range q.complete {
		}
		close(drained)
	}()
	q.group.Wait()
	close(q.complete)
	<-drained
}
