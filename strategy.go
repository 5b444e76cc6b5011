package bftw

// deepeningState is the shared bookkeeping behind both depth-bounded
// strategies of §4.5: the current [minDepth, maxDepth) window, the
// set of paths an earlier round pruned (so later rounds never
// re-descend into them), and whether the last round still found
// entries at or beyond maxDepth worth exploring further.
type deepeningState struct {
	minDepth, maxDepth int
	prunedPaths        map[string]struct{}
	sawDeeper          bool
}

func newDeepeningState() *deepeningState {
	return &deepeningState{prunedPaths: make(map[string]struct{})}
}

// wrapRound returns the callback for one bounded round: entries below
// the window are walked through without delegation, entries at or
// beyond it are pruned (noting sawDeeper so the next round's window
// reaches them), and only entries inside the window reach the real
// delegate.
func (st *deepeningState) wrapRound(delegate Callback) Callback {
	return func(ent *Entry) Action {
		if _, pruned := st.prunedPaths[ent.Path()]; pruned {
			return Prune
		}
		d := ent.Depth()
		if d >= st.maxDepth {
			// A file pruned here is itself unvisited content, not just an
			// unexplored directory: the next round's window must still
			// advance to reach it, or it's dropped from the walk for good.
			st.sawDeeper = true
			return Prune
		}
		if d < st.minDepth {
			return Continue
		}
		action := delegate(ent)
		if action == Prune {
			st.prunedPaths[ent.Path()] = struct{}{}
		}
		return action
	}
}

// wrapFinalPost returns the callback for the single unbounded
// POST-order pass run once the bottom has been reached (spec §4.5:
// EDS's "final POST pass is one unbounded depth run with POST-order
// enabled on the engine itself" — adopted for IDS too, in place of the
// source's literal reverse-depth-band re-walk, since every PRE visit
// was already delivered during the bounded rounds above).
func (st *deepeningState) wrapFinalPost(delegate Callback) Callback {
	return func(ent *Entry) Action {
		if _, pruned := st.prunedPaths[ent.Path()]; pruned {
			return Prune
		}
		if ent.Visit() == Post {
			return delegate(ent)
		}
		return Continue
	}
}

// runDeepeningRounds drives repeated bounded BFS rounds via advance
// until a round finds nothing deeper, then (if BFTW_POST_ORDER is set)
// runs the final unbounded POST pass. advance computes the next
// round's (minDepth, maxDepth) from the previous round's maxDepth.
func runDeepeningRounds(args *Args, advance func(prevMax int) (min, max int)) error {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = advance(0)

	delegate := args.Callback
	for {
		st.sawDeeper = false
		round := *args
		round.Strategy = BFS
		round.Callback = st.wrapRound(delegate)
		round.Flags &^= FlagPostOrder // PRE-only during bounded rounds

		if err := runEngine(&round); err != nil {
			return err
		}
		if !st.sawDeeper {
			break
		}
		st.minDepth, st.maxDepth = advance(st.maxDepth)
	}

	if args.Flags&FlagPostOrder == 0 {
		return nil
	}

	final := *args
	final.Strategy = BFS
	final.Callback = st.wrapFinalPost(delegate)
	final.Flags |= FlagPostOrder
	return runEngine(&final)
}
