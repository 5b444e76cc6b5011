package bftw

import "testing"

func TestDeepeningStateWrapRoundPrunesAtWindowEdge(t *testing.T) {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = 0, 1

	var delegated []string
	wrapped := st.wrapRound(func(ent *Entry) Action {
		delegated = append(delegated, ent.Path())
		return Continue
	})

	root := &Entry{path: "root", depth: 0, typ: TypeDirectory}
	if got := wrapped(root); got != Continue {
		t.Fatalf("depth 0 within [0,1) should delegate and get Continue, got %v", got)
	}
	if len(delegated) != 1 || delegated[0] != "root" {
		t.Fatalf("delegate should have been called once for root, got %v", delegated)
	}

	child := &Entry{path: "root/a", depth: 1, typ: TypeDirectory}
	if got := wrapped(child); got != Prune {
		t.Fatalf("depth 1 at maxDepth should be pruned without delegation, got %v", got)
	}
	if len(delegated) != 1 {
		t.Fatalf("delegate should not have been called for the pruned child")
	}
	if !st.sawDeeper {
		t.Fatalf("pruning a directory past the window should set sawDeeper")
	}
}

// TestDeepeningStateWrapRoundPruningAFileAlsoSetsSawDeeper guards against
// regressing to checking ent.IsDir() in the frontier-prune branch: a leaf
// file pruned at maxDepth is itself unvisited content, and if sawDeeper
// only fired for directories, runDeepeningRounds would stop advancing the
// window before ever delivering that file, dropping it from the walk.
func TestDeepeningStateWrapRoundPruningAFileAlsoSetsSawDeeper(t *testing.T) {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = 0, 1

	wrapped := st.wrapRound(func(ent *Entry) Action { return Continue })
	file := &Entry{path: "root/leaf", depth: 1, typ: TypeRegular}
	if got := wrapped(file); got != Prune {
		t.Fatalf("a leaf file at maxDepth should be pruned, got %v", got)
	}
	if !st.sawDeeper {
		t.Fatalf("pruning a leaf file past the window must still set sawDeeper, or the next round never reaches it")
	}
}

func TestDeepeningStateWrapRoundSkipsBelowMinWithoutDelegating(t *testing.T) {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = 1, 2

	var delegated []string
	wrapped := st.wrapRound(func(ent *Entry) Action {
		delegated = append(delegated, ent.Path())
		return Continue
	})

	root := &Entry{path: "root", depth: 0, typ: TypeDirectory}
	if got := wrapped(root); got != Continue {
		t.Fatalf("depth below minDepth should always Continue, got %v", got)
	}
	if len(delegated) != 0 {
		t.Fatalf("delegate should not be called for an already-visited depth, got %v", delegated)
	}

	child := &Entry{path: "root/a", depth: 1, typ: TypeDirectory}
	if got := wrapped(child); got != Continue {
		t.Fatalf("depth within [1,2) should delegate, got %v", got)
	}
	if len(delegated) != 1 || delegated[0] != "root/a" {
		t.Fatalf("delegate should have been called once for the in-window entry, got %v", delegated)
	}
}

func TestDeepeningStateWrapRoundRemembersDelegatePrune(t *testing.T) {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = 0, 5

	wrapped := st.wrapRound(func(ent *Entry) Action { return Prune })
	ent := &Entry{path: "root/secret", depth: 1, typ: TypeDirectory}
	wrapped(ent)

	if _, ok := st.prunedPaths["root/secret"]; !ok {
		t.Fatalf("a delegate-initiated Prune must be remembered so later rounds don't re-descend")
	}
}

func TestDeepeningStateWrapRoundHonorsRememberedPrune(t *testing.T) {
	st := newDeepeningState()
	st.minDepth, st.maxDepth = 1, 2
	st.prunedPaths["root/secret"] = struct{}{}

	wrapped := st.wrapRound(func(ent *Entry) Action {
		t.Fatalf("delegate should never be called for a remembered prune")
		return Continue
	})
	ent := &Entry{path: "root/secret", depth: 1, typ: TypeDirectory}
	if got := wrapped(ent); got != Prune {
		t.Fatalf("wrapRound(%v) = %v, want Prune", ent.path, got)
	}
}

func TestDeepeningStateWrapFinalPostOnlyDelegatesPostVisits(t *testing.T) {
	st := newDeepeningState()

	var delivered []Visit
	wrapped := st.wrapFinalPost(func(ent *Entry) Action {
		delivered = append(delivered, ent.visit)
		return Continue
	})

	pre := &Entry{path: "root", visit: Pre}
	if got := wrapped(pre); got != Continue {
		t.Fatalf("a PRE visit should pass through as Continue without delegation, got %v", got)
	}
	if len(delivered) != 0 {
		t.Fatalf("delegate should not see PRE visits, got %v", delivered)
	}

	post := &Entry{path: "root", visit: Post}
	wrapped(post)
	if len(delivered) != 1 || delivered[0] != Post {
		t.Fatalf("delegate should see the POST visit, got %v", delivered)
	}
}

func TestAdvanceFunctionsForIDSAndEDS(t *testing.T) {
	if min, max := idsAdvance(0); min != 0 || max != 1 {
		t.Fatalf("IDS round 1 = [%d, %d), want [0, 1)", min, max)
	}
	if min, max := idsAdvance(1); min != 1 || max != 2 {
		t.Fatalf("IDS round 2 = [%d, %d), want [1, 2)", min, max)
	}

	if min, max := edsAdvance(0); min != 0 || max != 1 {
		t.Fatalf("EDS round 1 = [%d, %d), want [0, 1)", min, max)
	}
	if min, max := edsAdvance(1); min != 1 || max != 2 {
		t.Fatalf("EDS round 2 = [%d, %d), want [1, 2)", min, max)
	}
	if min, max := edsAdvance(2); min != 2 || max != 4 {
		t.Fatalf("EDS round 3 = [%d, %d), want [2, 4)", min, max)
	}
}
