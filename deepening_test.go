package bftw

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkIterativeDeepeningVisitsEveryEntryExactlyOnce(t *testing.T) {
	root := buildTree(t)
	counts := map[string]int{}

	err := Walk(&Args{
		Paths:    []string{root},
		Flags:    FlagSort,
		Strategy: IDS,
		Callback: func(ent *Entry) Action {
			counts[relVisit(root, ent)]++
			return Continue
		},
	})
	require.NoError(t, err)

	want := []string{".", "a", "b", "c", filepath.Join("a", "a1"), filepath.Join("b", "b1")}
	for _, rel := range want {
		require.Equalf(t, 1, counts[rel], "entry %q visited %d times, want exactly 1", rel, counts[rel])
	}
	require.Len(t, counts, len(want))
}

func TestWalkExponentialDeepeningVisitsEveryEntryExactlyOnce(t *testing.T) {
	root := buildTree(t)
	counts := map[string]int{}

	err := Walk(&Args{
		Paths:    []string{root},
		Flags:    FlagSort,
		Strategy: EDS,
		Callback: func(ent *Entry) Action {
			counts[relVisit(root, ent)]++
			return Continue
		},
	})
	require.NoError(t, err)

	want := []string{".", "a", "b", "c", filepath.Join("a", "a1"), filepath.Join("b", "b1")}
	for _, rel := range want {
		require.Equalf(t, 1, counts[rel], "entry %q visited %d times, want exactly 1", rel, counts[rel])
	}
	require.Len(t, counts, len(want))
}

func TestWalkIterativeDeepeningPostOrderFiresOnceAfterChildren(t *testing.T) {
	root := buildTree(t)
	postCounts := map[string]int{}
	var lastPost string

	err := Walk(&Args{
		Paths:    []string{root},
		Flags:    FlagSort | FlagPostOrder,
		Strategy: IDS,
		Callback: func(ent *Entry) Action {
			if ent.Visit() == Post {
				rel := relVisit(root, ent)
				postCounts[rel]++
				lastPost = rel
			}
			return Continue
		},
	})
	require.NoError(t, err)
	require.Equal(t, ".", lastPost)
	for rel, n := range postCounts {
		require.Equalf(t, 1, n, "POST visit for %q fired %d times, want exactly 1", rel, n)
	}
}

func TestWalkIterativeDeepeningPruneStopsDescent(t *testing.T) {
	root := buildTree(t)
	var visited []string

	err := Walk(&Args{
		Paths:    []string{root},
		Flags:    FlagSort,
		Strategy: IDS,
		Callback: func(ent *Entry) Action {
			rel := relVisit(root, ent)
			visited = append(visited, rel)
			if rel == "a" {
				return Prune
			}
			return Continue
		},
	})
	require.NoError(t, err)
	require.Contains(t, visited, "a")
	require.NotContains(t, visited, filepath.Join("a", "a1"))
	require.Contains(t, visited, filepath.Join("b", "b1"))
}
