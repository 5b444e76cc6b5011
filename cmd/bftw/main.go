// Command bftw is a thin command-line collaborator around the bftw
// traversal core: it parses the flags spec.md §6 lists as the
// "command-line surface of the surrounding program" and prints one
// line per visited entry, the way find's core driver would before any
// expression/predicate layer gets involved.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalbasit/bftw"
)

var (
	strategyFlag string
	threadsFlag  int
	followRoots  bool
	followAll    bool
	skipMounts   bool
	postOrder    bool
	uniqueFlag   bool
	sortFlag     bool
	maxOpenFiles int
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags)

	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("bftw: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bftw [paths...]",
		Short: "walk a filesystem tree with the bftw traversal core",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWalk,
	}

	cmd.Flags().StringVarP(&strategyFlag, "strategy", "S", "bfs", "traversal strategy: bfs|dfs|ids|eds")
	cmd.Flags().IntVarP(&threadsFlag, "threads", "j", -1, "ioq worker threads (-1 for the default, 0 to disable async I/O)")
	cmd.Flags().BoolVarP(&followRoots, "follow-roots", "H", false, "follow symlinks named on the command line")
	cmd.Flags().BoolVarP(&followAll, "follow-all", "L", false, "follow all symlinks")
	cmd.Flags().BoolVar(&skipMounts, "mount", false, "don't descend into mount points (alias: --xdev)")
	cmd.Flags().BoolVar(&skipMounts, "xdev", false, "don't descend into mount points (alias: --mount)")
	cmd.Flags().BoolVar(&postOrder, "depth", false, "visit a directory's contents before the directory itself")
	cmd.Flags().BoolVar(&uniqueFlag, "unique", false, "skip entries whose (dev, ino) has already been visited")
	cmd.Flags().BoolVar(&sortFlag, "sort", false, "visit siblings in name order")
	cmd.Flags().IntVar(&maxOpenFiles, "max-open-files", 0, "cap on simultaneously open descriptors (0 for the default)")

	return cmd
}

func runWalk(cmd *cobra.Command, paths []string) error {
	strategy, err := parseStrategy(strategyFlag)
	if err != nil {
		return err
	}

	var flags bftw.Flags
	if postOrder {
		flags |= bftw.FlagPostOrder
	}
	if skipMounts {
		flags |= bftw.FlagSkipMounts
	}
	if sortFlag {
		flags |= bftw.FlagSort
	}
	flags |= bftw.FlagDetectCycles | bftw.FlagWhiteouts

	args := &bftw.Args{
		Paths:        paths,
		Callback:     printVisit,
		Flags:        flags,
		Strategy:     strategy,
		Mtab:         bftw.NewProcMtab(),
		MaxOpenFiles: maxOpenFiles,
		IOQThreads:   threadsFlag,
		FollowRoots:  followRoots,
		FollowAll:    followAll,
		DedupByInode: uniqueFlag,
	}

	walkErr := bftw.Walk(args)
	if walkErr != nil && walkErr != bftw.ErrStop {
		return fmt.Errorf("walk: %w", walkErr)
	}
	return nil
}

func printVisit(ent *bftw.Entry) bftw.Action {
	if err := ent.Err(); err != nil {
		log.Printf("%s: %v", ent.Path(), err)
		return bftw.Continue
	}
	// --depth prints each entry on its POST visit, after its contents.
	if (ent.Visit() == bftw.Post) != postOrder {
		return bftw.Continue
	}
	fmt.Println(ent.Path())
	return bftw.Continue
}

func parseStrategy(s string) (bftw.Strategy, error) {
	switch s {
	case "bfs":
		return bftw.BFS, nil
	case "dfs":
		return bftw.DFS, nil
	case "ids":
		return bftw.IDS, nil
	case "eds":
		return bftw.EDS, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want bfs, dfs, ids, or eds)", s)
	}
}
