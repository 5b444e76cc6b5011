package bftw

import "testing"

func TestDetectCycleFindsAncestorMatch(t *testing.T) {
	root := newRoot("root")
	root.dev, root.ino = 1, 100

	a := newRecord(root, "a")
	a.dev, a.ino = 1, 200

	loop := newRecord(a, "back-to-root")
	loop.dev, loop.ino = 1, 100 // same (dev, ino) as root

	if !detectCycle(loop) {
		t.Fatalf("detectCycle should find the ancestor match")
	}
}

func TestDetectCycleNoMatch(t *testing.T) {
	root := newRoot("root")
	root.dev, root.ino = 1, 100
	a := newRecord(root, "a")
	a.dev, a.ino = 1, 200

	if detectCycle(a) {
		t.Fatalf("detectCycle should not report a cycle for distinct inodes")
	}
}

func TestDetectCycleIgnoresUnstatted(t *testing.T) {
	root := newRoot("root")
	a := newRecord(root, "a") // dev/ino both zero: never stat'd
	if detectCycle(a) {
		t.Fatalf("detectCycle should not fire for an unstatted record")
	}
}

func TestDedupFilterSeenBefore(t *testing.T) {
	d := newDedupFilter()
	if d.seenBefore(1, 42) {
		t.Fatalf("first sighting of (1, 42) should not be reported as seen")
	}
	if !d.seenBefore(1, 42) {
		t.Fatalf("second sighting of (1, 42) should be reported as seen")
	}
	if d.seenBefore(1, 43) {
		t.Fatalf("a distinct inode should not be reported as seen")
	}
}
