package bftw

import "testing"

func TestIsMountPointRootHasNoParent(t *testing.T) {
	root := newRoot("/mnt")
	if isMountPoint(root) {
		t.Fatalf("a root record should never be treated as a mount point")
	}
}

func TestIsMountPointDevMismatch(t *testing.T) {
	root := newRoot("/")
	root.dev = 1
	child := newRecord(root, "mnt")
	child.dev = 2

	if !isMountPoint(child) {
		t.Fatalf("differing dev from the parent should be reported as a mount point")
	}
}

func TestIsMountPointSameDev(t *testing.T) {
	root := newRoot("/")
	root.dev = 1
	child := newRecord(root, "usr")
	child.dev = 1

	if isMountPoint(child) {
		t.Fatalf("matching dev should not be reported as a mount point")
	}
}

func TestIsMountPointUnstattedDevsNeverMatch(t *testing.T) {
	root := newRoot("/")
	child := newRecord(root, "usr")
	// Neither dev has been populated yet (both zero): must not false-positive.
	if isMountPoint(child) {
		t.Fatalf("unstatted records (dev == 0) should not be reported as a mount point")
	}
}

func TestProcMtabImplementsMtab(t *testing.T) {
	var _ Mtab = NewProcMtab()
}
