package bftw

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// Mtab is the mount-table collaborator of spec §4.4.d/§4.4.g. The core
// never parses a platform-specific mount table itself (that remains an
// external collaborator, per spec.md §1's Non-goals); it only needs a
// yes/no hint of whether a path could be a mount point, used to decide
// whether a stat is required at all (§4.4.d).
type Mtab interface {
	// MaybeMountPoint reports whether path might be a mount point.
	// False negatives are forbidden; false positives only cost an
	// extra stat.
	MaybeMountPoint(path string) bool
}

// ProcMtab is a Linux Mtab backed by /proc/mounts, grounded on the
// same mountpoint-set approach the original bftw.c's mtab.c uses
// (build a set of known mount paths once, consult it cheaply after).
type ProcMtab struct {
	once   sync.Once
	points map[string]struct{}
}

// NewProcMtab returns an Mtab collaborator that lazily parses
// /proc/mounts on first use.
func NewProcMtab() *ProcMtab { return &ProcMtab{} }

func (m *ProcMtab) load() {
	m.points = make(map[string]struct{})
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 {
			m.points[fields[1]] = struct{}{}
		}
	}
}

func (m *ProcMtab) MaybeMountPoint(path string) bool {
	m.once.Do(m.load)
	_, ok := m.points[path]
	return ok
}

// isMountPoint implements the dev-comparison half of §4.4.g: "its stat
// dev != its parent's dev".
func isMountPoint(r *record) bool {
	if r.parent == nil {
		return false // roots have no parent dev to compare against
	}
	return r.dev != 0 && r.parent.dev != 0 && r.dev != r.parent.dev
}
