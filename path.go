package bftw

// pathBuilder reconstructs absolute/relative paths from a record's
// parent chain without retraversing the whole chain on every call
// (spec §4.4.c): it remembers the previously visited record and walks
// back only as far as the nearest common ancestor with the current
// record, overwriting only the differing suffix.
type pathBuilder struct {
	buf      []byte
	previous *record
}

// ancestors returns r's chain from the root down to r, inclusive.
func ancestors(r *record) []*record {
	n := r.depth + 1
	chain := make([]*record, n)
	for cur := r; cur != nil; cur = cur.parent {
		n--
		chain[n] = cur
	}
	return chain
}

// build returns the full path for r, appending name (a pending dirent
// that hasn't been turned into its own record yet) if non-empty.
func (p *pathBuilder) build(r *record, name string) string {
	chain := ancestors(r)

	// Find the common-ancestor depth with the previously built path.
	commonDepth := 0
	if p.previous != nil {
		prevChain := ancestors(p.previous)
		for commonDepth < len(chain) && commonDepth < len(prevChain) && chain[commonDepth] == prevChain[commonDepth] {
			commonDepth++
		}
	}

	// Truncate to the shared prefix and rebuild the rest.
	if commonDepth == 0 {
		p.buf = p.buf[:0]
	} else {
		anchor := chain[commonDepth-1]
		p.buf = p.buf[:anchor.nameOffset+anchor.nameLength]
	}
	for i := commonDepth; i < len(chain); i++ {
		p.appendComponent(chain[i])
	}
	if name != "" {
		if len(p.buf) > 0 && p.buf[len(p.buf)-1] != '/' {
			p.buf = append(p.buf, '/')
		}
		p.buf = append(p.buf, name...)
	}
	p.previous = r
	return string(p.buf)
}

func (p *pathBuilder) appendComponent(r *record) {
	if r.parent != nil && len(p.buf) > 0 && p.buf[len(p.buf)-1] != '/' {
		p.buf = append(p.buf, '/')
	}
	r.nameOffset = len(p.buf)
	p.buf = append(p.buf, r.name...)
	r.nameLength = len(r.name)
}

// buildPath is the engine-level convenience used throughout the rest
// of the package.
func (e *engine) buildPath(r *record) string {
	return e.paths.build(r, "")
}

