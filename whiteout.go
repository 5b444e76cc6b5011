package bftw

import "os"

// maybeWhiteout implements the Glossary's Whiteout rule, carried over
// from original_source/src/bftw.c: a dirent typed DT_WHT names a
// negative union-mount entry. stat/lstat on it legitimately returns
// ENOENT, which must not be surfaced as a normal missing-file error
// when BFTW_WHITEOUTS is set.
func maybeWhiteout(flags Flags, direntType Type, err error) (Type, error, bool) {
	if flags&FlagWhiteouts == 0 || direntType != TypeWhiteout {
		return TypeUnknown, err, false
	}
	if os.IsNotExist(err) {
		return TypeWhiteout, nil, true
	}
	return TypeUnknown, err, false
}
