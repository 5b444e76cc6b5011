package bftw

import (
	"os"
	"testing"
)

func TestMaybeWhiteoutSynthesizesFromENOENT(t *testing.T) {
	err := &os.PathError{Op: "lstat", Path: "x", Err: os.ErrNotExist}
	typ, gotErr, ok := maybeWhiteout(FlagWhiteouts, TypeWhiteout, err)
	if !ok {
		t.Fatalf("maybeWhiteout should recognize a whiteout dirent with ENOENT")
	}
	if typ != TypeWhiteout {
		t.Fatalf("type = %v, want TypeWhiteout", typ)
	}
	if gotErr != nil {
		t.Fatalf("err = %v, want nil", gotErr)
	}
}

func TestMaybeWhiteoutRequiresTheFlag(t *testing.T) {
	err := &os.PathError{Op: "lstat", Path: "x", Err: os.ErrNotExist}
	_, gotErr, ok := maybeWhiteout(0, TypeWhiteout, err)
	if ok {
		t.Fatalf("maybeWhiteout should not fire without FlagWhiteouts")
	}
	if gotErr != err {
		t.Fatalf("err should be passed through unchanged")
	}
}

func TestMaybeWhiteoutRequiresWhiteoutDirentType(t *testing.T) {
	err := &os.PathError{Op: "lstat", Path: "x", Err: os.ErrNotExist}
	_, _, ok := maybeWhiteout(FlagWhiteouts, TypeRegular, err)
	if ok {
		t.Fatalf("maybeWhiteout should not fire for a non-whiteout dirent type")
	}
}

func TestMaybeWhiteoutRequiresENOENT(t *testing.T) {
	err := &os.PathError{Op: "lstat", Path: "x", Err: os.ErrPermission}
	_, _, ok := maybeWhiteout(FlagWhiteouts, TypeWhiteout, err)
	if ok {
		t.Fatalf("maybeWhiteout should not fire for a non-ENOENT error")
	}
}
