package bftw

import (
	"errors"
	"testing"
)

func TestAccumulatorKeepsFirstError(t *testing.T) {
	var a accumulator
	first := errors.New("first")
	second := errors.New("second")

	a.record(first)
	a.record(second)

	if a.err != first {
		t.Fatalf("accumulator.err = %v, want %v", a.err, first)
	}
}

func TestAccumulatorIgnoresNil(t *testing.T) {
	var a accumulator
	a.record(nil)
	if a.err != nil {
		t.Fatalf("accumulator.err = %v, want nil", a.err)
	}
	want := errors.New("boom")
	a.record(want)
	if a.err != want {
		t.Fatalf("accumulator.err = %v, want %v", a.err, want)
	}
}
