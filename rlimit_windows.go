//go:build windows

package bftw

func processOpenFileLimit() int { return 512 }
