//go:build !windows

package bftw

import "syscall"

func sysClosePortable(fd int) error { return syscall.Close(fd) }
