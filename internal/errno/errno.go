// Package errno classifies the error codes returned by the libc identity lookups.
package errno

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Error is the type of the errno values returned by the reentrant libc lookups.
type Error = unix.Errno

const (
	// ErrNoEnt is the errno ENOENT.
	ErrNoEnt Error = unix.ENOENT
	// ErrSrch is the errno ESRCH.
	ErrSrch Error = unix.ESRCH
	// ErrBadf is the errno EBADF.
	ErrBadf Error = unix.EBADF
	// ErrPerm is the errno EPERM.
	ErrPerm Error = unix.EPERM
	// ErrRange is the errno ERANGE, returned when the caller buffer is too small.
	ErrRange Error = unix.ERANGE
)

// FromReturnCode converts the value returned by a getpw*_r or getgr*_r call into an error.
func FromReturnCode(ret int) error {
	if ret == 0 {
		return nil
	}
	return Error(ret)
}

// IsNotFound reports whether err, returned alongside an empty result, means that the
// entry does not exist rather than that the lookup itself failed.
//
// getpwnam(3) lists 0, ENOENT, ESRCH, EBADF and EPERM as the values an implementation
// may use when the name or id is not found.
func IsNotFound(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNoEnt) ||
		errors.Is(err, ErrSrch) ||
		errors.Is(err, ErrBadf) ||
		errors.Is(err, ErrPerm)
}
