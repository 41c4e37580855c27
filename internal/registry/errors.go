package registry

import (
	"fmt"
	"strconv"
)

// Kind is the kind of key a query was made with.
type Kind string

const (
	// KindUserName is a query by user name.
	KindUserName Kind = "user"
	// KindUID is a query by user id.
	KindUID Kind = "uid"
	// KindGroupName is a query by group name.
	KindGroupName Kind = "group"
	// KindGID is a query by group id.
	KindGID Kind = "gid"
)

func (k Kind) format(value string) string {
	if k == KindUserName || k == KindGroupName {
		return fmt.Sprintf("%s %q", k, value)
	}
	return fmt.Sprintf("%s %s", k, value)
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// NotFoundError is returned when the host identity database has no entry for a query.
type NotFoundError struct {
	Kind  Kind
	Value string
}

// Error implements the error interface.
func (err NotFoundError) Error() string {
	return err.Kind.format(err.Value) + " does not exist"
}

// Is makes this error insensitive to the query.
func (NotFoundError) Is(target error) bool { return target == NotFoundError{} }

// LookupFailureError is returned when the host identity facility failed to answer a query.
type LookupFailureError struct {
	Kind  Kind
	Value string
	Err   error
}

// Error implements the error interface.
func (err LookupFailureError) Error() string {
	return fmt.Sprintf("failed to look up %s: %v", err.Kind.format(err.Value), err.Err)
}

// Unwrap returns the facility error.
func (err LookupFailureError) Unwrap() error { return err.Err }

// Is makes this error insensitive to the query and its cause.
func (LookupFailureError) Is(target error) bool { return target == LookupFailureError{} }
