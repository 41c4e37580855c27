// Package nss bridges the host identity facility, the user and group databases resolved
// through the name service switch, into owned Go values.
package nss

import "errors"

// UserRecord is a passwd entry as returned by the host facility.
type UserRecord struct {
	Name   string
	Passwd string
	UID    uint32
	GID    uint32
	Gecos  string
	Dir    string
	Shell  string
}

// GroupRecord is a group entry as returned by the host facility.
// The member list is not decoded.
type GroupRecord struct {
	Name   string
	Passwd string
	GID    uint32
}

// Facility is the host identity lookup capability.
//
// The lookup methods return (nil, nil) when the entry does not exist, and an error only
// when the facility itself failed.
//
// GroupList follows getgrouplist(3): it fills groups with at most *ngroups entries. On
// success it returns a non negative value and sets *ngroups to the number of entries
// written. When groups is too small it returns -1 and sets *ngroups to the required
// capacity.
type Facility interface {
	LookupUserByName(name string) (*UserRecord, error)
	LookupUserByID(uid uint32) (*UserRecord, error)
	LookupGroupByName(name string) (*GroupRecord, error)
	LookupGroupByID(gid uint32) (*GroupRecord, error)
	GroupList(user string, group uint32, groups []uint32, ngroups *int) int
}

var (
	// ErrUnsupported is returned by the libc facility on builds where it is not available.
	ErrUnsupported = errors.New("identity lookups through libc are not supported by this build")

	// ErrGroupCapacityExceeded is returned when the group list does not fit in the maximum
	// capacity, or when its required capacity never stabilizes.
	ErrGroupCapacityExceeded = errors.New("group list capacity exceeded")

	// ErrInvalidGroupCount is returned when the facility reports a group count that does not
	// match the buffer it was given.
	ErrInvalidGroupCount = errors.New("invalid group count")
)
