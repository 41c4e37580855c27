// Package testutils provides a fake host identity facility for tests.
package testutils

import (
	"slices"
	"sync/atomic"

	"github.com/ubuntu/idbridge/internal/nss"
)

// Facility is an in memory [nss.Facility].
type Facility struct {
	Users  []nss.UserRecord
	Groups []nss.GroupRecord
	// Memberships maps a user name to the ids of its supplementary groups.
	Memberships map[string][]uint32

	// Err, when set, is returned by every record lookup.
	Err error
	// GroupListFunc, when set, replaces the getgrouplist emulation.
	GroupListFunc func(user string, group uint32, groups []uint32, ngroups *int) int

	groupListCalls atomic.Int64
}

// LookupUserByName implements [nss.Facility].
func (f *Facility) LookupUserByName(name string) (*nss.UserRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	i := slices.IndexFunc(f.Users, func(u nss.UserRecord) bool { return u.Name == name })
	if i < 0 {
		return nil, nil
	}
	u := f.Users[i]
	return &u, nil
}

// LookupUserByID implements [nss.Facility].
func (f *Facility) LookupUserByID(uid uint32) (*nss.UserRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	i := slices.IndexFunc(f.Users, func(u nss.UserRecord) bool { return u.UID == uid })
	if i < 0 {
		return nil, nil
	}
	u := f.Users[i]
	return &u, nil
}

// LookupGroupByName implements [nss.Facility].
func (f *Facility) LookupGroupByName(name string) (*nss.GroupRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	i := slices.IndexFunc(f.Groups, func(g nss.GroupRecord) bool { return g.Name == name })
	if i < 0 {
		return nil, nil
	}
	g := f.Groups[i]
	return &g, nil
}

// LookupGroupByID implements [nss.Facility].
func (f *Facility) LookupGroupByID(gid uint32) (*nss.GroupRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	i := slices.IndexFunc(f.Groups, func(g nss.GroupRecord) bool { return g.GID == gid })
	if i < 0 {
		return nil, nil
	}
	g := f.Groups[i]
	return &g, nil
}

// GroupList implements [nss.Facility] the way glibc getgrouplist does: the primary group
// comes first, and a buffer too small gets filled as much as possible before -1 is
// returned with the required capacity.
func (f *Facility) GroupList(user string, group uint32, groups []uint32, ngroups *int) int {
	f.groupListCalls.Add(1)

	if f.GroupListFunc != nil {
		return f.GroupListFunc(user, group, groups, ngroups)
	}

	list := []uint32{group}
	for _, gid := range f.Memberships[user] {
		if !slices.Contains(list, gid) {
			list = append(list, gid)
		}
	}

	if *ngroups < len(list) {
		copy(groups[:*ngroups], list)
		*ngroups = len(list)
		return -1
	}

	copy(groups, list)
	*ngroups = len(list)
	return len(list)
}

// GroupListCalls returns how many times GroupList was called.
func (f *Facility) GroupListCalls() int {
	return int(f.groupListCalls.Load())
}
