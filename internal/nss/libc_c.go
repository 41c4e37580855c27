//go:build linux && cgo

package nss

/*
#include <stdlib.h>
#include <sys/types.h>
#include <pwd.h>
#include <grp.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/idbridge/internal/errno"
)

const (
	initialLookupBufferSize = 1024
	maxLookupBufferSize     = 1 << 20
)

// Libc is the facility resolving identities through the host C library, and thus through
// every source configured in the name service switch.
type Libc struct{}

// NewLibc returns the facility backed by the host C library.
func NewLibc() Libc {
	return Libc{}
}

// LookupUserByName calls getpwnam_r.
func (Libc) LookupUserByName(name string) (u *UserRecord, err error) {
	defer decorate.OnError(&err, "getpwnam_r(%q)", name)

	// No entry can have a name that C would truncate.
	if strings.ContainsRune(name, 0) {
		return nil, nil
	}

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	return lookupPasswd(func(pwd *C.struct_passwd, buf *C.char, size C.size_t, result **C.struct_passwd) C.int {
		return C.getpwnam_r(cName, pwd, buf, size, result)
	})
}

// LookupUserByID calls getpwuid_r.
func (Libc) LookupUserByID(uid uint32) (u *UserRecord, err error) {
	defer decorate.OnError(&err, "getpwuid_r(%d)", uid)

	return lookupPasswd(func(pwd *C.struct_passwd, buf *C.char, size C.size_t, result **C.struct_passwd) C.int {
		return C.getpwuid_r(C.uid_t(uid), pwd, buf, size, result)
	})
}

// LookupGroupByName calls getgrnam_r.
func (Libc) LookupGroupByName(name string) (g *GroupRecord, err error) {
	defer decorate.OnError(&err, "getgrnam_r(%q)", name)

	if strings.ContainsRune(name, 0) {
		return nil, nil
	}

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	return lookupGroup(func(grp *C.struct_group, buf *C.char, size C.size_t, result **C.struct_group) C.int {
		return C.getgrnam_r(cName, grp, buf, size, result)
	})
}

// LookupGroupByID calls getgrgid_r.
func (Libc) LookupGroupByID(gid uint32) (g *GroupRecord, err error) {
	defer decorate.OnError(&err, "getgrgid_r(%d)", gid)

	return lookupGroup(func(grp *C.struct_group, buf *C.char, size C.size_t, result **C.struct_group) C.int {
		return C.getgrgid_r(C.gid_t(gid), grp, buf, size, result)
	})
}

// GroupList calls getgrouplist.
func (Libc) GroupList(user string, group uint32, groups []uint32, ngroups *int) int {
	if strings.ContainsRune(user, 0) {
		*ngroups = 0
		return 0
	}

	cUser := C.CString(user)
	defer C.free(unsafe.Pointer(cUser))

	// Never let libc write past the buffer we own.
	n := C.int(min(max(*ngroups, 0), len(groups)))

	var cGroups []C.gid_t
	var cGroupsPtr *C.gid_t
	if n > 0 {
		cGroups = make([]C.gid_t, n)
		cGroupsPtr = &cGroups[0]
	}

	ret := C.getgrouplist(cUser, C.gid_t(group), cGroupsPtr, &n)
	for i, gid := range cGroups {
		groups[i] = uint32(gid)
	}
	*ngroups = int(n)

	return int(ret)
}

type passwdLookupFunc func(pwd *C.struct_passwd, buf *C.char, size C.size_t, result **C.struct_passwd) C.int

// lookupPasswd runs lookup with a buffer growing as long as libc reports it as too small.
func lookupPasswd(lookup passwdLookupFunc) (*UserRecord, error) {
	var passwd C.struct_passwd
	var passwdPtr *C.struct_passwd

	pinner := runtime.Pinner{}
	defer pinner.Unpin()
	pinner.Pin(&passwd)

	for size := initialLookupBufferSize; size <= maxLookupBufferSize; size *= 2 {
		buf := make([]C.char, size)
		pinner.Pin(&buf[0])

		err := errno.FromReturnCode(int(lookup(&passwd, &buf[0], C.size_t(len(buf)), &passwdPtr)))
		if errors.Is(err, errno.ErrRange) {
			continue
		}
		if passwdPtr == nil {
			if errno.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}

		// Strings point into buf, decode them while it is still pinned.
		return decodePasswd(passwdPtr), nil
	}

	return nil, fmt.Errorf("entry does not fit in %d bytes", maxLookupBufferSize)
}

type groupLookupFunc func(grp *C.struct_group, buf *C.char, size C.size_t, result **C.struct_group) C.int

// lookupGroup runs lookup with a buffer growing as long as libc reports it as too small.
func lookupGroup(lookup groupLookupFunc) (*GroupRecord, error) {
	var group C.struct_group
	var groupPtr *C.struct_group

	pinner := runtime.Pinner{}
	defer pinner.Unpin()
	pinner.Pin(&group)

	for size := initialLookupBufferSize; size <= maxLookupBufferSize; size *= 2 {
		buf := make([]C.char, size)
		pinner.Pin(&buf[0])

		err := errno.FromReturnCode(int(lookup(&group, &buf[0], C.size_t(len(buf)), &groupPtr)))
		if errors.Is(err, errno.ErrRange) {
			continue
		}
		if groupPtr == nil {
			if errno.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}

		return decodeGroup(groupPtr), nil
	}

	return nil, fmt.Errorf("entry does not fit in %d bytes", maxLookupBufferSize)
}

func decodePasswd(p *C.struct_passwd) *UserRecord {
	return &UserRecord{
		Name:   C.GoString(p.pw_name),
		Passwd: C.GoString(p.pw_passwd),
		UID:    uint32(p.pw_uid),
		GID:    uint32(p.pw_gid),
		Gecos:  C.GoString(p.pw_gecos),
		Dir:    C.GoString(p.pw_dir),
		Shell:  C.GoString(p.pw_shell),
	}
}

func decodeGroup(g *C.struct_group) *GroupRecord {
	return &GroupRecord{
		Name:   C.GoString(g.gr_name),
		Passwd: C.GoString(g.gr_passwd),
		GID:    uint32(g.gr_gid),
	}
}
