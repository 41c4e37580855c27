//go:build !linux || !cgo

package nss

// Libc is the facility resolving identities through the host C library.
// This build has no access to it and every lookup fails with [ErrUnsupported].
type Libc struct{}

// NewLibc returns the facility backed by the host C library.
func NewLibc() Libc {
	return Libc{}
}

// LookupUserByName implements [Facility].
func (Libc) LookupUserByName(string) (*UserRecord, error) { return nil, ErrUnsupported }

// LookupUserByID implements [Facility].
func (Libc) LookupUserByID(uint32) (*UserRecord, error) { return nil, ErrUnsupported }

// LookupGroupByName implements [Facility].
func (Libc) LookupGroupByName(string) (*GroupRecord, error) { return nil, ErrUnsupported }

// LookupGroupByID implements [Facility].
func (Libc) LookupGroupByID(uint32) (*GroupRecord, error) { return nil, ErrUnsupported }

// GroupList implements [Facility]. It reports no groups.
func (Libc) GroupList(_ string, _ uint32, _ []uint32, ngroups *int) int {
	*ngroups = 0
	return 0
}
