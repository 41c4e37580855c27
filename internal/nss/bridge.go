package nss

import (
	"context"
	"fmt"
	"slices"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/idbridge/internal/consts"
	"github.com/ubuntu/idbridge/log"
)

// maxGroupListAttempts bounds the calls made to discover the size of a group list.
const maxGroupListAttempts = 16

type options struct {
	initialGroupCapacity int
	maxGroupCapacity     int
}

var defaultOptions = options{
	initialGroupCapacity: 0,
	maxGroupCapacity:     consts.DefaultMaxGroupCapacity,
}

// Option represents an optional function to override the bridge default values.
type Option func(*options)

// WithInitialGroupCapacity sets the size of the first buffer handed to the facility when
// listing the groups of a user.
func WithInitialGroupCapacity(capacity int) Option {
	return func(o *options) {
		o.initialGroupCapacity = max(capacity, 0)
	}
}

// WithMaxGroupCapacity sets the largest group list the bridge accepts to allocate.
// Non positive values keep the default.
func WithMaxGroupCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.maxGroupCapacity = capacity
		}
	}
}

// Bridge performs the lookups against a host identity facility.
// It holds no state between calls and is safe for concurrent use if the facility is.
type Bridge struct {
	facility Facility
	opts     options
}

// New returns a bridge performing its lookups through facility.
func New(facility Facility, args ...Option) *Bridge {
	opts := defaultOptions
	for _, f := range args {
		f(&opts)
	}

	return &Bridge{
		facility: facility,
		opts:     opts,
	}
}

// LookupUserByName returns the passwd entry for name, or nil if there is none.
func (b *Bridge) LookupUserByName(name string) (*UserRecord, error) {
	return b.facility.LookupUserByName(name)
}

// LookupUserByID returns the passwd entry for uid, or nil if there is none.
func (b *Bridge) LookupUserByID(uid uint32) (*UserRecord, error) {
	return b.facility.LookupUserByID(uid)
}

// LookupGroupByName returns the group entry for name, or nil if there is none.
func (b *Bridge) LookupGroupByName(name string) (*GroupRecord, error) {
	return b.facility.LookupGroupByName(name)
}

// LookupGroupByID returns the group entry for gid, or nil if there is none.
func (b *Bridge) LookupGroupByID(gid uint32) (*GroupRecord, error) {
	return b.facility.LookupGroupByID(gid)
}

// ListGroupIDs returns the ids of all the groups userName belongs to, including primaryGID.
//
// The size of the list is discovered by calling the facility with a growing buffer, each
// call reporting the capacity it needs, until the list fits.
func (b *Bridge) ListGroupIDs(userName string, primaryGID uint32) (gids []uint32, err error) {
	defer decorate.OnError(&err, "could not list the groups of user %q", userName)

	groups := make([]uint32, b.opts.initialGroupCapacity)
	for attempt := 1; attempt <= maxGroupListAttempts; attempt++ {
		n := len(groups)
		if ret := b.facility.GroupList(userName, primaryGID, groups, &n); ret >= 0 {
			// Some facilities leave the buffer larger than the list, only the count is meaningful.
			if n < 0 || n > len(groups) {
				return nil, fmt.Errorf("%w: %d entries reported for a buffer of %d", ErrInvalidGroupCount, n, len(groups))
			}
			return slices.Clone(groups[:n]), nil
		}

		// A failure that does not ask for more room will fail the same way again: the
		// user has no groups the facility can report.
		if n <= len(groups) {
			log.Noticef(context.Background(), "Group list of %q failed without requiring more than %d entries, returning no groups", userName, len(groups))
			return []uint32{}, nil
		}
		if n > b.opts.maxGroupCapacity {
			return nil, fmt.Errorf("%w: %d groups required, the limit is %d", ErrGroupCapacityExceeded, n, b.opts.maxGroupCapacity)
		}

		log.Debugf(context.Background(), "Group list of %q needs %d entries (attempt %d), growing buffer from %d", userName, n, attempt, len(groups))
		groups = make([]uint32, n)
	}

	return nil, fmt.Errorf("%w: group count did not stabilize after %d attempts", ErrGroupCapacityExceeded, maxGroupListAttempts)
}
