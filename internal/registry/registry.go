// Package registry resolves user and group names and ids against the host identity database.
package registry

import (
	"context"

	"github.com/ubuntu/idbridge/internal/nss"
	"github.com/ubuntu/idbridge/log"
)

// Bridge is the native lookup surface used by the registry.
type Bridge interface {
	LookupUserByName(name string) (*nss.UserRecord, error)
	LookupUserByID(uid uint32) (*nss.UserRecord, error)
	LookupGroupByName(name string) (*nss.GroupRecord, error)
	LookupGroupByID(gid uint32) (*nss.GroupRecord, error)
	ListGroupIDs(userName string, primaryGID uint32) ([]uint32, error)
}

// Registry answers name and id queries. Absent entries are reported as [NotFoundError]
// and facility failures as [LookupFailureError].
type Registry struct {
	bridge Bridge
}

// New returns a registry resolving its queries through bridge.
func New(bridge Bridge) *Registry {
	return &Registry{bridge: bridge}
}

// NewDefault returns a registry over the host C library.
func NewDefault(opts ...nss.Option) *Registry {
	return New(nss.New(nss.NewLibc(), opts...))
}

// User returns the passwd entry of the user called name.
func (r *Registry) User(name string) (nss.UserRecord, error) {
	return lookupRecord(KindUserName, name, func() (*nss.UserRecord, error) {
		return r.bridge.LookupUserByName(name)
	})
}

// UserByUID returns the passwd entry of the user with uid.
func (r *Registry) UserByUID(uid uint32) (nss.UserRecord, error) {
	return lookupRecord(KindUID, formatID(uid), func() (*nss.UserRecord, error) {
		return r.bridge.LookupUserByID(uid)
	})
}

// Group returns the group entry of the group called name.
func (r *Registry) Group(name string) (nss.GroupRecord, error) {
	return lookupRecord(KindGroupName, name, func() (*nss.GroupRecord, error) {
		return r.bridge.LookupGroupByName(name)
	})
}

// GroupByGID returns the group entry of the group with gid.
func (r *Registry) GroupByGID(gid uint32) (nss.GroupRecord, error) {
	return lookupRecord(KindGID, formatID(gid), func() (*nss.GroupRecord, error) {
		return r.bridge.LookupGroupByID(gid)
	})
}

// UIDByName returns the id of the user called name.
func (r *Registry) UIDByName(name string) (uint32, error) {
	u, err := r.User(name)
	if err != nil {
		return 0, err
	}
	return u.UID, nil
}

// GIDByName returns the id of the group called name.
func (r *Registry) GIDByName(name string) (uint32, error) {
	g, err := r.Group(name)
	if err != nil {
		return 0, err
	}
	return g.GID, nil
}

// UserByID returns the name of the user with uid.
func (r *Registry) UserByID(uid uint32) (string, error) {
	u, err := r.UserByUID(uid)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

// GroupByID returns the name of the group with gid.
func (r *Registry) GroupByID(gid uint32) (string, error) {
	g, err := r.GroupByGID(gid)
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

// GroupsOfUser returns the ids of all the groups, primary and supplementary, the user
// called name belongs to.
func (r *Registry) GroupsOfUser(name string) ([]uint32, error) {
	u, err := r.User(name)
	if err != nil {
		return nil, err
	}
	return r.groupsOf(KindUserName, name, u)
}

// GroupsOfUID returns the ids of all the groups, primary and supplementary, the user with
// uid belongs to.
func (r *Registry) GroupsOfUID(uid uint32) ([]uint32, error) {
	u, err := r.UserByUID(uid)
	if err != nil {
		return nil, err
	}
	return r.groupsOf(KindUID, formatID(uid), u)
}

// groupsOf lists the groups of u. The facility enumerates groups by user name, so the
// canonical name and primary group of the record are used rather than the query.
func (r *Registry) groupsOf(kind Kind, value string, u nss.UserRecord) ([]uint32, error) {
	gids, err := r.bridge.ListGroupIDs(u.Name, u.GID)
	if err != nil {
		return nil, LookupFailureError{Kind: kind, Value: value, Err: err}
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf(context.Background(), "User %q belongs to %d groups: %v", u.Name, len(gids), gids)
	}
	return gids, nil
}

// lookupRecord runs lookup and maps its absence signal to a [NotFoundError].
func lookupRecord[R nss.UserRecord | nss.GroupRecord](kind Kind, value string, lookup func() (*R, error)) (R, error) {
	var zero R

	rec, err := lookup()
	if err != nil {
		return zero, LookupFailureError{Kind: kind, Value: value, Err: err}
	}
	if rec == nil {
		log.Debugf(context.Background(), "No entry for %s", kind.format(value))
		return zero, NotFoundError{Kind: kind, Value: value}
	}
	return *rec, nil
}
