package orgcache

import (
	"context"
	"fmt"
)

// IsSudoer reports whether username belongs to the organization's sudo
// team. With no sudo team configured it is false without a remote call, and
// the debug override in config short-circuits the same way. The membership
// read itself is never served from cache.
//
// A sudo team that no longer exists upstream means "not a sudoer", not an
// error: capability checks must stay consistent when backing teams are
// deleted. An unrecognized membership role is a configuration fault and is
// never silently treated as false.
func (o *Organization) IsSudoer(ctx context.Context, username string) (bool, error) {
	team, err := o.SudoTeam()
	if err != nil {
		return false, err
	}
	if team == nil {
		return false, nil
	}

	if o.svc.Config.DisableSudo {
		o.svc.Logger.Debug("org-level sudo disabled by override", "org", o.name)
		return false, nil
	}

	membership, err := team.Membership(ctx, username)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, nil
	}

	switch role := membership.GetRole(); role {
	case "member", "maintainer":
		return true, nil
	case "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: unrecognized sudo team role %q for %s in %s", ErrConfig, role, username, o.name)
	}
}
