package orgcache

import (
	"context"
	"fmt"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/credentials"
)

// Membership returns the organization membership of username, or nil when
// no membership (active or pending) exists.
func (o *Organization) Membership(ctx context.Context, username string) (*github.Membership, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return nil, err
	}
	membership, err := o.svc.Remote.OrgMembership(ctx, cred, o.name, username)
	if err != nil {
		return nil, fmt.Errorf("getting membership of %s in %s: %w", username, o.name, err)
	}
	return membership, nil
}

// AddMember invites or updates username with the given organization role
// ("member" or "admin"; empty defaults to member).
func (o *Organization) AddMember(ctx context.Context, username, role string) (*github.Membership, error) {
	if role == "" {
		role = "member"
	}
	if err := o.writable(); err != nil {
		return nil, err
	}
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return nil, err
	}
	membership, err := o.svc.Remote.SetOrgMembership(ctx, cred, o.name, username, role)
	if err != nil {
		return nil, fmt.Errorf("adding %s to %s: %w", username, o.name, err)
	}
	return membership, nil
}

// UpdateMembership changes an existing member's organization role.
func (o *Organization) UpdateMembership(ctx context.Context, username, role string) (*github.Membership, error) {
	return o.AddMember(ctx, username, role)
}

// AcceptMembership activates the calling user's pending invitation. The
// operations credential must belong to the invited user.
func (o *Organization) AcceptMembership(ctx context.Context) (*github.Membership, error) {
	if err := o.writable(); err != nil {
		return nil, err
	}
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return nil, err
	}
	membership, err := o.svc.Remote.AcceptOrgMembership(ctx, cred, o.name)
	if err != nil {
		return nil, fmt.Errorf("accepting membership in %s: %w", o.name, err)
	}
	return membership, nil
}

// RemoveMember removes username from the organization. memberID may be zero
// when unknown; the secondary-cache sync resolves it on its own. The sync is
// best effort: its failure never affects the removal's result.
func (o *Organization) RemoveMember(ctx context.Context, username string, memberID int64) error {
	if err := o.writable(); err != nil {
		return err
	}
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return err
	}
	if err := o.svc.Remote.RemoveOrgMembership(ctx, cred, o.name, username); err != nil {
		return fmt.Errorf("removing %s from %s: %w", username, o.name, err)
	}

	o.syncRemovalToQueryCache(ctx, username, memberID)
	return nil
}

// syncRemovalToQueryCache propagates a membership removal into the optional
// secondary query cache. Every failure is swallowed after logging: the cache
// is allowed to be briefly stale.
func (o *Organization) syncRemovalToQueryCache(ctx context.Context, username string, memberID int64) {
	cache := o.svc.QueryCache
	if cache == nil || !cache.SupportsOrganizationMembership() {
		return
	}

	logger := o.svc.Logger.With("org", o.name, "username", username)

	if memberID == 0 {
		cred, err := o.svc.Credentials.Supplier(credentials.PurposeData)
		if err != nil {
			logger.Warn("query cache sync skipped", "error", err)
			return
		}
		user, err := o.svc.Remote.UserByLogin(ctx, cred, username)
		if err != nil || user == nil {
			logger.Warn("query cache sync skipped: member id unresolved", "error", err)
			return
		}
		memberID = user.GetID()
	}

	orgID, err := o.ID(ctx)
	if err != nil {
		logger.Warn("query cache sync skipped: organization id unresolved", "error", err)
		return
	}

	if err := cache.RemoveOrganizationMember(ctx, orgID, memberID); err != nil {
		logger.Warn("query cache removal failed", "member_id", memberID, "error", err)
	}
}

// IsPublicMember reports whether username's membership in the organization
// is public. This check works without privileged credentials.
func (o *Organization) IsPublicMember(ctx context.Context, username string) (bool, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeCustomerFacing)
	if err != nil {
		return false, err
	}
	public, err := o.svc.Remote.IsPublicMember(ctx, cred, o.name, username)
	if err != nil {
		return false, fmt.Errorf("checking public membership of %s in %s: %w", username, o.name, err)
	}
	return public, nil
}

// PublicizeMembership makes username's membership publicly visible.
func (o *Organization) PublicizeMembership(ctx context.Context, username string) error {
	if err := o.writable(); err != nil {
		return err
	}
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return err
	}
	if err := o.svc.Remote.PublicizeMembership(ctx, cred, o.name, username); err != nil {
		return fmt.Errorf("publicizing membership of %s in %s: %w", username, o.name, err)
	}
	return nil
}

// ConcealMembership hides username's membership from public view.
func (o *Organization) ConcealMembership(ctx context.Context, username string) error {
	if err := o.writable(); err != nil {
		return err
	}
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeOperations)
	if err != nil {
		return err
	}
	if err := o.svc.Remote.ConcealMembership(ctx, cred, o.name, username); err != nil {
		return fmt.Errorf("concealing membership of %s in %s: %w", username, o.name, err)
	}
	return nil
}
