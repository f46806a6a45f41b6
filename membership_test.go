package orgcache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v71/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/orgcache/pkg/querycache"
	"github.com/opsgate/orgcache/pkg/settings"
)

func TestMembership_AbsenceIsNil(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, nil)

	membership, err := org.Membership(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestAddMember_UsesOperationsCredential(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, nil)

	membership, err := org.AddMember(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "member", membership.GetRole())
	assert.Equal(t, "ops-token", remote.tokenSeen("SetOrgMembership"))
}

func TestRemoveMember_SyncsQueryCache(t *testing.T) {
	remote := newFakeRemote()
	remote.orgDetails = &github.Organization{ID: github.Ptr(int64(42))}
	svc := newTestService(remote)
	cache := querycache.NewMemory()
	cache.AddOrganizationMember(42, 7)
	svc.QueryCache = cache
	org := testOrg(svc, nil)

	err := org.RemoveMember(context.Background(), "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, remote.removed)
	assert.False(t, cache.HasOrganizationMember(42, 7))
	assert.Equal(t, "ops-token", remote.tokenSeen("RemoveOrgMembership"))
}

func TestRemoveMember_ResolvesMemberIDWhenUnknown(t *testing.T) {
	remote := newFakeRemote()
	remote.orgDetails = &github.Organization{ID: github.Ptr(int64(42))}
	remote.usersByLogin["alice"] = &github.User{ID: github.Ptr(int64(7)), Login: github.Ptr("alice")}
	svc := newTestService(remote)
	cache := querycache.NewMemory()
	cache.AddOrganizationMember(42, 7)
	svc.QueryCache = cache
	org := testOrg(svc, nil)

	err := org.RemoveMember(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.callCount("UserByLogin"))
	assert.False(t, cache.HasOrganizationMember(42, 7))
}

// The secondary cache is best effort: its failure never surfaces.
func TestRemoveMember_QueryCacheFailureSwallowed(t *testing.T) {
	remote := newFakeRemote()
	remote.orgDetails = &github.Organization{ID: github.Ptr(int64(42))}
	svc := newTestService(remote)
	cache := querycache.NewMemory()
	cache.AddOrganizationMember(42, 7)
	cache.FailWith(errors.New("datastore unavailable"))
	svc.QueryCache = cache
	org := testOrg(svc, nil)

	err := org.RemoveMember(context.Background(), "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, remote.removed)
	assert.True(t, cache.HasOrganizationMember(42, 7))
}

func TestRemoveMember_NoQueryCacheConfigured(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, nil)

	err := org.RemoveMember(context.Background(), "alice", 7)
	require.NoError(t, err)
	// No identity or details lookup when there is nothing to sync.
	assert.Equal(t, 0, remote.callCount("UserByLogin"))
	assert.Equal(t, 0, remote.callCount("Organization"))
}

func TestRemoveMember_PrimaryFailurePropagates(t *testing.T) {
	remote := newFakeRemote()
	remote.removeErr = errors.New("upstream down")
	svc := newTestService(remote)
	svc.QueryCache = querycache.NewMemory()
	org := testOrg(svc, nil)

	err := org.RemoveMember(context.Background(), "alice", 7)
	require.Error(t, err)
}

func TestPublicMembership(t *testing.T) {
	remote := newFakeRemote()
	remote.publicMembers["alice"] = true
	svc := newTestService(remote)
	org := testOrg(svc, nil)

	ctx := context.Background()

	public, err := org.IsPublicMember(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, public)
	// The anonymous-compatible check uses the customer-facing credential.
	assert.Equal(t, "customer-token", remote.tokenSeen("IsPublicMember"))

	public, err = org.IsPublicMember(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, public)

	require.NoError(t, org.ConcealMembership(ctx, "alice"))
	assert.Equal(t, "ops-token", remote.tokenSeen("ConcealMembership"))
	require.NoError(t, org.PublicizeMembership(ctx, "alice"))
	assert.Equal(t, "ops-token", remote.tokenSeen("PublicizeMembership"))
}

func TestAcceptMembership(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, nil)

	membership, err := org.AcceptMembership(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "active", membership.GetState())
	assert.Equal(t, "ops-token", remote.tokenSeen("AcceptOrgMembership"))
}

// Writes against an inactive organization are rejected before any remote
// call; reads stay available.
func TestInactiveOrganization_WritesRejected(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, &settings.OrganizationSetting{Active: false})

	ctx := context.Background()

	_, err := org.AddMember(ctx, "alice", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInactive))

	err = org.RemoveMember(ctx, "alice", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInactive))

	_, err = org.AcceptMembership(ctx)
	assert.True(t, errors.Is(err, ErrInactive))
	err = org.PublicizeMembership(ctx, "alice")
	assert.True(t, errors.Is(err, ErrInactive))
	err = org.ConcealMembership(ctx, "alice")
	assert.True(t, errors.Is(err, ErrInactive))

	assert.Equal(t, 0, remote.callCount("SetOrgMembership"))
	assert.Equal(t, 0, remote.callCount("RemoveOrgMembership"))

	// Membership reads are not gated.
	_, err = org.Membership(ctx, "alice")
	require.NoError(t, err)
}
