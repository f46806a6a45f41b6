package orgcache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v71/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/orgcache/pkg/settings"
)

func sudoFixture(role string) (*fakeRemote, *Organization) {
	remote := newFakeRemote()
	remote.orgDetails = &github.Organization{ID: github.Ptr(int64(42))}
	if role != "" {
		remote.teamMemberships["10/alice"] = &github.Membership{
			Role:  github.Ptr(role),
			State: github.Ptr("active"),
		}
	}
	svc := newTestService(remote)
	org := testOrg(svc, &settings.OrganizationSetting{
		SpecialTeams: []settings.SpecialTeamAssignment{
			{Role: settings.SpecialTeamSudo, TeamID: 10},
		},
	})
	return remote, org
}

func TestIsSudoer_NoSudoTeamConfigured(t *testing.T) {
	remote := newFakeRemote()
	svc := newTestService(remote)
	org := testOrg(svc, &settings.OrganizationSetting{})

	sudo, err := org.IsSudoer(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, sudo)
	// No remote call of any kind.
	assert.Equal(t, 0, remote.callCount("TeamMembership"))
	assert.Equal(t, 0, remote.callCount("Organization"))
}

func TestIsSudoer_DebugOverrideDisablesSudo(t *testing.T) {
	remote, org := sudoFixture("member")
	org.svc.Config.DisableSudo = true

	sudo, err := org.IsSudoer(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, sudo)
	assert.Equal(t, 0, remote.callCount("TeamMembership"))
}

func TestIsSudoer_MemberAndMaintainer(t *testing.T) {
	for _, role := range []string{"member", "maintainer"} {
		remote, org := sudoFixture(role)

		sudo, err := org.IsSudoer(context.Background(), "alice")
		require.NoError(t, err)
		assert.True(t, sudo, "role %q", role)
		assert.Equal(t, 1, remote.callCount("TeamMembership"))
	}
}

func TestIsSudoer_NoMembership(t *testing.T) {
	_, org := sudoFixture("")

	sudo, err := org.IsSudoer(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, sudo)
}

// The sudo team having been deleted upstream surfaces as a membership 404,
// which means "not a sudoer" rather than an error.
func TestIsSudoer_SudoTeamDeleted(t *testing.T) {
	remote, org := sudoFixture("member")
	remote.teamMemberships = map[string]*github.Membership{}

	sudo, err := org.IsSudoer(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, sudo)
}

func TestIsSudoer_UnrecognizedRoleIsConfigFault(t *testing.T) {
	_, org := sudoFixture("superuser")

	_, err := org.IsSudoer(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestIsSudoer_MultipleSudoTeamsIsConfigFault(t *testing.T) {
	svc := newTestService(newFakeRemote())
	org := testOrg(svc, &settings.OrganizationSetting{
		SpecialTeams: []settings.SpecialTeamAssignment{
			{Role: settings.SpecialTeamSudo, TeamID: 10},
			{Role: settings.SpecialTeamSudo, TeamID: 11},
		},
	})

	_, err := org.IsSudoer(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}
