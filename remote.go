package orgcache

import (
	"context"
	"time"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/credentials"
)

// MemberListParams narrows an organization member listing. Filter and Role
// use the upstream API's vocabulary ("2fa_disabled", "all", "admin",
// "member").
type MemberListParams struct {
	Filter string
	Role   string
}

// RemoteClient is the upstream REST surface this layer consumes. The
// credential supplier is resolved per call; implementations must not hold on
// to tokens. List methods drain every page before returning, pacing page
// requests by pageDelay when it is non-zero.
//
// A remote 404 is the universal absence signal: methods returning pointers
// yield (nil, nil) for it, IsPublicMember yields (false, nil). All other
// remote failures surface as errors.
type RemoteClient interface {
	Organization(ctx context.Context, cred credentials.Supplier, org string) (*github.Organization, error)

	ListMembers(ctx context.Context, cred credentials.Supplier, org string, params MemberListParams, pageDelay time.Duration) ([]*github.User, error)
	ListTeams(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Team, error)
	ListRepositories(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Repository, error)

	TeamByID(ctx context.Context, cred credentials.Supplier, orgID, teamID int64) (*github.Team, error)
	TeamMembership(ctx context.Context, cred credentials.Supplier, orgID, teamID int64, username string) (*github.Membership, error)

	OrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) (*github.Membership, error)
	SetOrgMembership(ctx context.Context, cred credentials.Supplier, org, username, role string) (*github.Membership, error)
	AcceptOrgMembership(ctx context.Context, cred credentials.Supplier, org string) (*github.Membership, error)
	RemoveOrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) error

	IsPublicMember(ctx context.Context, cred credentials.Supplier, org, username string) (bool, error)
	PublicizeMembership(ctx context.Context, cred credentials.Supplier, org, username string) error
	ConcealMembership(ctx context.Context, cred credentials.Supplier, org, username string) error

	CreateRepository(ctx context.Context, cred credentials.Supplier, org string, repo *github.Repository) (*github.Repository, error)

	UserByLogin(ctx context.Context, cred credentials.Supplier, login string) (*github.User, error)
}
