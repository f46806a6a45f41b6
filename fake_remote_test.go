package orgcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/colcache"
	"github.com/opsgate/orgcache/pkg/config"
	"github.com/opsgate/orgcache/pkg/credentials"
	"github.com/opsgate/orgcache/pkg/settings"
)

// fakeRemote implements RemoteClient in memory, recording which token each
// call resolved so tests can assert purpose routing.
type fakeRemote struct {
	mu sync.Mutex

	orgDetails *github.Organization
	members    []*github.User
	teams      []*github.Team
	repos      []*github.Repository
	// teamMemberships is keyed "teamID/username".
	teamMemberships map[string]*github.Membership
	orgMemberships  map[string]*github.Membership
	usersByLogin    map[string]*github.User
	publicMembers   map[string]bool

	removeErr error
	removed   []string

	createdRepo *github.Repository

	calls      map[string]int
	tokensSeen map[string]string // method -> last token
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		teamMemberships: make(map[string]*github.Membership),
		orgMemberships:  make(map[string]*github.Membership),
		usersByLogin:    make(map[string]*github.User),
		publicMembers:   make(map[string]bool),
		calls:           make(map[string]int),
		tokensSeen:      make(map[string]string),
	}
}

func (f *fakeRemote) record(ctx context.Context, method string, cred credentials.Supplier) error {
	token, err := cred(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	f.tokensSeen[method] = token
	return nil
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) tokenSeen(method string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokensSeen[method]
}

func (f *fakeRemote) Organization(ctx context.Context, cred credentials.Supplier, org string) (*github.Organization, error) {
	if err := f.record(ctx, "Organization", cred); err != nil {
		return nil, err
	}
	return f.orgDetails, nil
}

func (f *fakeRemote) ListMembers(ctx context.Context, cred credentials.Supplier, org string, params MemberListParams, pageDelay time.Duration) ([]*github.User, error) {
	if err := f.record(ctx, "ListMembers", cred); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.tokensSeen["ListMembers.role"] = params.Role
	f.tokensSeen["ListMembers.filter"] = params.Filter
	f.mu.Unlock()
	return f.members, nil
}

func (f *fakeRemote) ListTeams(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Team, error) {
	if err := f.record(ctx, "ListTeams", cred); err != nil {
		return nil, err
	}
	return f.teams, nil
}

func (f *fakeRemote) ListRepositories(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Repository, error) {
	if err := f.record(ctx, "ListRepositories", cred); err != nil {
		return nil, err
	}
	return f.repos, nil
}

func (f *fakeRemote) TeamByID(ctx context.Context, cred credentials.Supplier, orgID, teamID int64) (*github.Team, error) {
	if err := f.record(ctx, "TeamByID", cred); err != nil {
		return nil, err
	}
	for _, t := range f.teams {
		if t.GetID() == teamID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) TeamMembership(ctx context.Context, cred credentials.Supplier, orgID, teamID int64, username string) (*github.Membership, error) {
	if err := f.record(ctx, "TeamMembership", cred); err != nil {
		return nil, err
	}
	return f.teamMemberships[fmt.Sprintf("%d/%s", teamID, username)], nil
}

func (f *fakeRemote) OrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) (*github.Membership, error) {
	if err := f.record(ctx, "OrgMembership", cred); err != nil {
		return nil, err
	}
	return f.orgMemberships[username], nil
}

func (f *fakeRemote) SetOrgMembership(ctx context.Context, cred credentials.Supplier, org, username, role string) (*github.Membership, error) {
	if err := f.record(ctx, "SetOrgMembership", cred); err != nil {
		return nil, err
	}
	m := &github.Membership{Role: github.Ptr(role), State: github.Ptr("pending")}
	f.mu.Lock()
	f.orgMemberships[username] = m
	f.mu.Unlock()
	return m, nil
}

func (f *fakeRemote) AcceptOrgMembership(ctx context.Context, cred credentials.Supplier, org string) (*github.Membership, error) {
	if err := f.record(ctx, "AcceptOrgMembership", cred); err != nil {
		return nil, err
	}
	return &github.Membership{State: github.Ptr("active")}, nil
}

func (f *fakeRemote) RemoveOrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	if err := f.record(ctx, "RemoveOrgMembership", cred); err != nil {
		return err
	}
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	f.removed = append(f.removed, username)
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) IsPublicMember(ctx context.Context, cred credentials.Supplier, org, username string) (bool, error) {
	if err := f.record(ctx, "IsPublicMember", cred); err != nil {
		return false, err
	}
	return f.publicMembers[username], nil
}

func (f *fakeRemote) PublicizeMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	return f.record(ctx, "PublicizeMembership", cred)
}

func (f *fakeRemote) ConcealMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	return f.record(ctx, "ConcealMembership", cred)
}

func (f *fakeRemote) CreateRepository(ctx context.Context, cred credentials.Supplier, org string, repo *github.Repository) (*github.Repository, error) {
	if err := f.record(ctx, "CreateRepository", cred); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.createdRepo = repo
	f.mu.Unlock()
	created := &github.Repository{
		ID:            github.Ptr(int64(9000)),
		Name:          repo.Name,
		FullName:      github.Ptr(org + "/" + repo.GetName()),
		Visibility:    repo.Visibility,
		DefaultBranch: github.Ptr("main"),
		HTMLURL:       github.Ptr("https://github.test/" + org + "/" + repo.GetName()),
	}
	return created, nil
}

func (f *fakeRemote) UserByLogin(ctx context.Context, cred credentials.Supplier, login string) (*github.User, error) {
	if err := f.record(ctx, "UserByLogin", cred); err != nil {
		return nil, err
	}
	return f.usersByLogin[login], nil
}

var _ RemoteClient = (*fakeRemote)(nil)

func testConfig() *config.Config {
	return &config.Config{
		DefaultPageSize:      100,
		MembersMaxAgeSeconds: 600,
		TeamsMaxAgeSeconds:   300,
		ReposMaxAgeSeconds:   600,
		LegalEntities:        []string{"Acme Inc"},
	}
}

func newTestService(remote RemoteClient) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := credentials.NewRouter(map[credentials.Purpose]credentials.TokenSource{
		credentials.PurposeData:           credentials.Static("data-token"),
		credentials.PurposeOperations:     credentials.Static("ops-token"),
		credentials.PurposeCustomerFacing: credentials.Static("customer-token"),
	})
	fetcher := colcache.NewFetcher(colcache.NewMemoryStore(), logger)
	return NewService(testConfig(), remote, fetcher, router, logger)
}

func testOrg(svc *Service, setting *settings.OrganizationSetting) *Organization {
	if setting == nil {
		setting = &settings.OrganizationSetting{Active: true}
	}
	return svc.Organization("acme", setting)
}
