// Package remote implements the upstream GitHub REST surface with
// google/go-github. Credentials are resolved per call and never cached on
// the client; multi-page listings are fully drained with optional pacing.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v71/github"
	"golang.org/x/time/rate"

	"github.com/opsgate/orgcache"
	"github.com/opsgate/orgcache/pkg/credentials"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
}

type Option func(*Client)

// WithEnterpriseURL points the client at a GitHub Enterprise instance.
func WithEnterpriseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithPageSize sets the per-page size for listing calls.
func WithPageSize(size int) Option {
	return func(c *Client) { c.pageSize = size }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageSize:   100,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api builds a go-github client bound to a freshly resolved token.
func (c *Client) api(ctx context.Context, cred credentials.Supplier) (*github.Client, error) {
	token, err := cred(ctx)
	if err != nil {
		return nil, err
	}
	gh := github.NewClient(c.httpClient).WithAuthToken(token)
	if c.baseURL != "" {
		gh, err = gh.WithEnterpriseURLs(c.baseURL, c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise base URL: %w", err)
		}
	}
	return gh, nil
}

// pacer returns a wait function inserting pageDelay between page requests.
// The first page is never delayed.
func pacer(pageDelay time.Duration) func(ctx context.Context) error {
	if pageDelay <= 0 {
		return func(ctx context.Context) error { return nil }
	}
	limiter := rate.NewLimiter(rate.Every(pageDelay), 1)
	return limiter.Wait
}

// absent reports whether err is the upstream 404-equivalent.
func absent(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func (c *Client) Organization(ctx context.Context, cred credentials.Supplier, org string) (*github.Organization, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	details, _, err := gh.Organizations.Get(ctx, org)
	if err != nil {
		if absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return details, nil
}

func (c *Client) ListMembers(ctx context.Context, cred credentials.Supplier, org string, params orgcache.MemberListParams, pageDelay time.Duration) ([]*github.User, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}

	wait := pacer(pageDelay)
	opts := &github.ListMembersOptions{
		Filter:      params.Filter,
		Role:        params.Role,
		ListOptions: github.ListOptions{PerPage: c.pageSize},
	}

	var all []*github.User
	for {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		members, resp, err := gh.Organizations.ListMembers(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, members...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) ListTeams(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Team, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}

	wait := pacer(pageDelay)
	opts := &github.ListOptions{PerPage: c.pageSize}

	var all []*github.Team
	for {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		teams, resp, err := gh.Teams.ListTeams(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, teams...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) ListRepositories(ctx context.Context, cred credentials.Supplier, org string, pageDelay time.Duration) ([]*github.Repository, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}

	wait := pacer(pageDelay)
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: c.pageSize},
	}

	var all []*github.Repository
	for {
		if err := wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := gh.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) TeamByID(ctx context.Context, cred credentials.Supplier, orgID, teamID int64) (*github.Team, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	team, _, err := gh.Teams.GetTeamByID(ctx, orgID, teamID)
	if err != nil {
		if absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

func (c *Client) TeamMembership(ctx context.Context, cred credentials.Supplier, orgID, teamID int64, username string) (*github.Membership, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	membership, _, err := gh.Teams.GetTeamMembershipByID(ctx, orgID, teamID, username)
	if err != nil {
		if absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

func (c *Client) OrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) (*github.Membership, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	membership, _, err := gh.Organizations.GetOrgMembership(ctx, username, org)
	if err != nil {
		if absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

func (c *Client) SetOrgMembership(ctx context.Context, cred credentials.Supplier, org, username, role string) (*github.Membership, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	membership, _, err := gh.Organizations.EditOrgMembership(ctx, username, org, &github.Membership{
		Role: github.Ptr(role),
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// AcceptOrgMembership activates the calling user's pending invitation. The
// supplier must yield a token belonging to the invited user.
func (c *Client) AcceptOrgMembership(ctx context.Context, cred credentials.Supplier, org string) (*github.Membership, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	membership, _, err := gh.Organizations.EditOrgMembership(ctx, "", org, &github.Membership{
		State: github.Ptr("active"),
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (c *Client) RemoveOrgMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return err
	}
	_, err = gh.Organizations.RemoveOrgMembership(ctx, username, org)
	return err
}

func (c *Client) IsPublicMember(ctx context.Context, cred credentials.Supplier, org, username string) (bool, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return false, err
	}
	public, _, err := gh.Organizations.IsPublicMember(ctx, org, username)
	if err != nil {
		return false, err
	}
	return public, nil
}

func (c *Client) PublicizeMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return err
	}
	_, err = gh.Organizations.PublicizeMembership(ctx, org, username)
	return err
}

func (c *Client) ConcealMembership(ctx context.Context, cred credentials.Supplier, org, username string) error {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return err
	}
	_, err = gh.Organizations.ConcealMembership(ctx, org, username)
	return err
}

func (c *Client) CreateRepository(ctx context.Context, cred credentials.Supplier, org string, repo *github.Repository) (*github.Repository, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	created, _, err := gh.Repositories.Create(ctx, org, repo)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UserByLogin(ctx context.Context, cred credentials.Supplier, login string) (*github.User, error) {
	gh, err := c.api(ctx, cred)
	if err != nil {
		return nil, err
	}
	user, _, err := gh.Users.Get(ctx, login)
	if err != nil {
		if absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

var _ orgcache.RemoteClient = (*Client)(nil)
