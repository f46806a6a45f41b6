package orgcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/colcache"
	"github.com/opsgate/orgcache/pkg/credentials"
	"github.com/opsgate/orgcache/pkg/settings"
)

// Organization is a per-request view over one remote organization. It holds
// no state of its own beyond the numeric id, learned once from the first
// details call; all entity data comes from the cache or the remote API.
type Organization struct {
	name    string
	setting *settings.OrganizationSetting
	svc     *Service

	mu sync.Mutex
	id int64
}

func (o *Organization) Name() string {
	return o.name
}

// Setting exposes the externally owned configuration record.
func (o *Organization) Setting() *settings.OrganizationSetting {
	return o.setting
}

// writable gates every mutating operation on the settings' active flag.
func (o *Organization) writable() error {
	if !o.setting.Active {
		return fmt.Errorf("%s: %w", o.name, ErrInactive)
	}
	return nil
}

// learnID records the remote id the first time it is seen. Later values are
// ignored; the id is immutable once set.
func (o *Organization) learnID(id int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.id == 0 {
		o.id = id
	}
}

// Details fetches the organization record from the remote API. A 404 yields
// (nil, nil). The numeric id is learned as a side effect.
func (o *Organization) Details(ctx context.Context) (*github.Organization, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return nil, err
	}
	details, err := o.svc.Remote.Organization(ctx, cred, o.name)
	if err != nil {
		return nil, fmt.Errorf("getting details for organization %s: %w", o.name, err)
	}
	if details != nil {
		o.learnID(details.GetID())
	}
	return details, nil
}

// ID returns the organization's numeric remote id, resolving it through
// Details when not yet known.
func (o *Organization) ID(ctx context.Context) (int64, error) {
	o.mu.Lock()
	id := o.id
	o.mu.Unlock()
	if id != 0 {
		return id, nil
	}

	details, err := o.Details(ctx)
	if err != nil {
		return 0, err
	}
	if details == nil {
		return 0, fmt.Errorf("organization %s not found upstream", o.name)
	}
	return details.GetID(), nil
}

// CollectionOptions tunes one cached collection listing. Nil overrides keep
// the configured defaults.
type CollectionOptions struct {
	// MaxAge overrides the staleness budget; negative forces a fresh fetch.
	MaxAge *time.Duration
	// BackgroundRefresh overrides whether a stale copy may be returned
	// while a refresh runs out of band.
	BackgroundRefresh *bool
}

func (c CollectionOptions) apply(policy *colcache.Policy) {
	if c.MaxAge != nil {
		policy.MaxAge = *c.MaxAge
	}
	if c.BackgroundRefresh != nil {
		policy.BackgroundRefresh = *c.BackgroundRefresh
	}
}

// MemberListOptions narrows and tunes a member listing.
type MemberListOptions struct {
	// TwoFactorDisabled restricts the listing to members without 2FA.
	TwoFactorDisabled bool
	// Role filters by organization role: "all", "admin" or "member".
	Role string

	CollectionOptions
}

// Members lists the organization's members through the collection cache.
func (o *Organization) Members(ctx context.Context, opts MemberListOptions) ([]*OrganizationMember, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return nil, err
	}

	policy := colcache.Policy{
		MaxAge:            o.svc.Config.MembersMaxAge(),
		BackgroundRefresh: true,
		PageDelay:         o.svc.Config.PageRequestDelay(),
	}
	opts.CollectionOptions.apply(&policy)

	params := MemberListParams{Role: opts.Role}
	if params.Role == "" {
		params.Role = "all"
	}
	if opts.TwoFactorDisabled {
		params.Filter = "2fa_disabled"
	}

	key := fmt.Sprintf("members/%s?filter=%s&role=%s", o.name, params.Filter, params.Role)
	users, err := colcache.Collection(ctx, o.svc.Fetcher, key, policy, func(ctx context.Context) ([]*github.User, error) {
		return o.svc.Remote.ListMembers(ctx, cred, o.name, params, policy.PageDelay)
	})
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", o.name, err)
	}

	members := make([]*OrganizationMember, len(users))
	for i, user := range users {
		members[i] = o.newMember(user)
	}
	return members, nil
}

// Owners lists the organization's admins.
func (o *Organization) Owners(ctx context.Context) ([]*OrganizationMember, error) {
	return o.Members(ctx, MemberListOptions{Role: "admin"})
}

// Teams lists the organization's teams through the collection cache.
func (o *Organization) Teams(ctx context.Context, opts CollectionOptions) ([]*Team, error) {
	policy := colcache.Policy{
		MaxAge:            o.svc.Config.TeamsMaxAge(),
		BackgroundRefresh: true,
		PageDelay:         o.svc.Config.PageRequestDelay(),
	}
	opts.apply(&policy)
	return o.teams(ctx, policy)
}

func (o *Organization) teams(ctx context.Context, policy colcache.Policy) ([]*Team, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%s", o.name)
	raw, err := colcache.Collection(ctx, o.svc.Fetcher, key, policy, func(ctx context.Context) ([]*github.Team, error) {
		return o.svc.Remote.ListTeams(ctx, cred, o.name, policy.PageDelay)
	})
	if err != nil {
		return nil, fmt.Errorf("listing teams of %s: %w", o.name, err)
	}

	teams := make([]*Team, len(raw))
	for i, t := range raw {
		teams[i] = o.newTeam(t)
	}
	return teams, nil
}

// Repositories lists the organization's repositories through the collection
// cache.
func (o *Organization) Repositories(ctx context.Context, opts CollectionOptions) ([]*Repository, error) {
	cred, err := o.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return nil, err
	}

	policy := colcache.Policy{
		MaxAge:            o.svc.Config.ReposMaxAge(),
		BackgroundRefresh: true,
		PageDelay:         o.svc.Config.PageRequestDelay(),
	}
	opts.apply(&policy)

	key := fmt.Sprintf("repos/%s", o.name)
	raw, err := colcache.Collection(ctx, o.svc.Fetcher, key, policy, func(ctx context.Context) ([]*github.Repository, error) {
		return o.svc.Remote.ListRepositories(ctx, cred, o.name, policy.PageDelay)
	})
	if err != nil {
		return nil, fmt.Errorf("listing repositories of %s: %w", o.name, err)
	}

	repos := make([]*Repository, len(raw))
	for i, r := range raw {
		repos[i] = o.newRepository(r)
	}
	return repos, nil
}
