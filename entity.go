package orgcache

import (
	"context"
	"fmt"

	"github.com/google/go-github/v71/github"

	"github.com/opsgate/orgcache/pkg/credentials"
)

// Team wraps one raw team record, bound to its owning organization. A team
// built from a bare id is lazy: Hydrate fills in slug and name on demand.
type Team struct {
	org *Organization

	ID   int64
	Slug string
	Name string

	hydrated bool
}

// newTeam wraps a full raw record.
func (o *Organization) newTeam(raw *github.Team) *Team {
	return &Team{
		org:      o,
		ID:       raw.GetID(),
		Slug:     raw.GetSlug(),
		Name:     raw.GetName(),
		hydrated: true,
	}
}

// teamFromID builds a lazy wrapper around a bare team id.
func (o *Organization) teamFromID(id int64) *Team {
	return &Team{org: o, ID: id}
}

// Hydrate fetches the full team record when the wrapper was built from a
// bare id. It reports absence (team deleted upstream) as found=false.
func (t *Team) Hydrate(ctx context.Context) (found bool, err error) {
	if t.hydrated {
		return true, nil
	}

	cred, err := t.org.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return false, err
	}
	orgID, err := t.org.ID(ctx)
	if err != nil {
		return false, err
	}
	raw, err := t.org.svc.Remote.TeamByID(ctx, cred, orgID, t.ID)
	if err != nil {
		return false, fmt.Errorf("getting team %d of %s: %w", t.ID, t.org.name, err)
	}
	if raw == nil {
		return false, nil
	}

	t.Slug = raw.GetSlug()
	t.Name = raw.GetName()
	t.hydrated = true
	return true, nil
}

// Membership looks up the team membership for username with no caching:
// this read backs privileged decisions where staleness is unacceptable.
// Absence (no membership, or the team itself is gone) yields (nil, nil).
func (t *Team) Membership(ctx context.Context, username string) (*github.Membership, error) {
	cred, err := t.org.svc.Credentials.Supplier(credentials.PurposeData)
	if err != nil {
		return nil, err
	}
	orgID, err := t.org.ID(ctx)
	if err != nil {
		return nil, err
	}
	membership, err := t.org.svc.Remote.TeamMembership(ctx, cred, orgID, t.ID, username)
	if err != nil {
		return nil, fmt.Errorf("checking membership of %s in team %d of %s: %w", username, t.ID, t.org.name, err)
	}
	return membership, nil
}

// OrganizationMember wraps one raw member record.
type OrganizationMember struct {
	org *Organization

	ID    int64
	Login string
}

func (o *Organization) newMember(raw *github.User) *OrganizationMember {
	return &OrganizationMember{org: o, ID: raw.GetID(), Login: raw.GetLogin()}
}

// Repository wraps one raw repository record.
type Repository struct {
	org *Organization

	ID   int64
	Name string
}

func (o *Organization) newRepository(raw *github.Repository) *Repository {
	return &Repository{org: o, ID: raw.GetID(), Name: raw.GetName()}
}
