package commands

import (
	"fmt"
	"time"

	"github.com/opsgate/orgcache"
)

func ptr[T any](v T) *T {
	return &v
}

type MembersCmd struct {
	Org               string `arg:"" help:"Organization name."`
	Role              string `help:"Filter by role (admin, member)."`
	TwoFactorDisabled bool   `name:"2fa-disabled" help:"Only members with two-factor authentication disabled."`
}

func (c *MembersCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	members, err := org.Members(ctx, orgcache.MemberListOptions{
		Role:              c.Role,
		TwoFactorDisabled: c.TwoFactorDisabled,
	})
	if err != nil {
		return fmt.Errorf("listing members of %s: %w", c.Org, err)
	}
	for _, m := range members {
		fmt.Printf("%d\t%s\n", m.ID, m.Login)
	}
	return nil
}

type TeamsCmd struct {
	Org string `arg:"" help:"Organization name."`
}

func (c *TeamsCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	teams, err := org.Teams(ctx, orgcache.CollectionOptions{})
	if err != nil {
		return fmt.Errorf("listing teams of %s: %w", c.Org, err)
	}
	for _, t := range teams {
		fmt.Printf("%d\t%s\t%s\n", t.ID, t.Slug, t.Name)
	}
	return nil
}

type ReposCmd struct {
	Org string `arg:"" help:"Organization name."`
}

func (c *ReposCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	repos, err := org.Repositories(ctx, orgcache.CollectionOptions{})
	if err != nil {
		return fmt.Errorf("listing repositories of %s: %w", c.Org, err)
	}
	for _, r := range repos {
		fmt.Printf("%d\t%s\n", r.ID, r.Name)
	}
	return nil
}

type ResolveTeamCmd struct {
	Org  string `arg:"" help:"Organization name."`
	Team string `arg:"" help:"Team slug, name or numeric id."`
}

func (c *ResolveTeamCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := org.ResolveTeam(ctx, c.Team)
	if err != nil {
		return fmt.Errorf("resolving team %q: %w", c.Team, err)
	}
	switch {
	case res.Found():
		fmt.Printf("found\t%d\t%s\t%s\n", res.Team.ID, res.Team.Slug, res.Team.Name)
	case res.Redirected():
		fmt.Printf("redirect\t%s\n", res.RedirectSlug)
	default:
		return fmt.Errorf("team %q not found in %s", c.Team, c.Org)
	}
	return nil
}

type SudoCmd struct {
	Org  string `arg:"" help:"Organization name."`
	User string `arg:"" help:"Username to check."`
}

func (c *SudoCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	sudoer, err := org.IsSudoer(ctx, c.User)
	if err != nil {
		return fmt.Errorf("checking sudo for %s in %s: %w", c.User, c.Org, err)
	}
	if sudoer {
		fmt.Printf("%s is a sudoer of %s\n", c.User, c.Org)
	} else {
		fmt.Printf("%s is not a sudoer of %s\n", c.User, c.Org)
	}
	return nil
}

// RefreshCmd refetches every cached collection of an organization so that a
// persistent cache starts warm. The fetches must run synchronously: a
// background refresh would race process exit and the cache teardown, leaving
// the store as stale as it was found.
type RefreshCmd struct {
	Org string `arg:"" help:"Organization name."`
}

func (c *RefreshCmd) Run(ctx *cliCtx) error {
	org, cleanup, err := openOrg(ctx, c.Org)
	if err != nil {
		return err
	}
	defer cleanup()

	force := orgcache.CollectionOptions{
		MaxAge:            ptr(-time.Minute),
		BackgroundRefresh: ptr(false),
	}

	members, err := org.Members(ctx, orgcache.MemberListOptions{CollectionOptions: force})
	if err != nil {
		return fmt.Errorf("warming members of %s: %w", c.Org, err)
	}
	teams, err := org.Teams(ctx, force)
	if err != nil {
		return fmt.Errorf("warming teams of %s: %w", c.Org, err)
	}
	repos, err := org.Repositories(ctx, force)
	if err != nil {
		return fmt.Errorf("warming repositories of %s: %w", c.Org, err)
	}
	ctx.Logger.Info("Cache warmed",
		"organization", c.Org,
		"members", len(members),
		"teams", len(teams),
		"repositories", len(repos),
	)
	return nil
}
