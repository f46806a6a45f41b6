package orgcache

import (
	"context"
	"strconv"
	"strings"

	"github.com/opsgate/orgcache/pkg/colcache"
)

// TeamResolution is the outcome of resolving a human-supplied team
// identifier. Exactly one of the three states holds:
//
//   - Found: Team set and RedirectSlug empty; the input was the canonical
//     slug.
//   - Redirect: Team and RedirectSlug set; the input resolved to a team
//     under a different canonical identifier; callers re-resolve by slug
//     (the HTTP layer turns this into a 301).
//   - NotFound: nothing matched. This is a caller-input outcome, not a
//     system fault, and is kept out of default error logging.
type TeamResolution struct {
	Team         *Team
	RedirectSlug string
	NotFound     bool
}

func (r TeamResolution) Found() bool {
	return r.Team != nil && r.RedirectSlug == ""
}

func (r TeamResolution) Redirected() bool {
	return r.RedirectSlug != ""
}

// ResolveTeam resolves a team by slug, name or numeric id against the live
// team list. The list is fetched with a tighter freshness budget than plain
// listings so a just-created team becomes visible quickly.
//
// Slug matches are authoritative and return immediately. A name match whose
// slug diverges redirects to the canonical slug rather than silently
// accepting the name. A numeric input matching a team id is remembered as a
// fallback but never beats a slug or name match later in the list; when it
// is all that matched, it too redirects.
func (o *Organization) ResolveTeam(ctx context.Context, input string) (TeamResolution, error) {
	teams, err := o.teams(ctx, colcache.Policy{
		MaxAge:            o.svc.Config.TeamsMaxAge() / 2,
		BackgroundRefresh: true,
		PageDelay:         o.svc.Config.PageRequestDelay(),
	})
	if err != nil {
		return TeamResolution{}, err
	}

	lower := strings.ToLower(input)
	var fallback *Team
	for _, team := range teams {
		if lower == strings.ToLower(team.Slug) {
			return TeamResolution{Team: team}, nil
		}
		if lower == strings.ToLower(team.Name) {
			return TeamResolution{Team: team, RedirectSlug: team.Slug}, nil
		}
		if fallback == nil && input == strconv.FormatInt(team.ID, 10) {
			fallback = team
		}
	}

	if fallback != nil {
		return TeamResolution{Team: fallback, RedirectSlug: fallback.Slug}, nil
	}

	o.svc.Logger.Debug("team not found", "org", o.name, "input", input)
	return TeamResolution{NotFound: true}, nil
}
