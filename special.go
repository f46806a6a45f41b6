package orgcache

import (
	"fmt"

	"github.com/opsgate/orgcache/pkg/settings"
)

// SpecialTeamIDs returns every team id configured for the given role.
func (o *Organization) SpecialTeamIDs(role settings.SpecialTeam) []int64 {
	return o.setting.SpecialTeamIDs(role)
}

// SystemTeamIDs returns every team id carrying a system-wide role, in a
// stable order with duplicates preserved. Callers use it to exclude system
// teams from generic listings.
func (o *Organization) SystemTeamIDs() []int64 {
	return o.setting.SystemTeamIDs()
}

// singleSpecialTeam resolves a single-valued role to its one team. Zero
// configured teams yields nil; more than one is a configuration-integrity
// fault, not a transient error, and must not be retried.
func (o *Organization) singleSpecialTeam(role settings.SpecialTeam, label string) (*Team, error) {
	ids := o.setting.SpecialTeamIDs(role)
	switch len(ids) {
	case 0:
		return nil, nil
	case 1:
		return o.teamFromID(ids[0]), nil
	default:
		return nil, fmt.Errorf("%w: multiple %s teams not supported in %s", ErrConfig, label, o.name)
	}
}

// SudoTeam returns the organization's sudo team, or nil when none is
// configured.
func (o *Organization) SudoTeam() (*Team, error) {
	return o.singleSpecialTeam(settings.SpecialTeamSudo, "sudo")
}

// GlobalSudoTeam returns the cross-organization sudo team, or nil when none
// is configured.
func (o *Organization) GlobalSudoTeam() (*Team, error) {
	return o.singleSpecialTeam(settings.SpecialTeamGlobalSudo, "global sudo")
}

// EveryoneTeam returns the broad-access team new members are invited to, or
// nil when none is configured.
func (o *Organization) EveryoneTeam() (*Team, error) {
	return o.singleSpecialTeam(settings.SpecialTeamEveryone, "everyone")
}
