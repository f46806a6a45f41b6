package settings

// SpecialTeam tags a team with an organization-wide role. Assignments come
// from configuration, not from any GitHub-side attribute of the team.
type SpecialTeam string

const (
	// SpecialTeamEveryone is the broad-access team new members are invited to.
	SpecialTeamEveryone SpecialTeam = "everyone"
	// SpecialTeamGlobalSudo grants sudo across every organization.
	SpecialTeamGlobalSudo SpecialTeam = "global-sudo"
	// SpecialTeamSudo grants sudo within the owning organization.
	SpecialTeamSudo SpecialTeam = "sudo"

	SpecialTeamSystemRead  SpecialTeam = "system-read"
	SpecialTeamSystemWrite SpecialTeam = "system-write"
	SpecialTeamSystemAdmin SpecialTeam = "system-admin"
)

// SpecialTeamAssignment binds one role tag to one team id. A role may appear
// in multiple assignments; single-valuedness of sudo/everyone roles is
// checked by the accessor that needs a single team, not here.
type SpecialTeamAssignment struct {
	Role   SpecialTeam `json:"specialTeam"`
	TeamID int64       `json:"teamId"`
}

// RepositoryTemplate describes a template repository offered at creation time.
type RepositoryTemplate struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Repository  string `json:"repository"`
	Description string `json:"description,omitempty"`
}

// OrganizationSetting is the externally owned configuration record for one
// organization. It may be hot-swapped between requests; Organization objects
// read it but never write it.
type OrganizationSetting struct {
	Active        bool                    `json:"active"`
	Properties    map[string]any          `json:"properties,omitempty"`
	LegalEntities []string                `json:"legalEntities,omitempty"`
	Templates     []RepositoryTemplate    `json:"templates,omitempty"`
	SpecialTeams  []SpecialTeamAssignment `json:"specialTeams,omitempty"`
	Features      []string                `json:"features,omitempty"`
}

// HasFeature reports whether the named feature flag is enabled.
func (s *OrganizationSetting) HasFeature(name string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Features {
		if f == name {
			return true
		}
	}
	return false
}

// Property returns the named property as a string. Non-string values and
// missing keys report ok=false.
func (s *OrganizationSetting) Property(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Properties[name]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// PropertyBool returns the named property as a bool, defaulting to false.
func (s *OrganizationSetting) PropertyBool(name string) bool {
	if s == nil {
		return false
	}
	v, ok := s.Properties[name]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// SpecialTeamIDs returns every team id assigned to the given role, in
// configuration order. It returns nil when no assignment exists.
func (s *OrganizationSetting) SpecialTeamIDs(role SpecialTeam) []int64 {
	if s == nil {
		return nil
	}
	var ids []int64
	for _, a := range s.SpecialTeams {
		if a.Role == role {
			ids = append(ids, a.TeamID)
		}
	}
	return ids
}

// SystemTeamIDs aggregates the sudo team, the everyone team, and all
// system-read/write/admin teams into one ordered list. Duplicates are kept;
// callers use this to exclude system teams from generic listings.
func (s *OrganizationSetting) SystemTeamIDs() []int64 {
	var ids []int64
	ids = append(ids, s.SpecialTeamIDs(SpecialTeamSudo)...)
	ids = append(ids, s.SpecialTeamIDs(SpecialTeamEveryone)...)
	ids = append(ids, s.SpecialTeamIDs(SpecialTeamSystemRead)...)
	ids = append(ids, s.SpecialTeamIDs(SpecialTeamSystemWrite)...)
	ids = append(ids, s.SpecialTeamIDs(SpecialTeamSystemAdmin)...)
	return ids
}
