// internal/domain/models/filters.go
package models

import "strings"

// TeamFilter selects the listing family: every user, users in no team,
// or a concrete team id.
type TeamFilter string

const (
	// AllUsers lists every account. It is the zero value.
	AllUsers TeamFilter = ""
	// NoTeam lists accounts that belong to no team.
	NoTeam TeamFilter = "no_team"
)

// ParseTeamFilter normalizes a posted team value. "all_users" and "" both
// mean AllUsers; anything else that is not NoTeam is taken as a team id.
func ParseTeamFilter(s string) TeamFilter {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all_users":
		return AllUsers
	case string(NoTeam):
		return NoTeam
	}
	return TeamFilter(s)
}

// IsTeam reports whether the filter names a concrete team.
func (t TeamFilter) IsTeam() bool { return t != AllUsers && t != NoTeam }

// StatusFilter is the account-status filter of the panel.
type StatusFilter string

const (
	StatusNone        StatusFilter = ""
	StatusActive      StatusFilter = "active"
	StatusInactive    StatusFilter = "inactive"
	StatusSystemAdmin StatusFilter = "system_admin"
)

// ParseStatusFilter normalizes a posted status value. Unknown values map
// to StatusNone.
func ParseStatusFilter(s string) StatusFilter {
	switch v := StatusFilter(strings.ToLower(strings.TrimSpace(s))); v {
	case StatusActive, StatusInactive, StatusSystemAdmin:
		return v
	}
	return StatusNone
}

// ListFilter is the filter payload of the paged listing operations.
// Its zero value is the empty filter {}.
type ListFilter struct {
	Inactive bool `json:"inactive,omitempty"`
}

// ListFilterFor derives the listing filter from a status filter: only
// the inactive status contributes a field.
func ListFilterFor(status StatusFilter) ListFilter {
	if status == StatusInactive {
		return ListFilter{Inactive: true}
	}
	return ListFilter{}
}

// SearchOptions is the option payload of the search operation.
type SearchOptions struct {
	AllowInactive bool   `json:"allow_inactive"`
	Role          string `json:"role,omitempty"`
}
