// internal/domain/models/team.go
package models

// Team is a team as listed by the remote team service.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // "O" open, "I" invite only
	DeleteAt    int64  `json:"delete_at"`
}

// TeamStats carries membership counts for a single team.
type TeamStats struct {
	TeamID            string `json:"team_id"`
	TotalMemberCount  int64  `json:"total_member_count"`
	ActiveMemberCount int64  `json:"active_member_count"`
}

// UsersStats carries the user count for a filtered listing.
type UsersStats struct {
	TotalUsersCount int64 `json:"total_users_count"`
}

// UsersStatsFilter scopes GetFilteredUsersStats.
type UsersStatsFilter struct {
	InTeam         string
	IncludeDeleted bool
	Inactive       bool
	Role           string
}
