// internal/app/features/systemusers/service.go
package systemusers

import (
	"context"

	"github.com/dalemusser/adminusers/internal/domain/models"
)

// ProfileService is the remote profile-listing API as the panel uses it.
// *profileapi.Client implements it.
type ProfileService interface {
	GetProfiles(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error)
	GetProfilesWithoutTeam(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error)
	SearchProfiles(ctx context.Context, term string, opts models.SearchOptions) ([]models.Profile, error)
	// GetUser returns an error matching profileapi.ErrNotFound for an
	// unknown id.
	GetUser(ctx context.Context, id string) (*models.Profile, error)
}

// TeamService supplies team data, read-only.
// *profileapi.Client implements it.
type TeamService interface {
	GetTeams(ctx context.Context) ([]models.Team, error)
	GetTeamStats(ctx context.Context, teamID string) (models.TeamStats, error)
	GetFilteredUsersStats(ctx context.Context, f models.UsersStatsFilter) (models.UsersStats, error)
}

// ProfileSink receives every batch of profiles the panel loads.
// *profilestore.Store implements it.
type ProfileSink interface {
	ReceiveProfiles(ctx context.Context, profiles []models.Profile) error
}

// ErrorReporter is told about failed remote operations.
// *errorlog.Logger implements it.
type ErrorReporter interface {
	LogError(ctx context.Context, err error, details map[string]string)
}
