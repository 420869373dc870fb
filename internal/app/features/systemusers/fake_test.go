package systemusers

import (
	"context"
	"sync"

	"github.com/dalemusser/adminusers/internal/app/clients/profileapi"
	"github.com/dalemusser/adminusers/internal/domain/models"
)

// call records one remote operation issued against fakeAPI.
type call struct {
	Op      Op
	Page    int
	PerPage int
	Filter  models.ListFilter
	Term    string
	Opts    models.SearchOptions
	UserID  string
}

// fakeAPI implements ProfileService and TeamService in memory and records
// every call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []call

	List  []models.Profile // answer to both listing operations
	Found []models.Profile // answer to SearchProfiles
	Users map[string]models.Profile
	Err   error // returned by every profile operation when set

	// Hook, when set, replaces the canned answer of the profile
	// operations. It runs without the fake's lock held.
	Hook func(ctx context.Context, c call) ([]models.Profile, error)

	TeamList   []models.Team
	TeamStats  map[string]models.TeamStats
	UsersStats models.UsersStats
	StatsErr   error
	// OnStats, when set, runs inside GetFilteredUsersStats before it
	// answers, without the fake's lock held.
	OnStats func()

	statsFilters []models.UsersStatsFilter
	statsTeams   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		Users:     map[string]models.Profile{},
		TeamStats: map[string]models.TeamStats{},
	}
}

func (f *fakeAPI) record(ctx context.Context, c call, canned []models.Profile) ([]models.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	hook, err := f.Hook, f.Err
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, c)
	}
	if err != nil {
		return nil, err
	}
	return canned, nil
}

func (f *fakeAPI) GetProfiles(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error) {
	return f.record(ctx, call{Op: OpGetProfiles, Page: page, PerPage: perPage, Filter: filter}, f.List)
}

func (f *fakeAPI) GetProfilesWithoutTeam(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error) {
	return f.record(ctx, call{Op: OpGetProfilesWithoutTeam, Page: page, PerPage: perPage, Filter: filter}, f.List)
}

func (f *fakeAPI) SearchProfiles(ctx context.Context, term string, opts models.SearchOptions) ([]models.Profile, error) {
	return f.record(ctx, call{Op: OpSearchProfiles, Term: term, Opts: opts}, f.Found)
}

func (f *fakeAPI) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{Op: "get user", UserID: id})
	u, ok := f.Users[id]
	f.mu.Unlock()
	if !ok {
		return nil, &profileapi.APIError{StatusCode: 404, Op: "get user", Message: "not found"}
	}
	return &u, nil
}

func (f *fakeAPI) GetTeams(ctx context.Context) ([]models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TeamList, f.StatsErr
}

func (f *fakeAPI) GetTeamStats(ctx context.Context, teamID string) (models.TeamStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsTeams = append(f.statsTeams, teamID)
	return f.TeamStats[teamID], f.StatsErr
}

func (f *fakeAPI) GetFilteredUsersStats(ctx context.Context, filter models.UsersStatsFilter) (models.UsersStats, error) {
	f.mu.Lock()
	f.statsFilters = append(f.statsFilters, filter)
	stats, err, hook := f.UsersStats, f.StatsErr, f.OnStats
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return stats, err
}

// Calls returns a copy of the recorded profile calls.
func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.statsFilters = nil
	f.statsTeams = nil
}

// fakeSink records every batch handed to it.
type fakeSink struct {
	mu      sync.Mutex
	batches [][]models.Profile
}

func (s *fakeSink) ReceiveProfiles(ctx context.Context, profiles []models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, profiles)
	return nil
}

func (s *fakeSink) Batches() [][]models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]models.Profile(nil), s.batches...)
}

// reported is one ErrorReporter call.
type reported struct {
	Err     error
	Details map[string]string
}

type fakeReporter struct {
	mu   sync.Mutex
	errs []reported
}

func (r *fakeReporter) LogError(ctx context.Context, err error, details map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, reported{Err: err, Details: details})
}

func (r *fakeReporter) Reported() []reported {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reported(nil), r.errs...)
}
