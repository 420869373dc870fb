// internal/app/features/systemusers/panel.go
package systemusers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/adminusers/internal/app/system/debounce"
	"github.com/dalemusser/adminusers/internal/app/system/errorlog"
	"github.com/dalemusser/adminusers/internal/app/system/paging"
	"github.com/dalemusser/adminusers/internal/app/system/panelmetrics"
	"github.com/dalemusser/adminusers/internal/app/system/search"
	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"github.com/dalemusser/adminusers/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPanelClosed is returned by panel operations after Close.
var ErrPanelClosed = errors.New("systemusers: panel closed")

// Deps are the collaborators of a Panel. Profiles is required; the rest
// may be nil.
type Deps struct {
	Profiles ProfileService
	Teams    TeamService
	Sink     ProfileSink
	Errors   ErrorReporter
	Metrics  *panelmetrics.Metrics
	Clock    debounce.Clock // nil means the real clock
	Log      *zap.Logger
}

// Panel is the load-state controller of one System Users view. It
// decides which remote fetch to issue for the current filters, tags each
// fetch with a request token, and commits only the latest one.
//
// A Panel is safe for concurrent use.
type Panel struct {
	id       string
	deps     Deps
	dispatch dispatcher
	log      *zap.Logger

	// ctx lives until Close; every fetch is bound to it.
	ctx    context.Context
	cancel context.CancelFunc

	search *debounce.Debouncer

	mu       sync.Mutex
	state    State
	closed   bool
	inflight context.CancelFunc // cancels the fetch issued under state.Token
	teams    []models.Team
	lastUsed time.Time
}

// NewPanel creates an idle panel with default filters: all users, no
// status filter, no search term, page 0.
func NewPanel(id string, deps Deps) *Panel {
	logger := deps.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		id:       id,
		deps:     deps,
		dispatch: dispatcher{profiles: deps.Profiles},
		log:      logger.With(zap.String("panel_id", id)),
		ctx:      ctx,
		cancel:   cancel,
		search:   debounce.New(deps.Clock, search.DebounceDelay),
		lastUsed: time.Now(),
	}
	deps.Metrics.PanelOpened()
	return p
}

// ID returns the panel id.
func (p *Panel) ID() string { return p.id }

// State returns a snapshot of the panel state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Loading reports whether the latest issued fetch is outstanding.
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Loading()
}

// SearchPending reports whether a debounced search has not fired yet.
func (p *Panel) SearchPending() bool { return p.search.Pending() }

// Teams returns the team list fetched at mount.
func (p *Panel) Teams() []models.Team {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Team, len(p.teams))
	copy(out, p.teams)
	return out
}

// LastUsed returns when the panel last handled an event.
func (p *Panel) LastUsed() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsed
}

// Closed reports whether Close has been called.
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Mount prefetches the team list and the total count for the current
// filters, then issues the initial profile load. Prefetch failures are
// reported and do not stop the load.
func (p *Panel) Mount(ctx context.Context) error {
	s, err := p.snapshot()
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error { return p.prefetchTeams(ctx) })
	g.Go(func() error { return p.refreshTotal(ctx, s.Team, s.Status) })
	if err := g.Wait(); err != nil {
		p.log.Debug("mount prefetch incomplete", zap.Error(err))
	}

	return p.LoadDataForTeam(ctx, s.Team, s.Status)
}

// LoadDataForTeam issues the initial listing for team and status:
// profiles without a team for NoTeam, all profiles otherwise, starting at
// page 0 with the chunk size. Remote failures are reported, not returned.
func (p *Panel) LoadDataForTeam(ctx context.Context, team models.TeamFilter, status models.StatusFilter) error {
	return p.run(ctx, func(s State) Intent {
		return Intent{
			Op:      listOp(team),
			Team:    team,
			Status:  status,
			Role:    s.Role,
			Page:    0,
			PerPage: paging.ProfileChunkSize,
		}
	})
}

// NextPage fetches the page after current for the panel's team and
// status. The page index is committed when the fetch settles.
func (p *Panel) NextPage(ctx context.Context, current int) error {
	return p.page(ctx, paging.TargetNext(current))
}

// PreviousPage fetches the page before current.
func (p *Panel) PreviousPage(ctx context.Context, current int) error {
	return p.page(ctx, paging.TargetPrevious(current))
}

func (p *Panel) page(ctx context.Context, target int) error {
	return p.run(ctx, func(s State) Intent {
		return Intent{
			Op:      listOp(s.Team),
			Team:    s.Team,
			Status:  s.Status,
			Role:    s.Role,
			Page:    target,
			PerPage: paging.UsersPerPage,
		}
	})
}

// DoSearch schedules a search for term once input settles. A later call
// replaces a pending one. Inactive users are always included; role is
// sent only when set.
//
// An empty term is searched like any other; callers that want the plain
// listing for an empty term use ChangeSearch.
func (p *Panel) DoSearch(term string, status models.StatusFilter, role string) {
	p.scheduleSearch(search.NormalizeTerm(term), status, role)
}

// scheduleSearch arms the debouncer with an already normalized term.
func (p *Panel) scheduleSearch(term string, status models.StatusFilter, role string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.lastUsed = time.Now()
	p.mu.Unlock()

	p.search.Trigger(func() {
		err := p.run(p.ctx, func(s State) Intent {
			return Intent{
				Op:     OpSearchProfiles,
				Team:   s.Team,
				Status: status,
				Term:   term,
				Role:   role,
			}
		})
		if err != nil && !errors.Is(err, ErrPanelClosed) {
			p.log.Warn("debounced search failed", zap.Error(err))
		}
	})
}

// ChangeTeam switches the team filter and reloads.
func (p *Panel) ChangeTeam(ctx context.Context, team models.TeamFilter) error {
	s, err := p.snapshot()
	if err != nil {
		return err
	}
	return p.apply(ctx, team, s.Status, s.Term, s.Role)
}

// ChangeStatus switches the status filter and reloads.
func (p *Panel) ChangeStatus(ctx context.Context, status models.StatusFilter) error {
	s, err := p.snapshot()
	if err != nil {
		return err
	}
	return p.apply(ctx, s.Team, status, s.Term, s.Role)
}

// ChangeSearch sets the search term and role filter. A non-empty term
// schedules a debounced search; an empty one cancels any pending search
// and returns to the plain listing.
func (p *Panel) ChangeSearch(ctx context.Context, term, role string) error {
	s, err := p.snapshot()
	if err != nil {
		return err
	}
	return p.apply(ctx, s.Team, s.Status, search.NormalizeTerm(term), role)
}

// apply records new filters (page back to 0), refreshes the total count
// and issues the fetch the filters call for.
func (p *Panel) apply(ctx context.Context, team models.TeamFilter, status models.StatusFilter, term, role string) error {
	if err := p.reduce(setFilters{Team: team, Status: status, Term: term, Role: role}); err != nil {
		return err
	}

	if term != "" {
		p.scheduleSearch(term, status, role)
		if err := p.refreshTotal(ctx, team, status); err != nil {
			p.log.Debug("total refresh failed", zap.Error(err))
		}
		return nil
	}

	p.search.Cancel()
	var (
		g       errgroup.Group
		loadErr error
	)
	g.Go(func() error { return p.refreshTotal(ctx, team, status) })
	g.Go(func() error {
		loadErr = p.LoadDataForTeam(ctx, team, status)
		return nil
	})
	if err := g.Wait(); err != nil {
		p.log.Debug("total refresh failed", zap.Error(err))
	}
	if loadErr == nil && p.Closed() {
		// Closed while the load ran; the caller's panel is gone.
		return ErrPanelClosed
	}
	return loadErr
}

// Close cancels the pending search timer and any outstanding fetch.
// Later operations return ErrPanelClosed. Close is idempotent.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inflight != nil {
		p.inflight()
		p.inflight = nil
	}
	p.mu.Unlock()

	p.search.Close()
	p.cancel()
	p.deps.Metrics.PanelClosed()
	p.log.Debug("panel closed")
}

// run dispatches one fetch built from the current state and waits for it
// to settle.
func (p *Panel) run(ctx context.Context, build func(State) Intent) error {
	token, in, fctx, done, err := p.begin(ctx, build)
	if err != nil {
		return err
	}
	defer done()

	profiles, ferr := p.dispatch.fetch(fctx, in)
	p.settle(fctx, token, in, profiles, ferr)
	return nil
}

// begin issues a new token, supersedes the outstanding fetch and returns
// a context bound to both the caller and the panel lifetime.
func (p *Panel) begin(ctx context.Context, build func(State) Intent) (uint64, Intent, context.Context, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, Intent{}, nil, nil, ErrPanelClosed
	}
	p.lastUsed = time.Now()

	in := build(p.state)
	if in.Op != OpSearchProfiles {
		p.search.Cancel()
	}
	if p.inflight != nil {
		p.inflight()
	}

	token := p.state.Token + 1
	p.state, _ = reduce(p.state, dispatched{Token: token, Intent: in})

	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	p.inflight = cancel

	p.deps.Metrics.Dispatched(string(in.Op))
	p.log.Debug("fetch dispatched",
		zap.Uint64("token", token),
		zap.String("op", string(in.Op)),
		zap.String("team", string(in.Team)),
		zap.String("status", string(in.Status)),
		zap.Int("page", in.Page))

	done := func() {
		stop()
		cancel()
	}
	return token, in, fctx, done, nil
}

// settle commits the outcome of the fetch issued under token, unless a
// newer fetch has been issued since.
func (p *Panel) settle(ctx context.Context, token uint64, in Intent, profiles []models.Profile, err error) {
	// A failure after the fetch context ended is a cancellation, however
	// the transport wrapped it.
	cancelled := err != nil && ctx.Err() != nil

	p.mu.Lock()
	next, ok := reduce(p.state, settled{
		Token:  token,
		Intent: in,
		IDs:    profileIDs(profiles),
		Err:    err,
		Quiet:  cancelled,
	})
	if ok {
		p.state = next
		p.inflight = nil
	}
	p.mu.Unlock()

	if !ok {
		p.stale(token, in)
		return
	}

	// Only a committed settlement reaches the store.
	if err == nil && len(profiles) > 0 && p.deps.Sink != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Medium())
		if serr := p.deps.Sink.ReceiveProfiles(sctx, profiles); serr != nil {
			p.log.Error("profile store write failed", zap.Error(serr), zap.String("op", string(in.Op)))
		}
		cancel()
	}

	switch {
	case cancelled:
		p.deps.Metrics.Settled(string(in.Op), panelmetrics.OutcomeCancelled, 0)
	case err != nil:
		p.deps.Metrics.Settled(string(in.Op), panelmetrics.OutcomeError, 0)
		p.report(ctx, err, in)
	default:
		p.deps.Metrics.Settled(string(in.Op), panelmetrics.OutcomeOK, len(profiles))
	}
}

func (p *Panel) stale(token uint64, in Intent) {
	p.deps.Metrics.Settled(string(in.Op), panelmetrics.OutcomeStale, 0)
	p.log.Debug("stale fetch discarded", zap.Uint64("token", token), zap.String("op", string(in.Op)))
}

func (p *Panel) report(ctx context.Context, err error, in Intent) {
	if p.deps.Errors == nil {
		return
	}
	p.deps.Errors.LogError(context.WithoutCancel(ctx), err, map[string]string{
		errorlog.DetailOp:      string(in.Op),
		errorlog.DetailPanelID: p.id,
		"team":                 string(in.Team),
		"status":               string(in.Status),
	})
}

// prefetchTeams loads the team list for the team picker.
func (p *Panel) prefetchTeams(ctx context.Context) error {
	if p.deps.Teams == nil {
		return nil
	}
	teams, err := p.deps.Teams.GetTeams(ctx)
	if err != nil {
		p.reportPrefetch(ctx, err, "get teams")
		return err
	}
	p.mu.Lock()
	p.teams = teams
	p.mu.Unlock()
	return nil
}

// refreshTotal loads the total row count for team and status: team stats
// for a concrete team, filtered user stats for all users. The count for
// users without a team is not available and becomes unknown.
func (p *Panel) refreshTotal(ctx context.Context, team models.TeamFilter, status models.StatusFilter) error {
	if p.deps.Teams == nil {
		return nil
	}

	var (
		total int64
		known = true
	)
	switch {
	case team == models.NoTeam:
		known = false

	case team.IsTeam():
		stats, err := p.deps.Teams.GetTeamStats(ctx, string(team))
		if err != nil {
			p.reportPrefetch(ctx, err, "get team stats")
			return err
		}
		switch status {
		case models.StatusActive:
			total = stats.ActiveMemberCount
		case models.StatusInactive:
			total = stats.TotalMemberCount - stats.ActiveMemberCount
		default:
			total = stats.TotalMemberCount
		}

	default:
		f := models.UsersStatsFilter{
			IncludeDeleted: status != models.StatusActive,
			Inactive:       status == models.StatusInactive,
		}
		if status == models.StatusSystemAdmin {
			f.Role = string(models.StatusSystemAdmin)
		}
		stats, err := p.deps.Teams.GetFilteredUsersStats(ctx, f)
		if err != nil {
			p.reportPrefetch(ctx, err, "get filtered users stats")
			return err
		}
		total = stats.TotalUsersCount
	}

	return p.reduce(totalLoaded{Team: team, Status: status, Total: total, Known: known})
}

func (p *Panel) reportPrefetch(ctx context.Context, err error, op string) {
	if ctx.Err() != nil || p.deps.Errors == nil {
		return
	}
	p.deps.Errors.LogError(context.WithoutCancel(ctx), err, map[string]string{
		errorlog.DetailOp:      op,
		errorlog.DetailPanelID: p.id,
	})
}

// reduce applies a non-fetch action under the lock.
func (p *Panel) reduce(a action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPanelClosed
	}
	p.lastUsed = time.Now()
	p.state, _ = reduce(p.state, a)
	return nil
}

func (p *Panel) snapshot() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return State{}, ErrPanelClosed
	}
	return p.state.clone(), nil
}
