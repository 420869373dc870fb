package systemusers

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dalemusser/adminusers/internal/app/system/debounce"
	"github.com/dalemusser/adminusers/internal/app/system/errorlog"
	"github.com/dalemusser/adminusers/internal/app/system/paging"
	"github.com/dalemusser/adminusers/internal/domain/models"
	"github.com/dalemusser/adminusers/internal/testutil"
	"go.uber.org/zap"
)

type panelFixture struct {
	api   *fakeAPI
	sink  *fakeSink
	errs  *fakeReporter
	clock *debounce.ManualClock
	panel *Panel
}

// newTestPanel builds a panel over fakes. Team lookups are wired only
// when withTeams is set so listing tests see exactly one remote call.
func newTestPanel(t *testing.T, withTeams bool) *panelFixture {
	t.Helper()
	f := &panelFixture{
		api:   newFakeAPI(),
		sink:  &fakeSink{},
		errs:  &fakeReporter{},
		clock: debounce.NewManualClock(),
	}
	deps := Deps{
		Profiles: f.api,
		Sink:     f.sink,
		Errors:   f.errs,
		Clock:    f.clock,
		Log:      zap.NewNop(),
	}
	if withTeams {
		deps.Teams = f.api
	}
	f.panel = NewPanel("panel-1", deps)
	t.Cleanup(f.panel.Close)
	return f
}

func onlyCall(t *testing.T, api *fakeAPI) call {
	t.Helper()
	calls := api.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 remote call, got %d: %+v", len(calls), calls)
	}
	return calls[0]
}

func TestLoadDataForTeam_ChoosesListingOperation(t *testing.T) {
	tests := []struct {
		name   string
		team   models.TeamFilter
		status models.StatusFilter
		wantOp Op
		want   models.ListFilter
	}{
		{"all users", models.AllUsers, models.StatusNone, OpGetProfiles, models.ListFilter{}},
		{"all users inactive", models.AllUsers, models.StatusInactive, OpGetProfiles, models.ListFilter{Inactive: true}},
		{"team", "team1", models.StatusNone, OpGetProfiles, models.ListFilter{}},
		{"team inactive", "team1", models.StatusInactive, OpGetProfiles, models.ListFilter{Inactive: true}},
		{"team active", "team1", models.StatusActive, OpGetProfiles, models.ListFilter{}},
		{"no team", models.NoTeam, models.StatusNone, OpGetProfilesWithoutTeam, models.ListFilter{}},
		{"no team inactive", models.NoTeam, models.StatusInactive, OpGetProfilesWithoutTeam, models.ListFilter{Inactive: true}},
		{"no team system admin", models.NoTeam, models.StatusSystemAdmin, OpGetProfilesWithoutTeam, models.ListFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestPanel(t, false)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			if err := f.panel.LoadDataForTeam(ctx, tt.team, tt.status); err != nil {
				t.Fatalf("LoadDataForTeam: %v", err)
			}

			c := onlyCall(t, f.api)
			want := call{Op: tt.wantOp, Page: 0, PerPage: paging.ProfileChunkSize, Filter: tt.want}
			if !reflect.DeepEqual(c, want) {
				t.Errorf("call = %+v, want %+v", c, want)
			}
		})
	}
}

func TestNextPage_RequestsFollowingPage(t *testing.T) {
	for _, team := range []models.TeamFilter{models.AllUsers, models.NoTeam} {
		t.Run(string(listOp(team)), func(t *testing.T) {
			f := newTestPanel(t, false)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			if err := f.panel.reduce(setFilters{Team: team}); err != nil {
				t.Fatal(err)
			}
			if err := f.panel.NextPage(ctx, 0); err != nil {
				t.Fatalf("NextPage: %v", err)
			}

			c := onlyCall(t, f.api)
			want := call{Op: listOp(team), Page: 1, PerPage: paging.UsersPerPage, Filter: models.ListFilter{}}
			if !reflect.DeepEqual(c, want) {
				t.Errorf("call = %+v, want %+v", c, want)
			}
			if got := f.panel.State().Tracker.Page; got != 1 {
				t.Errorf("committed page = %d, want 1", got)
			}
		})
	}
}

func TestPreviousPage(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := f.panel.PreviousPage(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := f.panel.PreviousPage(ctx, 0); err != nil {
		t.Fatal(err)
	}

	calls := f.api.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Page != 1 || calls[1].Page != 0 {
		t.Errorf("pages = %d, %d; want 1, 0", calls[0].Page, calls[1].Page)
	}
}

func TestNextPage_InactiveStatusKeepsFilter(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = f.panel.reduce(setFilters{Team: "team1", Status: models.StatusInactive})
	if err := f.panel.NextPage(ctx, 3); err != nil {
		t.Fatal(err)
	}

	c := onlyCall(t, f.api)
	if c.Page != 4 || !c.Filter.Inactive {
		t.Errorf("call = %+v, want page 4 with inactive filter", c)
	}
}

func TestDoSearch_DebouncedWithOptions(t *testing.T) {
	tests := []struct {
		name string
		role string
		want models.SearchOptions
	}{
		{"no role", "", models.SearchOptions{AllowInactive: true}},
		{"system admin", "system_admin", models.SearchOptions{AllowInactive: true, Role: "system_admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestPanel(t, false)

			f.panel.DoSearch("term", models.StatusNone, tt.role)

			if n := len(f.api.Calls()); n != 0 {
				t.Fatalf("search issued before the debounce window elapsed: %d calls", n)
			}
			if !f.panel.SearchPending() {
				t.Fatal("expected a pending search")
			}

			if ran := f.clock.RunPending(); ran != 1 {
				t.Fatalf("RunPending ran %d timers, want 1", ran)
			}

			c := onlyCall(t, f.api)
			want := call{Op: OpSearchProfiles, Term: "term", Opts: tt.want}
			if !reflect.DeepEqual(c, want) {
				t.Errorf("call = %+v, want %+v", c, want)
			}
			if f.panel.SearchPending() {
				t.Error("search still pending after it ran")
			}
		})
	}
}

func TestDoSearch_OnlyLatestTermRuns(t *testing.T) {
	f := newTestPanel(t, false)

	f.panel.DoSearch("a", models.StatusNone, "")
	f.panel.DoSearch("ab", models.StatusNone, "")
	f.panel.DoSearch("abc", models.StatusNone, "")
	f.clock.RunPending()

	c := onlyCall(t, f.api)
	if c.Term != "abc" {
		t.Errorf("term = %q, want %q", c.Term, "abc")
	}
}

func TestLoadDataForTeam_Idempotent(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = f.panel.LoadDataForTeam(ctx, "team1", models.StatusActive)
	_ = f.panel.LoadDataForTeam(ctx, "team1", models.StatusActive)

	calls := f.api.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if !reflect.DeepEqual(calls[0], calls[1]) {
		t.Errorf("repeated load issued different calls: %+v vs %+v", calls[0], calls[1])
	}
}

func TestLoading_TrueWhileFetchOutstanding(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	f.api.Hook = func(ctx context.Context, c call) ([]models.Profile, error) {
		close(started)
		<-release
		return testutil.Profiles("u", 2), nil
	}

	done := make(chan error, 1)
	go func() { done <- f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone) }()

	<-started
	if !f.panel.Loading() {
		t.Error("expected loading while the fetch is outstanding")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if f.panel.Loading() {
		t.Error("expected idle after the fetch settled")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := testutil.Profiles("old", 3)
	second := testutil.Profiles("new", 2)

	started := make(chan struct{})
	release := make(chan struct{})
	n := 0
	f.api.Hook = func(ctx context.Context, c call) ([]models.Profile, error) {
		n++
		if n == 1 {
			close(started)
			<-release // answers late and ignores cancellation
			return first, nil
		}
		return second, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone) }()
	<-started

	if err := f.panel.LoadDataForTeam(ctx, models.NoTeam, models.StatusNone); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	s := f.panel.State()
	if want := []string{"new0", "new1"}; !reflect.DeepEqual(s.ResultIDs, want) {
		t.Errorf("ResultIDs = %v, want %v", s.ResultIDs, want)
	}
	if s.Team != models.NoTeam {
		t.Errorf("team = %q, want %q", s.Team, models.NoTeam)
	}
	if s.Loading() {
		t.Error("expected idle")
	}

	batches := f.sink.Batches()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Errorf("sink batches = %d, want only the current fetch", len(batches))
	}
}

func TestStaleErrorNotReported(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	n := 0
	f.api.Hook = func(ctx context.Context, c call) ([]models.Profile, error) {
		n++
		if n == 1 {
			close(started)
			<-release
			return nil, errors.New("late failure")
		}
		return nil, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone) }()
	<-started
	_ = f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusActive)
	close(release)
	<-done

	if got := f.errs.Reported(); len(got) != 0 {
		t.Errorf("stale failure was reported: %+v", got)
	}
	if s := f.panel.State(); s.LastError != "" {
		t.Errorf("LastError = %q, want empty", s.LastError)
	}
}

func TestSupersededFetchIsCancelled(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	n := 0
	f.api.Hook = func(ctx context.Context, c call) ([]models.Profile, error) {
		n++
		if n == 1 {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone) }()
	<-started
	_ = f.panel.LoadDataForTeam(ctx, models.NoTeam, models.StatusNone)

	<-cancelled
	<-done
	if got := f.errs.Reported(); len(got) != 0 {
		t.Errorf("cancellation was reported: %+v", got)
	}
}

func TestRemoteErrorReportedNotReturned(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.Err = errors.New("boom")

	if err := f.panel.LoadDataForTeam(ctx, "team1", models.StatusNone); err != nil {
		t.Fatalf("remote failure escaped LoadDataForTeam: %v", err)
	}

	got := f.errs.Reported()
	if len(got) != 1 {
		t.Fatalf("reported %d errors, want 1", len(got))
	}
	if got[0].Details[errorlog.DetailOp] != string(OpGetProfiles) {
		t.Errorf("op detail = %q", got[0].Details[errorlog.DetailOp])
	}
	if got[0].Details[errorlog.DetailPanelID] != "panel-1" {
		t.Errorf("panel_id detail = %q", got[0].Details[errorlog.DetailPanelID])
	}

	s := f.panel.State()
	if s.Loading() {
		t.Error("expected idle after failure")
	}
	if s.LastError != "boom" {
		t.Errorf("LastError = %q, want %q", s.LastError, "boom")
	}
	if len(f.sink.Batches()) != 0 {
		t.Error("sink received profiles from a failed fetch")
	}
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := f.panel.LoadDataForTeam(ctx, models.NoTeam, models.StatusNone); err != nil {
		t.Fatal(err)
	}

	if got := f.errs.Reported(); len(got) != 0 {
		t.Errorf("empty result reported as error: %+v", got)
	}
	s := f.panel.State()
	if s.Loading() || s.LastError != "" || len(s.ResultIDs) != 0 {
		t.Errorf("state after empty result = %+v", s)
	}
	if len(f.sink.Batches()) != 0 {
		t.Error("sink called for an empty result")
	}
}

func TestSinkReceivesLoadedProfiles(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.List = testutil.Profiles("u", 4)
	_ = f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone)

	batches := f.sink.Batches()
	if len(batches) != 1 || len(batches[0]) != 4 {
		t.Fatalf("sink batches = %+v", batches)
	}
	if want := []string{"u0", "u1", "u2", "u3"}; !reflect.DeepEqual(f.panel.State().ResultIDs, want) {
		t.Errorf("ResultIDs = %v, want %v", f.panel.State().ResultIDs, want)
	}
}

func TestSearch_UserIDFallback(t *testing.T) {
	id := strings.Repeat("a", 13) + strings.Repeat("1", 13)

	t.Run("found", func(t *testing.T) {
		f := newTestPanel(t, false)
		f.api.Users[id] = testutil.Profile(id, "hidden")

		f.panel.DoSearch(id, models.StatusNone, "")
		f.clock.RunPending()

		if got := f.panel.State().ResultIDs; !reflect.DeepEqual(got, []string{id}) {
			t.Errorf("ResultIDs = %v, want [%s]", got, id)
		}
	})

	t.Run("role mismatch", func(t *testing.T) {
		f := newTestPanel(t, false)
		f.api.Users[id] = testutil.Profile(id, "hidden")

		f.panel.DoSearch(id, models.StatusNone, "system_admin")
		f.clock.RunPending()

		if got := f.panel.State().ResultIDs; len(got) != 0 {
			t.Errorf("ResultIDs = %v, want none", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newTestPanel(t, false)

		f.panel.DoSearch(id, models.StatusNone, "")
		f.clock.RunPending()

		if got := f.errs.Reported(); len(got) != 0 {
			t.Errorf("unknown id reported as error: %+v", got)
		}
	})
}

func TestMount_PrefetchesTeamsAndTotal(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.TeamList = []models.Team{{ID: "t1", DisplayName: "Team One"}}
	f.api.UsersStats = models.UsersStats{TotalUsersCount: 42}

	if err := f.panel.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if got := f.panel.Teams(); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("Teams() = %+v", got)
	}
	s := f.panel.State()
	if !s.Tracker.TotalKnown() || s.Tracker.Total != 42 {
		t.Errorf("total = %d (known=%v), want 42", s.Tracker.Total, s.Tracker.TotalKnown())
	}

	c := onlyCall(t, f.api)
	if c.Op != OpGetProfiles || c.Page != 0 || c.PerPage != paging.ProfileChunkSize {
		t.Errorf("initial load = %+v", c)
	}
}

func TestMount_PrefetchFailureDoesNotBlockLoad(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.StatsErr = errors.New("stats down")

	if err := f.panel.Mount(ctx); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(f.api.Calls()) != 1 {
		t.Error("initial load not issued")
	}
	if len(f.errs.Reported()) == 0 {
		t.Error("prefetch failure not reported")
	}
}

func TestChangeStatus_TeamTotals(t *testing.T) {
	tests := []struct {
		status models.StatusFilter
		want   int64
	}{
		{models.StatusNone, 10},
		{models.StatusActive, 7},
		{models.StatusInactive, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newTestPanel(t, true)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			f.api.TeamStats["team1"] = models.TeamStats{TeamID: "team1", TotalMemberCount: 10, ActiveMemberCount: 7}
			_ = f.panel.reduce(setFilters{Team: "team1"})

			if err := f.panel.ChangeStatus(ctx, tt.status); err != nil {
				t.Fatal(err)
			}
			if got := f.panel.State().Tracker.Total; got != tt.want {
				t.Errorf("total = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChangeTeam_AllUsersStatsFilter(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = f.panel.reduce(setFilters{Team: "team1", Status: models.StatusSystemAdmin})
	if err := f.panel.ChangeTeam(ctx, models.AllUsers); err != nil {
		t.Fatal(err)
	}

	f.api.mu.Lock()
	filters := f.api.statsFilters
	f.api.mu.Unlock()
	want := models.UsersStatsFilter{IncludeDeleted: true, Role: "system_admin"}
	if len(filters) != 1 || filters[0] != want {
		t.Errorf("stats filters = %+v, want [%+v]", filters, want)
	}
}

func TestChangeTeam_NoTeamTotalUnknown(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.panel.mu.Lock()
	f.panel.state.Tracker.SetTotal(99)
	f.panel.mu.Unlock()

	if err := f.panel.ChangeTeam(ctx, models.NoTeam); err != nil {
		t.Fatal(err)
	}
	s := f.panel.State()
	if s.Tracker.TotalKnown() {
		t.Error("total should be unknown for users without a team")
	}
	if !s.HasNext() {
		t.Error("an unknown total should allow a next page")
	}
}

func TestChangeSearch_EmptyTermCancelsPendingSearch(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := f.panel.ChangeSearch(ctx, "bob", ""); err != nil {
		t.Fatal(err)
	}
	if !f.panel.SearchPending() {
		t.Fatal("expected a pending search")
	}

	if err := f.panel.ChangeSearch(ctx, "  ", ""); err != nil {
		t.Fatal(err)
	}
	if f.panel.SearchPending() {
		t.Error("pending search survived clearing the term")
	}
	if ran := f.clock.RunPending(); ran != 0 {
		t.Errorf("RunPending ran %d timers, want 0", ran)
	}

	c := onlyCall(t, f.api)
	if c.Op != OpGetProfiles {
		t.Errorf("call = %+v, want plain listing", c)
	}
}

func TestListingCancelsPendingSearch(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.panel.DoSearch("bob", models.StatusNone, "")
	_ = f.panel.NextPage(ctx, 0)

	if f.clock.RunPending() != 0 {
		t.Error("debounced search ran after a newer listing")
	}
	if s := f.panel.State(); s.Term != "" {
		t.Errorf("term = %q, want cleared by the listing", s.Term)
	}
}

func TestClose(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.panel.DoSearch("bob", models.StatusNone, "")
	f.panel.Close()
	f.panel.Close()

	if ran := f.clock.RunPending(); ran != 0 {
		t.Errorf("pending search ran after Close: %d", ran)
	}
	if len(f.api.Calls()) != 0 {
		t.Error("remote call issued after Close")
	}
	if err := f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("LoadDataForTeam after Close = %v, want ErrPanelClosed", err)
	}
	if err := f.panel.ChangeTeam(ctx, models.NoTeam); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("ChangeTeam after Close = %v, want ErrPanelClosed", err)
	}
}

func TestClose_CancelsOutstandingFetch(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	started := make(chan struct{})
	f.api.Hook = func(ctx context.Context, c call) ([]models.Profile, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	done := make(chan error, 1)
	go func() { done <- f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone) }()
	<-started
	f.panel.Close()

	if err := <-done; err != nil {
		t.Fatalf("LoadDataForTeam = %v", err)
	}
	if got := f.errs.Reported(); len(got) != 0 {
		t.Errorf("cancellation reported: %+v", got)
	}
}

func TestChangeSearch_TermNormalizedOnce(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		wantOp   Op
		wantTerm string
	}{
		{"entity encoded markup is searched verbatim", "&lt;b&gt;", OpSearchProfiles, "&lt;b&gt;"},
		{"lone less-than kept", "a<b", OpSearchProfiles, "a<b"},
		{"markup around a name", " <b>jane</b> ", OpSearchProfiles, "jane"},
		{"markup only lists", "<b></b>", OpGetProfiles, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestPanel(t, false)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			if err := f.panel.ChangeSearch(ctx, tt.term, ""); err != nil {
				t.Fatal(err)
			}
			f.clock.RunPending()

			c := onlyCall(t, f.api)
			if c.Op != tt.wantOp || c.Term != tt.wantTerm {
				t.Errorf("call = {Op:%q Term:%q}, want {Op:%q Term:%q}", c.Op, c.Term, tt.wantOp, tt.wantTerm)
			}
			if s := f.panel.State(); s.Term != tt.wantTerm {
				t.Errorf("state term = %q, want %q", s.Term, tt.wantTerm)
			}
		})
	}
}

func TestLoadDataForTeam_OtherFiltersDropTotal(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.UsersStats = models.UsersStats{TotalUsersCount: 1000}
	if err := f.panel.Mount(ctx); err != nil {
		t.Fatal(err)
	}
	if s := f.panel.State(); !s.Tracker.TotalKnown() || s.Tracker.Total != 1000 {
		t.Fatalf("total after mount = %d (known=%v)", s.Tracker.Total, s.Tracker.TotalKnown())
	}

	if err := f.panel.LoadDataForTeam(ctx, models.NoTeam, models.StatusInactive); err != nil {
		t.Fatal(err)
	}
	s := f.panel.State()
	if s.Team != models.NoTeam || s.Status != models.StatusInactive {
		t.Fatalf("filters = %q/%q", s.Team, s.Status)
	}
	if s.Tracker.TotalKnown() {
		t.Errorf("total %d kept from the previous listing", s.Tracker.Total)
	}
}

// stateAtWriteSink records the panel state seen by each store write.
type stateAtWriteSink struct {
	panel *Panel
	seen  []State
}

func (s *stateAtWriteSink) ReceiveProfiles(ctx context.Context, profiles []models.Profile) error {
	s.seen = append(s.seen, s.panel.State())
	return nil
}

func TestSinkWrittenAfterCommit(t *testing.T) {
	f := newTestPanel(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sink := &stateAtWriteSink{panel: f.panel}
	f.panel.deps.Sink = sink
	f.api.List = testutil.Profiles("u", 2)

	if err := f.panel.LoadDataForTeam(ctx, models.AllUsers, models.StatusNone); err != nil {
		t.Fatal(err)
	}

	if len(sink.seen) != 1 {
		t.Fatalf("store writes = %d, want 1", len(sink.seen))
	}
	s := sink.seen[0]
	if s.Loading() {
		t.Error("store written before the fetch was committed")
	}
	if want := []string{"u0", "u1"}; !reflect.DeepEqual(s.ResultIDs, want) {
		t.Errorf("ResultIDs at write = %v, want %v", s.ResultIDs, want)
	}
}

func TestChangeTeam_ClosedDuringLoadDespiteTotalError(t *testing.T) {
	f := newTestPanel(t, true)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.api.StatsErr = errors.New("stats down")
	f.api.OnStats = f.panel.Close

	if err := f.panel.ChangeTeam(ctx, models.AllUsers); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("ChangeTeam = %v, want ErrPanelClosed", err)
	}
}
