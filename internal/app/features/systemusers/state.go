// internal/app/features/systemusers/state.go
package systemusers

import (
	"github.com/dalemusser/adminusers/internal/app/system/paging"
	"github.com/dalemusser/adminusers/internal/domain/models"
)

// Phase is the load state of a panel.
type Phase int

const (
	// Idle means no fetch issued by the panel is outstanding.
	Idle Phase = iota
	// Loading means the latest issued fetch has not settled.
	Loading
)

func (p Phase) String() string {
	if p == Loading {
		return "loading"
	}
	return "idle"
}

// Op names a remote profile operation.
type Op string

const (
	OpGetProfiles            Op = "get profiles"
	OpGetProfilesWithoutTeam Op = "get profiles without team"
	OpSearchProfiles         Op = "search profiles"
)

// listOp picks the listing operation for a team filter.
func listOp(team models.TeamFilter) Op {
	if team == models.NoTeam {
		return OpGetProfilesWithoutTeam
	}
	return OpGetProfiles
}

// Intent is everything needed to issue one fetch. It is snapshotted from
// the panel state when the fetch is dispatched.
type Intent struct {
	Op      Op
	Team    models.TeamFilter
	Status  models.StatusFilter
	Term    string
	Role    string
	Page    int
	PerPage int
}

// State is the panel's view state. Filters record the latest user intent;
// ResultIDs and the tracker's page hold what the latest settled fetch
// produced.
type State struct {
	Phase Phase
	Token uint64 // latest issued request token

	Team   models.TeamFilter
	Status models.StatusFilter
	Term   string
	Role   string

	Tracker   paging.Tracker
	ResultIDs []string
	LastError string // message of the latest failed fetch, cleared on dispatch
}

// Loading reports whether the latest issued fetch is outstanding.
func (s State) Loading() bool { return s.Phase == Loading }

// Searching reports whether the displayed results come from a search.
func (s State) Searching() bool { return s.Term != "" }

// HasNext reports whether a next page can be requested. Search results
// are not paginated.
func (s State) HasNext() bool { return !s.Searching() && s.Tracker.HasNext() }

// HasPrev reports whether a previous page can be requested.
func (s State) HasPrev() bool { return !s.Searching() && s.Tracker.HasPrev() }

func (s State) clone() State {
	if s.ResultIDs != nil {
		ids := make([]string, len(s.ResultIDs))
		copy(ids, s.ResultIDs)
		s.ResultIDs = ids
	}
	return s
}

// action is an input to reduce.
type action interface{ isAction() }

// setFilters records new filters without dispatching; the page resets.
type setFilters struct {
	Team   models.TeamFilter
	Status models.StatusFilter
	Term   string
	Role   string
}

// dispatched marks a fetch as issued under Token.
type dispatched struct {
	Token  uint64
	Intent Intent
}

// settled carries the outcome of the fetch issued under Token.
type settled struct {
	Token  uint64
	Intent Intent
	IDs    []string
	Err    error
	Quiet  bool // cancelled: settle without recording an error
}

// totalLoaded carries a total count computed for Team and Status.
type totalLoaded struct {
	Team   models.TeamFilter
	Status models.StatusFilter
	Total  int64
	Known  bool
}

func (setFilters) isAction()  {}
func (dispatched) isAction()  {}
func (settled) isAction()     {}
func (totalLoaded) isAction() {}

// reduce is the panel's transition function. It never mutates s in place
// and reports whether the action changed anything.
func reduce(s State, a action) (State, bool) {
	switch a := a.(type) {
	case setFilters:
		s = withListing(s, a.Team, a.Status)
		s.Term, s.Role = a.Term, a.Role
		s.Tracker.Reset()
		return s, true

	case dispatched:
		if a.Token <= s.Token {
			return s, false
		}
		s.Token = a.Token
		s.Phase = Loading
		s.LastError = ""
		s = withListing(s, a.Intent.Team, a.Intent.Status)
		s.Term, s.Role = a.Intent.Term, a.Intent.Role
		return s, true

	case settled:
		// Only the latest issued token may commit.
		if a.Token != s.Token || s.Phase != Loading {
			return s, false
		}
		s.Phase = Idle
		switch {
		case a.Err != nil && a.Quiet:
			// Keep whatever was displayed.
		case a.Err != nil:
			s.LastError = a.Err.Error()
			s.ResultIDs = nil
		default:
			s.ResultIDs = a.IDs
			s.Tracker.Commit(a.Intent.Page)
		}
		return s, true

	case totalLoaded:
		if a.Team != s.Team || a.Status != s.Status {
			return s, false
		}
		if a.Known {
			s.Tracker.SetTotal(a.Total)
		} else {
			s.Tracker.ForgetTotal()
		}
		return s, true
	}
	return s, false
}

// withListing switches s to team and status. A total counted for other
// filters no longer describes the listing and is dropped.
func withListing(s State, team models.TeamFilter, status models.StatusFilter) State {
	if s.Team != team || s.Status != status {
		s.Tracker.ForgetTotal()
	}
	s.Team, s.Status = team, status
	return s
}
