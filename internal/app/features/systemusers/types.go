// internal/app/features/systemusers/types.go
package systemusers

import (
	"github.com/dalemusser/adminusers/internal/app/system/paging"
	"github.com/dalemusser/adminusers/internal/domain/models"
)

// panelForm is the form body accepted by the panel endpoints. Each
// endpoint reads only the fields it needs.
type panelForm struct {
	Team   string `form:"team"`
	Status string `form:"status"`
	Term   string `form:"term"`
	Role   string `form:"role"`
	Page   *int   `form:"page"` // nil means the displayed page
}

// profileRow is one displayed profile.
type profileRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Roles    string `json:"roles"`
	Inactive bool   `json:"inactive"`
}

// stateView is the JSON rendering of a panel.
type stateView struct {
	ID            string       `json:"id"`
	Phase         string       `json:"phase"`
	Loading       bool         `json:"loading"`
	SearchPending bool         `json:"search_pending"`
	Team          string       `json:"team"`
	Status        string       `json:"status"`
	Term          string       `json:"term,omitempty"`
	Role          string       `json:"role,omitempty"`
	Page          int          `json:"page"`
	Total         *int64       `json:"total,omitempty"`
	RangeStart    int          `json:"range_start"`
	RangeEnd      int          `json:"range_end"`
	HasPrev       bool         `json:"has_prev"`
	HasNext       bool         `json:"has_next"`
	IDs           []string     `json:"ids"`
	Profiles      []profileRow `json:"profiles,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
}

func newStateView(p *Panel, s State, profiles []models.Profile) stateView {
	v := stateView{
		ID:            p.ID(),
		Phase:         s.Phase.String(),
		Loading:       s.Loading(),
		SearchPending: p.SearchPending(),
		Team:          string(s.Team),
		Status:        string(s.Status),
		Term:          s.Term,
		Role:          s.Role,
		Page:          s.Tracker.Page,
		HasPrev:       s.HasPrev(),
		HasNext:       s.HasNext(),
		IDs:           s.ResultIDs,
		LastError:     s.LastError,
	}
	if v.IDs == nil {
		v.IDs = []string{}
	}
	if s.Tracker.TotalKnown() && !s.Searching() {
		total := s.Tracker.Total
		v.Total = &total
	}

	var rng paging.Range
	if s.Searching() {
		rng = paging.ComputeRange(1, len(s.ResultIDs))
	} else {
		rng = s.Tracker.Range(len(s.ResultIDs))
	}
	v.RangeStart, v.RangeEnd = rng.Start, rng.End

	for _, pr := range profiles {
		v.Profiles = append(v.Profiles, newProfileRow(pr))
	}
	return v
}

func newProfileRow(pr models.Profile) profileRow {
	return profileRow{
		ID:       pr.ID,
		Username: pr.Username,
		Name:     pr.DisplayName(),
		Email:    pr.Email,
		Roles:    pr.Roles,
		Inactive: pr.Inactive(),
	}
}
