// internal/app/features/clienterrors/types.go
package clienterrors

import (
	"time"

	errorstore "github.com/dalemusser/adminusers/internal/app/store/clienterrors"
)

// listQuery is the query string of GET /client-errors.
type listQuery struct {
	Source  string `form:"source"`
	PanelID string `form:"panel_id"`
	Op      string `form:"op"`
	Since   string `form:"since"` // 2006-01-02 or RFC 3339
	Page    int    `form:"page"`  // 1-based
}

type eventView struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Source     string            `json:"source"`
	PanelID    string            `json:"panel_id,omitempty"`
	Op         string            `json:"op"`
	Message    string            `json:"message"`
	StatusCode int               `json:"status_code,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listView struct {
	Events  []eventView `json:"events"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	HasNext bool        `json:"has_next"`
}

func newEventView(e errorstore.Event) eventView {
	return eventView{
		ID:         e.ID.Hex(),
		Timestamp:  e.Timestamp,
		Source:     e.Source,
		PanelID:    e.PanelID,
		Op:         e.Op,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Details:    e.Details,
	}
}
