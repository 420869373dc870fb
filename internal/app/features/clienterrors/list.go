// internal/app/features/clienterrors/list.go
package clienterrors

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	errorstore "github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pageSize = 50

// ServeList handles GET /client-errors: recorded panel failures, newest
// first, filtered by source, panel, operation and start date.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := h.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "bad query")
		return
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	filter := errorstore.QueryFilter{
		Source:  strings.TrimSpace(q.Source),
		PanelID: strings.TrimSpace(q.PanelID),
		Op:      strings.TrimSpace(q.Op),
		Limit:   pageSize,
		Offset:  int64((page - 1) * pageSize),
	}
	if since := strings.TrimSpace(q.Since); since != "" {
		t, ok := parseSince(since)
		if !ok {
			writeError(w, http.StatusBadRequest, "since must be a date (2006-01-02) or an RFC 3339 time")
			return
		}
		filter.StartTime = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		events []errorstore.Event
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = h.Events.Query(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.Events.CountByFilter(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		h.Log.Error("client error query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load client errors")
		return
	}

	view := listView{
		Events:  make([]eventView, 0, len(events)),
		Total:   total,
		Page:    page,
		HasNext: int64(page*pageSize) < total,
	}
	for _, e := range events {
		view.Events = append(view.Events, newEventView(e))
	}
	writeJSON(w, http.StatusOK, view)
}

func parseSince(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
